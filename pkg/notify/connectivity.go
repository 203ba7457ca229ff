package notify

import "github.com/goliatone/go-erpforms/pkg/messages"

// Connectivity turns browser online/offline transitions into notices.
type Connectivity struct {
	notifier Notifier
	catalog  *messages.Catalog
}

// NewConnectivity wires the notices to notifier. A nil catalog uses the
// default messages.
func NewConnectivity(notifier Notifier, catalog *messages.Catalog) *Connectivity {
	if catalog == nil {
		catalog = messages.Default()
	}
	return &Connectivity{notifier: OrNop(notifier), catalog: catalog}
}

// Online reports a restored connection.
func (c *Connectivity) Online() {
	c.notifier.Notify(c.catalog.Get(messages.ConnectionRestored), Success)
}

// Offline reports a lost connection.
func (c *Connectivity) Offline() {
	c.notifier.Notify(c.catalog.Get(messages.ConnectionLost), Warning)
}
