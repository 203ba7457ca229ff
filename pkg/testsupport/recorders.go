package testsupport

import (
	"sync"

	"github.com/goliatone/go-erpforms/pkg/messages"
	"github.com/goliatone/go-erpforms/pkg/notify"
	"github.com/goliatone/go-erpforms/pkg/upload"
)

// Notification is one recorded call to a Notifier.
type Notification struct {
	Message  messages.Message
	Severity notify.Severity
}

// RecordingNotifier captures notifications in call order.
type RecordingNotifier struct {
	mu    sync.Mutex
	calls []Notification
}

var _ notify.Notifier = (*RecordingNotifier)(nil)

// Notify records the call.
func (r *RecordingNotifier) Notify(msg messages.Message, severity notify.Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Notification{Message: msg, Severity: severity})
}

// Calls returns a copy of the recorded notifications.
func (r *RecordingNotifier) Calls() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.calls))
	copy(out, r.calls)
	return out
}

// Len returns the number of recorded notifications.
func (r *RecordingNotifier) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Reset drops every recorded notification.
func (r *RecordingNotifier) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// PreviewEvent is one recorded call to a preview sink. Op is "name",
// "show" or "remove".
type PreviewEvent struct {
	Op      string
	Input   string
	Name    string
	Preview upload.Preview
}

// RecordingPreviewSink captures preview sink calls and tracks the preview
// currently shown per input.
type RecordingPreviewSink struct {
	mu      sync.Mutex
	events  []PreviewEvent
	current map[string]upload.Preview
}

var _ upload.PreviewSink = (*RecordingPreviewSink)(nil)

// ShowFileName records the announced file name.
func (r *RecordingPreviewSink) ShowFileName(input, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, PreviewEvent{Op: "name", Input: input, Name: name})
}

// ShowPreview records and displays p.
func (r *RecordingPreviewSink) ShowPreview(p upload.Preview) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		r.current = make(map[string]upload.Preview)
	}
	r.current[p.Input] = p
	r.events = append(r.events, PreviewEvent{Op: "show", Input: p.Input, Name: p.FileName, Preview: p})
}

// RemovePreview records and hides the preview for input.
func (r *RecordingPreviewSink) RemovePreview(input string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.current, input)
	r.events = append(r.events, PreviewEvent{Op: "remove", Input: input})
}

// Events returns a copy of the recorded calls.
func (r *RecordingPreviewSink) Events() []PreviewEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PreviewEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Current returns the preview displayed for input.
func (r *RecordingPreviewSink) Current(input string) (upload.Preview, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.current[input]
	return p, ok
}

// Shown counts the previews currently displayed.
func (r *RecordingPreviewSink) Shown() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.current)
}
