// Package notify defines the notification sink and an in-memory surface that
// mimics the alert region at the top of the page content.
package notify

import (
	"sync"
	"time"

	"github.com/goliatone/go-erpforms/pkg/messages"
)

// Severity matches the alert styles of the page shell.
type Severity string

const (
	Info    Severity = "info"
	Success Severity = "success"
	Warning Severity = "warning"
	Danger  Severity = "danger"
)

// Notifier is the notification sink every controller reports through.
// Implementations must be safe to call when nothing can display the message.
type Notifier interface {
	Notify(msg messages.Message, severity Severity)
}

// NotifierFunc adapts a function into a Notifier.
type NotifierFunc func(messages.Message, Severity)

// Notify calls fn.
func (fn NotifierFunc) Notify(msg messages.Message, severity Severity) {
	if fn != nil {
		fn(msg, severity)
	}
}

// Nop discards every notification.
var Nop Notifier = NotifierFunc(func(messages.Message, Severity) {})

// OrNop returns n, or Nop when n is nil.
func OrNop(n Notifier) Notifier {
	if n == nil {
		return Nop
	}
	return n
}

// DefaultDismissAfter is how long a notice stays visible.
const DefaultDismissAfter = 5 * time.Second

// Notice is a displayed notification.
type Notice struct {
	ID       uint64
	Message  messages.Message
	Severity Severity
	Shown    time.Time
}

// Timer is the subset of *time.Timer the region relies on.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules fn after d. It matches time.AfterFunc.
type AfterFunc func(d time.Duration, fn func()) Timer

// Region is the content region notices are inserted into, newest first. A
// nil *Region accepts and drops notices, matching a page with no container.
type Region struct {
	mu           sync.Mutex
	notices      []Notice
	timers       map[uint64]Timer
	nextID       uint64
	dismissAfter time.Duration
	afterFunc    AfterFunc
	now          func() time.Time
}

var _ Notifier = (*Region)(nil)

// RegionOption configures a Region.
type RegionOption func(*Region)

// WithDismissAfter overrides the auto-dismiss delay. Zero or negative keeps
// notices until dismissed explicitly.
func WithDismissAfter(d time.Duration) RegionOption {
	return func(r *Region) {
		r.dismissAfter = d
	}
}

// WithAfterFunc injects the timer factory, mainly for tests.
func WithAfterFunc(fn AfterFunc) RegionOption {
	return func(r *Region) {
		if fn != nil {
			r.afterFunc = fn
		}
	}
}

// WithClock injects the clock used to stamp notices.
func WithClock(now func() time.Time) RegionOption {
	return func(r *Region) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRegion constructs a region with the default 5 second auto-dismiss.
func NewRegion(options ...RegionOption) *Region {
	r := &Region{
		timers:       make(map[uint64]Timer),
		dismissAfter: DefaultDismissAfter,
		afterFunc: func(d time.Duration, fn func()) Timer {
			return time.AfterFunc(d, fn)
		},
		now: time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Notify inserts a notice at the top of the region and schedules its removal.
func (r *Region) Notify(msg messages.Message, severity Severity) {
	if r == nil {
		return
	}
	if severity == "" {
		severity = Info
	}

	r.mu.Lock()
	r.nextID++
	notice := Notice{ID: r.nextID, Message: msg, Severity: severity, Shown: r.now()}
	r.notices = append([]Notice{notice}, r.notices...)
	delay := r.dismissAfter
	r.mu.Unlock()

	if delay <= 0 {
		return
	}
	timer := r.afterFunc(delay, func() { r.Dismiss(notice.ID) })

	r.mu.Lock()
	if r.contains(notice.ID) {
		r.timers[notice.ID] = timer
	}
	r.mu.Unlock()
}

// Dismiss removes the notice with id. Removing a notice that is already gone
// is a no-op.
func (r *Region) Dismiss(id uint64) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if timer, ok := r.timers[id]; ok {
		timer.Stop()
		delete(r.timers, id)
	}
	for i, notice := range r.notices {
		if notice.ID == id {
			r.notices = append(r.notices[:i], r.notices[i+1:]...)
			return
		}
	}
}

// Notices returns the visible notices, newest first.
func (r *Region) Notices() []Notice {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

func (r *Region) contains(id uint64) bool {
	for _, notice := range r.notices {
		if notice.ID == id {
			return true
		}
	}
	return false
}
