// Package autosave keeps a form's draft in sync with its controls: it
// restores the draft when the form is bound, saves on every input and clears
// the draft once the form is submitted.
package autosave

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goliatone/go-erpforms/pkg/draft"
	"github.com/goliatone/go-erpforms/pkg/model"
)

// State is the controller lifecycle state.
type State uint8

const (
	Unbound State = iota
	Restoring
	Idle
	Dirty
)

func (s State) String() string {
	switch s {
	case Unbound:
		return "unbound"
	case Restoring:
		return "restoring"
	case Idle:
		return "idle"
	case Dirty:
		return "dirty"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// ErrInvalidTransition is returned when an event arrives in a state that
// cannot handle it.
var ErrInvalidTransition = errors.New("autosave: invalid transition")

var transitions = map[State][]State{
	Unbound:   {Restoring},
	Restoring: {Idle},
	Idle:      {Dirty, Idle},
	Dirty:     {Dirty, Idle},
}

func canTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Controller drives the draft of one form.
type Controller struct {
	form           *model.Form
	store          *draft.Store
	id             model.FormID
	clearOnBlocked bool
	logger         *slog.Logger

	mu    sync.Mutex
	state State
}

// Option configures a Controller.
type Option func(*Controller)

// WithClearOnBlockedSubmit clears the draft on every submit, including
// submits a validator prevented.
func WithClearOnBlockedSubmit(enabled bool) Option {
	return func(c *Controller) {
		c.clearOnBlocked = enabled
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController returns an unbound controller for form. The form must carry
// an autosave identifier.
func NewController(form *model.Form, store *draft.Store, options ...Option) (*Controller, error) {
	if form == nil {
		return nil, errors.New("autosave: form is required")
	}
	if form.AutosaveID == "" {
		return nil, fmt.Errorf("autosave: form %q has no autosave id", form.ID)
	}
	c := &Controller{
		form:   form,
		store:  store,
		id:     form.AutosaveID,
		logger: slog.New(slog.DiscardHandler),
		state:  Unbound,
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Bind restores the stored draft into the form and returns the names of the
// restored controls. File controls are never restored.
func (c *Controller) Bind() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.transition(Restoring); err != nil {
		return nil, err
	}
	var restored []string
	if stored, ok := c.store.Load(c.id); ok {
		restored = c.form.Restore(stored)
		c.logger.Debug("draft restored", "form", c.id, "fields", restored)
	}
	if err := c.transition(Idle); err != nil {
		return nil, err
	}
	return restored, nil
}

// OnInput snapshots every non-file control and saves the draft, replacing
// the stored one. It reports whether the save succeeded.
func (c *Controller) OnInput(name string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.form.Control(name); !ok {
		return false, fmt.Errorf("autosave: %w %q", model.ErrUnknownField, name)
	}
	if err := c.transition(Dirty); err != nil {
		return false, err
	}
	return c.store.Save(c.id, c.form.Snapshot()), nil
}

// OnSubmit clears the stored draft and returns to Idle. A submit that was
// prevented keeps the draft unless WithClearOnBlockedSubmit is enabled.
// It reports whether the draft was cleared.
func (c *Controller) OnSubmit(ev *model.SubmitEvent) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Idle && c.state != Dirty {
		return false, fmt.Errorf("%w: submit while %s", ErrInvalidTransition, c.state)
	}
	if ev.DefaultPrevented() && !c.clearOnBlocked {
		c.logger.Debug("submit blocked, draft kept", "form", c.id)
		return false, nil
	}
	c.store.Clear(c.id)
	if err := c.transition(Idle); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Controller) transition(to State) error {
	if !canTransition(c.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.state, to)
	}
	c.state = to
	return nil
}
