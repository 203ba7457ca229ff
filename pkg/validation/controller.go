package validation

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-erpforms/pkg/messages"
	"github.com/goliatone/go-erpforms/pkg/model"
	"github.com/goliatone/go-erpforms/pkg/notify"
)

// Result summarises a whole-form validation pass.
type Result struct {
	Valid bool
	// Invalid lists failing field names in form order.
	Invalid []string
	// FirstInvalid is the field feedback should focus on.
	FirstInvalid string
}

// Controller binds submit, blur and input events of one form to the field
// validator.
type Controller struct {
	form     *model.Form
	notifier notify.Notifier
	catalog  *messages.Catalog
	logger   *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier sets the sink for the blocked-submit message.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) {
		c.notifier = notify.OrNop(n)
	}
}

// WithCatalog overrides the message catalog.
func WithCatalog(catalog *messages.Catalog) Option {
	return func(c *Controller) {
		if catalog != nil {
			c.catalog = catalog
		}
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

// NewController binds a controller to form.
func NewController(form *model.Form, options ...Option) (*Controller, error) {
	if form == nil {
		return nil, errors.New("validation: form is required")
	}
	c := &Controller{
		form:     form,
		notifier: notify.Nop,
		catalog:  messages.Default(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// OnBlur validates the field the user just left.
func (c *Controller) OnBlur(name string) (model.ValidityState, error) {
	ctrl, ok := c.form.Control(name)
	if !ok {
		return model.Untouched, fmt.Errorf("validation: blur: %w %q", model.ErrUnknownField, name)
	}
	return ValidateControl(ctrl), nil
}

// OnInput re-validates the field live once the form has been submitted or
// the field is already marked invalid. Otherwise the current mark is kept.
func (c *Controller) OnInput(name string) (model.ValidityState, error) {
	ctrl, ok := c.form.Control(name)
	if !ok {
		return model.Untouched, fmt.Errorf("validation: input: %w %q", model.ErrUnknownField, name)
	}
	if !c.form.Validated && ctrl.Mark != model.Invalid {
		return ctrl.Mark, nil
	}
	return ValidateControl(ctrl), nil
}

// Check validates and marks every control without touching any event.
func (c *Controller) Check() Result {
	result := Result{Valid: true}
	for i := range c.form.Controls {
		ctrl := &c.form.Controls[i]
		if ValidateControl(ctrl) == model.Invalid {
			result.Valid = false
			result.Invalid = append(result.Invalid, ctrl.Name())
		}
	}
	if len(result.Invalid) > 0 {
		result.FirstInvalid = result.Invalid[0]
	}
	return result
}

// OnSubmit validates the whole form. A failing form has the event prevented
// and its propagation stopped, and exactly one notification is emitted for
// the attempt. The form is marked validated either way.
func (c *Controller) OnSubmit(ev *model.SubmitEvent) Result {
	result := c.Check()
	if !result.Valid {
		ev.PreventDefault()
		ev.StopPropagation()
		c.notifier.Notify(c.catalog.Get(messages.RequiredFields), notify.Danger)
		c.logger.Debug("submit blocked by validation",
			"form", c.form.ID,
			"invalid", result.Invalid,
		)
	}
	c.form.Validated = true
	return result
}
