package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownField is returned when an operation names a field the form does
// not declare.
var ErrUnknownField = errors.New("model: unknown field")

// Control is a live form control: its descriptor, current value and visual
// validity mark.
type Control struct {
	Descriptor FieldDescriptor `json:"descriptor"`
	Value      FieldValue      `json:"value"`
	Mark       ValidityState   `json:"mark"`
}

// Name is shorthand for Descriptor.Name.
func (c *Control) Name() string {
	if c == nil {
		return ""
	}
	return c.Descriptor.Name
}

// Kind is shorthand for Descriptor.Kind.
func (c *Control) Kind() FieldKind {
	if c == nil {
		return ""
	}
	return c.Descriptor.Kind
}

// RawValue returns the string a validator sees for the control.
func (c *Control) RawValue() string {
	if c == nil {
		return ""
	}
	return c.Value.Raw(c.Descriptor.CheckedValue())
}

// Clear resets the control to its empty value for its kind.
func (c *Control) Clear() {
	if c == nil {
		return
	}
	c.Value = emptyValue(c.Descriptor.Kind)
}

// Label binds display text to a control through its `for` target, which may
// be either the field name or the control id.
type Label struct {
	For  string `json:"for" yaml:"for" toml:"for"`
	Text string `json:"text" yaml:"text" toml:"text"`
}

// ButtonKind distinguishes submit and reset buttons from plain buttons.
type ButtonKind string

const (
	ButtonSubmit ButtonKind = "submit"
	ButtonReset  ButtonKind = "reset"
	ButtonPlain  ButtonKind = "button"
)

// Button is an interactive control that is not a field. Confirm carries the
// `data-confirm` message, when present.
type Button struct {
	Name    string     `json:"name" yaml:"name" toml:"name"`
	Kind    ButtonKind `json:"kind" yaml:"kind" toml:"kind"`
	Label   string     `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Confirm string     `json:"confirm,omitempty" yaml:"confirm,omitempty" toml:"confirm,omitempty"`
}

// Form mirrors a form element and the declarative attributes it carries.
type Form struct {
	ID              string    `json:"id"`
	Title           string    `json:"title,omitempty"`
	AutosaveID      FormID    `json:"autosaveId,omitempty"`
	NeedsValidation bool      `json:"needsValidation,omitempty"`
	Controls        []Control `json:"controls"`
	Labels          []Label   `json:"labels,omitempty"`
	Buttons         []Button  `json:"buttons,omitempty"`
	// Validated mirrors the was-validated class: set after the first submit
	// attempt so later edits are validated live.
	Validated bool `json:"validated,omitempty"`
}

// NewForm builds a form with one empty control per descriptor. Duplicate or
// empty names are rejected.
func NewForm(id string, descriptors ...FieldDescriptor) (*Form, error) {
	form := &Form{ID: strings.TrimSpace(id)}
	seen := make(map[string]struct{}, len(descriptors))
	for _, desc := range descriptors {
		name := strings.TrimSpace(desc.Name)
		if name == "" {
			return nil, errors.New("model: field name is required")
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("model: duplicate field %q", name)
		}
		seen[name] = struct{}{}
		desc.Name = name
		desc.Kind = ParseFieldKind(string(desc.Kind))
		form.Controls = append(form.Controls, Control{
			Descriptor: desc,
			Value:      emptyValue(desc.Kind),
		})
	}
	return form, nil
}

// MustNewForm panics when NewForm fails. Useful for fixtures.
func MustNewForm(id string, descriptors ...FieldDescriptor) *Form {
	form, err := NewForm(id, descriptors...)
	if err != nil {
		panic(err)
	}
	return form
}

// Control returns the control named name.
func (f *Form) Control(name string) (*Control, bool) {
	if f == nil {
		return nil, false
	}
	for i := range f.Controls {
		if f.Controls[i].Descriptor.Name == name {
			return &f.Controls[i], true
		}
	}
	return nil, false
}

// Button returns the button named name.
func (f *Form) Button(name string) (*Button, bool) {
	if f == nil {
		return nil, false
	}
	for i := range f.Buttons {
		if f.Buttons[i].Name == name {
			return &f.Buttons[i], true
		}
	}
	return nil, false
}

// LabelFor returns the text of the first label whose target is target.
func (f *Form) LabelFor(target string) (string, bool) {
	if f == nil || strings.TrimSpace(target) == "" {
		return "", false
	}
	for _, label := range f.Labels {
		if label.For == target {
			return label.Text, true
		}
	}
	return "", false
}

// SetText assigns a text value. Checkbox controls interpret the text as the
// checked state; file controls reject text.
func (f *Form) SetText(name, text string) error {
	ctrl, ok := f.Control(name)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownField, name)
	}
	switch ctrl.Kind() {
	case FieldKindFile:
		return fmt.Errorf("model: field %q holds a file, not text", name)
	case FieldKindCheckbox:
		ctrl.Value = BoolValue(parseChecked(text, ctrl.Descriptor.CheckedValue()))
	default:
		ctrl.Value = TextValue(text)
	}
	return nil
}

// SetChecked assigns a checkbox state.
func (f *Form) SetChecked(name string, checked bool) error {
	ctrl, ok := f.Control(name)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownField, name)
	}
	if ctrl.Kind() != FieldKindCheckbox {
		return fmt.Errorf("model: field %q is not a checkbox", name)
	}
	ctrl.Value = BoolValue(checked)
	return nil
}

// SetFile assigns a file selection; nil clears it.
func (f *Form) SetFile(name string, file *FileDescriptor) error {
	ctrl, ok := f.Control(name)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownField, name)
	}
	if ctrl.Kind() != FieldKindFile {
		return fmt.Errorf("model: field %q is not a file input", name)
	}
	ctrl.Value = FileValue(file)
	return nil
}

// Snapshot captures the current draft: every non-file control that would be
// part of the form data at this instant.
func (f *Form) Snapshot() Draft {
	draft := Draft{}
	if f == nil {
		return draft
	}
	for _, ctrl := range f.Controls {
		if ctrl.Descriptor.Kind == FieldKindFile {
			continue
		}
		if text, ok := ctrl.Value.draftText(ctrl.Descriptor.CheckedValue()); ok {
			draft[ctrl.Descriptor.Name] = text
		}
	}
	return draft
}

// Restore populates non-file controls whose names appear in draft. Keys that
// match no control, or match a file control, are ignored. It returns the
// names that were restored, in form order.
func (f *Form) Restore(draft Draft) []string {
	if f == nil || len(draft) == 0 {
		return nil
	}
	var restored []string
	for i := range f.Controls {
		ctrl := &f.Controls[i]
		stored, ok := draft[ctrl.Descriptor.Name]
		if !ok || ctrl.Descriptor.Kind == FieldKindFile {
			continue
		}
		if ctrl.Descriptor.Kind == FieldKindCheckbox {
			ctrl.Value = BoolValue(stored != "")
		} else {
			ctrl.Value = TextValue(stored)
		}
		restored = append(restored, ctrl.Descriptor.Name)
	}
	return restored
}

func emptyValue(kind FieldKind) FieldValue {
	switch kind {
	case FieldKindCheckbox:
		return BoolValue(false)
	case FieldKindFile:
		return FileValue(nil)
	default:
		return TextValue("")
	}
}

func parseChecked(text, checkedValue string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "", "false", "off", "no", "0":
		return false
	case "true", "on", "yes", "1", strings.ToLower(checkedValue):
		return true
	default:
		return true
	}
}
