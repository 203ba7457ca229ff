package model

import "strings"

// FormID names a form instance for draft scoping. It stays stable across page
// reloads for the same logical form.
type FormID string

// FieldKind is the closed set of control kinds the controllers understand.
type FieldKind string

const (
	FieldKindText     FieldKind = "text"
	FieldKindTextarea FieldKind = "textarea"
	FieldKindEmail    FieldKind = "email"
	FieldKindTel      FieldKind = "tel"
	FieldKindNumber   FieldKind = "number"
	FieldKindDate     FieldKind = "date"
	FieldKindFile     FieldKind = "file"
	FieldKindCheckbox FieldKind = "checkbox"
	FieldKindRadio    FieldKind = "radio"
	FieldKindSelect   FieldKind = "select"
)

// ParseFieldKind normalises a declared kind. Unknown kinds fall back to text,
// matching how browsers treat unknown input types.
func ParseFieldKind(raw string) FieldKind {
	switch kind := FieldKind(strings.ToLower(strings.TrimSpace(raw))); kind {
	case FieldKindText, FieldKindTextarea, FieldKindEmail, FieldKindTel, FieldKindNumber,
		FieldKindDate, FieldKindFile, FieldKindCheckbox, FieldKindRadio, FieldKindSelect:
		return kind
	default:
		return FieldKindText
	}
}

// HasOptions reports whether the kind picks its value from declared options.
func (k FieldKind) HasOptions() bool {
	return k == FieldKindRadio || k == FieldKindSelect
}

// DefaultOptionValue is submitted for a checked checkbox without an explicit
// value attribute.
const DefaultOptionValue = "on"

// Option is a single choice of a radio group or select control.
type Option struct {
	Value string `json:"value" yaml:"value" toml:"value"`
	Label string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
}

// FieldDescriptor declares a field: its name (unique within a form), kind,
// required flag, optional pattern and display label.
type FieldDescriptor struct {
	Name     string    `json:"name" yaml:"name" toml:"name"`
	Kind     FieldKind `json:"kind" yaml:"kind" toml:"kind"`
	Required bool      `json:"required,omitempty" yaml:"required,omitempty" toml:"required,omitempty"`
	// Pattern is either a built-in pattern name (mobile, national-id, email)
	// or a regular expression matched against the whole value.
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty" toml:"pattern,omitempty"`
	Label   string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`

	ID          string   `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Options     []Option `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty"`
	OptionValue string   `json:"optionValue,omitempty" yaml:"option_value,omitempty" toml:"option_value,omitempty"`
	// Min and Max bound date (YYYY-MM-DD) and number inputs.
	Min         string   `json:"min,omitempty" yaml:"min,omitempty" toml:"min,omitempty"`
	Max         string   `json:"max,omitempty" yaml:"max,omitempty" toml:"max,omitempty"`
}

// CheckedValue returns the value a checked checkbox contributes to a draft.
func (d FieldDescriptor) CheckedValue() string {
	if v := strings.TrimSpace(d.OptionValue); v != "" {
		return v
	}
	return DefaultOptionValue
}

// Option returns the declared option matching value.
func (d FieldDescriptor) Option(value string) (Option, bool) {
	for _, opt := range d.Options {
		if opt.Value == value {
			return opt, true
		}
	}
	return Option{}, false
}

// ValidityState is the derived validity of a control. It is never persisted.
type ValidityState uint8

const (
	Untouched ValidityState = iota
	Valid
	Invalid
)

func (s ValidityState) String() string {
	switch s {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "untouched"
	}
}

// Draft maps field names to their persisted text. File fields never appear.
type Draft map[string]string

// Clone returns an independent copy of the draft.
func (d Draft) Clone() Draft {
	if d == nil {
		return nil
	}
	out := make(Draft, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
