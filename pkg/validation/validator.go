package validation

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-erpforms/pkg/model"
)

// DateLayout is the wire format of date inputs.
const DateLayout = "2006-01-02"

// Validate checks one field value against the descriptor's native
// constraints (required, kind, options, date and number bounds) and its declared
// pattern. It is pure: the same inputs always produce the same state.
func Validate(desc model.FieldDescriptor, raw string) model.ValidityState {
	if raw == "" {
		if desc.Required {
			return model.Invalid
		}
		return model.Valid
	}

	switch desc.Kind {
	case model.FieldKindCheckbox, model.FieldKindFile:
		return model.Valid
	case model.FieldKindRadio, model.FieldKindSelect:
		if len(desc.Options) > 0 {
			if _, ok := desc.Option(raw); !ok {
				return model.Invalid
			}
		}
		return model.Valid
	case model.FieldKindEmail:
		if !ValidateEmail(raw) {
			return model.Invalid
		}
	case model.FieldKindDate:
		if !validDate(raw, desc.Min, desc.Max) {
			return model.Invalid
		}
	case model.FieldKindNumber:
		if !validNumber(raw, desc.Min, desc.Max) {
			return model.Invalid
		}
	}

	if re, ok := resolvePattern(desc.Pattern); ok && !re.MatchString(raw) {
		return model.Invalid
	}
	return model.Valid
}

// ValidateControl validates the control's current value and records the
// result as its visual mark.
func ValidateControl(ctrl *model.Control) model.ValidityState {
	if ctrl == nil {
		return model.Untouched
	}
	state := Validate(ctrl.Descriptor, ctrl.RawValue())
	ctrl.Mark = state
	return state
}

func validDate(raw, minRaw, maxRaw string) bool {
	value, err := time.Parse(DateLayout, raw)
	if err != nil {
		return false
	}
	if bound, ok := parseBound(minRaw); ok && value.Before(bound) {
		return false
	}
	if bound, ok := parseBound(maxRaw); ok && value.After(bound) {
		return false
	}
	return true
}

func validNumber(raw, minRaw, maxRaw string) bool {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return false
	}
	if bound, err := strconv.ParseFloat(strings.TrimSpace(minRaw), 64); err == nil && value < bound {
		return false
	}
	if bound, err := strconv.ParseFloat(strings.TrimSpace(maxRaw), 64); err == nil && value > bound {
		return false
	}
	return true
}

func parseBound(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	bound, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return bound, true
}
