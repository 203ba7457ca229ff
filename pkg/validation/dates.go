package validation

import (
	"strings"
	"time"

	"github.com/goliatone/go-erpforms/pkg/model"
)

var (
	pastOnlyHints   = []string{"birth", "dob"}
	futureOnlyHints = []string{"admission", "received"}
)

// ApplyDateBounds constrains date controls by name: birth dates cannot lie in
// the future (max = today) and admission/received dates cannot lie in the
// past (min = today). Explicit bounds already declared are left alone.
func ApplyDateBounds(form *model.Form, today time.Time) {
	if form == nil {
		return
	}
	stamp := today.Format(DateLayout)
	for i := range form.Controls {
		desc := &form.Controls[i].Descriptor
		if desc.Kind != model.FieldKindDate {
			continue
		}
		name := strings.ToLower(desc.Name)
		if desc.Max == "" && containsAny(name, pastOnlyHints) {
			desc.Max = stamp
		}
		if desc.Min == "" && containsAny(name, futureOnlyHints) {
			desc.Min = stamp
		}
	}
}

func containsAny(value string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(value, needle) {
			return true
		}
	}
	return false
}
