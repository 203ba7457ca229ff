package validation_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-erpforms/pkg/messages"
	"github.com/goliatone/go-erpforms/pkg/model"
	"github.com/goliatone/go-erpforms/pkg/notify"
	"github.com/goliatone/go-erpforms/pkg/testsupport"
	"github.com/goliatone/go-erpforms/pkg/validation"
)

func TestControllerSubmitBlocksInvalidForm(t *testing.T) {
	form := model.MustNewForm("f", model.FieldDescriptor{Name: "name", Required: true})
	recorder := &testsupport.RecordingNotifier{}
	ctrl, err := validation.NewController(form, validation.WithNotifier(recorder))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	ev := model.NewSubmitEvent()
	result := ctrl.OnSubmit(ev)

	if !ev.DefaultPrevented() || !ev.PropagationStopped() {
		t.Fatalf("expected event prevented and stopped")
	}
	if !form.Validated {
		t.Fatalf("expected form marked validated")
	}
	if result.Valid || result.FirstInvalid != "name" {
		t.Fatalf("unexpected result %+v", result)
	}

	want := []testsupport.Notification{{
		Message:  messages.Get(messages.RequiredFields),
		Severity: notify.Danger,
	}}
	if diff := cmp.Diff(want, recorder.Calls()); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestControllerSubmitAllowsValidForm(t *testing.T) {
	form := model.MustNewForm("f",
		model.FieldDescriptor{Name: "name", Required: true},
		model.FieldDescriptor{Name: "mobile", Pattern: "mobile"},
	)
	_ = form.SetText("name", "Asha")
	recorder := &testsupport.RecordingNotifier{}
	ctrl, _ := validation.NewController(form, validation.WithNotifier(recorder))

	ev := model.NewSubmitEvent()
	result := ctrl.OnSubmit(ev)

	if ev.DefaultPrevented() {
		t.Fatalf("valid form should submit")
	}
	if !result.Valid || len(result.Invalid) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if !form.Validated {
		t.Fatalf("expected form marked validated")
	}
	if recorder.Len() != 0 {
		t.Fatalf("expected no notifications, got %d", recorder.Len())
	}
}

func TestControllerSubmitListsAllInvalidFields(t *testing.T) {
	form := testsupport.AdmissionForm(t)
	_ = form.SetText("mobile_number", "5876543210")
	ctrl, _ := validation.NewController(form)

	result := ctrl.OnSubmit(model.NewSubmitEvent())

	if diff := cmp.Diff([]string{"name", "mobile_number"}, result.Invalid); diff != "" {
		t.Fatalf("invalid fields mismatch (-want +got):\n%s", diff)
	}
}

func TestControllerInputRevalidatesOnlyAfterFailure(t *testing.T) {
	form := model.MustNewForm("f", model.FieldDescriptor{Name: "mobile", Pattern: "mobile"})
	ctrl, _ := validation.NewController(form)

	_ = form.SetText("mobile", "58")
	state, err := ctrl.OnInput("mobile")
	if err != nil {
		t.Fatalf("input: %v", err)
	}
	if state != model.Untouched {
		t.Fatalf("untouched field should not validate on input, got %s", state)
	}

	if state, _ = ctrl.OnBlur("mobile"); state != model.Invalid {
		t.Fatalf("blur: expected invalid, got %s", state)
	}

	_ = form.SetText("mobile", "9876543210")
	if state, _ = ctrl.OnInput("mobile"); state != model.Valid {
		t.Fatalf("input after failure: expected valid, got %s", state)
	}
}

func TestControllerInputAfterSubmitAttempt(t *testing.T) {
	form := model.MustNewForm("f",
		model.FieldDescriptor{Name: "name", Required: true},
		model.FieldDescriptor{Name: "email", Kind: model.FieldKindEmail},
	)
	_ = form.SetText("name", "Asha")
	ctrl, _ := validation.NewController(form)
	ctrl.OnSubmit(model.NewSubmitEvent())

	_ = form.SetText("email", "nope")
	state, _ := ctrl.OnInput("email")
	if state != model.Invalid {
		t.Fatalf("expected live validation after submit, got %s", state)
	}
}

func TestControllerUnknownField(t *testing.T) {
	form := model.MustNewForm("f", model.FieldDescriptor{Name: "name"})
	ctrl, _ := validation.NewController(form)

	if _, err := ctrl.OnBlur("ghost"); !errors.Is(err, model.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if _, err := ctrl.OnInput("ghost"); !errors.Is(err, model.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestNewControllerRequiresForm(t *testing.T) {
	if _, err := validation.NewController(nil); err == nil {
		t.Fatalf("expected error for nil form")
	}
}
