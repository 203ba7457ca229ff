package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-erpforms/pkg/model"
	"github.com/goliatone/go-erpforms/pkg/testsupport"
	"github.com/goliatone/go-erpforms/pkg/upload"
)

type stubDriver struct {
	inputs   map[string]string
	confirms map[string]bool
	selects  map[string]int
	areas    map[string]string
	info     []string
	asked    []string
	defaults map[string]any
	checks   map[string]func(string) error
}

func newStubDriver() *stubDriver {
	return &stubDriver{
		inputs:   map[string]string{},
		confirms: map[string]bool{},
		selects:  map[string]int{},
		areas:    map[string]string{},
		defaults: map[string]any{},
		checks:   map[string]func(string) error{},
	}
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.asked = append(s.asked, cfg.Message)
	s.defaults[cfg.Message] = cfg.Default
	s.checks[cfg.Message] = cfg.Validator
	return s.inputs[cfg.Message], nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.asked = append(s.asked, cfg.Message)
	s.defaults[cfg.Message] = cfg.Default
	return s.confirms[cfg.Message], nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.asked = append(s.asked, cfg.Message)
	s.defaults[cfg.Message] = cfg.Options
	return s.selects[cfg.Message], nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.asked = append(s.asked, cfg.Message)
	return s.areas[cfg.Message], nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.info = append(s.info, msg)
	return nil
}

type edit struct {
	Op    string
	Name  string
	Value string
}

type recordingTarget struct {
	form    *model.Form
	checker *upload.Checker
	edits   []edit
}

func (r *recordingTarget) Form() *model.Form { return r.form }

func (r *recordingTarget) Input(name, text string) error {
	r.edits = append(r.edits, edit{"input", name, text})
	return r.form.SetText(name, text)
}

func (r *recordingTarget) Check(name string, checked bool) error {
	value := "false"
	if checked {
		value = "true"
	}
	r.edits = append(r.edits, edit{"check", name, value})
	return r.form.SetChecked(name, checked)
}

func (r *recordingTarget) SelectFile(name string, file *model.FileDescriptor) error {
	if err := r.checker.Check(file); err != nil {
		return err
	}
	r.edits = append(r.edits, edit{"file", name, file.Name})
	return r.form.SetFile(name, file)
}

func TestFillWalksFormInOrder(t *testing.T) {
	form := testsupport.AdmissionForm(t)
	target := &recordingTarget{form: form, checker: upload.NewChecker(upload.DefaultPolicy())}
	driver := newStubDriver()
	driver.inputs["नाव / Name *"] = " Asha "
	driver.inputs["जन्मतारीख / Date of birth"] = "2015-06-01"
	driver.inputs["mobile_number"] = "9876543210"
	driver.inputs["student_photo"] = "/photos/asha.png"
	driver.confirms["active"] = true
	driver.selects["gender"] = 2
	driver.selects["class"] = 2

	photo := testsupport.PNG(t, "asha.png", 8, 8)
	err := Fill(context.Background(), driver, target,
		WithFileOpener(func(path string) (*model.FileDescriptor, error) {
			if path != "/photos/asha.png" {
				t.Fatalf("unexpected path %q", path)
			}
			return photo, nil
		}),
	)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	want := []edit{
		{"input", "name", "Asha"},
		{"input", "dob", "2015-06-01"},
		{"input", "mobile_number", "9876543210"},
		{"input", "aadhaar_no", ""},
		{"input", "email", ""},
		{"check", "active", "true"},
		{"input", "gender", "female"},
		{"input", "class", "6"},
		{"file", "student_photo", "asha.png"},
	}
	if diff := cmp.Diff(want, target.edits); diff != "" {
		t.Fatalf("edits mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"-", "मुलगा / Boy", "मुलगी / Girl"}, driver.defaults["gender"]); diff != "" {
		t.Fatalf("gender options mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"निवडा / Select", "5th", "6th"}, driver.defaults["class"]); diff != "" {
		t.Fatalf("class options mismatch (-want +got):\n%s", diff)
	}
}

func TestFillStartsFromCurrentValues(t *testing.T) {
	form := testsupport.AdmissionForm(t)
	form.Restore(model.Draft{"name": "Asha", "active": "on"})
	target := &recordingTarget{form: form, checker: upload.NewChecker(upload.DefaultPolicy())}
	driver := newStubDriver()

	if err := Fill(context.Background(), driver, target, WithSkip("student_photo")); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if driver.defaults["नाव / Name *"] != "Asha" || driver.defaults["active"] != true {
		t.Fatalf("unexpected defaults %+v", driver.defaults)
	}
	for _, asked := range driver.asked {
		if asked == "student_photo" {
			t.Fatalf("skipped field was prompted")
		}
	}
}

func TestFillReportsRejectedFile(t *testing.T) {
	form := testsupport.AdmissionForm(t)
	target := &recordingTarget{form: form, checker: upload.NewChecker(upload.DefaultPolicy())}
	driver := newStubDriver()
	driver.inputs["student_photo"] = "huge.png"

	err := Fill(context.Background(), driver, target,
		WithFileOpener(func(string) (*model.FileDescriptor, error) {
			return testsupport.Sized("huge.png", "image/png", 17*1024*1024), nil
		}),
	)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if len(driver.info) != 1 {
		t.Fatalf("expected one info line, got %v", driver.info)
	}
	ctrl, _ := form.Control("student_photo")
	if ctrl.Value.File != nil {
		t.Fatalf("rejected file should not be selected")
	}
}

func TestInputValidatorAllowsBlankButRejectsMalformed(t *testing.T) {
	form := testsupport.AdmissionForm(t)
	target := &recordingTarget{form: form, checker: upload.NewChecker(upload.DefaultPolicy())}
	driver := newStubDriver()
	if err := Fill(context.Background(), driver, target); err != nil {
		t.Fatalf("fill: %v", err)
	}

	mobile := driver.checks["mobile_number"]
	if mobile == nil {
		t.Fatalf("expected a validator for mobile_number")
	}
	if err := mobile(""); err != nil {
		t.Fatalf("blank should be accepted: %v", err)
	}
	if err := mobile("12345"); err == nil {
		t.Fatalf("expected malformed mobile to be rejected")
	}
	if err := mobile("9876543210"); err != nil {
		t.Fatalf("valid mobile rejected: %v", err)
	}
}

func TestConfirmer(t *testing.T) {
	driver := newStubDriver()
	driver.confirms["Clear the form?"] = true
	ok, err := Confirmer(context.Background(), driver).Confirm("Clear the form?")
	if err != nil || !ok {
		t.Fatalf("expected confirmation, got %v %v", ok, err)
	}
	ok, _ = Confirmer(context.Background(), nil).Confirm("Clear the form?")
	if ok {
		t.Fatalf("nil driver should decline")
	}
}

func TestFillRequiresTarget(t *testing.T) {
	if err := Fill(context.Background(), newStubDriver(), nil); err == nil {
		t.Fatalf("expected error")
	}
	if err := translateSurveyErr(terminal.InterruptErr); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}
