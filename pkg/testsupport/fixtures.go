package testsupport

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-erpforms/pkg/model"
)

// AdmissionForm returns a fresh fixture resembling the admission form: a
// required name, a date of birth, a mobile number, a national id, an email,
// a checkbox, a radio group, a select, a photo upload and a submit button.
// The form opts into validation and autosaves under "admission".
func AdmissionForm(t testing.TB) *model.Form {
	t.Helper()

	form, err := model.NewForm("admission-form",
		model.FieldDescriptor{Name: "name", Kind: model.FieldKindText, Required: true, Label: "नाव / Name"},
		model.FieldDescriptor{Name: "dob", Kind: model.FieldKindDate, ID: "fld-dob"},
		model.FieldDescriptor{Name: "mobile_number", Kind: model.FieldKindTel, Pattern: "mobile"},
		model.FieldDescriptor{Name: "aadhaar_no", Kind: model.FieldKindText, Pattern: "national-id"},
		model.FieldDescriptor{Name: "email", Kind: model.FieldKindEmail},
		model.FieldDescriptor{Name: "active", Kind: model.FieldKindCheckbox},
		model.FieldDescriptor{Name: "gender", Kind: model.FieldKindRadio, Options: []model.Option{
			{Value: "male", Label: "मुलगा / Boy"},
			{Value: "female", Label: "मुलगी / Girl"},
		}},
		model.FieldDescriptor{Name: "class", Kind: model.FieldKindSelect, Options: []model.Option{
			{Value: "", Label: "निवडा / Select"},
			{Value: "5", Label: "5th"},
			{Value: "6", Label: "6th"},
		}},
		model.FieldDescriptor{Name: "student_photo", Kind: model.FieldKindFile},
	)
	if err != nil {
		t.Fatalf("testsupport: admission form: %v", err)
	}
	form.Title = "Admission"
	form.AutosaveID = "admission"
	form.NeedsValidation = true
	form.Labels = []model.Label{
		{For: "name", Text: "नाव / Name"},
		{For: "fld-dob", Text: "जन्मतारीख / Date of birth"},
	}
	form.Buttons = []model.Button{
		{Name: "submit", Kind: model.ButtonSubmit, Label: "जमा करा / Submit"},
		{Name: "reset", Kind: model.ButtonReset, Label: "Reset", Confirm: "Clear the form?"},
	}
	return form
}

// PNG returns a file descriptor carrying a valid width x height PNG image.
func PNG(t testing.TB, name string, width, height int) *model.FileDescriptor {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(width, height)); err != nil {
		t.Fatalf("testsupport: encode png: %v", err)
	}
	return &model.FileDescriptor{
		Name:     name,
		Size:     int64(buf.Len()),
		MIMEType: "image/png",
		Content:  buf.Bytes(),
	}
}

// JPEG returns a file descriptor carrying a valid width x height JPEG image.
func JPEG(t testing.TB, name string, width, height int) *model.FileDescriptor {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, solid(width, height), nil); err != nil {
		t.Fatalf("testsupport: encode jpeg: %v", err)
	}
	return &model.FileDescriptor{
		Name:     name,
		Size:     int64(buf.Len()),
		MIMEType: "image/jpeg",
		Content:  buf.Bytes(),
	}
}

// Sized returns a descriptor that declares size bytes without carrying content.
func Sized(name, mimeType string, size int64) *model.FileDescriptor {
	return &model.FileDescriptor{Name: name, Size: size, MIMEType: mimeType}
}

func solid(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 0x1d, G: 0x4e, B: 0x89, A: 0xff})
		}
	}
	return img
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t testing.TB, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t testing.TB, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t testing.TB, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CaptureTemplateOutput executes a render function that writes to an
// io.Writer, returning both the string result and the writer contents.
func CaptureTemplateOutput(t testing.TB, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
