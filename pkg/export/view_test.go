package export

import (
	"testing"

	"github.com/goliatone/go-erpforms/pkg/model"
)

func TestExportViewSkipsFilesAndFormButtons(t *testing.T) {
	live := model.MustNewForm("f",
		model.FieldDescriptor{Name: "name", Kind: model.FieldKindText},
		model.FieldDescriptor{Name: "photo", Kind: model.FieldKindFile},
	)
	live.Buttons = []model.Button{
		{Name: "submit", Kind: model.ButtonSubmit},
		{Name: "reset", Kind: model.ButtonReset},
		{Name: "print", Kind: model.ButtonPlain},
	}
	if err := live.SetText("name", "Asha"); err != nil {
		t.Fatalf("set name: %v", err)
	}
	upload := &model.FileDescriptor{Name: "photo.png", MIMEType: "image/png", Content: make([]byte, 1<<20)}
	if err := live.SetFile("photo", upload); err != nil {
		t.Fatalf("set photo: %v", err)
	}

	view := exportView(live)

	if len(view.Controls) != 1 || view.Controls[0].Name() != "name" {
		t.Fatalf("expected only the text control, got %+v", view.Controls)
	}
	if len(view.Buttons) != 1 || view.Buttons[0].Name != "print" {
		t.Fatalf("expected only the plain button, got %+v", view.Buttons)
	}

	view.Controls[0].Value = model.TextValue("changed")
	view.Buttons[0].Label = "changed"
	if ctrl, _ := live.Control("name"); ctrl.Value.Text != "Asha" {
		t.Fatalf("live control changed through the view: %q", ctrl.Value.Text)
	}
	if len(live.Controls) != 2 || len(live.Buttons) != 3 || live.Buttons[2].Label != "" {
		t.Fatalf("live form changed: %+v %+v", live.Controls, live.Buttons)
	}
	if photo, _ := live.Control("photo"); photo.Value.File != upload {
		t.Fatalf("live file reference replaced")
	}
}
