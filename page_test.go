package erpforms_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	erpforms "github.com/goliatone/go-erpforms"
	"github.com/goliatone/go-erpforms/pkg/autosave"
	"github.com/goliatone/go-erpforms/pkg/confirm"
	"github.com/goliatone/go-erpforms/pkg/export"
	"github.com/goliatone/go-erpforms/pkg/messages"
	"github.com/goliatone/go-erpforms/pkg/model"
	"github.com/goliatone/go-erpforms/pkg/notify"
	"github.com/goliatone/go-erpforms/pkg/storage"
	"github.com/goliatone/go-erpforms/pkg/testsupport"
	"github.com/goliatone/go-erpforms/pkg/upload"
)

type harness struct {
	page     *erpforms.Page
	backend  *storage.Memory
	notifier *testsupport.RecordingNotifier
	sink     *testsupport.RecordingPreviewSink
}

func newHarness(t *testing.T, options ...erpforms.Option) *harness {
	t.Helper()
	h := &harness{
		backend:  storage.NewMemory(0),
		notifier: &testsupport.RecordingNotifier{},
		sink:     &testsupport.RecordingPreviewSink{},
	}
	today := time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)
	base := []erpforms.Option{
		erpforms.WithBackend(h.backend),
		erpforms.WithNotifier(h.notifier),
		erpforms.WithPreviewSink(h.sink),
		erpforms.WithPreviewExecutor(upload.Inline),
		erpforms.WithClock(func() time.Time { return today }),
	}
	page, err := erpforms.New(append(base, options...)...)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, page.Close()) })
	h.page = page
	return h
}

func TestBindRestoresDraftAndAppliesDateBounds(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.backend.SetItem("autosave_admission", `{"name":"Asha","student_photo":"x.png"}`))

	b, err := h.page.Bind(testsupport.AdmissionForm(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"name"}, b.Restored())
	assert.Equal(t, autosave.Idle, b.AutosaveState())
	name, _ := b.Form().Control("name")
	assert.Equal(t, "Asha", name.Value.Text)
	photo, _ := b.Form().Control("student_photo")
	assert.Nil(t, photo.Value.File)
	dob, _ := b.Form().Control("dob")
	assert.Equal(t, "2024-06-15", dob.Descriptor.Max)
	assert.Equal(t, []string{"admission-form"}, h.page.Forms())
}

func TestInputSavesDraftWithoutFiles(t *testing.T) {
	h := newHarness(t)
	b, err := h.page.Bind(testsupport.AdmissionForm(t))
	require.NoError(t, err)

	require.NoError(t, b.SelectFile("student_photo", testsupport.PNG(t, "asha.png", 4, 4)))
	require.NoError(t, b.Input("name", "Asha"))
	require.NoError(t, b.Check("active", true))

	stored, ok := h.page.Drafts().Load("admission")
	require.True(t, ok)
	assert.Equal(t, "Asha", stored["name"])
	assert.Equal(t, "on", stored["active"])
	assert.NotContains(t, stored, "student_photo")
	assert.Equal(t, autosave.Dirty, b.AutosaveState())

	assert.Error(t, b.Input("missing", "x"))
}

func TestSubmitBlockedKeepsDraft(t *testing.T) {
	h := newHarness(t)
	b, err := h.page.Bind(testsupport.AdmissionForm(t))
	require.NoError(t, err)
	require.NoError(t, b.Input("mobile_number", "12345"))

	result, err := b.Submit()
	require.NoError(t, err)

	assert.False(t, result.Accepted())
	assert.True(t, result.Event.PropagationStopped())
	assert.Equal(t, []string{"name", "mobile_number"}, result.Validation.Invalid)
	assert.False(t, result.DraftCleared)
	assert.True(t, b.Form().Validated)
	_, ok := h.page.Drafts().Load("admission")
	assert.True(t, ok, "a blocked submit keeps the draft")

	calls := h.notifier.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, messages.Get(messages.RequiredFields), calls[0].Message)
	assert.Equal(t, notify.Danger, calls[0].Severity)
}

func TestSubmitAcceptedClearsDraft(t *testing.T) {
	h := newHarness(t)
	b, err := h.page.Bind(testsupport.AdmissionForm(t))
	require.NoError(t, err)
	require.NoError(t, b.Input("name", "Asha"))

	result, err := b.Submit()
	require.NoError(t, err)

	assert.True(t, result.Accepted())
	assert.True(t, result.DraftCleared)
	_, ok := h.page.Drafts().Load("admission")
	assert.False(t, ok)
	assert.Equal(t, 0, h.notifier.Len())
	assert.Equal(t, autosave.Idle, b.AutosaveState())
}

func TestClearOnBlockedSubmitConfig(t *testing.T) {
	cfg := erpforms.DefaultConfig()
	cfg.Autosave.ClearOnBlockedSubmit = true
	h := newHarness(t, erpforms.WithConfig(cfg))
	b, err := h.page.Bind(testsupport.AdmissionForm(t))
	require.NoError(t, err)
	require.NoError(t, b.Input("mobile_number", "12345"))

	result, err := b.Submit()
	require.NoError(t, err)
	assert.False(t, result.Accepted())
	assert.True(t, result.DraftCleared)
}

func TestFormWithoutValidationSubmitsUnchecked(t *testing.T) {
	h := newHarness(t)
	form := testsupport.AdmissionForm(t)
	form.NeedsValidation = false
	form.AutosaveID = ""
	b, err := h.page.Bind(form)
	require.NoError(t, err)

	result, err := b.Submit()
	require.NoError(t, err)
	assert.True(t, result.Accepted())
	assert.Equal(t, autosave.Unbound, b.AutosaveState())

	mark, err := b.Blur("name")
	require.NoError(t, err)
	assert.Equal(t, model.Untouched, mark)
}

func TestBlurMarksField(t *testing.T) {
	h := newHarness(t)
	b, err := h.page.Bind(testsupport.AdmissionForm(t))
	require.NoError(t, err)

	mark, err := b.Blur("name")
	require.NoError(t, err)
	assert.Equal(t, model.Invalid, mark)

	require.NoError(t, b.Input("name", "Asha"))
	name, _ := b.Form().Control("name")
	assert.Equal(t, model.Valid, name.Mark, "invalid fields revalidate on input")
}

func TestSelectFileRejectsOversized(t *testing.T) {
	h := newHarness(t)
	b, err := h.page.Bind(testsupport.AdmissionForm(t))
	require.NoError(t, err)

	err = b.SelectFile("student_photo", testsupport.Sized("scan.png", "image/png", 17*1024*1024))
	require.ErrorIs(t, err, upload.ErrTooLarge)

	calls := h.notifier.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, messages.Get(messages.FileTooLarge), calls[0].Message)
}

func TestSelectFileShowsPreview(t *testing.T) {
	h := newHarness(t)
	b, err := h.page.Bind(testsupport.AdmissionForm(t))
	require.NoError(t, err)

	require.NoError(t, b.SelectFile("student_photo", testsupport.JPEG(t, "wide.jpg", 400, 100)))
	b.WaitPreviews()

	preview, ok := h.sink.Current("student_photo")
	require.True(t, ok)
	assert.Equal(t, 200, preview.Width)
	assert.Equal(t, 50, preview.Height)

	require.NoError(t, b.RemovePreview("student_photo"))
	_, ok = h.sink.Current("student_photo")
	assert.False(t, ok)
}

func TestUploadPolicyFromConfig(t *testing.T) {
	cfg := erpforms.DefaultConfig()
	cfg.Upload = upload.Policy{MaxBytes: 1024, AllowedTypes: []string{"application/pdf"}}
	h := newHarness(t, erpforms.WithConfig(cfg))
	b, err := h.page.Bind(testsupport.AdmissionForm(t))
	require.NoError(t, err)

	require.ErrorIs(t, b.SelectFile("student_photo", testsupport.Sized("a.pdf", "application/pdf", 2048)), upload.ErrTooLarge)
	require.ErrorIs(t, b.SelectFile("student_photo", testsupport.Sized("a.png", "image/png", 10)), upload.ErrUnsupportedType)
}

func TestClickGuardsConfirmedButtons(t *testing.T) {
	asked := 0
	answer := false
	confirmer := confirm.ConfirmerFunc(func(message string) (bool, error) {
		asked++
		assert.Equal(t, "Clear the form?", message)
		return answer, nil
	})
	h := newHarness(t, erpforms.WithConfirmer(confirmer))
	b, err := h.page.Bind(testsupport.AdmissionForm(t))
	require.NoError(t, err)
	require.NoError(t, b.Input("name", "Asha"))

	err = b.Click("reset", nil)
	require.ErrorIs(t, err, confirm.ErrCancelled)
	name, _ := b.Form().Control("name")
	assert.Equal(t, "Asha", name.Value.Text)

	answer = true
	require.NoError(t, b.Click("reset", nil))
	assert.Equal(t, "", name.Value.Text)
	assert.Equal(t, 2, asked)

	_, ok := h.page.Drafts().Load("admission")
	assert.True(t, ok, "reset leaves the stored draft alone")

	require.ErrorIs(t, b.Click("submit", nil), erpforms.ErrSubmitBlocked)
	assert.Equal(t, 2, asked, "submit carries no confirmation")

	ran := false
	require.NoError(t, b.Click("submit", func() error { ran = true; return nil }))
	assert.True(t, ran)

	require.Error(t, b.Click("missing", nil))
}

func TestClickWithoutConfirmerDeclines(t *testing.T) {
	h := newHarness(t)
	b, err := h.page.Bind(testsupport.AdmissionForm(t))
	require.NoError(t, err)
	require.ErrorIs(t, b.Click("reset", nil), confirm.ErrCancelled)
}

func TestExportAndPrint(t *testing.T) {
	h := newHarness(t)
	b, err := h.page.Bind(testsupport.AdmissionForm(t))
	require.NoError(t, err)
	require.NoError(t, b.Input("name", "Asha <Patil>"))
	require.NoError(t, b.SelectFile("student_photo", testsupport.PNG(t, "asha.png", 4, 4)))

	doc, err := h.page.Export("admission-form")
	require.NoError(t, err)
	assert.Contains(t, doc.HTML, "Asha &lt;Patil&gt;")
	assert.NotContains(t, doc.HTML, "asha.png")
	assert.Equal(t, export.Entry{Label: "नाव / Name", Value: "Asha <Patil>"}, doc.Entries[0])

	surface := &export.MemorySurface{}
	require.NoError(t, h.page.Print("admission-form", surface))
	assert.Equal(t, 1, surface.Printed())
	assert.True(t, surface.Closed())

	_, err = h.page.Export("missing-form")
	require.ErrorIs(t, err, export.ErrFormNotFound)
	calls := h.notifier.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, messages.Get(messages.FormNotFound), calls[0].Message)
}

func TestExportUsesConfiguredTitleAndTheme(t *testing.T) {
	cfg := erpforms.DefaultConfig()
	cfg.Export = erpforms.ExportConfig{Title: "Bonafide copy", Theme: "school", CSSVars: map[string]string{"accent": "#1d4e89"}}
	h := newHarness(t, erpforms.WithConfig(cfg))
	_, err := h.page.Bind(testsupport.AdmissionForm(t))
	require.NoError(t, err)

	doc, err := h.page.Export("admission-form")
	require.NoError(t, err)
	assert.Contains(t, doc.HTML, "<title>Bonafide copy</title>")
	assert.Contains(t, doc.HTML, "--accent: #1d4e89;")
	assert.Contains(t, doc.HTML, `data-theme="school"`)
}

func TestConnectivityNotices(t *testing.T) {
	h := newHarness(t)
	h.page.Offline()
	h.page.Online()

	calls := h.notifier.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, notify.Warning, calls[0].Severity)
	assert.Equal(t, notify.Success, calls[1].Severity)
}

func TestBindRejectsDuplicateForms(t *testing.T) {
	h := newHarness(t)
	_, err := h.page.Bind(testsupport.AdmissionForm(t))
	require.NoError(t, err)
	_, err = h.page.Bind(testsupport.AdmissionForm(t))
	require.Error(t, err)
	_, err = h.page.Bind(nil)
	require.Error(t, err)
}

func TestCloseUnbindsForms(t *testing.T) {
	h := newHarness(t)
	b, err := h.page.Bind(testsupport.AdmissionForm(t))
	require.NoError(t, err)

	b.Close()
	_, ok := h.page.Binding("admission-form")
	assert.False(t, ok)
	_, err = h.page.Export("admission-form")
	assert.True(t, errors.Is(err, export.ErrFormNotFound))
}

func TestNewOpensConfiguredBackend(t *testing.T) {
	cfg := erpforms.DefaultConfig()
	cfg.Storage = erpforms.StorageConfig{Driver: erpforms.DriverFile, Path: t.TempDir() + "/drafts.json"}
	page, err := erpforms.New(erpforms.WithConfig(cfg))
	require.NoError(t, err)
	defer page.Close()

	b, err := page.Bind(testsupport.AdmissionForm(t))
	require.NoError(t, err)
	require.NoError(t, b.Input("name", "Asha"))

	reopened, err := erpforms.New(erpforms.WithConfig(cfg))
	require.NoError(t, err)
	defer reopened.Close()
	rb, err := reopened.Bind(testsupport.AdmissionForm(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, rb.Restored()[:1])
	assert.True(t, strings.HasPrefix(page.Drafts().Key("admission"), "autosave_"))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := erpforms.DefaultConfig()
	cfg.Storage.Driver = "redis"
	_, err := erpforms.New(erpforms.WithConfig(cfg))
	require.Error(t, err)
}
