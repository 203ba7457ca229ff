package erpforms

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-erpforms/pkg/autosave"
	"github.com/goliatone/go-erpforms/pkg/model"
	"github.com/goliatone/go-erpforms/pkg/upload"
	"github.com/goliatone/go-erpforms/pkg/validation"
)

// ErrSubmitBlocked is returned by Click on a submit button when validation
// prevented the submission.
var ErrSubmitBlocked = errors.New("erpforms: submission blocked")

// SubmitResult describes one submit attempt.
type SubmitResult struct {
	Event        *model.SubmitEvent
	Validation   validation.Result
	DraftCleared bool
}

// Accepted reports whether the submission went through.
func (r SubmitResult) Accepted() bool {
	return !r.Event.DefaultPrevented()
}

// Binding attaches the controllers a form opts into: validation for
// needs-validation forms, autosave for forms with an autosave id, and file
// previews for every file input.
type Binding struct {
	page      *Page
	form      *model.Form
	validator *validation.Controller
	autosave  *autosave.Controller
	previews  *upload.PreviewController
	restored  []string
}

// Bind attaches form to the page. Date bounds are applied, the form becomes
// exportable under its id and any stored draft is restored.
func (p *Page) Bind(form *model.Form) (*Binding, error) {
	if form == nil {
		return nil, errors.New("erpforms: form is required")
	}
	validation.ApplyDateBounds(form, p.now())
	if err := p.registry.Register(form); err != nil {
		return nil, fmt.Errorf("erpforms: bind: %w", err)
	}

	b := &Binding{page: p, form: form}
	fail := func(err error) (*Binding, error) {
		p.registry.Unregister(form.ID)
		return nil, fmt.Errorf("erpforms: bind %q: %w", form.ID, err)
	}

	if form.NeedsValidation {
		ctrl, err := validation.NewController(form,
			validation.WithNotifier(p.notifier),
			validation.WithCatalog(p.catalog),
			validation.WithLogger(p.logger),
		)
		if err != nil {
			return fail(err)
		}
		b.validator = ctrl
	}

	previewOpts := []upload.PreviewOption{
		upload.WithChecker(p.checker),
		upload.WithNotifier(p.notifier),
		upload.WithCatalog(p.catalog),
		upload.WithSink(p.sink),
		upload.WithLogger(p.logger),
	}
	if p.executor != nil {
		previewOpts = append(previewOpts, upload.WithExecutor(p.executor))
	}
	previews, err := upload.NewPreviewController(form, previewOpts...)
	if err != nil {
		return fail(err)
	}
	b.previews = previews

	if form.AutosaveID != "" {
		ctrl, err := autosave.NewController(form, p.drafts,
			autosave.WithClearOnBlockedSubmit(p.cfg.Autosave.ClearOnBlockedSubmit),
			autosave.WithLogger(p.logger),
		)
		if err != nil {
			return fail(err)
		}
		restored, err := ctrl.Bind()
		if err != nil {
			return fail(err)
		}
		b.autosave = ctrl
		b.restored = restored
	}

	p.mu.Lock()
	p.bindings[form.ID] = b
	p.mu.Unlock()

	p.logger.Debug("form bound",
		"form", form.ID,
		"validation", b.validator != nil,
		"autosave", b.autosave != nil,
		"restored", len(b.restored),
	)
	return b, nil
}

// Form returns the bound form.
func (b *Binding) Form() *model.Form {
	return b.form
}

// Restored lists the fields filled from a stored draft when the form was
// bound.
func (b *Binding) Restored() []string {
	return append([]string(nil), b.restored...)
}

// AutosaveState reports the autosave lifecycle state. Forms without an
// autosave id stay Unbound.
func (b *Binding) AutosaveState() autosave.State {
	if b.autosave == nil {
		return autosave.Unbound
	}
	return b.autosave.State()
}

// Input applies a typed value and fires the input event.
func (b *Binding) Input(name, text string) error {
	if err := b.form.SetText(name, text); err != nil {
		return err
	}
	return b.changed(name)
}

// Check toggles a checkbox and fires the input event.
func (b *Binding) Check(name string, checked bool) error {
	if err := b.form.SetChecked(name, checked); err != nil {
		return err
	}
	return b.changed(name)
}

func (b *Binding) changed(name string) error {
	if b.validator != nil {
		if _, err := b.validator.OnInput(name); err != nil {
			return err
		}
	}
	if b.autosave != nil {
		if _, err := b.autosave.OnInput(name); err != nil {
			return err
		}
	}
	return nil
}

// Blur fires the blur event on name and returns its mark. Forms without
// validation keep their current mark.
func (b *Binding) Blur(name string) (model.ValidityState, error) {
	if b.validator != nil {
		return b.validator.OnBlur(name)
	}
	ctrl, ok := b.form.Control(name)
	if !ok {
		return model.Untouched, fmt.Errorf("erpforms: blur: %w %q", model.ErrUnknownField, name)
	}
	return ctrl.Mark, nil
}

// SelectFile handles a file chosen on a file input. Rejections return the
// *upload.FileError after notifying the user.
func (b *Binding) SelectFile(name string, file *model.FileDescriptor) error {
	return b.previews.OnFileSelected(name, file)
}

// RemovePreview clears the file input and its preview.
func (b *Binding) RemovePreview(name string) error {
	return b.previews.Remove(name)
}

// WaitPreviews blocks until pending preview decodes have finished.
func (b *Binding) WaitPreviews() {
	b.previews.Wait()
}

// Submit runs the submit listeners in binding order: validation first, so
// autosave sees whether the submission was prevented.
func (b *Binding) Submit() (SubmitResult, error) {
	result := SubmitResult{Event: model.NewSubmitEvent(), Validation: validation.Result{Valid: true}}
	if b.validator != nil {
		result.Validation = b.validator.OnSubmit(result.Event)
	}
	if b.autosave != nil {
		cleared, err := b.autosave.OnSubmit(result.Event)
		if err != nil {
			return result, err
		}
		result.DraftCleared = cleared
	}
	b.page.logger.Info("form submitted",
		"form", b.form.ID,
		"accepted", result.Accepted(),
		"draft_cleared", result.DraftCleared,
	)
	return result, nil
}

// Click activates the button called name. Buttons carrying a confirm message
// run only when the page's Confirmer accepts, otherwise confirm.ErrCancelled
// is returned. A nil action runs the button's default: submit buttons
// submit, reset buttons reset.
func (b *Binding) Click(name string, action func() error) error {
	btn, ok := b.form.Button(name)
	if !ok {
		return fmt.Errorf("erpforms: unknown button %q", name)
	}
	if action == nil {
		action = b.defaultAction(*btn)
	}
	return b.page.guard.Run(*btn, action)
}

func (b *Binding) defaultAction(btn model.Button) func() error {
	switch btn.Kind {
	case model.ButtonSubmit:
		return func() error {
			result, err := b.Submit()
			if err != nil {
				return err
			}
			if !result.Accepted() {
				return ErrSubmitBlocked
			}
			return nil
		}
	case model.ButtonReset:
		return func() error {
			b.Reset()
			return nil
		}
	default:
		return nil
	}
}

// Reset empties every control, clears marks and previews, and drops the
// was-validated flag. The stored draft is left alone.
func (b *Binding) Reset() {
	for i := range b.form.Controls {
		ctrl := &b.form.Controls[i]
		if ctrl.Kind() == model.FieldKindFile {
			_ = b.previews.Remove(ctrl.Name())
		}
		ctrl.Clear()
		ctrl.Mark = model.Untouched
	}
	b.form.Validated = false
}

// Close cancels pending previews and removes the form from the page.
func (b *Binding) Close() {
	b.previews.Close()
	b.page.unbind(b.form.ID)
}
