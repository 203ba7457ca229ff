package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-erpforms/pkg/confirm"
	"github.com/goliatone/go-erpforms/pkg/model"
	"github.com/goliatone/go-erpforms/pkg/upload"
	"github.com/goliatone/go-erpforms/pkg/validation"
)

// blankOption is shown for the empty choice of optional selects.
const blankOption = "-"

// Target receives the values collected by Fill. Each call is one user edit.
type Target interface {
	Form() *model.Form
	Input(name, text string) error
	Check(name string, checked bool) error
	SelectFile(name string, file *model.FileDescriptor) error
}

// FillOption configures Fill.
type FillOption func(*filler)

type filler struct {
	driver Driver
	target Target
	open   func(path string) (*model.FileDescriptor, error)
	skip   map[string]struct{}
}

// WithFileOpener overrides how file paths typed at the prompt are read.
func WithFileOpener(open func(path string) (*model.FileDescriptor, error)) FillOption {
	return func(f *filler) {
		if open != nil {
			f.open = open
		}
	}
}

// WithSkip leaves the named fields untouched.
func WithSkip(names ...string) FillOption {
	return func(f *filler) {
		for _, name := range names {
			f.skip[name] = struct{}{}
		}
	}
}

// Fill prompts for every field of the target form in declaration order,
// starting from the current values. Rejected files are reported and the
// field is left empty.
func Fill(ctx context.Context, driver Driver, target Target, options ...FillOption) error {
	if driver == nil || target == nil || target.Form() == nil {
		return errors.New("prompt: driver and target form are required")
	}
	f := &filler{
		driver: driver,
		target: target,
		open:   upload.OpenFile,
		skip:   map[string]struct{}{},
	}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}

	form := target.Form()
	for i := range form.Controls {
		ctrl := form.Controls[i]
		if _, ok := f.skip[ctrl.Name()]; ok {
			continue
		}
		if err := f.field(ctx, form, ctrl); err != nil {
			return err
		}
	}
	return nil
}

func (f *filler) field(ctx context.Context, form *model.Form, ctrl model.Control) error {
	desc := ctrl.Descriptor
	message := labelFor(form, desc)
	if desc.Required {
		message += " *"
	}

	switch desc.Kind {
	case model.FieldKindCheckbox:
		checked, err := f.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: ctrl.Value.Checked})
		if err != nil {
			return err
		}
		return f.target.Check(desc.Name, checked)

	case model.FieldKindRadio, model.FieldKindSelect:
		values, labels := choices(desc)
		if len(values) == 0 {
			return nil
		}
		idx, err := f.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      labels,
			DefaultIndex: indexOf(values, ctrl.Value.Text),
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(values) {
			return fmt.Errorf("prompt: %s: invalid choice", desc.Name)
		}
		return f.target.Input(desc.Name, values[idx])

	case model.FieldKindTextarea:
		text, err := f.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: ctrl.Value.Text})
		if err != nil {
			return err
		}
		return f.target.Input(desc.Name, strings.TrimSpace(text))

	case model.FieldKindFile:
		path, err := f.driver.Input(ctx, InputConfig{Message: message, Help: "path to the file, blank to skip"})
		if err != nil {
			return err
		}
		if path = strings.TrimSpace(path); path == "" {
			return nil
		}
		file, err := f.open(path)
		if err != nil {
			return f.driver.Info(ctx, err.Error())
		}
		err = f.target.SelectFile(desc.Name, file)
		var fileErr *upload.FileError
		if errors.As(err, &fileErr) {
			return f.driver.Info(ctx, fileErr.Error())
		}
		return err

	default:
		text, err := f.driver.Input(ctx, InputConfig{
			Message:   message,
			Default:   ctrl.Value.Text,
			Help:      helpFor(desc),
			Validator: validatorFor(desc),
		})
		if err != nil {
			return err
		}
		return f.target.Input(desc.Name, strings.TrimSpace(text))
	}
}

// validatorFor rejects non-empty values that fail the field's constraints.
// Missing required values are left to the submit check.
func validatorFor(desc model.FieldDescriptor) func(string) error {
	return func(text string) error {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil
		}
		if validation.Validate(desc, text) == model.Invalid {
			if hint := helpFor(desc); hint != "" {
				return fmt.Errorf("invalid value, expected %s", hint)
			}
			return errors.New("invalid value")
		}
		return nil
	}
}

func helpFor(desc model.FieldDescriptor) string {
	switch {
	case desc.Kind == model.FieldKindDate:
		return "YYYY-MM-DD"
	case desc.Pattern == validation.PatternMobile:
		return "10 digits starting with 6-9"
	case desc.Pattern == validation.PatternNationalID, desc.Pattern == validation.PatternAadhaar:
		return "12 digits"
	case desc.Kind == model.FieldKindEmail:
		return "name@example.com"
	case desc.Kind == model.FieldKindNumber:
		return "a number"
	}
	return ""
}

func choices(desc model.FieldDescriptor) (values, labels []string) {
	hasBlank := false
	for _, opt := range desc.Options {
		if opt.Value == "" {
			hasBlank = true
		}
	}
	if !desc.Required && !hasBlank && len(desc.Options) > 0 {
		values = append(values, "")
		labels = append(labels, blankOption)
	}
	for _, opt := range desc.Options {
		label := opt.Label
		if label == "" {
			label = opt.Value
		}
		if label == "" {
			label = blankOption
		}
		values = append(values, opt.Value)
		labels = append(labels, label)
	}
	return values, labels
}

func labelFor(form *model.Form, desc model.FieldDescriptor) string {
	if text, ok := form.LabelFor(desc.Name); ok && text != "" {
		return text
	}
	if text, ok := form.LabelFor(desc.ID); ok && text != "" {
		return text
	}
	if desc.Label != "" {
		return desc.Label
	}
	return desc.Name
}

// Confirmer asks confirmation questions through driver. The default answer
// is no.
func Confirmer(ctx context.Context, driver Driver) confirm.Confirmer {
	return confirm.ConfirmerFunc(func(message string) (bool, error) {
		if driver == nil {
			return false, nil
		}
		return driver.Confirm(ctx, ConfirmConfig{Message: message})
	})
}
