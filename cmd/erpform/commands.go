package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	erpforms "github.com/goliatone/go-erpforms"
	"github.com/goliatone/go-erpforms/internal/prompt"
	"github.com/goliatone/go-erpforms/pkg/export"
	"github.com/goliatone/go-erpforms/pkg/formspec"
	"github.com/goliatone/go-erpforms/pkg/messages"
	"github.com/goliatone/go-erpforms/pkg/model"
	"github.com/goliatone/go-erpforms/pkg/notify"
	"github.com/goliatone/go-erpforms/pkg/upload"
)

func runForms(_ context.Context, args []string, env *environment) error {
	fs := flag.NewFlagSet("forms", flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(env.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tID\tFIELDS\tTITLE")
	for _, name := range formspec.Names() {
		def, err := formspec.Builtin(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", name, def.ID, len(def.Fields), def.Title)
	}
	return tw.Flush()
}

// formFlags select the form a command works on.
type formFlags struct {
	form        string
	openapi     string
	operationID string
}

func (f *formFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.form, "form", "admission", "built-in form name or form definition file")
	fs.StringVar(&f.openapi, "openapi", "", "OpenAPI document to derive the form from")
	fs.StringVar(&f.operationID, "operation", "", "operation ID within -openapi")
}

func (f *formFlags) load(ctx context.Context) (*model.Form, error) {
	if f.openapi != "" {
		if f.operationID == "" {
			return nil, errors.New("-operation is required with -openapi")
		}
		return erpforms.LoadOpenAPIForm(ctx, f.openapi, f.operationID)
	}
	return erpforms.LoadForm(f.form)
}

func runFill(ctx context.Context, args []string, env *environment) error {
	var common commonFlags
	var forms formFlags
	fs := flag.NewFlagSet("fill", flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	common.register(fs)
	forms.register(fs)
	output := fs.String("output", "", "write the printable document here after a successful submit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	page, form, err := openPage(ctx, &common, &forms, env, erpforms.WithConfirmer(prompt.Confirmer(ctx, env.driver)))
	if err != nil {
		return err
	}
	defer page.Close()

	binding, err := page.Bind(form)
	if err != nil {
		return err
	}
	if restored := binding.Restored(); len(restored) > 0 {
		if err := env.driver.Info(ctx, fmt.Sprintf("restored %d saved fields", len(restored))); err != nil {
			return err
		}
	}

	for {
		if err := prompt.Fill(ctx, env.driver, binding); err != nil {
			return err
		}
		result, err := binding.Submit()
		if err != nil {
			return err
		}
		if result.Accepted() {
			break
		}
		again, err := env.driver.Confirm(ctx, prompt.ConfirmConfig{Message: "Edit the form again?", Default: true})
		if err != nil {
			return err
		}
		if !again {
			return erpforms.ErrSubmitBlocked
		}
	}
	binding.WaitPreviews()

	if *output == "" {
		return env.driver.Info(ctx, "submitted")
	}
	if err := page.Print(form.ID, &export.FileSurface{Path: *output}); err != nil {
		return err
	}
	return env.driver.Info(ctx, "written "+*output)
}

func runExport(ctx context.Context, args []string, env *environment) error {
	var common commonFlags
	var forms formFlags
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	common.register(fs)
	forms.register(fs)
	valuesPath := fs.String("values", "", "YAML or JSON file mapping field names to values")
	output := fs.String("output", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	page, form, err := openPage(ctx, &common, &forms, env)
	if err != nil {
		return err
	}
	defer page.Close()

	binding, err := page.Bind(form)
	if err != nil {
		return err
	}
	if *valuesPath != "" {
		values, err := readValues(*valuesPath)
		if err != nil {
			return err
		}
		if err := applyValues(binding, values); err != nil {
			return err
		}
	}

	if *output != "" {
		return page.Print(form.ID, &export.FileSurface{Path: *output})
	}
	doc, err := page.Export(form.ID)
	if err != nil {
		return err
	}
	_, err = io.WriteString(env.stdout, doc.HTML)
	return err
}

func runCheckFile(_ context.Context, args []string, env *environment) error {
	var common commonFlags
	fs := flag.NewFlagSet("check-file", flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("check-file needs at least one path")
	}
	cfg, err := common.config()
	if err != nil {
		return err
	}

	checker := upload.NewChecker(cfg.Upload)
	catalog := messages.Default()
	rejected := 0
	for _, path := range fs.Args() {
		file, err := upload.OpenFile(path)
		if err != nil {
			return err
		}
		var fileErr *upload.FileError
		switch err := checker.Check(file); {
		case errors.As(err, &fileErr):
			rejected++
			fmt.Fprintf(env.stdout, "%s\trejected\t%s\n", path, catalog.Get(fileErr.MessageKey()))
		case err != nil:
			return err
		default:
			fmt.Fprintf(env.stdout, "%s\tok\t%s\t%d bytes\n", path, file.MIMEType, file.Size)
		}
	}
	if rejected > 0 {
		return fmt.Errorf("%d of %d files rejected", rejected, fs.NArg())
	}
	return nil
}

func openPage(ctx context.Context, common *commonFlags, forms *formFlags, env *environment, extra ...erpforms.Option) (*erpforms.Page, *model.Form, error) {
	logger, err := common.logger(env.stderr)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := common.config()
	if err != nil {
		return nil, nil, err
	}
	form, err := forms.load(ctx)
	if err != nil {
		return nil, nil, err
	}

	options := append([]erpforms.Option{
		erpforms.WithConfig(cfg),
		erpforms.WithLogger(logger),
		erpforms.WithNotifier(terminalNotifier(env.stderr)),
		erpforms.WithPreviewSink(&terminalSink{out: env.stderr}),
	}, extra...)
	page, err := erpforms.New(options...)
	if err != nil {
		return nil, nil, err
	}
	return page, form, nil
}

func readValues(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	// JSON values files decode through yaml as well.
	var values map[string]string
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode values: %w", err)
	}
	return values, nil
}

func applyValues(binding *erpforms.Binding, values map[string]string) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ctrl, ok := binding.Form().Control(name)
		if !ok {
			return fmt.Errorf("%w %q", model.ErrUnknownField, name)
		}
		value := values[name]
		if ctrl.Kind() == model.FieldKindFile {
			file, err := upload.OpenFile(value)
			if err != nil {
				return err
			}
			if err := binding.SelectFile(name, file); err != nil {
				return err
			}
			continue
		}
		if err := binding.Input(name, value); err != nil {
			return err
		}
	}
	return nil
}

func terminalNotifier(w io.Writer) notify.Notifier {
	return notify.NotifierFunc(func(msg messages.Message, severity notify.Severity) {
		fmt.Fprintf(w, "[%s] %s\n", strings.ToUpper(string(severity)), msg)
	})
}

// terminalSink reports accepted files and previews on the terminal.
type terminalSink struct {
	out io.Writer
}

func (s *terminalSink) ShowFileName(input, name string) {
	fmt.Fprintf(s.out, "%s: %s\n", input, name)
}

func (s *terminalSink) ShowPreview(p upload.Preview) {
	fmt.Fprintf(s.out, "%s: preview %dx%d (from %dx%d)\n", p.Input, p.Width, p.Height, p.SourceWidth, p.SourceHeight)
}

func (s *terminalSink) RemovePreview(string) {}
