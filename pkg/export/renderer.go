// Package export turns a live form into a standalone printable document. The
// form is deep-copied first, so nothing done during export is visible on the
// form the user is editing.
package export

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mohae/deepcopy"

	"github.com/goliatone/go-erpforms/pkg/messages"
	"github.com/goliatone/go-erpforms/pkg/model"
	"github.com/goliatone/go-erpforms/pkg/notify"
	"github.com/goliatone/go-erpforms/pkg/render/template"
	"github.com/goliatone/go-erpforms/pkg/render/template/gotemplate"
)

// Entry is one static label/value pair of an exported form.
// Numeric values are printed with Indian digit grouping.
type Entry struct {
	Label   string `json:"label"`
	Value   string `json:"value"`
	Numeric bool   `json:"numeric,omitempty"`
}

// Snapshot is the static content of an exported form.
type Snapshot struct {
	FormID  string  `json:"form_id"`
	Title   string  `json:"title,omitempty"`
	Entries []Entry `json:"entries"`
}

// Document is a rendered standalone document.
type Document struct {
	Snapshot
	HTML string `json:"-"`
}

// Renderer exports registered forms.
type Renderer struct {
	registry *Registry
	engine   template.TemplateRenderer
	notifier notify.Notifier
	catalog  *messages.Catalog
	theme    *theme.RendererConfig
	title    string
	logger   *slog.Logger
	labels   *bluemonday.Policy
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithEngine overrides the template engine. The engine must provide the
// DocumentTemplate template.
func WithEngine(engine template.TemplateRenderer) Option {
	return func(r *Renderer) {
		if engine != nil {
			r.engine = engine
		}
	}
}

// WithNotifier sets the sink for the form-not-found message.
func WithNotifier(n notify.Notifier) Option {
	return func(r *Renderer) {
		r.notifier = notify.OrNop(n)
	}
}

// WithCatalog overrides the message catalog.
func WithCatalog(catalog *messages.Catalog) Option {
	return func(r *Renderer) {
		if catalog != nil {
			r.catalog = catalog
		}
	}
}

// WithTheme styles the document with the theme's CSS variables.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(r *Renderer) {
		r.theme = cfg
	}
}

// WithTitle overrides the document title. The catalog's export title is used
// otherwise.
func WithTitle(title string) Option {
	return func(r *Renderer) {
		r.title = strings.TrimSpace(title)
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRenderer returns a renderer over the forms in registry, using the
// embedded document template unless WithEngine is given.
func NewRenderer(registry *Registry, options ...Option) (*Renderer, error) {
	if registry == nil {
		return nil, errors.New("export: registry is required")
	}
	r := &Renderer{
		registry: registry,
		notifier: notify.Nop,
		catalog:  messages.Default(),
		logger:   slog.New(slog.DiscardHandler),
		labels:   bluemonday.StrictPolicy(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.engine == nil {
		engine, err := gotemplate.New(gotemplate.WithFS(TemplatesFS()))
		if err != nil {
			return nil, fmt.Errorf("export: template engine: %w", err)
		}
		r.engine = engine
	}
	return r, nil
}

// Snapshot builds the static label/value content of the form with id. An
// unknown id notifies the user and returns ErrFormNotFound.
func (r *Renderer) Snapshot(id string) (Snapshot, error) {
	live, err := r.registry.Get(id)
	if err != nil {
		r.notifier.Notify(r.catalog.Get(messages.FormNotFound), notify.Danger)
		r.logger.Warn("export target missing", "form", id)
		return Snapshot{}, err
	}

	form, ok := deepcopy.Copy(exportView(live)).(*model.Form)
	if !ok || form == nil {
		return Snapshot{}, fmt.Errorf("export: copy form %q", id)
	}

	snap := Snapshot{FormID: form.ID, Title: form.Title}
	for i := range form.Controls {
		if entry, ok := r.entry(form, &form.Controls[i]); ok {
			snap.Entries = append(snap.Entries, entry)
		}
	}
	return snap, nil
}

// Render produces the standalone document for the form with id. Nothing is
// produced when the form cannot be found.
func (r *Renderer) Render(id string) (Document, error) {
	snap, err := r.Snapshot(id)
	if err != nil {
		return Document{}, err
	}

	out, err := r.engine.RenderTemplate(DocumentTemplate, r.templateData(snap))
	if err != nil {
		return Document{}, fmt.Errorf("export: render %q: %w", id, err)
	}
	return Document{Snapshot: snap, HTML: out}, nil
}

func (r *Renderer) templateData(snap Snapshot) map[string]any {
	title := r.title
	if title == "" {
		title = r.catalog.Get(messages.ExportTitle).String()
	}
	return map[string]any{
		"title":      title,
		"header":     r.catalog.Get(messages.ExportHeader).String(),
		"form_id":    snap.FormID,
		"form_title": snap.Title,
		"entries":    snap.Entries,
		"actions": map[string]string{
			"print": r.catalog.Get(messages.PrintAction).String(),
			"close": r.catalog.Get(messages.CloseAction).String(),
		},
		"theme": themeContext(r.theme),
	}
}

// exportView is a shallow copy of live without submit/reset buttons and file
// inputs. Selected files never reach the deep copy.
func exportView(live *model.Form) *model.Form {
	view := *live
	view.Buttons = make([]model.Button, 0, len(live.Buttons))
	for _, btn := range live.Buttons {
		if btn.Kind == model.ButtonSubmit || btn.Kind == model.ButtonReset {
			continue
		}
		view.Buttons = append(view.Buttons, btn)
	}

	view.Controls = make([]model.Control, 0, len(live.Controls))
	for _, ctrl := range live.Controls {
		if ctrl.Descriptor.Kind == model.FieldKindFile {
			continue
		}
		view.Controls = append(view.Controls, ctrl)
	}
	return &view
}

func (r *Renderer) entry(form *model.Form, ctrl *model.Control) (Entry, bool) {
	label := r.label(form, ctrl.Descriptor)
	desc := ctrl.Descriptor

	switch desc.Kind {
	case model.FieldKindCheckbox:
		key := messages.No
		if ctrl.Value.Checked {
			key = messages.Yes
		}
		return Entry{Label: label, Value: r.catalog.Get(key).String()}, true
	case model.FieldKindRadio:
		if ctrl.Value.Text == "" {
			return Entry{}, false
		}
		return Entry{Label: label, Value: optionLabel(desc, ctrl.Value.Text)}, true
	case model.FieldKindSelect:
		return Entry{Label: label, Value: optionLabel(desc, ctrl.Value.Text)}, true
	case model.FieldKindNumber:
		return Entry{Label: label, Value: strings.TrimSpace(ctrl.Value.Text), Numeric: true}, true
	default:
		return Entry{Label: label, Value: ctrl.Value.Text}, true
	}
}

// label resolves the display label: a label bound to the field name, then
// one bound to the control id, then the declared label, then the name.
func (r *Renderer) label(form *model.Form, desc model.FieldDescriptor) string {
	candidates := []func() (string, bool){
		func() (string, bool) { return form.LabelFor(desc.Name) },
		func() (string, bool) { return form.LabelFor(desc.ID) },
		func() (string, bool) { return desc.Label, desc.Label != "" },
	}
	for _, candidate := range candidates {
		if text, ok := candidate(); ok {
			if clean := r.cleanLabel(text); clean != "" {
				return clean
			}
		}
	}
	return desc.Name
}

// cleanLabel reduces label markup to plain text. Entities are decoded so the
// template escapes the text exactly once.
func (r *Renderer) cleanLabel(text string) string {
	plain := html.UnescapeString(r.labels.Sanitize(text))
	return strings.Join(strings.Fields(plain), " ")
}

func optionLabel(desc model.FieldDescriptor, value string) string {
	if opt, ok := desc.Option(value); ok && opt.Label != "" {
		return opt.Label
	}
	return value
}

type themeData struct {
	Name         string `json:"name,omitempty"`
	Variant      string `json:"variant,omitempty"`
	CSSVarsStyle string `json:"css_vars_style,omitempty"`
}

func themeContext(cfg *theme.RendererConfig) themeData {
	if cfg == nil {
		return themeData{}
	}
	return themeData{
		Name:         cfg.Theme,
		Variant:      cfg.Variant,
		CSSVarsStyle: cssVarsStyle(cfg.CSSVars),
	}
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
