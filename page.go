package erpforms

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/goliatone/go-erpforms/pkg/confirm"
	"github.com/goliatone/go-erpforms/pkg/draft"
	"github.com/goliatone/go-erpforms/pkg/export"
	"github.com/goliatone/go-erpforms/pkg/messages"
	"github.com/goliatone/go-erpforms/pkg/notify"
	"github.com/goliatone/go-erpforms/pkg/render/template"
	"github.com/goliatone/go-erpforms/pkg/storage"
	"github.com/goliatone/go-erpforms/pkg/upload"
)

// Option configures a Page.
type Option func(*Page)

// WithConfig replaces DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(p *Page) {
		p.cfg = cfg
	}
}

// WithLogger sets the structured logger shared by every controller.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Page) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithNotifier sets the notification sink. The default is a Region honouring
// the configured dismiss delay.
func WithNotifier(n notify.Notifier) Option {
	return func(p *Page) {
		p.notifier = n
	}
}

// WithCatalog overrides the bilingual message catalog.
func WithCatalog(catalog *messages.Catalog) Option {
	return func(p *Page) {
		if catalog != nil {
			p.catalog = catalog
		}
	}
}

// WithBackend injects a draft backend instead of opening the configured one.
// The page does not close injected backends.
func WithBackend(backend storage.Backend) Option {
	return func(p *Page) {
		p.backend = backend
	}
}

// WithPreviewSink sets where file names and previews are displayed.
func WithPreviewSink(sink upload.PreviewSink) Option {
	return func(p *Page) {
		if sink != nil {
			p.sink = sink
		}
	}
}

// WithPreviewExecutor sets how preview decodes are scheduled.
func WithPreviewExecutor(exec upload.Executor) Option {
	return func(p *Page) {
		p.executor = exec
	}
}

// WithConfirmer answers data-confirm questions. Without one, every guarded
// button is declined.
func WithConfirmer(c confirm.Confirmer) Option {
	return func(p *Page) {
		p.confirmer = c
	}
}

// WithClock sets the source of "today" for date bounds.
func WithClock(now func() time.Time) Option {
	return func(p *Page) {
		if now != nil {
			p.now = now
		}
	}
}

// WithTemplateEngine replaces the embedded export template engine.
func WithTemplateEngine(engine template.TemplateRenderer) Option {
	return func(p *Page) {
		p.engine = engine
	}
}

// Page owns the shared services of one page: the draft store, the notice
// sink, the export registry and the confirm guard. Forms join it through
// Bind.
type Page struct {
	cfg       Config
	logger    *slog.Logger
	notifier  notify.Notifier
	catalog   *messages.Catalog
	backend   storage.Backend
	sink      upload.PreviewSink
	executor  upload.Executor
	confirmer confirm.Confirmer
	engine    template.TemplateRenderer
	now       func() time.Time

	closeBackend func() error
	drafts       *draft.Store
	checker      *upload.Checker
	guard        *confirm.Guard
	registry     *export.Registry
	exporter     *export.Renderer
	connectivity *notify.Connectivity

	mu       sync.Mutex
	bindings map[string]*Binding
}

// New assembles a page from the options.
func New(options ...Option) (*Page, error) {
	p := &Page{
		cfg:          DefaultConfig(),
		logger:       slog.New(slog.DiscardHandler),
		catalog:      messages.Default(),
		sink:         upload.NopSink,
		now:          time.Now,
		closeBackend: func() error { return nil },
		bindings:     make(map[string]*Binding),
	}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}

	if p.notifier == nil {
		p.notifier = notify.NewRegion(notify.WithDismissAfter(time.Duration(p.cfg.Notifications.DismissAfter)))
	}
	if p.backend == nil {
		backend, closeFn, err := p.cfg.Storage.OpenBackend(p.logger)
		if err != nil {
			return nil, fmt.Errorf("erpforms: open draft storage: %w", err)
		}
		p.backend, p.closeBackend = backend, closeFn
	}

	p.drafts = draft.NewStore(p.backend,
		draft.WithKeyPrefix(p.cfg.Autosave.KeyPrefix),
		draft.WithLogger(p.logger),
	)
	p.checker = upload.NewChecker(p.cfg.Upload)
	p.guard = confirm.NewGuard(p.confirmer)
	p.registry = export.NewRegistry()
	p.connectivity = notify.NewConnectivity(p.notifier, p.catalog)

	exportOpts := []export.Option{
		export.WithNotifier(p.notifier),
		export.WithCatalog(p.catalog),
		export.WithTheme(p.cfg.Export.RendererConfig()),
		export.WithTitle(p.cfg.Export.Title),
		export.WithLogger(p.logger),
	}
	if p.engine != nil {
		exportOpts = append(exportOpts, export.WithEngine(p.engine))
	}
	exporter, err := export.NewRenderer(p.registry, exportOpts...)
	if err != nil {
		_ = p.closeBackend()
		return nil, err
	}
	p.exporter = exporter
	return p, nil
}

// Config returns the effective configuration.
func (p *Page) Config() Config {
	return p.cfg
}

// Notifier returns the sink every controller reports through.
func (p *Page) Notifier() notify.Notifier {
	return p.notifier
}

// Drafts exposes the draft store.
func (p *Page) Drafts() *draft.Store {
	return p.drafts
}

// Forms lists the ids of the bound forms.
func (p *Page) Forms() []string {
	return p.registry.List()
}

// Binding returns the binding of the form with id.
func (p *Page) Binding(id string) (*Binding, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.bindings[id]
	return b, ok
}

// Export renders the form with id as a standalone document. Unknown ids
// notify the user and return export.ErrFormNotFound.
func (p *Page) Export(id string) (export.Document, error) {
	return p.exporter.Render(id)
}

// Print renders the form with id into surface and prints it.
func (p *Page) Print(id string, surface export.PrintSurface) error {
	return p.exporter.Print(id, surface)
}

// Online reports a restored connection.
func (p *Page) Online() {
	p.connectivity.Online()
}

// Offline reports a lost connection.
func (p *Page) Offline() {
	p.connectivity.Offline()
}

// Close unbinds every form and releases the draft backend.
func (p *Page) Close() error {
	p.mu.Lock()
	bindings := make([]*Binding, 0, len(p.bindings))
	for _, b := range p.bindings {
		bindings = append(bindings, b)
	}
	p.mu.Unlock()

	for _, b := range bindings {
		b.Close()
	}
	if err := p.closeBackend(); err != nil {
		return fmt.Errorf("erpforms: close draft storage: %w", err)
	}
	return nil
}

func (p *Page) unbind(id string) {
	p.mu.Lock()
	delete(p.bindings, id)
	p.mu.Unlock()
	p.registry.Unregister(id)
}
