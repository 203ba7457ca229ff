package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-erpforms/pkg/messages"
	"github.com/goliatone/go-erpforms/pkg/model"
	"github.com/goliatone/go-erpforms/pkg/notify"
)

// PreviewSink displays the outcome of a file selection. Calls arrive one at
// a time, in the order the selections happened, and never while the
// controller holds its lock, so a sink may call back into the controller
// (a remove button calling Remove, for instance).
type PreviewSink interface {
	// ShowFileName announces the accepted file name next to the input.
	ShowFileName(input, name string)
	// ShowPreview displays or replaces the preview for p.Input.
	ShowPreview(p Preview)
	// RemovePreview deletes any preview shown for input.
	RemovePreview(input string)
}

type nopSink struct{}

func (nopSink) ShowFileName(string, string) {}
func (nopSink) ShowPreview(Preview)         {}
func (nopSink) RemovePreview(string)        {}

// NopSink discards every preview update.
var NopSink PreviewSink = nopSink{}

// Executor runs a decode task. The default starts a goroutine.
type Executor func(task func())

// Inline runs tasks on the calling goroutine. Useful for tests and batch
// tools that want the preview applied before OnFileSelected returns.
func Inline(task func()) { task() }

func goroutine(task func()) { go task() }

type decodeTask struct {
	generation uint64
	cancel     context.CancelFunc
}

// PreviewController handles file selection for the file inputs of one form.
type PreviewController struct {
	form     *model.Form
	checker  *Checker
	notifier notify.Notifier
	catalog  *messages.Catalog
	sink     PreviewSink
	exec     Executor
	logger   *slog.Logger
	newID    func() string

	mu         sync.Mutex
	generation uint64
	tasks      map[string]decodeTask
	wg         sync.WaitGroup

	// pending sink calls, delivered by flush outside mu.
	pending  []func()
	draining bool
	idle     *sync.Cond
}

// PreviewOption configures a PreviewController.
type PreviewOption func(*PreviewController)

// WithChecker overrides the default 16 MiB / image-or-PDF checker.
func WithChecker(checker *Checker) PreviewOption {
	return func(c *PreviewController) {
		if checker != nil {
			c.checker = checker
		}
	}
}

// WithNotifier sets the sink for rejection messages.
func WithNotifier(n notify.Notifier) PreviewOption {
	return func(c *PreviewController) {
		c.notifier = notify.OrNop(n)
	}
}

// WithCatalog overrides the message catalog.
func WithCatalog(catalog *messages.Catalog) PreviewOption {
	return func(c *PreviewController) {
		if catalog != nil {
			c.catalog = catalog
		}
	}
}

// WithSink sets the preview display.
func WithSink(sink PreviewSink) PreviewOption {
	return func(c *PreviewController) {
		if sink != nil {
			c.sink = sink
		}
	}
}

// WithExecutor sets how decode tasks are scheduled.
func WithExecutor(exec Executor) PreviewOption {
	return func(c *PreviewController) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) PreviewOption {
	return func(c *PreviewController) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithIDGenerator overrides preview element ids.
func WithIDGenerator(fn func() string) PreviewOption {
	return func(c *PreviewController) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// NewPreviewController binds a controller to the file inputs of form.
func NewPreviewController(form *model.Form, options ...PreviewOption) (*PreviewController, error) {
	if form == nil {
		return nil, errors.New("upload: form is required")
	}
	c := &PreviewController{
		form:     form,
		checker:  NewChecker(DefaultPolicy()),
		notifier: notify.Nop,
		catalog:  messages.Default(),
		sink:     NopSink,
		exec:     goroutine,
		logger:   slog.New(slog.DiscardHandler),
		newID:    func() string { return "preview-" + uuid.NewString() },
		tasks:    make(map[string]decodeTask),
	}
	c.idle = sync.NewCond(&c.mu)
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// OnFileSelected handles a change on a file input. A rejected file clears
// the input, removes its preview and emits a danger notification; the
// returned error is the *FileError. An accepted file is stored on the
// control and, for images, decoded into a preview in the background. A nil
// file behaves like Remove.
func (c *PreviewController) OnFileSelected(input string, file *model.FileDescriptor) error {
	if err := c.requireFileInput(input); err != nil {
		return err
	}
	if file == nil {
		return c.Remove(input)
	}

	if err := c.checker.Check(file); err != nil {
		c.mu.Lock()
		c.cancelLocked(input)
		_ = c.form.SetFile(input, nil)
		c.queueLocked(func() { c.sink.RemovePreview(input) })
		c.mu.Unlock()
		c.flush()

		var fileErr *FileError
		if errors.As(err, &fileErr) {
			c.notifier.Notify(c.catalog.Get(fileErr.MessageKey()), notify.Danger)
		}
		c.logger.Debug("file rejected", "form", c.form.ID, "input", input, "error", err)
		return err
	}

	c.mu.Lock()
	c.cancelLocked(input)
	_ = c.form.SetFile(input, file)
	name := file.Name
	c.queueLocked(func() { c.sink.ShowFileName(input, name) })
	if !c.checker.PreviewRequested(file) {
		c.queueLocked(func() { c.sink.RemovePreview(input) })
		c.mu.Unlock()
		c.flush()
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.generation++
	generation := c.generation
	c.tasks[input] = decodeTask{generation: generation, cancel: cancel}
	c.wg.Add(1)
	c.mu.Unlock()
	c.flush()

	c.exec(func() {
		defer c.wg.Done()
		preview, err := decodePreview(ctx, file)
		c.finish(input, generation, preview, err)
	})
	return nil
}

// Remove clears the input value and deletes its preview. Any pending decode
// for the input is cancelled.
func (c *PreviewController) Remove(input string) error {
	if err := c.requireFileInput(input); err != nil {
		return err
	}
	c.mu.Lock()
	c.cancelLocked(input)
	_ = c.form.SetFile(input, nil)
	c.queueLocked(func() { c.sink.RemovePreview(input) })
	c.mu.Unlock()
	c.flush()
	return nil
}

// Wait blocks until every scheduled decode task has finished and its
// outcome reached the sink. It must not be called from a sink method.
func (c *PreviewController) Wait() {
	c.wg.Wait()
	c.flush()
	c.mu.Lock()
	for c.draining {
		c.idle.Wait()
	}
	c.mu.Unlock()
}

// Close cancels every pending decode task.
func (c *PreviewController) Close() {
	c.mu.Lock()
	for input := range c.tasks {
		c.cancelLocked(input)
	}
	c.mu.Unlock()
}

func (c *PreviewController) finish(input string, generation uint64, preview Preview, err error) {
	c.mu.Lock()
	current, ok := c.tasks[input]
	if !ok || current.generation != generation {
		c.mu.Unlock()
		return
	}
	delete(c.tasks, input)
	current.cancel()

	if err != nil {
		c.mu.Unlock()
		c.logger.Debug("preview decode failed", "form", c.form.ID, "input", input, "error", err)
		return
	}
	preview.ID = c.newID()
	preview.Input = input
	c.queueLocked(func() { c.sink.ShowPreview(preview) })
	c.mu.Unlock()
	c.flush()
}

// queueLocked records a sink call in state-change order.
func (c *PreviewController) queueLocked(call func()) {
	c.pending = append(c.pending, call)
}

// flush delivers queued sink calls. Only one goroutine delivers at a time;
// calls queued meanwhile, including from inside a sink method, are picked up
// by the goroutine already delivering.
func (c *PreviewController) flush() {
	c.mu.Lock()
	if c.draining {
		c.mu.Unlock()
		return
	}
	c.draining = true
	for len(c.pending) > 0 {
		calls := c.pending
		c.pending = nil
		c.mu.Unlock()
		for _, call := range calls {
			call()
		}
		c.mu.Lock()
	}
	c.draining = false
	c.idle.Broadcast()
	c.mu.Unlock()
}

func (c *PreviewController) cancelLocked(input string) {
	if task, ok := c.tasks[input]; ok {
		task.cancel()
		delete(c.tasks, input)
	}
}

func (c *PreviewController) requireFileInput(input string) error {
	ctrl, ok := c.form.Control(input)
	if !ok {
		return fmt.Errorf("upload: %w %q", model.ErrUnknownField, input)
	}
	if ctrl.Kind() != model.FieldKindFile {
		return fmt.Errorf("upload: field %q is not a file input", input)
	}
	return nil
}
