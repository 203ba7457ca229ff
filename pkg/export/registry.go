package export

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-erpforms/pkg/model"
)

// ErrFormNotFound is returned when an export targets an unknown form id.
var ErrFormNotFound = errors.New("export: form not found")

// Registry holds the live forms of a page by element id.
type Registry struct {
	mu    sync.RWMutex
	forms map[string]*model.Form
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{forms: make(map[string]*model.Form)}
}

// Register adds form under its ID. Duplicate ids return an error.
func (r *Registry) Register(form *model.Form) error {
	if form == nil {
		return errors.New("export: form is required")
	}
	if form.ID == "" {
		return errors.New("export: form id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.forms[form.ID]; exists {
		return fmt.Errorf("export: form %q already registered", form.ID)
	}
	r.forms[form.ID] = form
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(form *model.Form) {
	if err := r.Register(form); err != nil {
		panic(err)
	}
}

// Unregister removes the form with id, if present.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.forms, id)
}

// Get returns the live form with id.
func (r *Registry) Get(id string) (*model.Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	form, ok := r.forms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFormNotFound, id)
	}
	return form, nil
}

// List returns the registered ids, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.forms))
	for id := range r.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Has reports whether a form is registered under id.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.forms[id]
	return ok
}
