// Package draft persists in-progress form values under a per-form key. It is
// the boundary where persistence failures stop: callers see a boolean or an
// absent draft, never an error.
package draft

import (
	"encoding/json"
	"log/slog"

	"github.com/goliatone/go-erpforms/pkg/model"
	"github.com/goliatone/go-erpforms/pkg/storage"
)

// DefaultKeyPrefix is prepended to the form identifier to build the storage
// key.
const DefaultKeyPrefix = "autosave_"

// Store saves, loads and clears drafts in a storage backend. A Store with a
// nil backend behaves as if storage were unavailable.
type Store struct {
	backend storage.Backend
	prefix  string
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithKeyPrefix overrides the storage key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore returns a draft store over backend.
func NewStore(backend storage.Backend, options ...Option) *Store {
	s := &Store{
		backend: backend,
		prefix:  DefaultKeyPrefix,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Key returns the storage key for id.
func (s *Store) Key(id model.FormID) string {
	return s.prefix + string(id)
}

// Save replaces the stored draft for id. It reports false when the draft
// could not be persisted; the failure is logged and otherwise swallowed.
func (s *Store) Save(id model.FormID, draft model.Draft) bool {
	if s == nil || s.backend == nil {
		return false
	}
	if draft == nil {
		draft = model.Draft{}
	}
	payload, err := json.Marshal(draft)
	if err != nil {
		s.logger.Warn("draft encode failed", "form", id, "error", err)
		return false
	}
	if err := s.backend.SetItem(s.Key(id), string(payload)); err != nil {
		s.logger.Warn("draft save failed", "form", id, "error", err)
		return false
	}
	return true
}

// Load returns the stored draft for id. Missing, unreadable or corrupt
// entries report absent.
func (s *Store) Load(id model.FormID) (model.Draft, bool) {
	if s == nil || s.backend == nil {
		return nil, false
	}
	raw, ok, err := s.backend.GetItem(s.Key(id))
	if err != nil {
		s.logger.Warn("draft load failed", "form", id, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var draft model.Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		s.logger.Warn("draft payload corrupt", "form", id, "error", err)
		return nil, false
	}
	if draft == nil {
		return nil, false
	}
	return draft, true
}

// Clear removes the stored draft for id. Clearing an absent draft is a
// no-op.
func (s *Store) Clear(id model.FormID) {
	if s == nil || s.backend == nil {
		return
	}
	if err := s.backend.RemoveItem(s.Key(id)); err != nil {
		s.logger.Warn("draft clear failed", "form", id, "error", err)
	}
}
