package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// PrintSurface is a write-only rendering context, such as a new window, that
// receives the exported document.
type PrintSurface interface {
	Write(document string) error
	Print() error
	Close() error
}

// Print renders the form with id into surface, triggers printing and closes
// the surface. Nothing is written when the form cannot be found.
func (r *Renderer) Print(id string, surface PrintSurface) error {
	if surface == nil {
		return errors.New("export: print surface is required")
	}
	doc, err := r.Render(id)
	if err != nil {
		return err
	}
	if err := surface.Write(doc.HTML); err != nil {
		return errors.Join(fmt.Errorf("export: write document: %w", err), surface.Close())
	}
	if err := surface.Print(); err != nil {
		return errors.Join(fmt.Errorf("export: print: %w", err), surface.Close())
	}
	if err := surface.Close(); err != nil {
		return fmt.Errorf("export: close surface: %w", err)
	}
	r.logger.Info("form exported", "form", id, "entries", len(doc.Entries))
	return nil
}

// FileSurface writes the document to Path. OnPrint, when set, is called with
// the path once the document is on disk.
type FileSurface struct {
	Path    string
	OnPrint func(path string) error

	mu      sync.Mutex
	written bool
	closed  bool
}

var _ PrintSurface = (*FileSurface)(nil)

// Write implements PrintSurface.
func (s *FileSurface) Write(document string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("export: surface closed")
	}
	if s.Path == "" {
		return errors.New("export: file surface path is required")
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(s.Path, []byte(document), 0o644); err != nil {
		return err
	}
	s.written = true
	return nil
}

// Print implements PrintSurface.
func (s *FileSurface) Print() error {
	s.mu.Lock()
	written, path, hook := s.written, s.Path, s.OnPrint
	s.mu.Unlock()
	if !written {
		return errors.New("export: nothing to print")
	}
	if hook == nil {
		return nil
	}
	return hook(path)
}

// Close implements PrintSurface. Closing twice is a no-op.
func (s *FileSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// MemorySurface keeps the document in memory and records the calls made on
// it.
type MemorySurface struct {
	mu       sync.Mutex
	document string
	printed  int
	closed   bool
}

var _ PrintSurface = (*MemorySurface)(nil)

// Write implements PrintSurface.
func (s *MemorySurface) Write(document string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("export: surface closed")
	}
	s.document += document
	return nil
}

// Print implements PrintSurface.
func (s *MemorySurface) Print() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.printed++
	return nil
}

// Close implements PrintSurface.
func (s *MemorySurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Document returns everything written so far.
func (s *MemorySurface) Document() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.document
}

// Printed reports how many times printing was triggered.
func (s *MemorySurface) Printed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.printed
}

// Closed reports whether the surface was closed.
func (s *MemorySurface) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
