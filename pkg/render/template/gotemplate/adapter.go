// Package gotemplate adapts the github.com/goliatone/go-template pongo2
// engine to the template renderer contract and registers the filters the
// printable documents use.
package gotemplate

import (
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-erpforms/pkg/messages"
	"github.com/goliatone/go-erpforms/pkg/render/template"
)

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	options   []gotemplatepkg.Option
	hasSource bool
}

// WithBaseDir loads templates from a directory on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			return
		}
		cfg.hasSource = true
		cfg.options = append(cfg.options, gotemplatepkg.WithBaseDir(dir))
	}
}

// WithFS loads templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		if files == nil {
			return
		}
		cfg.hasSource = true
		cfg.options = append(cfg.options, gotemplatepkg.WithFS(files))
	}
}

// WithExtension overrides the template extension (default ".tpl").
func WithExtension(ext string) Option {
	return func(cfg *config) {
		if ext = strings.TrimSpace(ext); ext != "" {
			cfg.options = append(cfg.options, gotemplatepkg.WithExtension(ext))
		}
	}
}

// WithTemplateFunc registers filters (pongo2.FilterFunction values) or
// callable globals when the engine is built.
func WithTemplateFunc(funcs map[string]any) Option {
	return func(cfg *config) {
		if len(funcs) > 0 {
			cfg.options = append(cfg.options, gotemplatepkg.WithTemplateFunc(funcs))
		}
	}
}

// WithGlobalData seeds values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) > 0 {
			cfg.options = append(cfg.options, gotemplatepkg.WithGlobalData(data))
		}
	}
}

// WithGoTemplateOptions passes options straight to the underlying go-template
// engine.
func WithGoTemplateOptions(options ...gotemplatepkg.Option) Option {
	return func(cfg *config) {
		for _, opt := range options {
			if opt != nil {
				cfg.options = append(cfg.options, opt)
			}
		}
	}
}

// Engine renders pongo2 templates through go-template. Besides the
// go-template defaults (trim, lowerfirst) every engine has the
// indian_number filter.
type Engine struct {
	*gotemplatepkg.Engine
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an engine. Either a base directory or an fs.FS is required.
func New(options ...Option) (*Engine, error) {
	cfg := &config{}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	if !cfg.hasSource {
		return nil, fmt.Errorf("gotemplate: need to provide either base dir or fs.FS")
	}

	engineOptions := append([]gotemplatepkg.Option{
		gotemplatepkg.WithTemplateFunc(DefaultFilters()),
	}, cfg.options...)
	engine, err := gotemplatepkg.NewRenderer(engineOptions...)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: %w", err)
	}
	return &Engine{Engine: engine}, nil
}

// DefaultFilters returns the filters registered on every engine.
func DefaultFilters() map[string]any {
	return map[string]any{
		"indian_number": pongo2.FilterFunction(filterIndianNumber),
	}
}

// filterIndianNumber groups digits the en-IN way (12,34,567). Values that
// are not whole numbers pass through unchanged.
func filterIndianNumber(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	switch {
	case in.IsInteger():
		return pongo2.AsValue(messages.FormatIndianNumber(int64(in.Integer()))), nil
	case in.IsFloat() && in.Float() == float64(int64(in.Float())):
		return pongo2.AsValue(messages.FormatIndianNumber(int64(in.Float()))), nil
	case in.IsString():
		if n, err := strconv.ParseInt(strings.TrimSpace(in.String()), 10, 64); err == nil {
			return pongo2.AsValue(messages.FormatIndianNumber(n)), nil
		}
	}
	return in, nil
}
