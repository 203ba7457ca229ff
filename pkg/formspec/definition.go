// Package formspec declares forms in data files (YAML, JSON or TOML) or
// derives them from OpenAPI request schemas, and ships the ERP's built-in
// admission and bonafide forms.
package formspec

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	labels "github.com/goliatone/go-erpforms/internal/model"
	"github.com/goliatone/go-erpforms/pkg/model"
)

// ErrUnknownForm is returned when a built-in form name does not exist.
var ErrUnknownForm = errors.New("formspec: unknown form")

// Format names a definition encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath infers the encoding from a file extension.
func FormatFromPath(p string) (Format, error) {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("formspec: unsupported file extension %q", filepath.Ext(p))
	}
}

// Definition is the serialisable description of a form.
type Definition struct {
	ID              string                  `json:"id" yaml:"id" toml:"id"`
	Title           string                  `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	AutosaveID      string                  `json:"autosave_id,omitempty" yaml:"autosave_id,omitempty" toml:"autosave_id,omitempty"`
	NeedsValidation bool                    `json:"needs_validation,omitempty" yaml:"needs_validation,omitempty" toml:"needs_validation,omitempty"`
	Fields          []model.FieldDescriptor `json:"fields" yaml:"fields" toml:"fields"`
	Labels          []model.Label           `json:"labels,omitempty" yaml:"labels,omitempty" toml:"labels,omitempty"`
	Buttons         []model.Button          `json:"buttons,omitempty" yaml:"buttons,omitempty" toml:"buttons,omitempty"`
}

// Decode parses a definition in the given format.
func Decode(data []byte, format Format) (Definition, error) {
	var def Definition
	var err error
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&def)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&def)
	case FormatTOML:
		err = toml.Unmarshal(data, &def)
	default:
		return Definition{}, fmt.Errorf("formspec: unsupported format %q", format)
	}
	if err != nil {
		return Definition{}, fmt.Errorf("formspec: decode %s: %w", format, err)
	}
	return def, nil
}

// LoadFile reads and decodes a definition file.
func LoadFile(p string) (Definition, error) {
	format, err := FormatFromPath(p)
	if err != nil {
		return Definition{}, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return Definition{}, fmt.Errorf("formspec: read %s: %w", p, err)
	}
	return Decode(data, format)
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

type buildOptions struct {
	labeler func(string) string
}

// WithLabeler overrides how missing labels are derived from field names.
// Passing nil keeps missing labels empty.
func WithLabeler(labeler func(string) string) BuildOption {
	return func(opts *buildOptions) {
		opts.labeler = labeler
	}
}

// Build creates a live form from the definition. Fields without a label get
// one derived from their name.
func (d Definition) Build(options ...BuildOption) (*model.Form, error) {
	opts := buildOptions{labeler: labels.DefaultLabeler}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}

	fields := make([]model.FieldDescriptor, len(d.Fields))
	copy(fields, d.Fields)
	for i := range fields {
		if fields[i].Label == "" && opts.labeler != nil {
			fields[i].Label = opts.labeler(fields[i].Name)
		}
	}

	form, err := model.NewForm(d.ID, fields...)
	if err != nil {
		return nil, fmt.Errorf("formspec: build %q: %w", d.ID, err)
	}
	if form.ID == "" {
		return nil, errors.New("formspec: form id is required")
	}
	form.Title = d.Title
	form.AutosaveID = model.FormID(d.AutosaveID)
	form.NeedsValidation = d.NeedsValidation
	form.Labels = append([]model.Label(nil), d.Labels...)
	form.Buttons = append([]model.Button(nil), d.Buttons...)
	return form, nil
}

//go:embed forms/*.yaml
var builtinForms embed.FS

// Names lists the built-in form names.
func Names() []string {
	entries, err := fs.ReadDir(builtinForms, "forms")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())))
	}
	sort.Strings(names)
	return names
}

// Builtin returns the built-in definition called name ("admission",
// "bonafide").
func Builtin(name string) (Definition, error) {
	data, err := builtinForms.ReadFile(path.Join("forms", name+".yaml"))
	if err != nil {
		return Definition{}, fmt.Errorf("%w %q", ErrUnknownForm, name)
	}
	return Decode(data, FormatYAML)
}

// Resolve returns a built-in definition by name, or loads the file at
// nameOrPath when it is not a built-in name.
func Resolve(nameOrPath string) (Definition, error) {
	def, err := Builtin(nameOrPath)
	if err == nil {
		return def, nil
	}
	if !errors.Is(err, ErrUnknownForm) {
		return Definition{}, err
	}
	if _, statErr := os.Stat(nameOrPath); statErr != nil {
		return Definition{}, err
	}
	return LoadFile(nameOrPath)
}
