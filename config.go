package erpforms

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-erpforms/pkg/draft"
	"github.com/goliatone/go-erpforms/pkg/notify"
	"github.com/goliatone/go-erpforms/pkg/storage"
	"github.com/goliatone/go-erpforms/pkg/storage/filestore"
	"github.com/goliatone/go-erpforms/pkg/storage/sqlite"
	"github.com/goliatone/go-erpforms/pkg/upload"
)

// Storage drivers accepted by StorageConfig.Driver.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// DefaultQuotaBytes approximates the per-origin budget of browser storage.
const DefaultQuotaBytes = 5 * 1024 * 1024

// Duration is a time.Duration written as "5s" in config files.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config gathers the tunables of a page.
type Config struct {
	Storage       StorageConfig      `json:"storage" yaml:"storage" toml:"storage"`
	Upload        upload.Policy      `json:"upload" yaml:"upload" toml:"upload"`
	Notifications NotificationConfig `json:"notifications" yaml:"notifications" toml:"notifications"`
	Autosave      AutosaveConfig     `json:"autosave" yaml:"autosave" toml:"autosave"`
	Export        ExportConfig       `json:"export" yaml:"export" toml:"export"`
}

// StorageConfig selects the draft backend.
type StorageConfig struct {
	Driver string `json:"driver" yaml:"driver" toml:"driver"`
	// Path is the JSON file (file driver) or database file (sqlite driver).
	Path string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
	// Origin scopes sqlite rows, like a browser origin scopes local storage.
	Origin string `json:"origin,omitempty" yaml:"origin,omitempty" toml:"origin,omitempty"`
	// QuotaBytes bounds the memory driver. Zero disables the limit.
	QuotaBytes int `json:"quota_bytes,omitempty" yaml:"quota_bytes,omitempty" toml:"quota_bytes,omitempty"`
}

// NotificationConfig tunes the notice region.
type NotificationConfig struct {
	DismissAfter Duration `json:"dismiss_after" yaml:"dismiss_after" toml:"dismiss_after"`
}

// AutosaveConfig tunes draft persistence.
type AutosaveConfig struct {
	KeyPrefix            string `json:"key_prefix" yaml:"key_prefix" toml:"key_prefix"`
	ClearOnBlockedSubmit bool   `json:"clear_on_blocked_submit" yaml:"clear_on_blocked_submit" toml:"clear_on_blocked_submit"`
}

// ExportConfig styles exported documents.
type ExportConfig struct {
	Title   string            `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	Theme   string            `json:"theme,omitempty" yaml:"theme,omitempty" toml:"theme,omitempty"`
	Variant string            `json:"variant,omitempty" yaml:"variant,omitempty" toml:"variant,omitempty"`
	CSSVars map[string]string `json:"css_vars,omitempty" yaml:"css_vars,omitempty" toml:"css_vars,omitempty"`
}

// DefaultConfig returns the stock settings: in-memory drafts under the
// autosave_ prefix, 16 MiB image/PDF uploads and 5 second notices.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Driver:     DriverMemory,
			QuotaBytes: DefaultQuotaBytes,
		},
		Upload: upload.DefaultPolicy(),
		Notifications: NotificationConfig{
			DismissAfter: Duration(notify.DefaultDismissAfter),
		},
		Autosave: AutosaveConfig{
			KeyPrefix: draft.DefaultKeyPrefix,
		},
	}
}

// LoadConfig reads a YAML, TOML or JSON file over DefaultConfig. Keys absent
// from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("erpforms: read config: %w", err)
	}
	cfg := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("erpforms: decode yaml config: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("erpforms: decode toml config: %w", err)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("erpforms: decode json config: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("erpforms: unsupported config extension %q", ext)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverFile, DriverSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			errs = append(errs, fmt.Errorf("storage.path is required for the %s driver", c.Storage.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not one of memory, file, sqlite", c.Storage.Driver))
	}
	if c.Storage.QuotaBytes < 0 {
		errs = append(errs, errors.New("storage.quota_bytes must not be negative"))
	}
	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, errors.New("upload.max_bytes must be positive"))
	}
	if c.Notifications.DismissAfter < 0 {
		errs = append(errs, errors.New("notifications.dismiss_after must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("erpforms: invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// OpenBackend opens the configured draft backend. The returned close
// function releases it and is never nil.
func (c StorageConfig) OpenBackend(logger *slog.Logger) (storage.Backend, func() error, error) {
	noop := func() error { return nil }
	switch c.Driver {
	case DriverMemory, "":
		return storage.NewMemory(c.QuotaBytes), noop, nil
	case DriverFile:
		store, err := filestore.Open(c.Path, filestore.WithLogger(logger))
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	case DriverSQLite:
		var opts []sqlite.Option
		if c.Origin != "" {
			opts = append(opts, sqlite.WithOrigin(c.Origin))
		}
		store, err := sqlite.Open(c.Path, opts...)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	default:
		return nil, noop, fmt.Errorf("erpforms: unknown storage driver %q", c.Driver)
	}
}

// RendererConfig converts the export section into a theme renderer config.
// It returns nil when no theme is configured.
func (c ExportConfig) RendererConfig() *theme.RendererConfig {
	if c.Theme == "" && c.Variant == "" && len(c.CSSVars) == 0 {
		return nil
	}
	vars := make(map[string]string, len(c.CSSVars))
	for key, value := range c.CSSVars {
		if !strings.HasPrefix(key, "--") {
			key = "--" + key
		}
		vars[key] = value
	}
	return &theme.RendererConfig{
		Theme:   c.Theme,
		Variant: c.Variant,
		CSSVars: vars,
	}
}
