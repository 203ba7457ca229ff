// Package upload enforces file constraints on selection and drives the image
// preview for file inputs.
package upload

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-erpforms/pkg/messages"
	"github.com/goliatone/go-erpforms/pkg/model"
)

// DefaultMaxBytes is the largest accepted upload (16 MiB).
const DefaultMaxBytes int64 = 16 * 1024 * 1024

// DefaultAllowedTypes is the closed MIME allow-list.
var DefaultAllowedTypes = []string{
	"image/png",
	"image/jpg",
	"image/jpeg",
	"image/gif",
	"application/pdf",
}

var (
	// ErrTooLarge matches a FileError rejecting the file size.
	ErrTooLarge = errors.New("upload: file too large")
	// ErrUnsupportedType matches a FileError rejecting the MIME type.
	ErrUnsupportedType = errors.New("upload: unsupported file type")
)

// ErrorKind names the constraint a file failed.
type ErrorKind string

const (
	TooLarge        ErrorKind = "too_large"
	UnsupportedType ErrorKind = "unsupported_type"
)

// FileError reports a rejected file selection.
type FileError struct {
	Kind     ErrorKind
	File     string
	Size     int64
	MIMEType string
}

func (e *FileError) Error() string {
	switch e.Kind {
	case TooLarge:
		return fmt.Sprintf("upload: %q is %d bytes: %v", e.File, e.Size, ErrTooLarge)
	default:
		return fmt.Sprintf("upload: %q has type %q: %v", e.File, e.MIMEType, ErrUnsupportedType)
	}
}

// Unwrap exposes the matching sentinel.
func (e *FileError) Unwrap() error {
	if e.Kind == TooLarge {
		return ErrTooLarge
	}
	return ErrUnsupportedType
}

// MessageKey returns the catalog key shown to the user for this failure.
func (e *FileError) MessageKey() messages.Key {
	if e.Kind == TooLarge {
		return messages.FileTooLarge
	}
	return messages.FileUnsupported
}

// Policy holds the limits a Checker enforces.
type Policy struct {
	MaxBytes     int64    `json:"max_bytes" yaml:"max_bytes" toml:"max_bytes"`
	AllowedTypes []string `json:"allowed_types" yaml:"allowed_types" toml:"allowed_types"`
}

// DefaultPolicy returns the 16 MiB / image-or-PDF policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxBytes:     DefaultMaxBytes,
		AllowedTypes: append([]string(nil), DefaultAllowedTypes...),
	}
}

// Checker validates file selections against a Policy.
type Checker struct {
	maxBytes int64
	allowed  map[string]struct{}
}

// NewChecker builds a checker. Zero fields in policy fall back to the
// defaults.
func NewChecker(policy Policy) *Checker {
	if policy.MaxBytes <= 0 {
		policy.MaxBytes = DefaultMaxBytes
	}
	if len(policy.AllowedTypes) == 0 {
		policy.AllowedTypes = DefaultAllowedTypes
	}
	allowed := make(map[string]struct{}, len(policy.AllowedTypes))
	for _, mime := range policy.AllowedTypes {
		if mime = normalizeMIME(mime); mime != "" {
			allowed[mime] = struct{}{}
		}
	}
	return &Checker{maxBytes: policy.MaxBytes, allowed: allowed}
}

// Check returns nil when file is acceptable. Size is checked before type, so
// an oversized file of an unsupported type reports TooLarge. A nil file
// (nothing selected) is acceptable.
func (c *Checker) Check(file *model.FileDescriptor) error {
	if file == nil {
		return nil
	}
	if file.Size > c.maxBytes {
		return &FileError{Kind: TooLarge, File: file.Name, Size: file.Size, MIMEType: file.MIMEType}
	}
	if _, ok := c.allowed[normalizeMIME(file.MIMEType)]; !ok {
		return &FileError{Kind: UnsupportedType, File: file.Name, Size: file.Size, MIMEType: file.MIMEType}
	}
	return nil
}

// PreviewRequested reports whether an accepted file should get an image
// preview.
func (c *Checker) PreviewRequested(file *model.FileDescriptor) bool {
	return file != nil && c.Check(file) == nil && file.IsImage()
}

// MaxBytes returns the enforced size limit.
func (c *Checker) MaxBytes() int64 {
	return c.maxBytes
}

func normalizeMIME(mime string) string {
	if idx := strings.IndexByte(mime, ';'); idx >= 0 {
		mime = mime[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mime))
}
