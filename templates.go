package erpforms

import (
	"io/fs"

	"github.com/goliatone/go-erpforms/pkg/export"
)

// EmbeddedTemplates exposes the printable document templates so callers can
// reuse or extend them without importing the export package directly.
func EmbeddedTemplates() fs.FS {
	return export.TemplatesFS()
}
