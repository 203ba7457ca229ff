package upload

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/goliatone/go-erpforms/pkg/model"
)

// OpenFile reads the file at path into a descriptor. The MIME type comes
// from the extension, falling back to content sniffing.
func OpenFile(path string) (*model.FileDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("upload: open %s: %w", path, err)
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return &model.FileDescriptor{
		Name:     filepath.Base(path),
		Size:     int64(len(data)),
		MIMEType: normalizeMIME(mimeType),
		Content:  data,
	}, nil
}
