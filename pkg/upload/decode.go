package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	"github.com/goliatone/go-erpforms/pkg/model"
)

// ThumbnailBox bounds the rendered preview on both axes.
const ThumbnailBox = 200

// Preview is a decoded image ready for display.
type Preview struct {
	ID       string
	Input    string
	FileName string
	// DataURL embeds the original bytes; Width and Height are the displayed
	// size within ThumbnailBox.
	DataURL string
	Width   int
	Height  int
	// Source dimensions of the decoded image.
	SourceWidth  int
	SourceHeight int
}

var errNoContent = errors.New("upload: file has no content")

// decodePreview reads the image header, sizes the thumbnail and encodes the
// payload as a data URL. It honours ctx cancellation between steps.
func decodePreview(ctx context.Context, file *model.FileDescriptor) (Preview, error) {
	if file == nil || len(file.Content) == 0 {
		return Preview{}, errNoContent
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(file.Content))
	if err != nil {
		return Preview{}, fmt.Errorf("upload: decode %q: %w", file.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return Preview{}, err
	}

	mime := normalizeMIME(file.MIMEType)
	if mime == "" {
		mime = http.DetectContentType(file.Content)
	}
	width, height := fitBox(cfg.Width, cfg.Height, ThumbnailBox)
	preview := Preview{
		FileName:     file.Name,
		DataURL:      "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(file.Content),
		Width:        width,
		Height:       height,
		SourceWidth:  cfg.Width,
		SourceHeight: cfg.Height,
	}
	if err := ctx.Err(); err != nil {
		return Preview{}, err
	}
	return preview, nil
}

// fitBox scales w x h down to fit a box x box square, keeping the aspect
// ratio. Images already inside the box keep their size.
func fitBox(w, h, box int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	if w <= box && h <= box {
		return w, h
	}
	if w >= h {
		scaled := h * box / w
		if scaled < 1 {
			scaled = 1
		}
		return box, scaled
	}
	scaled := w * box / h
	if scaled < 1 {
		scaled = 1
	}
	return scaled, box
}
