// Package intake turns uploaded file bytes into an in-memory image that the page
// can render directly.
package intake

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"go-skin-detector/pkg/models"
)

// Loader reads an uploaded file into a displayable image
type Loader interface {
	// Load returns nil, nil when r holds no bytes (no file selected)
	Load(ctx context.Context, r io.Reader, filename string) (*models.Image, error)
}

// DataURILoader embeds the upload as a base64 data URI
type DataURILoader struct{}

// NewDataURILoader creates a loader
func NewDataURILoader() Loader {
	return &DataURILoader{}
}

func (l *DataURILoader) Load(ctx context.Context, r io.Reader, filename string) (*models.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	mime := mimetype.Detect(data).String()
	img := &models.Image{
		ID:       uuid.NewString(),
		Filename: filepath.Base(filename),
		MIMEType: mime,
		Size:     int64(len(data)),
		DataURI:  "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data),
	}

	// dimensions are best effort; any file is accepted
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		img.Width = cfg.Width
		img.Height = cfg.Height
	}

	return img, nil
}
