// Package encode writes rendered map images as PNG, JPEG or WebP.
package encode

import (
	"image"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Encoder encodes an image into file bytes.
type Encoder interface {
	// Encode encodes an image to bytes in the output format.
	Encode(img image.Image) ([]byte, error)

	// Format returns the format name (e.g. "jpeg", "png", "webp").
	Format() string

	// FileExtension returns the appropriate file extension.
	FileExtension() string
}

// NewEncoder creates an encoder for the given format and quality.
// Quality applies to JPEG and lossy WebP; quality 100 selects lossless WebP.
func NewEncoder(format string, quality int) (Encoder, error) {
	switch format {
	case "jpeg", "jpg":
		return &JPEGEncoder{Quality: quality}, nil
	case "png":
		return &PNGEncoder{}, nil
	case "webp":
		return newWebPEncoder(quality), nil
	default:
		return nil, errors.Newf("unsupported image format: %q (supported: jpeg, png, webp)", format)
	}
}

// ForPath creates an encoder matching the extension of path.
func ForPath(path string, quality int) (Encoder, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return nil, errors.Newf("output %q has no file extension", path)
	}
	return NewEncoder(ext, quality)
}
