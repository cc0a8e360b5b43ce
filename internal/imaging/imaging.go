// Package imaging decodes the image formats the upscaler accepts and
// prepares bitmaps for on-screen display.
package imaging

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"

	// Decoders for the remaining input formats in the open dialog filter.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// SupportedInputExtensions lists the file extensions accepted by the open
// dialog, matching the formats the external binary can read.
var SupportedInputExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp"}

// MaxPreviewEdge caps preview bitmaps. A 4x upscale of a modest photo easily
// exceeds 100 MP; the canvas only ever shows a fitted view, so previews are
// downscaled before display.
const MaxPreviewEdge = 1600

// IsSupportedInput reports whether the path carries a supported extension.
func IsSupportedInput(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range SupportedInputExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

// Decode reads and decodes an image file.
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// Dimensions returns the pixel size of an image without decoding its pixels.
func Dimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read image header %s: %w", filepath.Base(path), err)
	}
	return cfg.Width, cfg.Height, nil
}

// FitPreview downscales an image so neither edge exceeds MaxPreviewEdge,
// preserving aspect ratio. Images already within bounds are returned as is.
func FitPreview(img image.Image) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= MaxPreviewEdge && bounds.Dy() <= MaxPreviewEdge {
		return img
	}
	return resize.Thumbnail(MaxPreviewEdge, MaxPreviewEdge, img, resize.Lanczos3)
}

// JPEGQuality is used when re-encoding a result from memory.
const JPEGQuality = 95

// Encode writes img in the given output format. WEBP is produced by the
// external binary only; there is no encoder for it, so re-encoding a webp
// result from memory fails.
func Encode(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case "jpg", "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case "png":
		return png.Encode(w, img)
	default:
		return fmt.Errorf("no encoder for format: %s", format)
	}
}

// SaveImage encodes img to path, picking the encoder from the extension.
func SaveImage(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if err := Encode(f, img, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadPreview decodes a file and returns a display-sized bitmap.
func LoadPreview(path string) (image.Image, error) {
	img, err := Decode(path)
	if err != nil {
		return nil, err
	}
	return FitPreview(img), nil
}
