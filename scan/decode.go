package scan

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	// Formats accepted for pasted, dropped and uploaded pictures.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrImageTooLarge is returned when a picture declares more pixels than
// allowed.
var ErrImageTooLarge = errors.New("scan: image too large")

// DecodeImage reads a still picture in any registered format. The header
// is checked first; pictures declaring more than maxPixels pixels are
// rejected with ErrImageTooLarge before any pixel data is decoded. A
// maxPixels of zero or less disables the check.
func DecodeImage(r io.Reader, maxPixels int) (image.Image, string, error) {
	if maxPixels > 0 {
		var head bytes.Buffer
		cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
		if err != nil {
			return nil, "", fmt.Errorf("scan: decode image: %w", err)
		}
		if cfg.Width <= 0 || cfg.Height <= 0 {
			return nil, "", fmt.Errorf("scan: decode image: empty %dx%d picture", cfg.Width, cfg.Height)
		}
		if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
			return nil, "", fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, maxPixels)
		}
		r = io.MultiReader(&head, r)
	}
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("scan: decode image: %w", err)
	}
	return img, format, nil
}
