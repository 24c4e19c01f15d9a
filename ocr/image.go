package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ErrNotImage is returned for figure data that is not an encoded image.
var ErrNotImage = errors.New("figure data is not a supported image")

// minSide is the smallest image side worth running recognition on, in
// pixels. Checkbox glyphs and rules drawn as images are smaller.
const minSide = 8

// Inspect decodes the image header of figure data and returns its format
// name and size.
func Inspect(data []byte) (format string, width, height int, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return format, cfg.Width, cfg.Height, nil
}

// Recognizable reports whether figure data is an image large enough to
// hold text.
func Recognizable(data []byte) bool {
	_, w, h, err := Inspect(data)
	return err == nil && w >= minSide && h >= minSide
}
