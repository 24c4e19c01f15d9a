package ocr

import "errors"

// ErrOCRNotEnabled is returned when OCR functions are called but OCR support
// was not compiled in. Rebuild with -tags ocr to enable OCR support.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Page segmentation modes used for figures.
const (
	PSM_AUTO         PageSegMode = 3  // Fully automatic
	PSM_SINGLE_BLOCK PageSegMode = 6  // Single uniform block of text
	PSM_SINGLE_LINE  PageSegMode = 7  // Single text line
	PSM_SINGLE_WORD  PageSegMode = 8  // Single word
	PSM_SPARSE_TEXT  PageSegMode = 11 // Find as much text as possible
)

// PageSegMode controls how Tesseract analyzes an image's layout.
type PageSegMode int

// Config configures a Client.
type Config struct {
	// Language is one or more Tesseract languages joined by "+" ("eng+fra").
	// Empty means Tesseract's default.
	Language string
	// Mode defaults to PSM_SINGLE_BLOCK: a figure is one table cell.
	Mode PageSegMode
	// Whitelist restricts recognition to these characters when set.
	Whitelist string
}

func (c Config) mode() PageSegMode {
	if c.Mode == 0 {
		return PSM_SINGLE_BLOCK
	}
	return c.Mode
}
