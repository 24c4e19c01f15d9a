//go:build !ocr

// Package ocr recognizes text in figures of scanned checklists.
//
// Built without the "ocr" tag, New always fails with ErrOCRNotEnabled and
// figures stay unread. Rebuild with Tesseract installed to enable it:
//
//	go build -tags ocr ./cmd/gridmatch
package ocr

// Client stands in for the Tesseract client.
type Client struct{}

// New reports ErrOCRNotEnabled.
func New(cfg Config) (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close does nothing; a nil client is fine.
func (c *Client) Close() error {
	return nil
}

// RecognizeImage reports ErrOCRNotEnabled.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	return "", ErrOCRNotEnabled
}
