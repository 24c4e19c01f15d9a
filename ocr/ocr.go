//go:build ocr

// Package ocr recognizes text in figures of scanned checklists.
//
// This package wraps the Tesseract OCR engine via gosseract and is only
// compiled with the "ocr" build tag. It requires Tesseract to be installed
// on the system. On macOS, install via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Client wraps Tesseract for OCR operations. It is safe for concurrent use;
// recognitions are serialized.
type Client struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// New creates a new OCR client configured with cfg.
// The client should be closed when no longer needed to release resources.
func New(cfg Config) (*Client, error) {
	client := gosseract.NewClient()
	if cfg.Language != "" {
		if err := client.SetLanguage(strings.Split(cfg.Language, "+")...); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set language %q: %w", cfg.Language, err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(cfg.mode())); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if cfg.Whitelist != "" {
		if err := client.SetWhitelist(cfg.Whitelist); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set whitelist: %w", err)
		}
	}
	return &Client{client: client}, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

// RecognizeImage performs OCR on figure image data (PNG, TIFF, JPEG, BMP).
// Images too small to hold text yield "" without running Tesseract.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	if _, _, _, err := Inspect(imageData); err != nil {
		return "", err
	}
	if !Recognizable(imageData) {
		return "", nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}
	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}
