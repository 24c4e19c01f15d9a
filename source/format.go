package source

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Format represents a supported input format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// JSON indicates a page dump: a JSON array of pages or one page per line.
	JSON
	// PDF indicates a PDF document.
	PDF
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case JSON:
		return "JSON"
	case PDF:
		return "PDF"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case JSON:
		return ".json"
	case PDF:
		return ".pdf"
	default:
		return ""
	}
}

// Detect determines the format from the filename extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return PDF
	case ".json", ".jsonl", ".ndjson":
		return JSON
	default:
		return Unknown
	}
}

// DetectFromMagic checks leading bytes to determine the format.
// Returns Unknown if the format cannot be determined from them alone.
func DetectFromMagic(data []byte) Format {
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return PDF
	}

	data = bytes.TrimLeft(data, " \t\r\n")
	// UTF-8 byte order mark
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if len(data) > 0 && (data[0] == '{' || data[0] == '[') {
		return JSON
	}
	return Unknown
}

// DetectFromReader reads up to 512 bytes from the start of r and inspects
// them.
func DetectFromReader(r io.ReaderAt) (Format, error) {
	magic := make([]byte, 512)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	return DetectFromMagic(magic[:n]), nil
}
