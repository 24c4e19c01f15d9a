package ocr

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// createTestPNG creates a white PNG with a black bar, enough to look like a
// scanned cell.
func createTestPNG(width, height int) []byte {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	for x := width / 4; x < width*3/4; x++ {
		img.Set(x, height/2, color.Black)
	}

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func TestInspect(t *testing.T) {
	format, w, h, err := Inspect(createTestPNG(100, 50))
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if format != "png" || w != 100 || h != 50 {
		t.Errorf("Inspect() = %s %dx%d, want png 100x50", format, w, h)
	}

	if _, _, _, err := Inspect([]byte("not an image")); !errors.Is(err, ErrNotImage) {
		t.Errorf("Inspect(garbage) error = %v, want ErrNotImage", err)
	}
}

func TestRecognizable(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"cell", createTestPNG(100, 50), true},
		{"checkbox", createTestPNG(4, 4), false},
		{"garbage", []byte{1, 2, 3}, false},
	}

	for _, tt := range tests {
		if got := Recognizable(tt.data); got != tt.want {
			t.Errorf("Recognizable(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestConfigMode(t *testing.T) {
	if got := (Config{}).mode(); got != PSM_SINGLE_BLOCK {
		t.Errorf("Config{}.mode() = %v, want %v", got, PSM_SINGLE_BLOCK)
	}
	if got := (Config{Mode: PSM_SINGLE_LINE}).mode(); got != PSM_SINGLE_LINE {
		t.Errorf("mode() = %v, want %v", got, PSM_SINGLE_LINE)
	}
}
