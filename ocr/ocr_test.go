//go:build ocr

package ocr

import "testing"

func newClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	client, err := New(cfg)
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	return client
}

func TestClient_RecognizeImage(t *testing.T) {
	client := newClient(t, Config{Language: "eng", Whitelist: "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"})
	defer client.Close()

	// a bar is no text; recognition only has to run
	if _, err := client.RecognizeImage(createTestPNG(100, 50)); err != nil {
		t.Errorf("RecognizeImage() error = %v", err)
	}

	text, err := client.RecognizeImage(createTestPNG(4, 4))
	if err != nil || text != "" {
		t.Errorf("RecognizeImage(checkbox) = %q, %v, want \"\", nil", text, err)
	}

	if _, err := client.RecognizeImage([]byte("junk")); err == nil {
		t.Error("RecognizeImage(junk) error = nil")
	}
}

func TestClient_Close(t *testing.T) {
	client := newClient(t, Config{})
	for i := 0; i < 2; i++ {
		if err := client.Close(); err != nil {
			t.Errorf("Close() #%d error = %v", i+1, err)
		}
	}
}
