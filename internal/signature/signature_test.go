package signature

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

// createSignaturePNG draws a diagonal dark stroke on a transparent canvas,
// approximating what a signature pad produces.
func createSignaturePNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w && i < h; i++ {
		img.Set(i, i, color.RGBA{0, 0, 0, 255})
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func createBlankPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func createWhitePNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func toDataURI(data []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
}

func TestProcessValidSignature(t *testing.T) {
	uri := toDataURI(createSignaturePNG(800, 200))

	out, err := Process(uri)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !strings.HasPrefix(out, "data:image/png;base64,") {
		t.Errorf("expected PNG data URI, got prefix %q", out[:30])
	}

	// Output must decode back to an image.
	payload := strings.TrimPrefix(out, "data:image/png;base64,")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatalf("decoding output payload: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("decoding output PNG: %v", err)
	}
}

func TestProcessBlankCanvas(t *testing.T) {
	for name, data := range map[string][]byte{
		"transparent": createBlankPNG(800, 200),
		"white":       createWhitePNG(800, 200),
	} {
		_, err := Process(toDataURI(data))
		if !errors.Is(err, ErrBlank) {
			t.Errorf("%s canvas: expected ErrBlank, got %v", name, err)
		}
	}
}

func TestProcessDownscale(t *testing.T) {
	uri := toDataURI(createSignaturePNG(2048, 2048))

	out, err := Process(uri)
	if err != nil {
		t.Fatalf("Process large signature: %v", err)
	}

	payload := strings.TrimPrefix(out, "data:image/png;base64,")
	data, _ := base64.StdEncoding.DecodeString(payload)
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() > MaxDimension || bounds.Dy() > MaxDimension {
		t.Errorf("expected max %dx%d, got %dx%d", MaxDimension, MaxDimension, bounds.Dx(), bounds.Dy())
	}
}

func TestProcessSmallImageNotUpscaled(t *testing.T) {
	uri := toDataURI(createSignaturePNG(50, 50))

	out, err := Process(uri)
	if err != nil {
		t.Fatalf("Process small signature: %v", err)
	}

	payload := strings.TrimPrefix(out, "data:image/png;base64,")
	data, _ := base64.StdEncoding.DecodeString(payload)
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 50 || bounds.Dy() != 50 {
		t.Errorf("small signature should not be resized: got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestProcessRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{"not a data URI", "http://example.com/sig.png"},
		{"no comma", "data:image/png;base64"},
		{"not base64", "data:image/png;base64,!!!"},
		{"not an image", toDataURI([]byte("not an image at all, just text"))},
		{"gif rejected", toDataURI([]byte("GIF89a..."))},
		{"empty payload", "data:image/png;base64,"},
	}

	for _, tt := range tests {
		if _, err := Process(tt.uri); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}
