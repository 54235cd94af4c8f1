// Package signature validates and normalizes the hand-drawn signature
// captured by the seller form. The form ships the canvas as a data URI;
// the server never trusts it: bytes are sniffed, blank canvases are
// rejected, and oversized images are downscaled before storage.
package signature

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"net/http"
	"strings"

	"golang.org/x/image/draw"
)

// MaxDimension is the maximum width or height for stored signatures.
const MaxDimension = 1024

// ErrBlank is returned for a signature whose canvas holds no visible ink.
var ErrBlank = errors.New("signature is blank")

// AllowedMIME lists the accepted input MIME types.
var AllowedMIME = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
}

// Process decodes a signature data URI, validates the format by sniffing
// bytes, rejects blank canvases, downscales if larger than MaxDimension,
// and re-encodes as PNG. Returns the normalized data URI.
func Process(dataURI string) (string, error) {
	data, err := decodeDataURI(dataURI)
	if err != nil {
		return "", err
	}

	// Sniff actual MIME type from bytes (not trusting the URI prefix).
	detected := http.DetectContentType(data)
	if !AllowedMIME[detected] {
		return "", fmt.Errorf("unsupported signature format: %s (only PNG and JPEG accepted)", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decoding signature image: %w", err)
	}

	if isBlank(img) {
		return "", ErrBlank
	}

	img = downscale(img, MaxDimension)

	// Re-encode as PNG; the canvas background is transparent and must
	// stay that way for the print view.
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// decodeDataURI extracts the raw image bytes from a data URI.
func decodeDataURI(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "data:") {
		return nil, fmt.Errorf("signature must be a data URI")
	}
	idx := strings.Index(s, ",")
	if idx < 0 {
		return nil, fmt.Errorf("malformed data URI")
	}
	meta, payload := s[5:idx], s[idx+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("signature data URI must be base64-encoded")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 payload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrBlank
	}
	return data, nil
}

// isBlank reports whether the image holds no visible ink: every pixel is
// either fully transparent or near-white. Signature canvases start out
// transparent, so an untouched canvas decodes to all alpha-zero pixels.
func isBlank(img image.Image) bool {
	const whiteThreshold = 0xf000 // 16-bit channel values

	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			if r < whiteThreshold || g < whiteThreshold || b < whiteThreshold {
				return false
			}
		}
	}
	return true
}

// downscale resizes the image so neither dimension exceeds maxDim.
// Uses high-quality Catmull-Rom interpolation.
// Returns the original image if already within bounds.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	// Calculate new dimensions preserving aspect ratio.
	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}

	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}
