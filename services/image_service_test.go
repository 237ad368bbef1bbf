package services

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodeTestImage(t *testing.T, width, height int, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 40), G: uint8(y * 40), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestNormalizeImagePreservesDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		encode        func(*bytes.Buffer, image.Image) error
	}{
		{"png", 6, 4, func(buf *bytes.Buffer, img image.Image) error { return png.Encode(buf, img) }},
		{"jpeg", 5, 7, func(buf *bytes.Buffer, img image.Image) error {
			return jpeg.Encode(buf, img, &jpeg.Options{Quality: 95})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := encodeTestImage(t, tt.width, tt.height, tt.encode)

			out, err := NormalizeImage(src)
			if err != nil {
				t.Fatalf("NormalizeImage failed: %v", err)
			}

			cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
			if err != nil {
				t.Fatalf("normalized output does not decode: %v", err)
			}
			if format != "jpeg" {
				t.Fatalf("normalized format = %q, want jpeg", format)
			}
			if cfg.Width != tt.width || cfg.Height != tt.height {
				t.Fatalf("dimensions changed: got %dx%d, want %dx%d", cfg.Width, cfg.Height, tt.width, tt.height)
			}
		})
	}
}

// tinyWebP is a hand-assembled 1x1 lossy WebP; x/image ships no WebP
// encoder, so the fixture is embedded as base64.
const tinyWebP = "UklGRiQAAABXRUJQVlA4IBgAAAAwAQCdASoBAAEAAwA0JaQAA3AA/vuUAAA="

func TestNormalizeImageWebPInput(t *testing.T) {
	src, err := base64.StdEncoding.DecodeString(tinyWebP)
	if err != nil {
		t.Fatalf("fixture is not valid base64: %v", err)
	}

	out, err := NormalizeImage(src)
	if err != nil {
		t.Fatalf("NormalizeImage failed on webp input: %v", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("normalized output does not decode: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("normalized format = %q, want jpeg", format)
	}
	if cfg.Width != 1 || cfg.Height != 1 {
		t.Fatalf("dimensions changed: got %dx%d, want 1x1", cfg.Width, cfg.Height)
	}
}

func TestNormalizeImageDecodeError(t *testing.T) {
	_, err := NormalizeImage([]byte("this is not an image"))
	if !errors.Is(err, ErrImageDecode) {
		t.Fatalf("expected ErrImageDecode, got %v", err)
	}
}
