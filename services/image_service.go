package services

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/png" // register PNG decoding

	_ "golang.org/x/image/webp" // register WebP decoding
)

// jpegQuality matches a canvas quality factor of 0.7: a best-effort size
// reduction, not a guaranteed one.
const jpegQuality = 70

// NormalizedMediaType is the media type of every normalizer output.
const NormalizedMediaType = "image/jpeg"

// NormalizeImage re-encodes an uploaded image (JPEG, PNG or WebP) as a JPEG
// at fixed quality to bound the upload size. Pixel dimensions are preserved
// exactly. On decode failure the input is left alone and ErrImageDecode is
// returned so the caller keeps the original bytes.
func NormalizeImage(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to re-encode image: %w", err)
	}
	return buf.Bytes(), nil
}
