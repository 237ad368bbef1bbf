package services

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/QuirkyNerd/medical-rag-assistant/models"
)

const dataURIScheme = "data:"

// EncodeInlinePayload wraps raw bytes into an inline payload tagged with the
// declared media type. The base64 segment round-trips byte-for-byte.
func EncodeInlinePayload(data []byte, mediaType string) models.InlinePayload {
	return models.InlinePayload{
		MediaType: mediaType,
		Data:      base64.StdEncoding.EncodeToString(data),
	}
}

// ParseImageDataURI validates and decodes a data URI for the extraction path.
// Checks run in a fixed order: scheme marker, header/data split, image media
// type, base64 payload. The first failure wins.
func ParseImageDataURI(raw string) (models.InlinePayload, []byte, error) {
	if raw == "" || !strings.HasPrefix(raw, dataURIScheme) {
		return models.InlinePayload{}, nil, ErrInvalidPayload
	}

	header, data, found := strings.Cut(raw, ",")
	if !found || header == "" || data == "" {
		return models.InlinePayload{}, nil, ErrMalformedPayload
	}

	mediaType := mediaTypeFromHeader(header)
	if mediaType == "" || !strings.HasPrefix(mediaType, "image/") {
		return models.InlinePayload{}, nil, ErrUnsupportedMediaType
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return models.InlinePayload{}, nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	return models.InlinePayload{MediaType: mediaType, Data: data}, decoded, nil
}

// mediaTypeFromHeader pulls the media-type token out of a data-URI header
// such as "data:image/png;base64". The header must carry an encoding token;
// without the semicolon there is no extractable media type.
func mediaTypeFromHeader(header string) string {
	rest := strings.TrimPrefix(header, dataURIScheme)
	mediaType, _, found := strings.Cut(rest, ";")
	if !found {
		return ""
	}
	return mediaType
}
