package services

import "errors"

// Sentinel errors for the extraction and chat pipelines. Handlers match on
// these with errors.Is to pick a status code; the wrapped detail becomes the
// human-readable message.
var (
	// ErrInvalidPayload means the upload payload is missing or does not
	// start with the data: scheme marker.
	ErrInvalidPayload = errors.New("invalid or missing base64 image data")

	// ErrMalformedPayload means the data URI could not be split into a
	// header and a data segment, or the data segment is not valid base64.
	ErrMalformedPayload = errors.New("malformed base64 data")

	// ErrUnsupportedMediaType means the declared media type is not an
	// image type; the extraction path only accepts images.
	ErrUnsupportedMediaType = errors.New("only image MIME types are supported (e.g., image/jpeg, image/png)")

	// ErrServiceUnavailable means the generative model is not configured.
	ErrServiceUnavailable = errors.New("generative model is not configured")

	// ErrEmptyResponse means the model returned no usable text.
	ErrEmptyResponse = errors.New("empty response from model")

	// ErrImageDecode means the uploaded image bytes could not be decoded.
	ErrImageDecode = errors.New("could not decode image")

	// ErrEmptyConversation means a chat request arrived with no messages.
	ErrEmptyConversation = errors.New("conversation must contain at least one message")
)
