package services

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"
)

func TestEncodeInlinePayloadRoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		[]byte("hello"),
		{0x00, 0xff, 0x10, 0x80},
		bytes.Repeat([]byte{0xab}, 5*1024*1024),
	}

	for _, src := range cases {
		payload := EncodeInlinePayload(src, "image/png")
		if payload.MediaType != "image/png" {
			t.Fatalf("media type changed during encoding: %q", payload.MediaType)
		}
		decoded, err := base64.StdEncoding.DecodeString(payload.Data)
		if err != nil {
			t.Fatalf("payload data is not valid base64: %v", err)
		}
		if !bytes.Equal(decoded, src) {
			t.Fatalf("round trip mismatch for %d-byte input", len(src))
		}
	}
}

func TestEncodeInlinePayloadDataURI(t *testing.T) {
	payload := EncodeInlinePayload([]byte("abc"), "image/jpeg")
	want := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("abc"))
	if got := payload.DataURI(); got != want {
		t.Fatalf("DataURI() = %q, want %q", got, want)
	}
}

func TestParseImageDataURIValidationOrder(t *testing.T) {
	valid := EncodeInlinePayload([]byte("fake image bytes"), "image/png").DataURI()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty payload", "", ErrInvalidPayload},
		{"missing scheme", "image/png;base64,aGVsbG8=", ErrInvalidPayload},
		{"no separator", "data:image/png;base64", ErrMalformedPayload},
		{"empty data segment", "data:image/png;base64,", ErrMalformedPayload},
		{"pdf rejected despite valid bytes", EncodeInlinePayload([]byte("%PDF-1.4"), "application/pdf").DataURI(), ErrUnsupportedMediaType},
		{"no media type", "data:;base64,aGVsbG8=", ErrUnsupportedMediaType},
		{"no encoding token", "data:image/png,aGVsbG8=", ErrUnsupportedMediaType},
		{"bad base64", "data:image/png;base64,!!notbase64!!", ErrMalformedPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseImageDataURI(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseImageDataURI(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}

	payload, decoded, err := ParseImageDataURI(valid)
	if err != nil {
		t.Fatalf("valid data URI rejected: %v", err)
	}
	if payload.MediaType != "image/png" {
		t.Fatalf("media type = %q, want image/png", payload.MediaType)
	}
	if string(decoded) != "fake image bytes" {
		t.Fatalf("decoded bytes = %q", decoded)
	}
}
