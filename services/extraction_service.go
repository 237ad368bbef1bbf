package services

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// ExtractionService turns an uploaded report image into extracted text.
type ExtractionService interface {
	ExtractReport(ctx context.Context, dataURI string) (string, error)
}

type extractionServiceImpl struct {
	vision VisionModel
}

// NewExtractionService creates the extraction pipeline on top of a vision
// model.
func NewExtractionService(vision VisionModel) ExtractionService {
	return &extractionServiceImpl{vision: vision}
}

// ExtractReport validates the inline payload, sends it to the vision model
// with the fixed extraction instruction, and returns the model's text
// verbatim. The result is always plain text.
func (e *extractionServiceImpl) ExtractReport(ctx context.Context, dataURI string) (string, error) {
	payload, imageBytes, err := ParseImageDataURI(dataURI)
	if err != nil {
		return "", err
	}
	log.Printf("SERVICE: Extracting report from %s payload (%d bytes)", payload.MediaType, len(imageBytes))

	if e.vision == nil {
		return "", ErrServiceUnavailable
	}

	text, err := e.vision.AnalyzeImage(ctx, payload.MediaType, imageBytes, reportExtractionPrompt)
	if err != nil {
		return "", fmt.Errorf("report analysis failed: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
