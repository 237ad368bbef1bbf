package services

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/genai"
)

// VisionModel analyzes a single inline image with a fixed instruction and
// returns the extracted text.
type VisionModel interface {
	AnalyzeImage(ctx context.Context, mediaType string, data []byte, instruction string) (string, error)
}

// TextStreamer generates text for a single combined prompt and feeds it to
// emit chunk by chunk as the model produces it.
type TextStreamer interface {
	StreamText(ctx context.Context, prompt string, emit func(chunk string) error) error
}

// GeminiService wraps the Gemini client behind the two model interfaces the
// pipelines consume.
type GeminiService struct {
	client      *genai.Client
	visionModel string
	chatModel   string
}

// NewGeminiService connects to the Gemini API. The API key must be present;
// there is no fallback credential.
func NewGeminiService(ctx context.Context, apiKey, visionModel, chatModel string) (*GeminiService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing API key", ErrServiceUnavailable)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiService{
		client:      client,
		visionModel: visionModel,
		chatModel:   chatModel,
	}, nil
}

// AnalyzeImage sends one synchronous generate call with the instruction text
// and the inline image, and returns the model's text verbatim.
func (g *GeminiService) AnalyzeImage(ctx context.Context, mediaType string, data []byte, instruction string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(instruction),
		genai.NewPartFromBytes(data, mediaType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	result, err := g.client.Models.GenerateContent(ctx, g.visionModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}
	return result.Text(), nil
}

// StreamText runs a streaming generate call for the prompt. Each chunk of
// model output is passed to emit; a model-side error mid-stream stops the
// iteration and is returned to the caller. Cancelling ctx aborts generation.
func (g *GeminiService) StreamText(ctx context.Context, prompt string, emit func(chunk string) error) error {
	for result, err := range g.client.Models.GenerateContentStream(ctx, g.chatModel, genai.Text(prompt), nil) {
		if err != nil {
			return fmt.Errorf("gemini stream failed: %w", err)
		}
		chunk := result.Text()
		if chunk == "" {
			continue
		}
		if err := emit(chunk); err != nil {
			log.Printf("SERVICE: Stopping stream, caller rejected chunk: %v", err)
			return err
		}
	}
	return nil
}
