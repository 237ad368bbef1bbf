// Package client is the Go counterpart of the report assistant UI: it owns
// file selection, normalization, encoding, the extraction round-trip and the
// consultation chat stream against a running server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/QuirkyNerd/medical-rag-assistant/models"
)

// APIClient talks to the extraction and chat endpoints.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a client for the given server base URL, e.g.
// http://localhost:8080. A nil httpClient gets a sensible default.
func NewAPIClient(baseURL string, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	return &APIClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// ExtractReport posts the encoded payload and returns the extracted text.
// Any non-2xx status becomes an error carrying the server's message.
func (c *APIClient) ExtractReport(ctx context.Context, payload models.InlinePayload) (string, error) {
	body, err := json.Marshal(models.ExtractReportRequest{Base64: payload.DataURI()})
	if err != nil {
		return "", fmt.Errorf("failed to marshal extraction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/extract", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create extraction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp models.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return "", fmt.Errorf("server rejected extraction: %s", errResp.Error)
		}
		return "", fmt.Errorf("server responded with %d", resp.StatusCode)
	}

	var result models.ExtractReportResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode extraction response: %w", err)
	}
	return result.Result, nil
}

// ChatStream posts a consultation request and feeds the streamed answer to
// emit chunk by chunk as it arrives. Cancelling ctx closes the read and, via
// the request context, aborts server-side generation.
func (c *APIClient) ChatStream(ctx context.Context, chatReq models.ChatRequest, emit func(chunk string) error) error {
	body, err := json.Marshal(chatReq)
	if err != nil {
		return fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/chat", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp models.ChatErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("server rejected chat: %s", errResp.Error)
		}
		return fmt.Errorf("server responded with %d", resp.StatusCode)
	}

	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if emitErr := emit(string(buf[:n])); emitErr != nil {
				return emitErr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("chat stream read failed: %w", err)
		}
	}
}
