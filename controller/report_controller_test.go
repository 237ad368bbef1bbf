package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/QuirkyNerd/medical-rag-assistant/models"
	"github.com/QuirkyNerd/medical-rag-assistant/services"
)

type stubExtraction struct {
	text string
	err  error
}

func (s *stubExtraction) ExtractReport(ctx context.Context, dataURI string) (string, error) {
	return s.text, s.err
}

type stubChat struct {
	chunks []string
	err    error
}

func (s *stubChat) StreamAnswer(ctx context.Context, req models.ChatRequest, emit func(string) error) error {
	if len(req.Messages) == 0 {
		return services.ErrEmptyConversation
	}
	for _, chunk := range s.chunks {
		if err := emit(chunk); err != nil {
			return err
		}
	}
	return s.err
}

func newTestRouter(extraction services.ExtractionService, chat services.ChatService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	c := NewReportController(extraction, chat)
	router.POST("/api/v1/extract", c.ExtractReport)
	router.POST("/api/v1/chat", c.Chat)
	return router
}

func doJSONRequest(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, data []byte, out any) {
	t.Helper()
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("failed to decode response %q: %v", data, err)
	}
}

func TestExtractEndpointSuccess(t *testing.T) {
	router := newTestRouter(&stubExtraction{text: "Patient: Jane Doe, Hemoglobin 13.2 g/dL"}, &stubChat{})

	rec := doJSONRequest(t, router, "/api/v1/extract", models.ExtractReportRequest{Base64: "data:image/png;base64,aWlp"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.Bytes())
	}

	var resp models.ExtractReportResponse
	decodeJSON(t, rec.Body.Bytes(), &resp)
	if resp.Result != "Patient: Jane Doe, Hemoglobin 13.2 g/dL" {
		t.Fatalf("result = %q", resp.Result)
	}
}

func TestExtractEndpointErrorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid payload", services.ErrInvalidPayload, http.StatusBadRequest},
		{"malformed payload", services.ErrMalformedPayload, http.StatusBadRequest},
		{"unsupported media type", services.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType},
		{"model unconfigured", services.ErrServiceUnavailable, http.StatusServiceUnavailable},
		{"empty model response", services.ErrEmptyResponse, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubExtraction{err: tt.err}, &stubChat{})

			rec := doJSONRequest(t, router, "/api/v1/extract", models.ExtractReportRequest{Base64: "whatever"})
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if rec.Code < 400 {
				t.Fatalf("extraction failure must never be 2xx/3xx, got %d", rec.Code)
			}

			var resp models.ErrorResponse
			decodeJSON(t, rec.Body.Bytes(), &resp)
			if resp.Error == "" {
				t.Fatal("error envelope is missing the message")
			}
		})
	}
}

func TestChatEndpointStreamsPlainText(t *testing.T) {
	router := newTestRouter(&stubExtraction{}, &stubChat{chunks: []string{"Hello ", "from ", "the model"}})

	rec := doJSONRequest(t, router, "/api/v1/chat", models.ChatRequest{
		Messages: []models.ChatMessage{{Role: "user", Content: "hi"}},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.Bytes())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Fatalf("content type = %q", ct)
	}
	if got := rec.Body.String(); got != "Hello from the model" {
		t.Fatalf("streamed body = %q", got)
	}
}

func TestChatEndpointEmptyMessages(t *testing.T) {
	router := newTestRouter(&stubExtraction{}, &stubChat{chunks: []string{"never sent"}})

	rec := doJSONRequest(t, router, "/api/v1/chat", models.ChatRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp models.ChatErrorResponse
	decodeJSON(t, rec.Body.Bytes(), &resp)
	if resp.Success {
		t.Fatal("error envelope claims success")
	}
	if resp.Error == "" || resp.Timestamp == "" {
		t.Fatalf("error envelope incomplete: %+v", resp)
	}
}

func TestChatEndpointPreStreamFailure(t *testing.T) {
	router := newTestRouter(&stubExtraction{}, &stubChat{err: errors.New("model unavailable")})

	rec := doJSONRequest(t, router, "/api/v1/chat", models.ChatRequest{
		Messages: []models.ChatMessage{{Role: "user", Content: "hi"}},
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var resp models.ChatErrorResponse
	decodeJSON(t, rec.Body.Bytes(), &resp)
	if resp.Success || resp.Error == "" || resp.Timestamp == "" {
		t.Fatalf("error envelope incomplete: %+v", resp)
	}
}

func TestChatEndpointMidStreamErrorKeepsStreamedPrefix(t *testing.T) {
	router := newTestRouter(&stubExtraction{}, &stubChat{chunks: []string{"partial "}, err: errors.New("stream died")})

	rec := doJSONRequest(t, router, "/api/v1/chat", models.ChatRequest{
		Messages: []models.ChatMessage{{Role: "user", Content: "hi"}},
	})

	// Once streaming starts, the status is already committed; the stream
	// must terminate cleanly with whatever was sent.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want committed 200", rec.Code)
	}
	if got := rec.Body.String(); got != "partial " {
		t.Fatalf("streamed body = %q", got)
	}
}
