package controller

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/QuirkyNerd/medical-rag-assistant/models"
	"github.com/QuirkyNerd/medical-rag-assistant/services"
)

// ReportController handles the HTTP surface of the report assistant: one
// synchronous extraction endpoint and one streaming chat endpoint.
type ReportController struct {
	extraction services.ExtractionService
	chat       services.ChatService
}

// NewReportController injects the service dependencies, called from main.go.
func NewReportController(extraction services.ExtractionService, chat services.ChatService) *ReportController {
	return &ReportController{
		extraction: extraction,
		chat:       chat,
	}
}

// ExtractReport is the Gin handler for POST /api/v1/extract. The body holds a
// single data URI; the response is {result} on success or {error} on failure.
func (c *ReportController) ExtractReport(ctx *gin.Context) {
	var req models.ExtractReportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	text, err := c.extraction.ExtractReport(ctx.Request.Context(), req.Base64)
	if err != nil {
		log.Printf("CONTROLLER: Report extraction failed: %v", err)
		ctx.JSON(extractionStatus(err), models.ErrorResponse{Error: err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, models.ExtractReportResponse{Result: text})
}

// extractionStatus maps pipeline errors onto HTTP statuses. Everything is
// non-2xx; validation problems are the caller's fault, the rest are upstream.
func extractionStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidPayload), errors.Is(err, services.ErrMalformedPayload):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, services.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Chat is the Gin handler for POST /api/v1/chat. On success the answer is
// forwarded as a chunked text/plain stream the caller can read incrementally;
// failures before the first chunk produce a JSON envelope instead.
func (c *ReportController) Chat(ctx *gin.Context) {
	var req models.ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		chatError(ctx, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	streaming := false
	emit := func(chunk string) error {
		if !streaming {
			streaming = true
			ctx.Header("Content-Type", "text/plain; charset=utf-8")
			ctx.Header("X-Stream-Data", "true")
			ctx.Status(http.StatusOK)
		}
		if _, err := ctx.Writer.WriteString(chunk); err != nil {
			return err
		}
		ctx.Writer.Flush()
		return nil
	}

	err := c.chat.StreamAnswer(ctx.Request.Context(), req, emit)
	if err == nil {
		// Natural completion; Gin closes the stream when the handler returns.
		return
	}

	if streaming {
		// The headers are gone; all that is left is to terminate the stream
		// cleanly rather than dangle it open.
		log.Printf("CONTROLLER: Chat stream aborted mid-answer: %v", err)
		return
	}

	log.Printf("CONTROLLER: Chat request failed before streaming: %v", err)
	if errors.Is(err, services.ErrEmptyConversation) {
		chatError(ctx, http.StatusBadRequest, err.Error())
		return
	}
	chatError(ctx, http.StatusInternalServerError, err.Error())
}

func chatError(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, models.ChatErrorResponse{
		Success:   false,
		Error:     message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
