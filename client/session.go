package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/QuirkyNerd/medical-rag-assistant/models"
	"github.com/QuirkyNerd/medical-rag-assistant/services"
)

// SessionState is the lifecycle position of a report session.
type SessionState int

const (
	StateIdle SessionState = iota
	StateFileSelected
	StateNormalizing
	StateEncoded
	StateExtracting
	StateExtracted
	StateFailed
	StateConfirmed
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFileSelected:
		return "file-selected"
	case StateNormalizing:
		return "normalizing"
	case StateEncoded:
		return "encoded"
	case StateExtracting:
		return "extracting"
	case StateExtracted:
		return "extracted"
	case StateFailed:
		return "failed"
	case StateConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// MaxFileSizeBytes is the upload size cap, checked before anything leaves
// the client.
const MaxFileSizeBytes = 5 * 1024 * 1024

var supportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

var supportedDocTypes = map[string]bool{
	"application/pdf": true,
}

var (
	// ErrNoFileSelected means an operation needs a selected file first.
	ErrNoFileSelected = errors.New("no file selected")

	// ErrExtractionInFlight means a second extraction was attempted while
	// one is still outstanding.
	ErrExtractionInFlight = errors.New("an extraction request is already in flight")

	// ErrNotExtracted means edit/confirm was attempted before a successful
	// extraction.
	ErrNotExtracted = errors.New("no extracted report to work with")

	// ErrNotConfirmed means chat was attempted before confirming a report.
	ErrNotConfirmed = errors.New("report has not been confirmed")

	// ErrSessionCleared means the session was cleared while an extraction
	// was in flight; the result was discarded.
	ErrSessionCleared = errors.New("session was cleared during extraction")
)

// ReportSession owns the selected file, the encoded payload and the
// extracted text as an explicit state machine: Idle → FileSelected →
// Normalizing → Encoded → Extracting → Extracted/Failed → Confirmed, with
// Clear returning to Idle from anywhere.
type ReportSession struct {
	api *APIClient

	mu        sync.Mutex
	state     SessionState
	file      *models.UploadedFile
	payload   *models.InlinePayload
	extracted string
	confirmed string

	// LastExtractionTime is how long the most recent successful extraction
	// round-trip took.
	LastExtractionTime time.Duration
}

// NewReportSession starts a session in the Idle state.
func NewReportSession(api *APIClient) *ReportSession {
	return &ReportSession{
		api:   api,
		state: StateIdle,
	}
}

// State returns the current lifecycle position.
func (s *ReportSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SelectFile validates the upload and moves Idle → FileSelected. Size and
// media type are checked here, before any network traffic; an invalid file
// never leaves Idle.
func (s *ReportSession) SelectFile(name, mediaType string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateExtracting {
		return ErrExtractionInFlight
	}

	file := models.UploadedFile{Name: name, MediaType: mediaType, Data: data}
	if file.Size() > MaxFileSizeBytes {
		return fmt.Errorf("file size too large (max %dMB)", MaxFileSizeBytes/(1024*1024))
	}
	if !supportedImageTypes[mediaType] && !supportedDocTypes[mediaType] {
		return fmt.Errorf("unsupported file format %q: please upload JPEG, PNG, WebP, or PDF", mediaType)
	}

	s.file = &file
	s.payload = nil
	s.extracted = ""
	s.state = StateFileSelected
	return nil
}

// Prepare normalizes an image upload and encodes the result as an inline
// payload: FileSelected → Normalizing → Encoded. Documents skip the
// normalization step. A decode failure leaves the original file untouched
// and the session back in FileSelected.
func (s *ReportSession) Prepare() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateFileSelected {
		return fmt.Errorf("cannot prepare from state %s", s.state)
	}
	if s.file == nil {
		return ErrNoFileSelected
	}

	data := s.file.Data
	mediaType := s.file.MediaType

	if supportedImageTypes[mediaType] {
		s.state = StateNormalizing
		normalized, err := services.NormalizeImage(data)
		if err != nil {
			s.state = StateFileSelected
			return err
		}
		data = normalized
		mediaType = services.NormalizedMediaType
	}

	payload := services.EncodeInlinePayload(data, mediaType)
	s.payload = &payload
	s.state = StateEncoded
	return nil
}

// Extract calls the extraction endpoint with the encoded payload: Encoded →
// Extracting → Extracted, or Failed on any error. Only one extraction may be
// outstanding; duplicate submissions are rejected until this one resolves.
// Retrying from Failed is allowed.
func (s *ReportSession) Extract(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateExtracting {
		s.mu.Unlock()
		return ErrExtractionInFlight
	}
	if s.state != StateEncoded && s.state != StateFailed {
		s.mu.Unlock()
		return fmt.Errorf("cannot extract from state %s", s.state)
	}
	if s.payload == nil {
		s.mu.Unlock()
		return ErrNoFileSelected
	}
	payload := *s.payload
	s.state = StateExtracting
	s.mu.Unlock()

	start := time.Now()
	text, err := s.api.ExtractReport(ctx, payload)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateExtracting {
		// Cleared while the request was in flight; drop the result.
		if err != nil {
			return err
		}
		return ErrSessionCleared
	}
	if err != nil {
		s.state = StateFailed
		return err
	}
	if strings.TrimSpace(text) == "" {
		s.state = StateFailed
		return errors.New("received empty analysis from server")
	}

	s.extracted = text
	s.LastExtractionTime = time.Since(start)
	s.state = StateExtracted
	return nil
}

// ExtractedText returns the current (possibly edited) extraction result.
func (s *ReportSession) ExtractedText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.extracted
}

// Edit replaces the extracted text in place before confirmation.
func (s *ReportSession) Edit(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateExtracted {
		return ErrNotExtracted
	}
	s.extracted = text
	return nil
}

// Confirm locks in the extracted text as the report context for chat:
// Extracted → Confirmed, the terminal state.
func (s *ReportSession) Confirm() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateExtracted {
		return ErrNotExtracted
	}
	s.confirmed = s.extracted
	s.state = StateConfirmed
	return nil
}

// ReportContext returns the confirmed report text, if any.
func (s *ReportSession) ReportContext() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirmed, s.state == StateConfirmed
}

// Chat streams a consultation answer for the conversation, attaching the
// confirmed report context to the request.
func (s *ReportSession) Chat(ctx context.Context, messages []models.ChatMessage, emit func(chunk string) error) error {
	s.mu.Lock()
	if s.state != StateConfirmed {
		s.mu.Unlock()
		return ErrNotConfirmed
	}
	req := models.ChatRequest{
		Messages: messages,
		Data:     &models.ChatAttachment{ReportData: s.confirmed},
	}
	s.mu.Unlock()

	return s.api.ChatStream(ctx, req, emit)
}

// Clear discards all held file and result data and returns to Idle. Valid
// from any state.
func (s *ReportSession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.file = nil
	s.payload = nil
	s.extracted = ""
	s.confirmed = ""
	s.state = StateIdle
}
