package models

// ExtractReportRequest is the body of the report-extraction endpoint. Base64
// carries the whole upload as a data URI (data:<mime>;base64,<payload>).
type ExtractReportRequest struct {
	Base64 string `json:"base64"`
}

// ChatMessage is one turn of the conversation, oldest first.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatAttachment carries the confirmed report text alongside the conversation.
type ChatAttachment struct {
	ReportData string `json:"reportData"`
}

// ChatRequest is the body of the consultation chat endpoint.
type ChatRequest struct {
	Messages []ChatMessage   `json:"messages"`
	Data     *ChatAttachment `json:"data,omitempty"`
}

// ReportContext returns the attached report text, or "" when none was sent.
func (r ChatRequest) ReportContext() string {
	if r.Data == nil {
		return ""
	}
	return r.Data.ReportData
}
