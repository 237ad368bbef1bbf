package models

// ExtractReportResponse is the success envelope of the extraction endpoint.
// Result is always plain text, never structured JSON.
type ExtractReportResponse struct {
	Result string `json:"result"`
}

// ErrorResponse is the uniform error envelope for the extraction endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ChatErrorResponse is returned by the chat endpoint when a request fails
// before any streaming has started.
type ChatErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}
