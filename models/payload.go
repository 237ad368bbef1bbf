package models

// InlinePayload is a self-describing transport unit: base64-encoded bytes
// tagged with the media type they were read as.
type InlinePayload struct {
	MediaType string
	Data      string // standard base64, no data-URI header
}

// DataURI renders the payload in data:<mime>;base64,<data> form, the shape
// the extraction endpoint accepts.
func (p InlinePayload) DataURI() string {
	return "data:" + p.MediaType + ";base64," + p.Data
}

// ReferenceSnippet is one text fragment returned by the vector store for a
// retrieval query, with the file it was chunked from when known.
type ReferenceSnippet struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}
