package models

// UploadedFile is a report file as selected by the user, before any
// normalization or encoding.
type UploadedFile struct {
	Name      string
	MediaType string
	Data      []byte
}

// Size returns the byte length of the file content.
func (f UploadedFile) Size() int {
	return len(f.Data)
}
