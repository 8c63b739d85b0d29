package documents

import "time"

// Document is an ingested contract with its page-marked text.
type Document struct {
	ID         string
	Filename   string
	Text       string
	PageCount  int
	Size       int64
	MimeType   string
	StorageKey string
	UploadedAt time.Time
}

// Summary is the listing view of a document, without its text.
type Summary struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`
	PageCount  int       `json:"page_count"`
	Size       int64     `json:"size"`
}

// Summarize drops the text body.
func (d Document) Summarize() Summary {
	return Summary{
		ID:         d.ID,
		Filename:   d.Filename,
		UploadedAt: d.UploadedAt,
		PageCount:  d.PageCount,
		Size:       d.Size,
	}
}
