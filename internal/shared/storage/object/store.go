package object

import (
	"context"
	"io"
	"path"
)

// Stored describes an object written by a Store.
type Stored struct {
	Key      string
	Size     int64
	MimeType string
}

// Store keeps the original uploaded contract files. Keys are derived from the
// document id, so re-ingesting the same document overwrites its object.
type Store interface {
	Put(ctx context.Context, documentID, fileName string, r io.Reader) (Stored, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Key returns the storage key for a document's original file.
func Key(documentID, sanitizedName string) string {
	return path.Join("documents", documentID, sanitizedName)
}
