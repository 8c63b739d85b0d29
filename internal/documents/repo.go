package documents

import "context"

// Repo persists ingested documents.
type Repo interface {
	// Save inserts doc or replaces the document with the same id, keeping
	// its original position in insertion order.
	Save(ctx context.Context, doc Document) error
	Get(ctx context.Context, id string) (Document, error)
	// List returns the documents named by ids in that order, skipping unknown
	// ids. With no ids it returns every document in insertion order.
	List(ctx context.Context, ids []string) ([]Document, error)
}
