package documents

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu    sync.RWMutex
	data  map[string]Document
	order []string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Document),
	}
}

// Save stores or replaces a document.
func (r *MemoryRepo) Save(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.data[doc.ID]; !exists {
		r.order = append(r.order, doc.ID)
	}
	r.data[doc.ID] = doc
	return nil
}

// Get returns a document by id.
func (r *MemoryRepo) Get(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// List returns documents in caller order, or insertion order when ids is empty.
func (r *MemoryRepo) List(ctx context.Context, ids []string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(ids) == 0 {
		ids = r.order
	}
	out := make([]Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := r.data[id]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
