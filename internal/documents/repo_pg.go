package documents

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, filename, text, page_count, size_bytes, mime_type, storage_key, uploaded_at`

// Save upserts a document. The seq column is only assigned on first insert,
// so re-ingestion keeps the original listing position.
func (r *PGRepo) Save(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    filename,
    text,
    page_count,
    size_bytes,
    mime_type,
    storage_key,
    uploaded_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
    filename = EXCLUDED.filename,
    text = EXCLUDED.text,
    page_count = EXCLUDED.page_count,
    size_bytes = EXCLUDED.size_bytes,
    mime_type = EXCLUDED.mime_type,
    storage_key = EXCLUDED.storage_key,
    uploaded_at = EXCLUDED.uploaded_at`

	var storageKey sql.NullString
	if doc.StorageKey != "" {
		storageKey = sql.NullString{String: doc.StorageKey, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.Filename,
		doc.Text,
		doc.PageCount,
		doc.Size,
		doc.MimeType,
		storageKey,
		doc.UploadedAt,
	)
	return err
}

// Get fetches a document by id.
func (r *PGRepo) Get(ctx context.Context, id string) (Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// List returns documents in caller order, or insertion order when ids is empty.
func (r *PGRepo) List(ctx context.Context, ids []string) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY seq`
	args := make([]any, 0, len(ids))
	if len(ids) > 0 {
		placeholders := make([]string, len(ids))
		for i, id := range ids {
			placeholders[i] = "$" + strconv.Itoa(i+1)
			args = append(args, id)
		}
		query = `SELECT ` + documentColumns + ` FROM documents WHERE id IN (` + strings.Join(placeholders, ", ") + `)`
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return docs, nil
	}

	byID := make(map[string]Document, len(docs))
	for _, doc := range docs {
		byID[doc.ID] = doc
	}
	ordered := make([]Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := byID[id]; ok {
			ordered = append(ordered, doc)
		}
	}
	return ordered, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var storageKey sql.NullString
	err := row.Scan(
		&doc.ID,
		&doc.Filename,
		&doc.Text,
		&doc.PageCount,
		&doc.Size,
		&doc.MimeType,
		&storageKey,
		&doc.UploadedAt,
	)
	if err != nil {
		return Document{}, err
	}
	if storageKey.Valid {
		doc.StorageKey = storageKey.String
	}
	return doc, nil
}

var _ Repo = (*PGRepo)(nil)
