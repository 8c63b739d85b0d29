package documents

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"contract-backend/internal/extract"
	"contract-backend/internal/shared/metrics"
	"contract-backend/internal/shared/redact"
	"contract-backend/internal/shared/storage/object"
	"contract-backend/internal/shared/telemetry"
	"contract-backend/internal/shared/util"
)

// Extractor turns an uploaded PDF into page-marked text.
type Extractor func(ctx context.Context, data []byte) (extract.Result, error)

// EventPublisher is notified after a document is stored.
type EventPublisher interface {
	Publish(eventType, documentID string, data map[string]any)
}

// Service ingests and serves contract documents.
type Service struct {
	Store   object.Store
	Repo    Repo
	Metrics metrics.Recorder
	Extract Extractor
	Events  EventPublisher
	Now     func() time.Time
}

// Upload is one file received for ingestion.
type Upload struct {
	Filename string
	Body     io.Reader
}

// IngestResult reports a batch ingestion.
type IngestResult struct {
	DocumentIDs []string
	Errors      []string
}

// Ingest processes each upload independently; one bad file never fails the
// batch. Non-PDF files are skipped with a recorded error.
func (s *Service) Ingest(ctx context.Context, uploads []Upload) IngestResult {
	result := IngestResult{DocumentIDs: []string{}}
	for _, up := range uploads {
		if !util.IsPDF(up.Filename) {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: only PDF files are supported", up.Filename))
			continue
		}
		data, err := io.ReadAll(up.Body)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: unable to read file", up.Filename))
			continue
		}
		doc, err := s.IngestPDF(ctx, up.Filename, data)
		if err != nil {
			telemetry.Error("documents.ingest_failed", map[string]any{
				"filename": redact.Text(up.Filename),
				"error":    redact.Error(err),
			})
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", up.Filename, redact.Error(err)))
			continue
		}
		result.DocumentIDs = append(result.DocumentIDs, doc.ID)
	}
	return result
}

// IngestPDF extracts, fingerprints, stores and records a single PDF.
// Re-ingesting identical content yields the same id and replaces the record.
func (s *Service) IngestPDF(ctx context.Context, filename string, data []byte) (Document, error) {
	if filename == "" || len(data) == 0 {
		return Document{}, ErrInvalidInput
	}
	extractFn := s.Extract
	if extractFn == nil {
		extractFn = extract.PDF
	}
	res, err := extractFn(ctx, data)
	if err != nil {
		return Document{}, fmt.Errorf("extract text: %w", err)
	}

	doc := Document{
		ID:         util.DocumentFingerprint(filename, res.Text),
		Filename:   filename,
		Text:       res.Text,
		PageCount:  res.PageCount,
		Size:       int64(len(data)),
		MimeType:   "application/pdf",
		UploadedAt: s.now(),
	}

	if s.Store != nil {
		stored, err := s.Store.Put(ctx, doc.ID, filename, bytes.NewReader(data))
		if err != nil {
			return Document{}, fmt.Errorf("store original: %w", err)
		}
		doc.StorageKey = stored.Key
		doc.MimeType = stored.MimeType
	}

	if err := s.Repo.Save(ctx, doc); err != nil {
		return Document{}, fmt.Errorf("save document: %w", err)
	}
	s.recorder().IncIngest()
	if s.Events != nil {
		s.Events.Publish("document.ingested", doc.ID, map[string]any{
			"page_count": doc.PageCount,
			"size":       doc.Size,
		})
	}
	telemetry.Info("documents.ingested", map[string]any{
		"document_id": doc.ID,
		"page_count":  doc.PageCount,
		"size":        doc.Size,
		"chars":       len(doc.Text),
	})
	return doc, nil
}

// Get returns one document.
func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	return s.Repo.Get(ctx, id)
}

// GetDocuments returns documents in caller order when ids are given, skipping
// unknown ids, otherwise every document in insertion order.
func (s *Service) GetDocuments(ctx context.Context, ids []string) ([]Document, error) {
	return s.Repo.List(ctx, ids)
}

// GetText returns the page-marked text of a document.
func (s *Service) GetText(ctx context.Context, id string) (string, error) {
	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return doc.Text, nil
}

// OpenOriginal opens the uploaded file of a document.
func (s *Service) OpenOriginal(ctx context.Context, id string) (Document, io.ReadCloser, error) {
	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Document{}, nil, err
	}
	if s.Store == nil || doc.StorageKey == "" {
		return Document{}, nil, ErrNotFound
	}
	rc, err := s.Store.Open(ctx, doc.StorageKey)
	if err != nil {
		return Document{}, nil, fmt.Errorf("open original: %w", err)
	}
	return doc, rc, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) recorder() metrics.Recorder {
	if s.Metrics == nil {
		return metrics.Nop{}
	}
	return s.Metrics
}
