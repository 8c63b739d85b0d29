package documents

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"contract-backend/internal/shared/server/respond"
)

const maxUploadSize = 50 << 20 // 50MB per request

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ingest", h.ingest)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id/file", h.download)
}

type ingestResponse struct {
	DocumentIDs    []string `json:"document_ids"`
	Message        string   `json:"message"`
	ProcessedCount int      `json:"processed_count"`
	Errors         []string `json:"errors,omitempty"`
}

func (h *Handler) ingest(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
	form, err := c.MultipartForm()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "multipart form with files is required", nil)
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "at least one file is required", nil)
		return
	}

	uploads := make([]Upload, 0, len(headers))
	var closers []io.Closer
	defer func() {
		for _, cl := range closers {
			_ = cl.Close()
		}
	}()
	var openErrors []string
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			openErrors = append(openErrors, fmt.Sprintf("%s: unable to read file", fh.Filename))
			continue
		}
		closers = append(closers, f)
		uploads = append(uploads, Upload{Filename: fh.Filename, Body: f})
	}

	result := h.Svc.Ingest(c.Request.Context(), uploads)
	errs := append(openErrors, result.Errors...)
	if len(result.DocumentIDs) == 0 {
		respond.Error(c, http.StatusBadRequest, "no_documents_processed", "No files were successfully processed", errs)
		return
	}
	if len(result.DocumentIDs) == 1 {
		c.Set("documentId", result.DocumentIDs[0])
	}
	respond.JSON(c, http.StatusOK, ingestResponse{
		DocumentIDs:    result.DocumentIDs,
		Message:        fmt.Sprintf("Successfully ingested %d document(s)", len(result.DocumentIDs)),
		ProcessedCount: len(result.DocumentIDs),
		Errors:         errs,
	})
}

func (h *Handler) list(c *gin.Context) {
	docs, err := h.Svc.GetDocuments(c.Request.Context(), nil)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}
	summaries := make([]Summary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, doc.Summarize())
	}
	respond.OK(c, gin.H{"total": len(summaries), "documents": summaries})
}

func (h *Handler) download(c *gin.Context) {
	id := c.Param("id")
	c.Set("documentId", id)
	doc, rc, err := h.Svc.OpenOriginal(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to open document", nil)
		return
	}
	defer rc.Close()
	respond.AttachmentFromReader(c, doc.Filename, doc.MimeType, doc.Size, rc)
}
