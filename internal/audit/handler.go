package audit

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"contract-backend/internal/documents"
	"contract-backend/internal/shared/server/respond"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DocumentSource looks up stored documents.
type DocumentSource interface {
	Get(ctx context.Context, id string) (documents.Document, error)
	GetDocuments(ctx context.Context, ids []string) ([]documents.Document, error)
}

// Handler wires HTTP handlers to the audit service.
type Handler struct {
	Svc  *Service
	Docs DocumentSource
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, docs DocumentSource) *Handler {
	return &Handler{Svc: svc, Docs: docs}
}

// RegisterRoutes attaches audit routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/audit", h.audit)
	rg.POST("/audit/batch", h.batch)
	rg.GET("/audit/export", h.export)
}

func (h *Handler) audit(c *gin.Context) {
	doc, ok := h.document(c)
	if !ok {
		return
	}
	respond.OK(c, h.Svc.Audit(c.Request.Context(), doc))
}

type batchRequest struct {
	DocumentIDs []string `json:"document_ids"`
}

func (h *Handler) batch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.DocumentIDs) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "document_ids is required", nil)
		return
	}
	c.Set("pipeline", "audit_batch")

	docs, err := h.Docs.GetDocuments(c.Request.Context(), req.DocumentIDs)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load documents", nil)
		return
	}
	respond.OK(c, h.Svc.BatchAudit(c.Request.Context(), docs))
}

func (h *Handler) export(c *gin.Context) {
	doc, ok := h.document(c)
	if !ok {
		return
	}
	findings := h.Svc.Audit(c.Request.Context(), doc)
	data, err := ExportXLSX(findings)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to build export", nil)
		return
	}
	respond.Attachment(c, "audit-"+doc.ID+".xlsx", xlsxContentType, data)
}

func (h *Handler) document(c *gin.Context) (documents.Document, bool) {
	documentID := strings.TrimSpace(c.Query("document_id"))
	if documentID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "document_id is required", nil)
		return documents.Document{}, false
	}
	c.Set("documentId", documentID)
	c.Set("pipeline", "audit")

	doc, err := h.Docs.Get(c.Request.Context(), documentID)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Document not found", nil)
		} else {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load document", nil)
		}
		return documents.Document{}, false
	}
	return doc, true
}
