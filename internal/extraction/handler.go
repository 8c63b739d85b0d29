package extraction

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"contract-backend/internal/documents"
	"contract-backend/internal/shared/server/respond"
)

// TextSource returns the page-marked text of a stored document.
type TextSource interface {
	GetText(ctx context.Context, id string) (string, error)
}

// Handler wires HTTP handlers to the extraction service.
type Handler struct {
	Svc  *Service
	Docs TextSource
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, docs TextSource) *Handler {
	return &Handler{Svc: svc, Docs: docs}
}

// RegisterRoutes attaches extraction routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/extract", h.extract)
}

func (h *Handler) extract(c *gin.Context) {
	documentID := strings.TrimSpace(c.Query("document_id"))
	if documentID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "document_id is required", nil)
		return
	}
	c.Set("documentId", documentID)
	c.Set("pipeline", "extraction")

	text, err := h.Docs.GetText(c.Request.Context(), documentID)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Document not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load document", nil)
		return
	}

	fields := h.Svc.Extract(c.Request.Context(), text)
	c.Set("method", string(fields.Method))
	respond.OK(c, fields)
}
