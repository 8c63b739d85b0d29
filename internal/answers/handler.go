package answers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"contract-backend/internal/documents"
	"contract-backend/internal/shared/server/respond"
)

// DocumentSource returns documents in caller order, or all documents when
// ids is empty.
type DocumentSource interface {
	GetDocuments(ctx context.Context, ids []string) ([]documents.Document, error)
}

// Handler wires HTTP handlers to the answers service.
type Handler struct {
	Svc  *Service
	Docs DocumentSource
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, docs DocumentSource) *Handler {
	return &Handler{Svc: svc, Docs: docs}
}

// RegisterRoutes attaches question-answering routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ask", h.ask)
	rg.GET("/ask/stream", h.askStream)
}

type askRequest struct {
	Question    string   `json:"question"`
	DocumentIDs []string `json:"document_ids"`
}

func (h *Handler) ask(c *gin.Context) {
	var req askRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}
	if req.Question == "" {
		req.Question = c.Query("question")
	}
	if len(req.DocumentIDs) == 0 {
		req.DocumentIDs = queryIDs(c)
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "question is required", nil)
		return
	}
	c.Set("pipeline", "answer")

	docs, ok := h.load(c, req.DocumentIDs)
	if !ok {
		return
	}
	respond.OK(c, h.Svc.Answer(c.Request.Context(), req.Question, docs))
}

func (h *Handler) askStream(c *gin.Context) {
	question := strings.TrimSpace(c.Query("question"))
	if question == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "question is required", nil)
		return
	}
	c.Set("pipeline", "answer_stream")

	docs, ok := h.load(c, queryIDs(c))
	if !ok {
		return
	}

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	citations, err := h.Svc.AnswerStream(ctx, question, docs, func(chunk string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.SSEvent("chunk", chunk)
		c.Writer.Flush()
		return nil
	})
	if err != nil {
		return
	}
	c.SSEvent("citations", citations)
	c.SSEvent("done", "[DONE]")
	c.Writer.Flush()
}

func (h *Handler) load(c *gin.Context, ids []string) ([]documents.Document, bool) {
	docs, err := h.Docs.GetDocuments(c.Request.Context(), ids)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load documents", nil)
		return nil, false
	}
	return docs, true
}

// queryIDs accepts document_ids repeated or comma separated.
func queryIDs(c *gin.Context) []string {
	var ids []string
	for _, raw := range c.QueryArray("document_ids") {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
