package webhooks

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"contract-backend/internal/shared/server/respond"
)

// Handler exposes manual event triggering.
type Handler struct {
	Notifier *Notifier
}

// NewHandler constructs a Handler.
func NewHandler(n *Notifier) *Handler {
	return &Handler{Notifier: n}
}

// RegisterRoutes attaches webhook routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhook/events", h.trigger)
}

type triggerRequest struct {
	EventType  string         `json:"event_type"`
	DocumentID string         `json:"document_id"`
	Data       map[string]any `json:"data"`
}

func (h *Handler) trigger(c *gin.Context) {
	var req triggerRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}
	if req.EventType == "" {
		req.EventType = c.Query("event_type")
	}
	if req.DocumentID == "" {
		req.DocumentID = c.Query("document_id")
	}
	req.EventType = strings.TrimSpace(req.EventType)
	req.DocumentID = strings.TrimSpace(req.DocumentID)
	if req.EventType == "" || req.DocumentID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "event_type and document_id are required", nil)
		return
	}
	c.Set("documentId", req.DocumentID)

	if !h.Notifier.Enabled() {
		respond.OK(c, gin.H{"message": "Webhook URL not configured"})
		return
	}
	ev := h.Notifier.NewEvent(req.EventType, req.DocumentID, req.Data)
	h.Notifier.Queue(ev)
	respond.OK(c, gin.H{"message": "Webhook event queued", "payload": ev})
}
