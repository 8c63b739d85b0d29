package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"contract-backend/internal/shared/redact"
	"contract-backend/internal/shared/server/respond"
	"contract-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 with the standard error body.
// The panic value is redacted before logging since it may quote document text.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			fields := map[string]any{
				"request_id": RequestIDFromContext(c),
				"error":      redact.Text(fmt.Sprint(rec)),
				"stack":      string(debug.Stack()),
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
			}
			if pipeline := c.GetString("pipeline"); pipeline != "" {
				fields["pipeline"] = pipeline
			}
			telemetry.Error("panic", fields)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
		}()
		c.Next()
	}
}
