package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestIDKeepsValidHeaderAndReplacesInvalid(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFromContext(c))
	})

	cases := map[string]bool{
		"req-123":                true,
		"":                       false,
		"has space":              false,
		strings.Repeat("a", 200): false,
	}
	for in, keep := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if in != "" {
			req.Header.Set("X-Request-Id", in)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		got := w.Header().Get("X-Request-Id")
		if got != w.Body.String() {
			t.Fatalf("header %q and context %q differ", got, w.Body.String())
		}
		if keep && got != in {
			t.Fatalf("expected %q to be kept, got %q", in, got)
		}
		if !keep && (got == in || len(got) != 36) {
			t.Fatalf("expected a generated id for %q, got %q", in, got)
		}
	}
}
