package extraction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"contract-backend/internal/documents"
	"contract-backend/internal/llm"
)

type mapSource map[string]string

func (m mapSource) GetText(ctx context.Context, id string) (string, error) {
	text, ok := m[id]
	if !ok {
		return "", documents.ErrNotFound
	}
	return text, nil
}

func newExtractRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := &Service{LLM: llm.Unavailable{Provider: "gemini", Reason: "missing key"}}
	r := gin.New()
	NewHandler(svc, mapSource{"doc-1": "governed by the laws of California."}).RegisterRoutes(r.Group(""))
	return r
}

func TestExtractHandlerFallsBackWithoutProvider(t *testing.T) {
	router := newExtractRouter()
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/extract?document_id=doc-1", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var got Fields
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Method != MethodFallbackRegex || got.GoverningLaw == nil || *got.GoverningLaw != "California" {
		t.Fatalf("unexpected fields %+v", got)
	}
}

func TestExtractHandlerErrors(t *testing.T) {
	router := newExtractRouter()
	cases := map[string]int{
		"/extract":                 http.StatusBadRequest,
		"/extract?document_id=zzz": http.StatusNotFound,
	}
	for target, want := range cases {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, target, nil))
		if resp.Code != want {
			t.Fatalf("%s: expected %d, got %d", target, want, resp.Code)
		}
	}
}
