package answers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contract-backend/internal/documents"
	"contract-backend/internal/llm"
)

type sliceSource []documents.Document

func (s sliceSource) GetDocuments(ctx context.Context, ids []string) ([]documents.Document, error) {
	if len(ids) == 0 {
		return s, nil
	}
	var out []documents.Document
	for _, id := range ids {
		for _, d := range s {
			if d.ID == id {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

func newAnswerRouter(client llm.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(&Service{LLM: client}, sliceSource(corpus())).RegisterRoutes(r.Group(""))
	return r
}

func TestAskHandler(t *testing.T) {
	router := newAnswerRouter(&fakeClient{response: "Ninety days written notice [DOCUMENT: msa-2] [PAGE 4]."})
	body, _ := json.Marshal(map[string]any{"question": "notice?", "document_ids": []string{"msa-2"}})
	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var got Answer
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got.Citations, 1)
	assert.Equal(t, 4, *got.Citations[0].Page)
}

func TestAskHandlerQueryParamsAndUnknownIDs(t *testing.T) {
	router := newAnswerRouter(&fakeClient{response: "unused"})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/ask?question=term%3F&document_ids=nope", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	var got Answer
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, NoDocumentsAnswer, got.Text)
}

func TestAskHandlerRequiresQuestion(t *testing.T) {
	router := newAnswerRouter(&fakeClient{})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/ask", nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ask/stream", nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAskStreamHandlerEventOrder(t *testing.T) {
	router := newAnswerRouter(&streamingClient{chunks: []string{"Ninety days ", "notice [DOCUMENT: msa-2] [PAGE 4]."}})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ask/stream?question=notice&document_ids=msa-2,lease-3", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/event-stream", resp.Header().Get("Content-Type"))
	out := resp.Body.String()
	first := strings.Index(out, "event:chunk")
	cites := strings.Index(out, "event:citations")
	done := strings.Index(out, "event:done")
	require.True(t, first >= 0 && cites > first && done > cites, out)
	assert.Contains(t, out, "data:[DONE]")
	assert.Contains(t, out, `"document_id":"msa-2"`)
}
