package webhooks

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"contract-backend/internal/shared/signing"
)

type captured struct {
	mu     sync.Mutex
	events []Event
}

func (c *captured) handler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var ev Event
		_ = json.Unmarshal(body, &ev)
		c.mu.Lock()
		c.events = append(c.events, ev)
		c.mu.Unlock()
		w.WriteHeader(status)
	}
}

func TestPublishDeliversEvent(t *testing.T) {
	sink := &captured{}
	srv := httptest.NewServer(sink.handler(http.StatusNoContent))
	defer srv.Close()

	n := New(srv.URL)
	n.Now = func() time.Time { return time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC) }
	n.Publish("document.ingested", "doc-1", map[string]any{"page_count": 3})
	n.Wait()

	if len(sink.events) != 1 {
		t.Fatalf("expected one delivery, got %d", len(sink.events))
	}
	ev := sink.events[0]
	if ev.EventType != "document.ingested" || ev.DocumentID != "doc-1" || ev.EventID == "" {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.Timestamp != "2026-02-03T04:05:06Z" {
		t.Fatalf("unexpected timestamp %s", ev.Timestamp)
	}
	if ev.Data["page_count"] != float64(3) {
		t.Fatalf("unexpected data %v", ev.Data)
	}
}

func TestSendSignsBodyWhenSecretSet(t *testing.T) {
	verified := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		verified <- signing.Verify(body, []byte("hook-secret"), r.Header.Get(SignatureHeader))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL)
	n.Secret = "hook-secret"
	if err := n.Send(t.Context(), n.NewEvent("audit.completed", "doc-2", nil)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := <-verified; err != nil {
		t.Fatalf("signature did not verify: %v", err)
	}
}

func TestSendReportsErrorStatus(t *testing.T) {
	sink := &captured{}
	srv := httptest.NewServer(sink.handler(http.StatusInternalServerError))
	defer srv.Close()

	n := New(srv.URL)
	if err := n.Send(t.Context(), n.NewEvent("x", "d", nil)); err == nil {
		t.Fatalf("expected error for 500 response")
	}
}

func TestDisabledNotifierDropsEvents(t *testing.T) {
	n := New("")
	n.Publish("document.ingested", "doc-1", nil)
	n.Wait()
	var nilNotifier *Notifier
	nilNotifier.Publish("x", "y", nil)
	if nilNotifier.Enabled() {
		t.Fatalf("nil notifier must be disabled")
	}
}

func TestTriggerHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sink := &captured{}
	srv := httptest.NewServer(sink.handler(http.StatusOK))
	defer srv.Close()

	n := New(srv.URL)
	r := gin.New()
	NewHandler(n).RegisterRoutes(r.Group(""))

	body, _ := json.Marshal(map[string]any{"event_type": "audit.completed", "document_id": "doc-9", "data": map[string]any{"findings": 2}})
	req := httptest.NewRequest(http.MethodPost, "/webhook/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	n.Wait()

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var got struct {
		Message string `json:"message"`
		Payload Event  `json:"payload"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Message != "Webhook event queued" || got.Payload.DocumentID != "doc-9" {
		t.Fatalf("unexpected response %+v", got)
	}
	if len(sink.events) != 1 || sink.events[0].EventID != got.Payload.EventID {
		t.Fatalf("delivered event does not match response")
	}
}

func TestTriggerHandlerWithoutURL(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(New("")).RegisterRoutes(r.Group(""))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/webhook/events?event_type=x&document_id=y", nil))
	if resp.Code != http.StatusOK || !bytes.Contains(resp.Body.Bytes(), []byte("Webhook URL not configured")) {
		t.Fatalf("unexpected response %d %s", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/webhook/events", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
