// Package webhooks delivers best-effort event notifications to a configured
// URL.
package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"contract-backend/internal/shared/redact"
	"contract-backend/internal/shared/signing"
	"contract-backend/internal/shared/telemetry"
)

const (
	// DeliveryTimeout bounds a single webhook POST.
	DeliveryTimeout = 5 * time.Second
	// SignatureHeader carries the HMAC of the body when a secret is set.
	SignatureHeader = "X-Webhook-Signature"
)

// Event is the JSON body posted to the webhook URL.
type Event struct {
	EventID    string         `json:"event_id"`
	EventType  string         `json:"event_type"`
	DocumentID string         `json:"document_id"`
	Timestamp  string         `json:"timestamp"`
	Data       map[string]any `json:"data"`
}

// Notifier posts events asynchronously. A Notifier without a URL drops
// everything.
type Notifier struct {
	URL    string
	Secret string
	Client *http.Client
	Now    func() time.Time

	wg sync.WaitGroup
}

// New constructs a Notifier for url.
func New(url string) *Notifier {
	return &Notifier{URL: url, Client: &http.Client{Timeout: DeliveryTimeout}}
}

// Enabled reports whether a webhook URL is configured.
func (n *Notifier) Enabled() bool {
	return n != nil && n.URL != ""
}

// NewEvent stamps an event with a fresh id and the current time.
func (n *Notifier) NewEvent(eventType, documentID string, data map[string]any) Event {
	if data == nil {
		data = map[string]any{}
	}
	now := time.Now
	if n != nil && n.Now != nil {
		now = n.Now
	}
	return Event{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		DocumentID: documentID,
		Timestamp:  now().UTC().Format(time.RFC3339),
		Data:       data,
	}
}

// Publish queues an event and returns immediately. It satisfies the
// documents package's event hook.
func (n *Notifier) Publish(eventType, documentID string, data map[string]any) {
	if !n.Enabled() {
		return
	}
	n.Queue(n.NewEvent(eventType, documentID, data))
}

// Queue delivers ev in the background. Failures are logged, never returned.
func (n *Notifier) Queue(ev Event) {
	if !n.Enabled() {
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), DeliveryTimeout)
		defer cancel()
		if err := n.Send(ctx, ev); err != nil {
			telemetry.Warn("webhook.failed", map[string]any{
				"event_id":   ev.EventID,
				"event_type": ev.EventType,
				"error":      redact.Error(err),
			})
			return
		}
		telemetry.Info("webhook.delivered", map[string]any{
			"event_id":   ev.EventID,
			"event_type": ev.EventType,
		})
	}()
}

// Send posts ev synchronously.
func (n *Notifier) Send(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.Secret != "" {
		req.Header.Set(SignatureHeader, signing.Sign(body, []byte(n.Secret)))
	}

	client := n.Client
	if client == nil {
		client = &http.Client{Timeout: DeliveryTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	}
	return nil
}

// Wait blocks until queued deliveries finish.
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}
