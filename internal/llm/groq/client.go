// Package groq implements llm.Client against Groq's OpenAI-compatible chat
// completions API.
package groq

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"contract-backend/internal/llm"
	"contract-backend/internal/shared/telemetry"
)

const (
	providerName   = "groq"
	defaultBaseURL = "https://api.groq.com/openai/v1"
)

// Client implements llm.Client and llm.Streamer.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// New constructs a Groq client. A zero timeout selects llm.DefaultTimeout.
func New(apiKey, model, baseURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GROQ_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("GROQ_MODEL is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = llm.DefaultTimeout
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *usage    `json:"usage,omitempty"`
	Error *apiError `json:"error,omitempty"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

// Name returns the provider name.
func (c *Client) Name() string {
	return providerName
}

// Complete returns the raw model response for the prompt.
func (c *Client) Complete(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.post(ctx, prompt, opts, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.wrap(err)
	}
	if resp.StatusCode >= 400 {
		return "", c.statusError(resp.StatusCode, body)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &llm.ProviderError{Kind: llm.KindUnknown, Provider: providerName, StatusCode: resp.StatusCode, Err: fmt.Errorf("response decode: %w", err)}
	}
	if parsed.Error != nil {
		return "", &llm.ProviderError{Kind: llm.KindUnknown, Provider: providerName, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s (%s)", parsed.Error.Message, parsed.Error.Type)}
	}
	if len(parsed.Choices) == 0 {
		return "", &llm.ProviderError{Kind: llm.KindUnknown, Provider: providerName, Err: errors.New("response missing choices")}
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", &llm.ProviderError{Kind: llm.KindUnknown, Provider: providerName, Err: errors.New("response empty content")}
	}
	logUsage(c.model, parsed.Usage, time.Since(start))
	return content, nil
}

// Stream emits content deltas from a server-sent event stream in order.
func (c *Client) Stream(ctx context.Context, prompt string, opts llm.Options, emit llm.ChunkFunc) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.post(ctx, prompt, opts, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return c.statusError(resp.StatusCode, body)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			return nil
		}
		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return &llm.ProviderError{Kind: llm.KindUnknown, Provider: providerName, Err: fmt.Errorf("stream decode: %w", err)}
		}
		if chunk.Error != nil {
			return &llm.ProviderError{Kind: llm.KindUnknown, Provider: providerName, Err: errors.New(chunk.Error.Message)}
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			if err := emit(choice.Delta.Content); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return c.wrap(err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, prompt string, opts llm.Options, stream bool) (*http.Response, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Stream:      stream,
	})
	if err != nil {
		return nil, &llm.ProviderError{Kind: llm.KindUnknown, Provider: providerName, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, &llm.ProviderError{Kind: llm.KindUnknown, Provider: providerName, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.wrap(err)
	}
	return resp, nil
}

func (c *Client) wrap(err error) error {
	return llm.Wrap(providerName, err)
}

func (c *Client) statusError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var parsed chatResponse
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != nil {
		msg = parsed.Error.Message
	}
	return &llm.ProviderError{
		Kind:       llm.KindForStatus(status),
		Provider:   providerName,
		StatusCode: status,
		Err:        fmt.Errorf("groq http status %d: %s", status, msg),
	}
}

func logUsage(model string, u *usage, elapsed time.Duration) {
	fields := map[string]any{
		"provider":    providerName,
		"model":       model,
		"duration_ms": elapsed.Milliseconds(),
	}
	if u != nil {
		fields["prompt_tokens"] = u.PromptTokens
		fields["completion_tokens"] = u.CompletionTokens
		fields["total_tokens"] = u.TotalTokens
	}
	telemetry.Info("llm.response", fields)
}

var (
	_ llm.Client   = (*Client)(nil)
	_ llm.Streamer = (*Client)(nil)
)
