// Package gemini implements llm.Client on the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"contract-backend/internal/llm"
	"contract-backend/internal/shared/telemetry"
)

const providerName = "gemini"

type responseIterator interface {
	Next() (*genai.GenerateContentResponse, error)
}

// backend is the slice of the SDK the client uses.
type backend interface {
	generate(ctx context.Context, prompt string, opts llm.Options) (*genai.GenerateContentResponse, error)
	stream(ctx context.Context, prompt string, opts llm.Options) responseIterator
	close() error
}

// Client implements llm.Client and llm.Streamer.
type Client struct {
	model   string
	timeout time.Duration
	api     backend
}

// New connects to Gemini with apiKey. A zero timeout selects llm.DefaultTimeout.
func New(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newWithBackend(model, timeout, &sdkBackend{client: client, model: model}), nil
}

func newWithBackend(model string, timeout time.Duration, api backend) *Client {
	if timeout <= 0 {
		timeout = llm.DefaultTimeout
	}
	return &Client{model: model, timeout: timeout, api: api}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return providerName
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.api.close()
}

// Complete returns the text of the first candidate.
func (c *Client) Complete(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.api.generate(ctx, prompt, opts)
	if err != nil {
		return "", classify(ctx, err)
	}
	text := strings.TrimSpace(responseText(resp))
	if text == "" {
		return "", &llm.ProviderError{Kind: llm.KindUnknown, Provider: providerName, Err: errors.New("empty response")}
	}
	fields := map[string]any{
		"provider":    providerName,
		"model":       c.model,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if resp.UsageMetadata != nil {
		fields["prompt_tokens"] = resp.UsageMetadata.PromptTokenCount
		fields["completion_tokens"] = resp.UsageMetadata.CandidatesTokenCount
		fields["total_tokens"] = resp.UsageMetadata.TotalTokenCount
	}
	telemetry.Info("llm.response", fields)
	return text, nil
}

// Stream emits response chunks in generation order.
func (c *Client) Stream(ctx context.Context, prompt string, opts llm.Options, emit llm.ChunkFunc) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	it := c.api.stream(ctx, prompt, opts)
	for {
		resp, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return classify(ctx, err)
		}
		if chunk := responseText(resp); chunk != "" {
			if err := emit(chunk); err != nil {
				return err
			}
		}
	}
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}

func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &llm.ProviderError{Kind: llm.KindTimeout, Provider: providerName, Err: err}
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &llm.ProviderError{Kind: llm.KindForStatus(apiErr.Code), Provider: providerName, StatusCode: apiErr.Code, Err: err}
	}
	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		return &llm.ProviderError{Kind: kindForCode(st.Code()), Provider: providerName, Err: err}
	}
	return llm.Wrap(providerName, err)
}

func kindForCode(code codes.Code) llm.Kind {
	switch code {
	case codes.Unauthenticated, codes.PermissionDenied:
		return llm.KindAuth
	case codes.ResourceExhausted:
		return llm.KindRateLimit
	case codes.DeadlineExceeded:
		return llm.KindTimeout
	case codes.Unavailable, codes.Internal, codes.Aborted:
		return llm.KindUnavailable
	default:
		return llm.KindUnknown
	}
}

type sdkBackend struct {
	client *genai.Client
	model  string
}

// configured returns a fresh model handle so per-call options never leak
// between concurrent requests.
func (b *sdkBackend) configured(opts llm.Options) *genai.GenerativeModel {
	m := b.client.GenerativeModel(b.model)
	m.SetTemperature(opts.Temperature)
	if opts.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	return m
}

func (b *sdkBackend) generate(ctx context.Context, prompt string, opts llm.Options) (*genai.GenerateContentResponse, error) {
	return b.configured(opts).GenerateContent(ctx, genai.Text(prompt))
}

func (b *sdkBackend) stream(ctx context.Context, prompt string, opts llm.Options) responseIterator {
	return b.configured(opts).GenerateContentStream(ctx, genai.Text(prompt))
}

func (b *sdkBackend) close() error {
	return b.client.Close()
}

var (
	_ llm.Client   = (*Client)(nil)
	_ llm.Streamer = (*Client)(nil)
)
