// Package llm defines the text-completion contract the contract pipelines
// depend on, together with the JSON response parser and error taxonomy.
package llm

import (
	"context"
	"fmt"
	"time"
)

// DefaultTimeout bounds every provider call.
const DefaultTimeout = 30 * time.Second

// Options tune a single completion.
type Options struct {
	Temperature float32
	MaxTokens   int
}

// Client is a generative text-completion backend. Implementations make
// exactly one attempt per call and fail with *ProviderError.
type Client interface {
	Name() string
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}

// ChunkFunc receives streamed text in generation order. Returning an error
// stops the stream.
type ChunkFunc func(chunk string) error

// Streamer is implemented by clients that can emit a completion incrementally.
type Streamer interface {
	Stream(ctx context.Context, prompt string, opts Options, emit ChunkFunc) error
}

// Stream emits the completion for prompt through emit. Clients without native
// streaming deliver their full completion as a single chunk.
func Stream(ctx context.Context, c Client, prompt string, opts Options, emit ChunkFunc) error {
	if s, ok := c.(Streamer); ok {
		return s.Stream(ctx, prompt, opts, emit)
	}
	text, err := c.Complete(ctx, prompt, opts)
	if err != nil {
		return err
	}
	return emit(text)
}

// Unavailable is selected when the configured provider cannot be built, for
// example when its API key is missing. Every call fails with KindUnavailable
// so callers degrade through their fallback paths.
type Unavailable struct {
	Provider string
	Reason   string
}

// Name returns the provider that could not be built.
func (u Unavailable) Name() string {
	return u.Provider
}

// Complete always fails.
func (u Unavailable) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	return "", &ProviderError{
		Kind:     KindUnavailable,
		Provider: u.Provider,
		Err:      fmt.Errorf("provider not configured: %s", u.Reason),
	}
}

var _ Client = Unavailable{}
