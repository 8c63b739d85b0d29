// Package extraction turns contract text into structured fields through a
// degrade-only chain: the language model first, then fixed patterns, then an
// empty result.
package extraction

import (
	"context"
	"time"

	"contract-backend/internal/llm"
	"contract-backend/internal/shared/metrics"
	"contract-backend/internal/shared/redact"
	"contract-backend/internal/shared/telemetry"
	"contract-backend/internal/shared/util"
)

const (
	// DefaultCharBudget is how much of a document the model sees.
	DefaultCharBudget = 8000
	// DefaultConfidence is used when the model reports no usable confidence.
	DefaultConfidence = 0.85
)

var extractOptions = llm.Options{Temperature: 0.1, MaxTokens: 2000}

// Service runs the extraction pipeline.
type Service struct {
	LLM     llm.Client
	Metrics metrics.Recorder
	// CharBudget truncates the prompt text. The fallback always sees the
	// whole document.
	CharBudget int
}

// Extract never fails. The returned Method tells the caller which level of
// the chain produced the fields.
func (s *Service) Extract(ctx context.Context, text string) Fields {
	start := time.Now()
	rec := s.recorder()
	defer func() { rec.ObservePipelineMs("extraction", metrics.SinceMillis(start)) }()

	fields, err := s.extractAI(ctx, text)
	if err == nil {
		rec.IncExtraction(string(fields.Method))
		return fields
	}

	label := llm.Label(err)
	if llm.IsProviderFailure(err) {
		rec.IncProviderFailure(label)
	}
	telemetry.Warn("extraction.fallback", map[string]any{
		"error":    redact.Error(err),
		"kind":     label,
		"document": redact.Document(text),
	})

	fields = Fallback(text)
	rec.IncExtraction(string(fields.Method))
	return fields
}

func (s *Service) extractAI(ctx context.Context, text string) (Fields, error) {
	if s.LLM == nil {
		return Fields{}, &llm.ProviderError{Kind: llm.KindUnavailable, Provider: "none", Err: errNoClient}
	}
	prompt := llm.ExtractPrompt(util.Truncate(text, s.budget()))
	raw, err := s.LLM.Complete(ctx, prompt, extractOptions)
	if err != nil {
		return Fields{}, err
	}
	var decoded aiFields
	if err := llm.Decode(raw, fieldsSchema, &decoded); err != nil {
		return Fields{}, err
	}
	return decoded.toFields(DefaultConfidence), nil
}

func (s *Service) budget() int {
	if s.CharBudget > 0 {
		return s.CharBudget
	}
	return DefaultCharBudget
}

func (s *Service) recorder() metrics.Recorder {
	if s.Metrics == nil {
		return metrics.Nop{}
	}
	return s.Metrics
}
