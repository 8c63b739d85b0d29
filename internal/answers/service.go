// Package answers answers questions over stored contracts and resolves the
// citations behind each answer.
package answers

import (
	"context"
	"errors"
	"strings"
	"time"

	"contract-backend/internal/documents"
	"contract-backend/internal/llm"
	"contract-backend/internal/shared/metrics"
	"contract-backend/internal/shared/redact"
	"contract-backend/internal/shared/telemetry"
	"contract-backend/internal/shared/util"
)

// DefaultDocCharBudget is how much of each document enters the prompt.
const DefaultDocCharBudget = 5000

var answerOptions = llm.Options{Temperature: 0.3, MaxTokens: 1000}

// Service runs the question-answering pipeline.
type Service struct {
	LLM     llm.Client
	Metrics metrics.Recorder
	// DocCharBudget truncates each document independently of how many
	// documents are in the prompt.
	DocCharBudget int
}

// Answer never fails. Degraded answers carry zero confidence and no
// citations.
func (s *Service) Answer(ctx context.Context, question string, docs []documents.Document) Answer {
	start := time.Now()
	rec := s.recorder()
	rec.IncQuestion()
	defer func() { rec.ObservePipelineMs("answer", metrics.SinceMillis(start)) }()

	if len(docs) == 0 {
		return degraded(NoDocumentsAnswer)
	}
	if s.LLM == nil {
		return degraded(UnavailableAnswer)
	}

	raw, err := s.LLM.Complete(ctx, s.prompt(question, docs), answerOptions)
	if err == nil && strings.TrimSpace(raw) == "" {
		err = &llm.ParseError{Reason: "empty answer"}
	}
	if err != nil {
		s.logFailure(err, len(docs))
		return degraded(UnavailableAnswer)
	}

	text := strings.TrimSpace(raw)
	return s.finish(text, docs)
}

// AnswerStream emits the answer text through emit in generation order and
// returns the citations once the full answer is known. A provider failure is
// reported in-band: the unavailable text is emitted as the last chunk and no
// citations are returned. The only error returned is the one from emit or
// ctx, when the consumer has gone away.
func (s *Service) AnswerStream(ctx context.Context, question string, docs []documents.Document, emit llm.ChunkFunc) ([]Citation, error) {
	start := time.Now()
	rec := s.recorder()
	rec.IncQuestion()
	defer func() { rec.ObservePipelineMs("answer_stream", metrics.SinceMillis(start)) }()

	if len(docs) == 0 {
		return []Citation{}, emit(NoDocumentsAnswer)
	}
	if s.LLM == nil {
		return []Citation{}, emit(UnavailableAnswer)
	}

	var full strings.Builder
	var sinkErr error
	err := llm.Stream(ctx, s.LLM, s.prompt(question, docs), answerOptions, func(chunk string) error {
		full.WriteString(chunk)
		if err := emit(chunk); err != nil {
			sinkErr = err
			return err
		}
		return nil
	})
	if sinkErr != nil {
		return nil, sinkErr
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, ctxErr
		}
		s.logFailure(err, len(docs))
		separator := ""
		if full.Len() > 0 {
			separator = "\n\n"
		}
		return []Citation{}, emit(separator + UnavailableAnswer)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ResolveCitations(full.String(), docs), nil
}

func (s *Service) finish(text string, docs []documents.Document) Answer {
	citations := ResolveCitations(text, docs)
	confidence := uncitedConfidence
	if len(citations) > 0 {
		confidence = citedConfidence
	}
	return Answer{Text: text, Citations: citations, Confidence: confidence}
}

// prompt concatenates every document behind its [DOCUMENT: id] marker.
func (s *Service) prompt(question string, docs []documents.Document) string {
	budget := s.DocCharBudget
	if budget <= 0 {
		budget = DefaultDocCharBudget
	}
	var b strings.Builder
	for _, d := range docs {
		b.WriteString("\n\n[DOCUMENT: ")
		b.WriteString(d.ID)
		b.WriteString("]\n")
		b.WriteString(util.Truncate(d.Text, budget))
		b.WriteString("\n")
	}
	return llm.AnswerPrompt(question, b.String())
}

func (s *Service) logFailure(err error, docCount int) {
	label := llm.Label(err)
	if llm.IsProviderFailure(err) {
		s.recorder().IncProviderFailure(label)
	}
	telemetry.Warn("answer.degraded", map[string]any{
		"error":     redact.Error(err),
		"kind":      label,
		"documents": docCount,
	})
}

func (s *Service) recorder() metrics.Recorder {
	if s.Metrics == nil {
		return metrics.Nop{}
	}
	return s.Metrics
}
