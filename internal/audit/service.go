// Package audit flags risky clauses in contracts with a single checklist
// prompt per document.
package audit

import (
	"context"
	"sync"
	"time"

	"contract-backend/internal/documents"
	"contract-backend/internal/llm"
	"contract-backend/internal/shared/metrics"
	"contract-backend/internal/shared/redact"
	"contract-backend/internal/shared/telemetry"
	"contract-backend/internal/shared/util"
)

const (
	// DefaultCharBudget is how much of a document the model audits.
	DefaultCharBudget = 8000

	batchConcurrency = 4
)

var auditOptions = llm.Options{Temperature: 0.1, MaxTokens: 2000}

// Service runs the audit pipeline.
type Service struct {
	LLM        llm.Client
	Metrics    metrics.Recorder
	CharBudget int
}

// Audit never fails and never returns an empty list.
func (s *Service) Audit(ctx context.Context, doc documents.Document) []Finding {
	start := time.Now()
	rec := s.recorder()
	rec.IncAudit()
	defer func() { rec.ObservePipelineMs("audit", metrics.SinceMillis(start)) }()

	if s.LLM == nil {
		return []Finding{unavailableFinding(doc.ID)}
	}

	budget := s.CharBudget
	if budget <= 0 {
		budget = DefaultCharBudget
	}
	raw, err := s.LLM.Complete(ctx, llm.AuditPrompt(util.Truncate(doc.Text, budget)), auditOptions)
	if err != nil {
		s.logFailure(doc.ID, err)
		return []Finding{unavailableFinding(doc.ID)}
	}

	findings, rejects, err := parseFindings(raw, doc.ID, doc.Text)
	if err != nil {
		s.logFailure(doc.ID, err)
		return []Finding{unavailableFinding(doc.ID)}
	}
	for _, reject := range rejects {
		telemetry.Warn("audit.finding_dropped", map[string]any{
			"document_id": doc.ID,
			"error":       redact.Error(reject),
		})
	}
	if len(findings) == 0 {
		return []Finding{noRisksFinding(doc.ID)}
	}
	return findings
}

// BatchAudit audits each document independently and keys the results by
// document id.
func (s *Service) BatchAudit(ctx context.Context, docs []documents.Document) map[string][]Finding {
	out := make(map[string][]Finding, len(docs))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, batchConcurrency)
	for _, doc := range docs {
		wg.Add(1)
		sem <- struct{}{}
		go func(doc documents.Document) {
			defer wg.Done()
			defer func() { <-sem }()
			findings := s.Audit(ctx, doc)
			mu.Lock()
			out[doc.ID] = findings
			mu.Unlock()
		}(doc)
	}
	wg.Wait()
	return out
}

func (s *Service) logFailure(documentID string, err error) {
	label := llm.Label(err)
	if llm.IsProviderFailure(err) {
		s.recorder().IncProviderFailure(label)
	}
	telemetry.Warn("audit.degraded", map[string]any{
		"document_id": documentID,
		"error":       redact.Error(err),
		"kind":        label,
	})
}

func (s *Service) recorder() metrics.Recorder {
	if s.Metrics == nil {
		return metrics.Nop{}
	}
	return s.Metrics
}
