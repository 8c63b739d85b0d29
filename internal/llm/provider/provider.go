// Package provider selects the completion backend once at startup.
package provider

import (
	"context"

	"contract-backend/internal/llm"
	"contract-backend/internal/llm/gemini"
	"contract-backend/internal/llm/groq"
	"contract-backend/internal/shared/config"
	"contract-backend/internal/shared/redact"
	"contract-backend/internal/shared/telemetry"
)

// New builds the client named by cfg.AIProvider. When the backend cannot be
// constructed the returned client fails every call with KindUnavailable.
func New(ctx context.Context, cfg config.Config) llm.Client {
	var (
		client llm.Client
		err    error
		model  string
	)
	switch cfg.AIProvider {
	case "groq":
		model = cfg.GroqModel
		client, err = groq.New(cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqBaseURL, cfg.LLMTimeout)
	default:
		model = cfg.GeminiModel
		client, err = gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMTimeout)
	}
	if err != nil {
		telemetry.Warn("llm.provider_unavailable", map[string]any{
			"provider": cfg.AIProvider,
			"error":    redact.Error(err),
		})
		return llm.Unavailable{Provider: cfg.AIProvider, Reason: redact.Error(err)}
	}
	telemetry.Info("llm.provider_selected", map[string]any{
		"provider": client.Name(),
		"model":    model,
		"timeout":  cfg.LLMTimeout.String(),
	})
	return client
}
