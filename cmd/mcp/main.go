package main

import (
	"context"
	"log"
	"os"

	"contract-backend/internal/bootstrap"
	"contract-backend/internal/mcpserver"
	"contract-backend/internal/shared/config"
	"contract-backend/internal/shared/telemetry"
)

func main() {
	// stdout carries the MCP protocol.
	log.SetOutput(os.Stderr)
	telemetry.SetOutput(os.Stderr, "json", "info")
	cfg := config.Load()
	telemetry.SetOutput(os.Stderr, cfg.LogFormat, cfg.LogLevel)

	app := bootstrap.Offline(context.Background(), cfg)
	tools := &mcpserver.Tools{
		Docs:       app,
		Extraction: app.ExtractionService,
		Answers:    app.AnswerService,
		Audit:      app.AuditService,
	}
	if err := mcpserver.Serve(tools, cfg.Version); err != nil {
		log.Fatalf("mcp server: %v", err)
	}
}
