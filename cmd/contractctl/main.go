package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"contract-backend/internal/bootstrap"
	"contract-backend/internal/shared/config"
	"contract-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	// Logs go to stderr so command output stays parseable.
	telemetry.SetOutput(os.Stderr, cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(func(ctx context.Context) *bootstrap.App {
		return bootstrap.Offline(ctx, cfg)
	})
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
