package main

// Run database migrations:
//   go run ./cmd/migrate
// Revert the latest migration:
//   go run ./cmd/migrate down

import (
	"context"
	"log"
	"os"

	"contract-backend/internal/shared/config"
	"contract-backend/internal/shared/storage/db"
	"contract-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		log.Printf("DATABASE_URL is required")
		os.Exit(1)
	}

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if len(os.Args) > 1 && os.Args[1] == "down" {
		if err := db.RollbackMigration(ctx, sqlDB); err != nil {
			log.Printf("failed to roll back migration: %v", err)
			os.Exit(1)
		}
		telemetry.Info("migrate.rolled_back", nil)
		return
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		log.Printf("failed to run migrations: %v", err)
		os.Exit(1)
	}
}
