package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"contract-backend/internal/answers"
	"contract-backend/internal/audit"
	"contract-backend/internal/documents"
	"contract-backend/internal/extract"
	"contract-backend/internal/extraction"
	"contract-backend/internal/llm"
	"contract-backend/internal/llm/provider"
	"contract-backend/internal/shared/config"
	"contract-backend/internal/shared/metrics"
	"contract-backend/internal/shared/redact"
	"contract-backend/internal/shared/server"
	"contract-backend/internal/shared/storage/db"
	"contract-backend/internal/shared/storage/object"
	localstore "contract-backend/internal/shared/storage/object/local"
	s3store "contract-backend/internal/shared/storage/object/s3"
	"contract-backend/internal/shared/telemetry"
	"contract-backend/internal/webhooks"
)

// App holds the wired services and the HTTP router.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Store    object.Store
	LLM      llm.Client
	Metrics  *metrics.Collector
	Notifier *webhooks.Notifier

	DocumentsRepo     documents.Repo
	DocumentsService  *documents.Service
	ExtractionService *extraction.Service
	AnswerService     *answers.Service
	AuditService      *audit.Service
}

// Build connects storage, selects the language model backend and wires the
// router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	return BuildWithClient(ctx, cfg, provider.New(ctx, cfg))
}

// BuildWithClient is Build with the completion client supplied by the caller.
func BuildWithClient(ctx context.Context, cfg config.Config, client llm.Client) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Store:    store,
		LLM:      client,
		Metrics:  metrics.NewCollector(),
		Notifier: webhooks.New(cfg.WebhookURL),
	}
	app.Notifier.Secret = cfg.WebhookSecret
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            cfg,
		Metrics:           app.Metrics,
		DocumentHandler:   documents.NewHandler(app.DocumentsService),
		ExtractionHandler: extraction.NewHandler(app.ExtractionService, app.DocumentsService),
		AnswerHandler:     answers.NewHandler(app.AnswerService, app.DocumentsService),
		AuditHandler:      audit.NewHandler(app.AuditService, app.DocumentsService),
		WebhookHandler:    webhooks.NewHandler(app.Notifier),
	})

	return app, nil
}

// Offline wires the pipelines over an in-memory repository with no object
// store and no router. The CLI and MCP server run on it.
func Offline(ctx context.Context, cfg config.Config) *App {
	return OfflineWithClient(cfg, provider.New(ctx, cfg))
}

// OfflineWithClient is Offline with the completion client supplied by the
// caller.
func OfflineWithClient(cfg config.Config, client llm.Client) *App {
	app := &App{
		Config:   cfg,
		LLM:      client,
		Metrics:  metrics.NewCollector(),
		Notifier: webhooks.New(""),
	}
	buildServices(app)
	return app
}

// LoadPDF ingests a PDF from the local filesystem.
func (a *App) LoadPDF(ctx context.Context, path string) (documents.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return documents.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return a.DocumentsService.IngestPDF(ctx, filepath.Base(path), data)
}

// Close waits for queued webhook deliveries and releases the model client
// and the database.
func (a *App) Close() error {
	a.Notifier.Wait()
	var errs []error
	if closer, ok := a.LLM.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Info("bootstrap.memory_repo", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err == nil {
		if err = db.RunMigrations(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			err = fmt.Errorf("run migrations: %w", err)
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repo", map[string]any{
				"reason": "database unavailable",
				"error":  redact.Error(err),
			})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) {
	var repo documents.Repo
	if app.DB != nil {
		repo = &documents.PGRepo{DB: app.DB}
	} else {
		repo = documents.NewMemoryRepo()
	}

	app.DocumentsRepo = repo
	app.DocumentsService = &documents.Service{
		Store:   app.Store,
		Repo:    repo,
		Metrics: app.Metrics,
		Extract: extract.PDF,
		Events:  app.Notifier,
	}
	app.ExtractionService = &extraction.Service{
		LLM:        app.LLM,
		Metrics:    app.Metrics,
		CharBudget: app.Config.ExtractCharBudget,
	}
	app.AnswerService = &answers.Service{
		LLM:           app.LLM,
		Metrics:       app.Metrics,
		DocCharBudget: app.Config.AnswerDocCharBudget,
	}
	app.AuditService = &audit.Service{
		LLM:        app.LLM,
		Metrics:    app.Metrics,
		CharBudget: app.Config.AuditCharBudget,
	}
}
