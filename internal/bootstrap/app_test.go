package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"contract-backend/internal/documents"
	"contract-backend/internal/extract"
	"contract-backend/internal/llm"
	"contract-backend/internal/shared/config"
)

func devConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Env:            "dev",
		Version:        "test",
		LocalStoreDir:  t.TempDir(),
		RateLimitRPS:   100,
		RateLimitBurst: 100,
	}
}

func TestBuildWithoutDatabaseUsesMemoryRepo(t *testing.T) {
	app, err := BuildWithClient(context.Background(), devConfig(t), llm.Unavailable{Provider: "test", Reason: "no key"})
	if err != nil {
		t.Fatalf("BuildWithClient: %v", err)
	}
	defer app.Close()

	if app.DB != nil {
		t.Fatalf("expected no database")
	}
	if _, ok := app.DocumentsRepo.(*documents.MemoryRepo); !ok {
		t.Fatalf("expected memory repo, got %T", app.DocumentsRepo)
	}
	if app.Router == nil {
		t.Fatalf("expected router")
	}
}

func TestBuildRequiresDatabaseOutsideDev(t *testing.T) {
	cfg := devConfig(t)
	cfg.Env = "production"
	if _, err := BuildWithClient(context.Background(), cfg, llm.Unavailable{Provider: "test"}); err == nil {
		t.Fatalf("expected error without DATABASE_URL in production")
	}
}

func TestExtractDegradesToFallbackWhenProviderUnavailable(t *testing.T) {
	app, err := BuildWithClient(context.Background(), devConfig(t), llm.Unavailable{Provider: "test", Reason: "no key"})
	if err != nil {
		t.Fatalf("BuildWithClient: %v", err)
	}
	defer app.Close()

	doc := documents.Document{
		ID:         "doc-1",
		Filename:   "msa.pdf",
		Text:       "[PAGE 1]\nThis Agreement shall be governed by the laws of the State of Delaware.",
		PageCount:  1,
		UploadedAt: time.Now(),
	}
	if err := app.DocumentsRepo.Save(context.Background(), doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/extract?document_id=doc-1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["extraction_method"] != "fallback_regex" {
		t.Fatalf("expected fallback_regex, got %v", body["extraction_method"])
	}
	if body["governing_law"] != "Delaware" {
		t.Fatalf("expected Delaware, got %v", body["governing_law"])
	}

	m := httptest.NewRecorder()
	app.Router.ServeHTTP(m, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	out := m.Body.String()
	if !strings.Contains(out, `extractions_total{method="fallback_regex"} 1`) {
		t.Fatalf("missing extraction counter:\n%s", out)
	}
	if !strings.Contains(out, `provider_failures_total{kind="unavailable"} 1`) {
		t.Fatalf("missing provider failure counter:\n%s", out)
	}
}

func TestOfflineLoadPDF(t *testing.T) {
	app := OfflineWithClient(devConfig(t), llm.Unavailable{Provider: "test"})
	app.DocumentsService.Extract = func(ctx context.Context, data []byte) (extract.Result, error) {
		return extract.Result{Text: extract.JoinPages([]string{"Term of 2 years"}), PageCount: 1}, nil
	}

	path := filepath.Join(t.TempDir(), "lease.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc, err := app.LoadPDF(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadPDF: %v", err)
	}
	if doc.Filename != "lease.pdf" || doc.PageCount != 1 || doc.StorageKey != "" {
		t.Fatalf("unexpected document %+v", doc)
	}

	if _, err := app.LoadPDF(context.Background(), filepath.Join(t.TempDir(), "missing.pdf")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
