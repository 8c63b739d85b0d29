package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"contract-backend/internal/answers"
	"contract-backend/internal/bootstrap"
	"contract-backend/internal/extract"
	"contract-backend/internal/llm"
	"contract-backend/internal/shared/config"
)

func testFactory(pages ...string) appFactory {
	return func(ctx context.Context) *bootstrap.App {
		app := bootstrap.OfflineWithClient(config.Config{Env: "dev"}, llm.Unavailable{Provider: "test", Reason: "offline"})
		app.DocumentsService.Extract = func(ctx context.Context, data []byte) (extract.Result, error) {
			return extract.Result{Text: extract.JoinPages(pages), PageCount: len(pages)}, nil
		}
		return app
	}
}

func writePDF(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func run(t *testing.T, factory appFactory, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(factory)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestIngestPrintsIDsAndPageCounts(t *testing.T) {
	out, err := run(t, testFactory("one", "two"), "ingest", writePDF(t, "nda.pdf"))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if !strings.Contains(out, "nda.pdf\t2 pages") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestExtractFallsBackWithoutProvider(t *testing.T) {
	out, err := run(t, testFactory("This Agreement is governed by the laws of the State of Texas."), "extract", writePDF(t, "msa.pdf"))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(out), &fields); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if fields["extraction_method"] != "fallback_regex" || fields["governing_law"] != "Texas" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestAskStreamPrintsUnavailableText(t *testing.T) {
	out, err := run(t, testFactory("Term of 2 years"), "ask", "What is the term?", "--stream", "--file", writePDF(t, "lease.pdf"))
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if !strings.HasPrefix(out, answers.UnavailableAnswer) {
		t.Fatalf("unexpected output %q", out)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "[]") {
		t.Fatalf("expected empty citation list, got %q", out)
	}
}

func TestAuditWritesWorkbook(t *testing.T) {
	xlsx := filepath.Join(t.TempDir(), "findings.xlsx")
	out, err := run(t, testFactory("Either party may terminate."), "audit", writePDF(t, "msa.pdf"), "--xlsx", xlsx)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	var findings []map[string]any
	if err := json.Unmarshal([]byte(out), &findings); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected one finding, got %d", len(findings))
	}
	if info, err := os.Stat(xlsx); err != nil || info.Size() == 0 {
		t.Fatalf("expected workbook at %s: %v", xlsx, err)
	}
}

func TestExtractRequiresOnePath(t *testing.T) {
	if _, err := run(t, testFactory("x"), "extract"); err == nil {
		t.Fatalf("expected argument error")
	}
}
