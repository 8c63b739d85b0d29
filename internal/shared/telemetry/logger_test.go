package telemetry

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestInfoWritesJSONFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "json", "info")
	defer Setup("json", "info")

	Info("extraction.fallback", map[string]any{"document_id": "doc-1", "kind": "timeout"})

	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &payload); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if payload["msg"] != "extraction.fallback" {
		t.Fatalf("msg = %v", payload["msg"])
	}
	if payload["level"] != "INFO" {
		t.Fatalf("level = %v", payload["level"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts field")
	}
	if payload["document_id"] != "doc-1" || payload["kind"] != "timeout" {
		t.Fatalf("missing fields: %v", payload)
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "text", "warn")
	defer Setup("json", "info")

	Debug("hidden", nil)
	Info("hidden", nil)
	Warn("shown", map[string]any{"n": 1})

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected debug/info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "msg=shown") {
		t.Fatalf("expected warn line, got %q", out)
	}
}
