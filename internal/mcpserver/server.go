// Package mcpserver exposes the contract pipelines as MCP tools that operate
// on PDF files from the local filesystem.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"contract-backend/internal/answers"
	"contract-backend/internal/audit"
	"contract-backend/internal/documents"
	"contract-backend/internal/extraction"
	"contract-backend/internal/shared/redact"
	"contract-backend/internal/shared/telemetry"
)

// Loader turns a local PDF path into an ingested document.
type Loader interface {
	LoadPDF(ctx context.Context, path string) (documents.Document, error)
}

// Tools holds the pipelines behind each MCP tool.
type Tools struct {
	Docs       Loader
	Extraction *extraction.Service
	Answers    *answers.Service
	Audit      *audit.Service
}

// NewServer registers extract_fields, ask_question and audit_contract.
func NewServer(t *Tools, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"contract-backend",
		version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)

	s.AddTool(
		mcp.NewTool(
			"extract_fields",
			mcp.WithDescription("Extract structured fields (parties, dates, governing law, liability cap) from a contract PDF."),
			mcp.WithString("document_path", mcp.Required(), mcp.Description("Path to a local PDF file")),
		),
		t.handleExtract,
	)
	s.AddTool(
		mcp.NewTool(
			"ask_question",
			mcp.WithDescription("Answer a question about one or more contract PDFs with page citations."),
			mcp.WithString("question", mcp.Required(), mcp.Description("The question to answer")),
			mcp.WithArray("document_paths", mcp.Required(), mcp.Description("Paths to local PDF files"), mcp.WithStringItems()),
		),
		t.handleAsk,
	)
	s.AddTool(
		mcp.NewTool(
			"audit_contract",
			mcp.WithDescription("List risky clauses in a contract PDF with severity and verbatim evidence."),
			mcp.WithString("document_path", mcp.Required(), mcp.Description("Path to a local PDF file")),
		),
		t.handleAudit,
	)
	return s
}

// Serve runs the MCP server over stdio until the client disconnects.
func Serve(t *Tools, version string) error {
	telemetry.Info("mcp.start", map[string]any{"transport": "stdio"})
	return server.ServeStdio(NewServer(t, version))
}

func (t *Tools) handleExtract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, ok := stringArg(request, "document_path")
	if !ok {
		return mcp.NewToolResultError("document_path argument required"), nil
	}
	doc, err := t.Docs.LoadPDF(ctx, path)
	if err != nil {
		return loadError(err), nil
	}
	return jsonResult(t.Extraction.Extract(ctx, doc.Text))
}

func (t *Tools) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, ok := stringArg(request, "question")
	if !ok {
		return mcp.NewToolResultError("question argument required"), nil
	}
	var docs []documents.Document
	for _, path := range stringSliceArg(request, "document_paths") {
		doc, err := t.Docs.LoadPDF(ctx, path)
		if err != nil {
			return loadError(err), nil
		}
		docs = append(docs, doc)
	}
	return jsonResult(t.Answers.Answer(ctx, question, docs))
}

func (t *Tools) handleAudit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, ok := stringArg(request, "document_path")
	if !ok {
		return mcp.NewToolResultError("document_path argument required"), nil
	}
	doc, err := t.Docs.LoadPDF(ctx, path)
	if err != nil {
		return loadError(err), nil
	}
	return jsonResult(t.Audit.Audit(ctx, doc))
}

func stringArg(request mcp.CallToolRequest, name string) (string, bool) {
	value, ok := request.GetArguments()[name].(string)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

func stringSliceArg(request mcp.CallToolRequest, name string) []string {
	raw, _ := request.GetArguments()[name].([]any)
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func loadError(err error) *mcp.CallToolResult {
	telemetry.Warn("mcp.load_failed", map[string]any{"error": redact.Error(err)})
	return mcp.NewToolResultError(fmt.Sprintf("failed to load document: %s", redact.Error(err)))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}
