package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"contract-backend/internal/audit"
	"contract-backend/internal/bootstrap"
	"contract-backend/internal/documents"
)

type appFactory func(ctx context.Context) *bootstrap.App

func newRootCmd(newApp appFactory) *cobra.Command {
	root := &cobra.Command{
		Use:          "contractctl",
		Short:        "Run contract extraction, Q&A and audits on local PDF files",
		SilenceUsage: true,
	}
	root.AddCommand(
		newIngestCmd(newApp),
		newExtractCmd(newApp),
		newAskCmd(newApp),
		newAuditCmd(newApp),
	)
	return root
}

func newIngestCmd(newApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <pdf>...",
		Short: "Convert PDFs to page-marked text and print their document ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := newApp(cmd.Context())
			for _, path := range args {
				doc, err := app.LoadPDF(cmd.Context(), path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d pages\n", doc.ID, doc.Filename, doc.PageCount)
			}
			return nil
		},
	}
}

func newExtractCmd(newApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <pdf>",
		Short: "Extract structured fields from a contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := newApp(cmd.Context())
			doc, err := app.LoadPDF(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), app.ExtractionService.Extract(cmd.Context(), doc.Text))
		},
	}
}

func newAskCmd(newApp appFactory) *cobra.Command {
	var (
		files  []string
		stream bool
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question about one or more contracts with citations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := newApp(cmd.Context())
			docs, err := loadAll(cmd.Context(), app, files)
			if err != nil {
				return err
			}
			if !stream {
				return printJSON(cmd.OutOrStdout(), app.AnswerService.Answer(cmd.Context(), args[0], docs))
			}
			out := cmd.OutOrStdout()
			citations, err := app.AnswerService.AnswerStream(cmd.Context(), args[0], docs, func(chunk string) error {
				_, werr := io.WriteString(out, chunk)
				return werr
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			return printJSON(out, citations)
		},
	}
	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "PDF file to search (repeatable)")
	cmd.Flags().BoolVar(&stream, "stream", false, "print the answer as it is generated")
	return cmd
}

func newAuditCmd(newApp appFactory) *cobra.Command {
	var xlsxPath string
	cmd := &cobra.Command{
		Use:   "audit <pdf>",
		Short: "List risky clauses in a contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := newApp(cmd.Context())
			doc, err := app.LoadPDF(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			findings := app.AuditService.Audit(cmd.Context(), doc)
			if xlsxPath != "" {
				data, err := audit.ExportXLSX(findings)
				if err != nil {
					return err
				}
				if err := os.WriteFile(xlsxPath, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", xlsxPath, err)
				}
			}
			return printJSON(cmd.OutOrStdout(), findings)
		},
	}
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write the findings to this workbook")
	return cmd
}

func loadAll(ctx context.Context, app *bootstrap.App, paths []string) ([]documents.Document, error) {
	docs := make([]documents.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := app.LoadPDF(ctx, path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
