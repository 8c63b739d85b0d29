package audit

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExportXLSX(t *testing.T) {
	page := 3
	findings := []Finding{
		{Severity: SeverityHigh, ClauseType: ClauseLiability, Description: "No cap", Evidence: "liability is unlimited", DocumentID: "doc-1", Page: &page, Recommendation: "Add a cap"},
		unavailableFinding("doc-2"),
	}

	data, err := ExportXLSX(findings)
	if err != nil {
		t.Fatalf("ExportXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Document" || rows[0][6] != "Recommendation" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][1] != "high" || rows[1][5] != "3" || rows[1][4] != "liability is unlimited" {
		t.Fatalf("unexpected first row %v", rows[1])
	}
	if rows[2][0] != "doc-2" || rows[2][3] != "automated audit unavailable" {
		t.Fatalf("unexpected second row %v", rows[2])
	}
	if width, err := f.GetColWidth(exportSheet, "D"); err != nil || width != 60 {
		t.Fatalf("expected description column width 60, got %v (%v)", width, err)
	}
}
