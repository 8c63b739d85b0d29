package audit

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Findings"

var exportHeaders = []string{
	"Document",
	"Severity",
	"Clause Type",
	"Description",
	"Evidence",
	"Page",
	"Recommendation",
}

// ExportXLSX renders findings as a single-sheet workbook.
func ExportXLSX(findings []Finding) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(exportSheet, "A1", last, style); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, finding := range findings {
		page := ""
		if finding.Page != nil {
			page = fmt.Sprint(*finding.Page)
		}
		row := []any{
			finding.DocumentID,
			string(finding.Severity),
			string(finding.ClauseType),
			finding.Description,
			finding.Evidence,
			page,
			finding.Recommendation,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	widths := []struct {
		from, to string
		width    float64
	}{
		{"A", "A", 34},
		{"B", "C", 16},
		{"D", "E", 60},
		{"F", "F", 8},
		{"G", "G", 48},
	}
	for _, w := range widths {
		if err := f.SetColWidth(exportSheet, w.from, w.to, w.width); err != nil {
			return nil, fmt.Errorf("column width %s: %w", w.from, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
