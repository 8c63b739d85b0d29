// Package extract converts contract PDFs into page-marked plain text.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageMarker returns the marker that opens page n in extracted text.
func PageMarker(n int) string {
	return "[PAGE " + strconv.Itoa(n) + "]"
}

// Result is the extracted text of one PDF.
type Result struct {
	Text      string
	PageCount int
}

// PDF extracts the text of every page and joins the pages with [PAGE n]
// markers so answers can be traced back to a page.
func PDF(ctx context.Context, data []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if len(data) == 0 {
		return Result{}, errors.New("empty pdf data")
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("open pdf: %w", err)
	}

	total := reader.NumPage()
	pages := make([]string, 0, total)
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			return Result{}, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return Result{Text: JoinPages(pages), PageCount: total}, nil
}

// JoinPages renders page texts as "\n[PAGE n]\n<text>\n" blocks, trimmed at
// both ends.
func JoinPages(pages []string) string {
	var b strings.Builder
	for i, text := range pages {
		b.WriteString("\n")
		b.WriteString(PageMarker(i + 1))
		b.WriteString("\n")
		b.WriteString(text)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
