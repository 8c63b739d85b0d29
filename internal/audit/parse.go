package audit

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"contract-backend/internal/llm"
)

var (
	findingsSchema = llm.MustCompileSchema("audit_findings", map[string]any{
		"type": "array",
	})
	// findingSchema validates a single element. Severity and clause type are
	// only required to be present; their values are normalized afterwards.
	findingSchema = llm.MustCompileSchema("audit_finding", map[string]any{
		"type":     "object",
		"required": []string{"severity", "clause_type", "description", "evidence"},
		"properties": map[string]any{
			"description":    map[string]any{"type": "string"},
			"evidence":       map[string]any{"type": "string"},
			"recommendation": llm.NullableString(),
		},
	})

	pageMarker = regexp.MustCompile(`\[PAGE (\d+)\]`)
)

type rawFinding struct {
	Severity       any     `json:"severity"`
	ClauseType     any     `json:"clause_type"`
	Description    string  `json:"description"`
	Evidence       string  `json:"evidence"`
	Recommendation *string `json:"recommendation"`
}

// parseFindings decodes the model output into findings anchored in text.
// The error is non-nil only when the output as a whole is unusable; bad
// elements are returned as rejects.
func parseFindings(raw, documentID, text string) ([]Finding, []error, error) {
	var elements []json.RawMessage
	if err := llm.Decode(raw, findingsSchema, &elements); err != nil {
		return nil, nil, err
	}

	findings := make([]Finding, 0, len(elements))
	var rejects []error
	for i, elem := range elements {
		if err := findingSchema.ValidateRaw(elem); err != nil {
			rejects = append(rejects, err)
			continue
		}
		var rf rawFinding
		if err := json.Unmarshal(elem, &rf); err != nil {
			rejects = append(rejects, &llm.ValidationError{Field: "finding[" + strconv.Itoa(i) + "]", Reason: err.Error()})
			continue
		}

		f := Finding{
			Severity:    NormalizeSeverity(rf.Severity),
			ClauseType:  NormalizeClauseType(rf.ClauseType),
			Description: strings.TrimSpace(rf.Description),
			DocumentID:  documentID,
		}
		if rf.Recommendation != nil {
			f.Recommendation = strings.TrimSpace(*rf.Recommendation)
		}
		if evidence := strings.TrimSpace(rf.Evidence); evidence != "" {
			start, verbatim, ok := locateEvidence(text, evidence)
			if !ok {
				rejects = append(rejects, &llm.ValidationError{Field: "finding[" + strconv.Itoa(i) + "].evidence", Reason: "not found in document"})
				continue
			}
			f.Evidence = verbatim
			f.Page = pageAt(text, start)
		}
		findings = append(findings, f)
	}
	return findings, rejects, nil
}

// locateEvidence finds evidence in text, first exactly and then allowing any
// run of whitespace where the quote has one. The returned quote is always
// the document's own text.
func locateEvidence(text, evidence string) (int, string, bool) {
	if i := strings.Index(text, evidence); i >= 0 {
		return i, evidence, true
	}
	words := strings.Fields(evidence)
	if len(words) == 0 {
		return 0, "", false
	}
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	re, err := regexp.Compile(strings.Join(words, `\s+`))
	if err != nil {
		return 0, "", false
	}
	loc := re.FindStringIndex(text)
	if loc == nil {
		return 0, "", false
	}
	return loc[0], text[loc[0]:loc[1]], true
}

// pageAt returns the page of the last marker before offset.
func pageAt(text string, offset int) *int {
	var page *int
	for _, m := range pageMarker.FindAllStringSubmatchIndex(text[:offset], -1) {
		n, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue
		}
		page = &n
	}
	return page
}
