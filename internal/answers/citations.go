package answers

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agext/levenshtein"

	"contract-backend/internal/documents"
)

// maxSnippetChars caps the length of a citation snippet.
const maxSnippetChars = 200

var (
	// answerMarker matches [DOCUMENT: id] and [PAGE n] markers repeated by the
	// model from its context.
	answerMarker = regexp.MustCompile(`\[(DOCUMENT:|PAGE)\s*([^\]]+?)\s*\]`)
	pageMarker   = regexp.MustCompile(`\[PAGE (\d+)\]`)
	sentence     = regexp.MustCompile(`[^.!?\n]+(?:[.!?]+|$)`)
	wordPattern  = regexp.MustCompile(`[\pL\pN]+`)
)

type reference struct {
	docID string
	page  *int
}

// ResolveCitations maps an answer back to the documents it was grounded on.
// Markers in the answer are used first; without markers, any document whose
// id or filename appears in the answer is cited. Snippets are always cut
// from the document text.
func ResolveCitations(answer string, docs []documents.Document) []Citation {
	byID := make(map[string]documents.Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}

	refs := markerReferences(answer, docs, byID)
	if len(refs) == 0 {
		refs = mentionReferences(answer, docs)
	}

	out := []Citation{}
	seen := map[string]bool{}
	answerTokens := tokens(answerMarker.ReplaceAllString(answer, " "))
	for _, ref := range refs {
		doc := byID[ref.docID]
		c, ok := citationFor(doc, ref.page, answerTokens)
		if !ok {
			continue
		}
		key := c.DocumentID + "|" + pageKey(c.Page) + "|" + strconv.Itoa(*c.CharStart)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

func markerReferences(answer string, docs []documents.Document, byID map[string]documents.Document) []reference {
	var refs []reference
	current := ""
	currentHasPage := false
	flush := func() {
		if current != "" && !currentHasPage {
			refs = append(refs, reference{docID: current})
		}
	}

	for _, m := range answerMarker.FindAllStringSubmatch(answer, -1) {
		switch m[1] {
		case "DOCUMENT:":
			flush()
			current, currentHasPage = "", false
			if _, ok := byID[m[2]]; ok {
				current = m[2]
			}
		case "PAGE":
			page, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			docID := current
			if docID == "" {
				docID = onlyDocumentWithPage(docs, page)
			} else {
				currentHasPage = true
			}
			if docID != "" {
				refs = append(refs, reference{docID: docID, page: &page})
			}
		}
	}
	flush()
	return refs
}

func onlyDocumentWithPage(docs []documents.Document, page int) string {
	marker := "[PAGE " + strconv.Itoa(page) + "]"
	found := ""
	for _, d := range docs {
		if strings.Contains(d.Text, marker) {
			if found != "" {
				return ""
			}
			found = d.ID
		}
	}
	return found
}

func mentionReferences(answer string, docs []documents.Document) []reference {
	var refs []reference
	for _, d := range docs {
		if strings.Contains(answer, d.ID) || (d.Filename != "" && strings.Contains(answer, d.Filename)) {
			refs = append(refs, reference{docID: d.ID})
		}
	}
	return refs
}

// pageSpan is the byte range of one page's text within a document.
type pageSpan struct {
	page       *int
	start, end int
}

func pageSpans(text string) []pageSpan {
	idx := pageMarker.FindAllStringSubmatchIndex(text, -1)
	if len(idx) == 0 {
		return []pageSpan{{start: 0, end: len(text)}}
	}
	spans := make([]pageSpan, 0, len(idx))
	for i, m := range idx {
		n, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue
		}
		end := len(text)
		if i+1 < len(idx) {
			end = idx[i+1][0]
		}
		spans = append(spans, pageSpan{page: &n, start: m[1], end: end})
	}
	return spans
}

// citationFor picks the sentence of doc closest to the answer, limited to
// page when the page exists in the document.
func citationFor(doc documents.Document, page *int, answerTokens []string) (Citation, bool) {
	spans := pageSpans(doc.Text)
	if page != nil {
		for _, sp := range spans {
			if sp.page != nil && *sp.page == *page {
				spans = []pageSpan{sp}
				break
			}
		}
	}

	bestScore := -1.0
	var best pageSpan
	bestStart, bestEnd := -1, -1
	for _, sp := range spans {
		body := doc.Text[sp.start:sp.end]
		for _, loc := range sentence.FindAllStringIndex(body, -1) {
			start, end := trimSpan(body, loc[0], loc[1])
			if start >= end {
				continue
			}
			score := similarity(answerTokens, tokens(body[start:end]))
			if score > bestScore {
				bestScore = score
				best = sp
				bestStart, bestEnd = sp.start+start, sp.start+end
			}
		}
	}
	if bestStart < 0 {
		return Citation{}, false
	}

	bestEnd = clampChars(doc.Text, bestStart, bestEnd, maxSnippetChars)
	charStart := utf8.RuneCountInString(doc.Text[:bestStart])
	charEnd := charStart + utf8.RuneCountInString(doc.Text[bestStart:bestEnd])
	return Citation{
		DocumentID:  doc.ID,
		Page:        best.page,
		CharStart:   &charStart,
		CharEnd:     &charEnd,
		TextSnippet: doc.Text[bestStart:bestEnd],
	}, true
}

func trimSpan(s string, start, end int) (int, int) {
	for start < end {
		r, size := utf8.DecodeRuneInString(s[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRuneInString(s[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		end -= size
	}
	return start, end
}

func clampChars(s string, start, end, max int) int {
	count := 0
	for i := range s[start:end] {
		if count == max {
			return start + i
		}
		count++
	}
	return end
}

func tokens(s string) []string {
	var out []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(s), -1) {
		if utf8.RuneCountInString(w) >= 3 {
			out = append(out, w)
		}
	}
	return out
}

// similarity scores how well candidate covers the answer: each answer token
// contributes its best normalized Levenshtein match among candidate tokens.
func similarity(answer, candidate []string) float64 {
	if len(answer) == 0 || len(candidate) == 0 {
		return 0
	}
	set := make(map[string]bool, len(candidate))
	for _, t := range candidate {
		set[t] = true
	}
	total := 0.0
	for _, a := range answer {
		if set[a] {
			total++
			continue
		}
		best := 0.0
		for c := range set {
			maxLen := utf8.RuneCountInString(a)
			if n := utf8.RuneCountInString(c); n > maxLen {
				maxLen = n
			}
			score := 1 - float64(levenshtein.Distance(a, c, nil))/float64(maxLen)
			if score > best {
				best = score
			}
		}
		// Only near-misses count; short unrelated words score high otherwise.
		if best >= 0.75 {
			total += best
		}
	}
	return total / float64(len(answer))
}

func pageKey(p *int) string {
	if p == nil {
		return "-"
	}
	return strconv.Itoa(*p)
}
