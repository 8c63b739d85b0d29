package extraction

import (
	"regexp"
	"strconv"
	"strings"
)

// FallbackConfidence is the fixed confidence of pattern-based results. It
// stays below the AI default so degraded output never looks more certain.
const FallbackConfidence = 0.4

// fieldPattern fills one field from the first match of regex in the text.
type fieldPattern struct {
	name  string
	regex *regexp.Regexp
	apply func(f *Fields, match []string) bool
}

// fallbackPatterns is applied in order over the full text. Each pattern
// touches only its own field, so order does not change the result.
var fallbackPatterns = []fieldPattern{
	{
		name:  "effective_date",
		regex: regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`),
		apply: func(f *Fields, m []string) bool {
			f.EffectiveDate = strPtr(m[0])
			return true
		},
	},
	{
		name:  "liability_cap",
		regex: regexp.MustCompile(`\$\s?(\d{1,3}(?:,\d{3})+|\d+)(\.\d{2})?`),
		apply: func(f *Fields, m []string) bool {
			amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "")+m[2], 64)
			if err != nil {
				return false
			}
			f.LiabilityCap = &LiabilityCap{Amount: &amount, Currency: strPtr("USD")}
			return true
		},
	},
	{
		name:  "parties",
		regex: regexp.MustCompile(`(?i:by and between|between)\s+([A-Z][^\n]*?)\s+(?i:and|&)\s+([A-Z][^\n]*?)\s*(?:[,;(\n]|\.(?:\s|$)|$)`),
		apply: func(f *Fields, m []string) bool {
			first, second := partyName(m[1]), partyName(m[2])
			if first == "" || second == "" {
				return false
			}
			f.Parties = []Party{{Name: first}, {Name: second}}
			return true
		},
	},
	{
		name:  "governing_law",
		regex: regexp.MustCompile(`(?i:governed\s+by)[^\n]*?(?i:laws\s+of)\s+(?:(?i:the)\s+)?(?:(?i:state|commonwealth)\s+(?i:of)\s+)?([A-Z][A-Za-z]*(?:\s[A-Z][A-Za-z]*)*)`),
		apply: func(f *Fields, m []string) bool {
			f.GoverningLaw = strPtr(m[1])
			return true
		},
	},
	{
		name:  "term",
		regex: regexp.MustCompile(`(?i)\bterm\s+of\s+(\d+)\s+(year|month|day)s?\b`),
		apply: func(f *Fields, m []string) bool {
			unit := strings.ToLower(m[2])
			if m[1] != "1" {
				unit += "s"
			}
			f.Term = strPtr(m[1] + " " + unit)
			return true
		},
	},
}

// Fallback extracts what it can with fixed patterns. It never fails: no
// match at all yields Empty().
func Fallback(text string) Fields {
	out := Empty()
	matched := false
	for _, p := range fallbackPatterns {
		m := p.regex.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if p.apply(&out, m) {
			matched = true
		}
	}
	if !matched {
		return Empty()
	}
	out.Method = MethodFallbackRegex
	out.Confidence = FallbackConfidence
	return out
}

func partyName(raw string) string {
	name := strings.TrimSpace(raw)
	if i := strings.Index(name, ","); i >= 0 {
		name = name[:i]
	}
	return strings.Trim(name, " \t\"'")
}
