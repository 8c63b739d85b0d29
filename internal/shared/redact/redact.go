// Package redact scrubs contract text and personal data from strings before
// they are logged.
package redact

import (
	"regexp"
	"strings"

	"contract-backend/internal/shared/util"
)

// maxLen caps redacted output; longer values are cut and marked.
const maxLen = 500

type rule struct {
	name string
	re   *regexp.Regexp
	repl string
}

var rules = []rule{
	{name: "email", re: regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`), repl: "[EMAIL]"},
	{name: "ssn", re: regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), repl: "[SSN]"},
	{name: "card", re: regexp.MustCompile(`\b(?:\d[ -]?){13,16}\b`), repl: "[CARD]"},
	{name: "phone", re: regexp.MustCompile(`(?:\+?1[ .\-]?)?\(?\d{3}\)?[ .\-]?\d{3}[ .\-]\d{4}\b`), repl: "[PHONE]"},
	{name: "bearer", re: regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._\-]+`), repl: "Bearer [TOKEN]"},
	{name: "api_key", re: regexp.MustCompile(`(?i)(key|api_key|apikey)=[^&\s"]+`), repl: "$1=[TOKEN]"},
}

// Text removes personal data and secrets from s, collapses newlines and caps
// the result length.
func Text(s string) string {
	if s == "" {
		return ""
	}
	out := s
	for _, r := range rules {
		out = r.re.ReplaceAllString(out, r.repl)
	}
	out = strings.ReplaceAll(out, "\r", " ")
	out = strings.ReplaceAll(out, "\n", " ")
	out = strings.TrimSpace(out)
	if cut := util.Truncate(out, maxLen); cut != out {
		out = cut + "...(truncated)"
	}
	return out
}

// Error returns the redacted message of err, or "" for nil.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return Text(err.Error())
}

// Document replaces a document body with a length marker. Document text is
// never logged verbatim.
func Document(text string) map[string]any {
	return map[string]any{"chars": len(text)}
}
