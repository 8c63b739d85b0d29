package redact

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "email", in: "contact jane.doe@acme.com now", want: "contact [EMAIL] now"},
		{name: "ssn", in: "ssn 123-45-6789", want: "ssn [SSN]"},
		{name: "phone", in: "call (415) 555-0100", want: "call [PHONE]"},
		{name: "bearer", in: "Authorization: Bearer abc.def-123", want: "Authorization: Bearer [TOKEN]"},
		{name: "query key", in: "GET /v1/models?key=AIzaSECRET&alt=sse", want: "GET /v1/models?key=[TOKEN]&alt=sse"},
		{name: "newlines", in: "line one\nline two\r\n", want: "line one line two"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.in); got != tt.want {
				t.Fatalf("Text(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTextTruncates(t *testing.T) {
	got := Text(strings.Repeat("a", 2000))
	if !strings.HasSuffix(got, "...(truncated)") || len(got) != maxLen+len("...(truncated)") {
		t.Fatalf("unexpected truncation, len=%d", len(got))
	}
}

func TestError(t *testing.T) {
	if Error(nil) != "" {
		t.Fatalf("expected empty string for nil error")
	}
	got := Error(errors.New("groq http status 401: bad key for ops@acme.com"))
	if strings.Contains(got, "ops@acme.com") {
		t.Fatalf("expected email to be redacted, got %q", got)
	}
}

func TestDocument(t *testing.T) {
	got := Document("secret contract body")
	if got["chars"] != len("secret contract body") || len(got) != 1 {
		t.Fatalf("unexpected document summary: %v", got)
	}
}

func TestTextTruncatesOnRuneBoundary(t *testing.T) {
	got := Text(strings.Repeat("é", maxLen+100))
	if !utf8.ValidString(got) {
		t.Fatalf("truncated output is not valid UTF-8: %q", got)
	}
	want := strings.Repeat("é", maxLen) + "...(truncated)"
	if got != want {
		t.Fatalf("expected %d runes plus marker, got %d runes", maxLen, utf8.RuneCountInString(got))
	}
}
