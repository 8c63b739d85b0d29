package s3

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "documents/abc/msa.pdf", want: "documents/abc/msa.pdf"},
		{name: "prefix", prefix: "contracts", key: "documents/abc/msa.pdf", want: "contracts/documents/abc/msa.pdf"},
		{name: "slashes", prefix: "/contracts/", key: "/documents/abc/msa.pdf", want: "contracts/documents/abc/msa.pdf"},
		{name: "empty key", prefix: "contracts", key: "", want: "contracts"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestNormalizePrefix(t *testing.T) {
	if got := normalizePrefix("  /a/b/ "); got != "a/b" {
		t.Fatalf("normalizePrefix = %q", got)
	}
}

func TestPutWritesUnderPrefixedKey(t *testing.T) {
	type seen struct {
		method, path, docID, contentType string
		body                             []byte
	}
	got := make(chan seen, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- seen{
			method:      r.Method,
			path:        r.URL.Path,
			docID:       r.Header.Get("X-Amz-Meta-Document-Id"),
			contentType: r.Header.Get("Content-Type"),
			body:        body,
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(srv.URL),
		UsePathStyle: true,
		Credentials:  aws.AnonymousCredentials{},
	})
	store := newWithClient(client, "contracts-bucket", "tenant-a", "")

	stored, err := store.Put(context.Background(), "abc123", "MSA.pdf", bytes.NewReader([]byte("%PDF-1.4 body")))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if stored.Key != "documents/abc123/MSA.pdf" || stored.Size != 13 || stored.MimeType != "application/pdf" {
		t.Fatalf("unexpected stored %+v", stored)
	}

	req := <-got
	if req.method != http.MethodPut || req.path != "/contracts-bucket/tenant-a/documents/abc123/MSA.pdf" {
		t.Fatalf("unexpected request %s %s", req.method, req.path)
	}
	if req.docID != "abc123" || req.contentType != "application/pdf" {
		t.Fatalf("unexpected headers doc=%q type=%q", req.docID, req.contentType)
	}
	if !bytes.Equal(req.body, []byte("%PDF-1.4 body")) {
		t.Fatalf("unexpected body %q", req.body)
	}
}
