package util

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "msa.pdf", want: "msa.pdf"},
		{in: " dir/msa.pdf ", want: "dir_msa.pdf"},
		{in: `a\b.pdf`, want: "a_b.pdf"},
		{in: "../etc/passwd", wantErr: true},
		{in: "   ", wantErr: true},
	}
	for _, tt := range tests {
		got, err := SanitizeFileName(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("SanitizeFileName(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("SanitizeFileName(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestIsPDF(t *testing.T) {
	if !IsPDF("Contract.PDF") || IsPDF("contract.docx") || IsPDF("pdf") {
		t.Fatalf("unexpected IsPDF results")
	}
}
