package signing

import (
	"errors"
	"strings"
	"testing"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	body := []byte(`{"event_type":"document.ingested"}`)
	secret := []byte("s3cret")

	sig := Sign(body, secret)
	if !strings.HasPrefix(sig, Prefix) || len(sig) != len(Prefix)+64 {
		t.Fatalf("unexpected signature %q", sig)
	}
	if err := Verify(body, secret, sig); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyRejects(t *testing.T) {
	body := []byte("payload")
	secret := []byte("s3cret")
	sig := Sign(body, secret)

	cases := map[string]struct {
		body   []byte
		secret []byte
		sig    string
	}{
		"tampered body": {[]byte("payload!"), secret, sig},
		"wrong secret":  {body, []byte("other"), sig},
		"no prefix":     {body, secret, strings.TrimPrefix(sig, Prefix)},
		"empty":         {body, secret, ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if err := Verify(tc.body, tc.secret, tc.sig); !errors.Is(err, ErrInvalidSignature) {
				t.Fatalf("expected ErrInvalidSignature, got %v", err)
			}
		})
	}
}
