// Package signing signs outbound payloads with HMAC-SHA256 so receivers can
// check they came from this service.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// Prefix names the algorithm in a signature value.
const Prefix = "sha256="

// ErrInvalidSignature reports a missing or mismatched signature.
var ErrInvalidSignature = errors.New("invalid signature")

// Sign returns Prefix followed by the hex HMAC of body.
func Sign(body, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return Prefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a value produced by Sign.
func Verify(body, secret []byte, signature string) error {
	if !strings.HasPrefix(signature, Prefix) {
		return ErrInvalidSignature
	}
	if !hmac.Equal([]byte(signature), []byte(Sign(body, secret))) {
		return ErrInvalidSignature
	}
	return nil
}
