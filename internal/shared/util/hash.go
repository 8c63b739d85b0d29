package util

import (
	"crypto/md5"
	"encoding/hex"
)

// fingerprintPrefix is how much of the text, in characters, feeds the id.
const fingerprintPrefix = 1000

// DocumentFingerprint derives a stable document id from its filename and the
// first characters of its extracted text. Identical uploads collide.
func DocumentFingerprint(filename, text string) string {
	sum := md5.Sum([]byte(filename + "_" + Truncate(text, fingerprintPrefix)))
	return hex.EncodeToString(sum[:])
}
