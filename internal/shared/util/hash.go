package util

import (
	"crypto/sha256"
	"encoding/hex"
)

const fingerprintLen = 16

// Fingerprint returns a short stable hex id for s, used to correlate log
// lines without writing prompt text.
func Fingerprint(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}
