package security

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint returns the duplicate-detection hash for a ticket message.
// The message is trimmed and lowercased before hashing so that equal
// normalized text always yields equal fingerprints.
func Fingerprint(message string) string {
	normalized := strings.ToLower(strings.TrimSpace(message))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
