package ids

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// NewID generates a new hex-based ID with a prefix (used for session tokens and local ids).
// Format: "prefix_hexstring" (e.g., "ses_a1b2c3d4e5f6...")
func NewID(prefix string) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b)), nil
}

// NewToken generates a 32 byte secret, hex encoded, with a prefix.
func NewToken(prefix string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b)), nil
}

// HasPrefix reports whether id was produced by NewID or NewToken with prefix.
func HasPrefix(id, prefix string) bool {
	return strings.HasPrefix(id, prefix+"_")
}
