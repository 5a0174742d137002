package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// maxPlainKey is the longest key stored verbatim
const maxPlainKey = 128

// Key joins parts into a cache key. Long keys are replaced by their SHA-256
// digest so that large polynomials do not dominate memory.
func Key(parts ...string) string {
	joined := strings.Join(parts, "\x1f")
	if len(joined) <= maxPlainKey {
		return joined
	}
	sum := sha256.Sum256([]byte(joined))
	return "sha256:" + hex.EncodeToString(sum[:])
}
