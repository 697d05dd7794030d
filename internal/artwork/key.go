package artwork

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// CacheKey derives the hex blake3 digest of identity and style. The same
// inputs always produce the same 64-character key.
func CacheKey(identity, style string) string {
	sum := blake3.Sum256([]byte(identity + "\x00" + style))
	return hex.EncodeToString(sum[:])
}
