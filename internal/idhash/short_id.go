package idhash

import (
	"encoding/hex"

	"github.com/mr-tron/base58"
)

// ShortID derives a compact base58 form of a hex-encoded ID for file names,
// report slugs, and log lines. It encodes the first 8 bytes of the decoded
// hash; a non-hex input is encoded from its raw bytes instead.
func ShortID(fullID string) string {
	raw, err := hex.DecodeString(fullID)
	if err != nil {
		raw = []byte(fullID)
	}
	if len(raw) > 8 {
		raw = raw[:8]
	}
	return base58.Encode(raw)
}
