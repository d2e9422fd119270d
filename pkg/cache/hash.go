package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 digest of data. Model documents hash their
// canonical encoding through this, so the digest doubles as the model's
// identity across every cache backend.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey derives a cache key of the form "<class>:<digest>" from the
// identifying parts: the model hash plus whatever options shape the cached
// value. Parts are JSON-encoded into the digest stream, which is stable for
// the option structs used here.
func hashKey(class string, parts ...any) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, part := range parts {
		_ = enc.Encode(part) // writing to a hash cannot fail
	}
	return class + ":" + hex.EncodeToString(h.Sum(nil))
}
