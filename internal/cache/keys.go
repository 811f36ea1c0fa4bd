// Package cache implements the tiered cache and the cache-aside resolver used by node lookups.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	// KeyVersion is bumped whenever the encoding of cached values changes.
	KeyVersion = "v1"

	keyDelimiter = "-"
)

const (
	EventHit    = "hit"
	EventMiss   = "miss"
	EventSet    = "set"
	EventDelete = "delete"
	EventError  = "error"
)

// keyEscaper keeps the delimiter out of key parts, so distinct part lists never share a key.
var keyEscaper = strings.NewReplacer("%", "%25", keyDelimiter, "%2D")

// Key builds a cache key from an operation name and its parameters. Parts containing the
// delimiter are escaped; hex, base58 and bech32 parts are left as they are.
func Key(operation string, params ...string) string {
	parts := make([]string, 0, len(params)+1)
	for _, p := range append([]string{operation}, params...) {
		parts = append(parts, keyEscaper.Replace(p))
	}
	return strings.Join(parts, keyDelimiter)
}

// Namespace derives a shared-tier key prefix from the node credentials so that explorers
// pointed at different nodes never read each other's entries.
func Namespace(credentials string) string {
	sum := sha256.Sum256([]byte(credentials))
	return KeyVersion + keyDelimiter + hex.EncodeToString(sum[:])[:8] + keyDelimiter
}
