// Package electrum queries a quorum of Electrum protocol servers and reports disagreement.
package electrum

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	MethodServerVersion = "server.version"
	MethodPing          = "server.ping"
	MethodGetHistory    = "blockchain.scripthash.get_history"
	MethodGetBalance    = "blockchain.scripthash.get_balance"
)

// ErrNoServers is returned when no server is connected.
var ErrNoServers = errors.New("no Electrum server connection available; the connection may have been lost " +
	"or the servers may still be indexing, reconnection is attempted in the background")

// HistoryEntry is one transaction touching a scripthash. Height is 0 or negative for mempool entries.
type HistoryEntry struct {
	TxHash string `json:"tx_hash"`
	Height int64  `json:"height"`
}

// Balance is expressed in satoshis.
type Balance struct {
	Confirmed   int64 `json:"confirmed"`
	Unconfirmed int64 `json:"unconfirmed"`
}

// ServerResponse labels a raw answer with the server that gave it.
type ServerResponse[T any] struct {
	Server string `json:"server"`
	Result T      `json:"result"`
}

// Result is either the agreed Value or, when servers disagree, every server's raw response.
type Result[T any] struct {
	Value     T
	Conflicts []ServerResponse[T]
}

// Conflicted reports whether the servers disagreed.
func (r Result[T]) Conflicted() bool {
	return len(r.Conflicts) > 0
}

// ScriptHash returns the Electrum scripthash of an output script: sha256, byte reversed, hex.
func ScriptHash(script []byte) string {
	sum := sha256.Sum256(script)
	for i, j := 0, len(sum)-1; i < j; i, j = i+1, j-1 {
		sum[i], sum[j] = sum[j], sum[i]
	}
	return hex.EncodeToString(sum[:])
}

// ScriptHashHex is ScriptHash for a hex encoded script.
func ScriptHashHex(scriptHex string) (string, error) {
	script, err := hex.DecodeString(scriptHex)
	if err != nil {
		return "", fmt.Errorf("decode script %q: %w", scriptHex, err)
	}
	return ScriptHash(script), nil
}
