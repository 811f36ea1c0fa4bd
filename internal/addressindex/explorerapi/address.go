package explorerapi

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/model"
)

// rejectNativeSegwit refuses bech32 and bech32m addresses for explorers that cannot serve them.
func rejectNativeSegwit(backend, address string, params *chaincfg.Params) error {
	addr, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return &model.UnsupportedAddressError{Backend: backend, Address: address, Reason: err.Error()}
	}
	switch addr.(type) {
	case *btcutil.AddressWitnessPubKeyHash, *btcutil.AddressWitnessScriptHash, *btcutil.AddressTaproot:
		return &model.UnsupportedAddressError{
			Backend: backend,
			Address: address,
			Reason:  "native segwit addresses are not supported",
		}
	}
	return nil
}

// window returns items[offset:offset+limit] clamped to the slice.
func window[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) || limit <= 0 {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
