package xpub

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

// Chain is the first non-hardened level below the account key.
type Chain uint32

const (
	ChainReceive Chain = 0
	ChainChange  Chain = 1
)

func (c Chain) String() string {
	switch c {
	case ChainReceive:
		return "receive"
	case ChainChange:
		return "change"
	default:
		return fmt.Sprintf("chain(%d)", uint32(c))
	}
}

// DeriveAddresses encodes count addresses of outputType under m/chain/start.. for params.
func DeriveAddresses(key *ExtendedKey, outputType OutputType, chain Chain, count, start int, params *chaincfg.Params) ([]string, error) {
	if count < 0 || start < 0 {
		return nil, fmt.Errorf("derive addresses: negative count %d or start %d", count, start)
	}
	if uint64(start)+uint64(count) > hdkeychain.HardenedKeyStart {
		return nil, fmt.Errorf("derive addresses: index %d out of range", start+count)
	}

	branch, err := key.key.Derive(uint32(chain))
	if err != nil {
		return nil, fmt.Errorf("derive %s branch: %w", chain, err)
	}

	addresses := make([]string, 0, count)
	for i := start; i < start+count; i++ {
		child, err := branch.Derive(uint32(i))
		if err != nil {
			return nil, fmt.Errorf("derive %s/%d: %w", chain, i, err)
		}
		address, err := encodeAddress(child, outputType, params)
		if err != nil {
			return nil, fmt.Errorf("encode %s/%d: %w", chain, i, err)
		}
		addresses = append(addresses, address)
	}
	return addresses, nil
}

func encodeAddress(key *hdkeychain.ExtendedKey, outputType OutputType, params *chaincfg.Params) (string, error) {
	pub, err := key.ECPubKey()
	if err != nil {
		return "", err
	}
	hash := btcutil.Hash160(pub.SerializeCompressed())

	switch outputType {
	case OutputP2PKH:
		addr, err := btcutil.NewAddressPubKeyHash(hash, params)
		if err != nil {
			return "", err
		}
		return addr.EncodeAddress(), nil
	case OutputP2WPKH:
		addr, err := btcutil.NewAddressWitnessPubKeyHash(hash, params)
		if err != nil {
			return "", err
		}
		return addr.EncodeAddress(), nil
	case OutputP2SHP2WPKH:
		witness, err := btcutil.NewAddressWitnessPubKeyHash(hash, params)
		if err != nil {
			return "", err
		}
		redeem, err := txscript.PayToAddrScript(witness)
		if err != nil {
			return "", err
		}
		addr, err := btcutil.NewAddressScriptHash(redeem, params)
		if err != nil {
			return "", err
		}
		return addr.EncodeAddress(), nil
	default:
		return "", fmt.Errorf("unsupported output type %q", outputType)
	}
}
