// Package xpub parses extended public keys, derives their addresses and scans them for activity.
package xpub

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/chain"
)

// OutputType is the script type a key family pays to.
type OutputType string

const (
	OutputP2PKH      OutputType = "P2PKH"
	OutputP2SHP2WPKH OutputType = "P2WPKH in P2SH"
	OutputP2WPKH     OutputType = "P2WPKH"
)

// Description returns the human readable name of the output type.
func (o OutputType) Description() string {
	switch o {
	case OutputP2PKH:
		return "Pay to Public Key Hash"
	case OutputP2SHP2WPKH:
		return "Pay to Witness Public Key Hash (P2WPKH) wrapped inside Pay to Script Hash (P2SH), aka Wrapped Segwit"
	case OutputP2WPKH:
		return "Pay to Witness Public Key Hash, aka Native Segwit"
	default:
		return ""
	}
}

// Prefix is the four letter name of an extended public key version.
type Prefix string

const (
	PrefixXpub Prefix = "xpub"
	PrefixYpub Prefix = "ypub"
	PrefixZpub Prefix = "zpub"
	PrefixTpub Prefix = "tpub"
	PrefixUpub Prefix = "upub"
	PrefixVpub Prefix = "vpub"
)

type prefixInfo struct {
	version    [4]byte
	testnet    bool
	outputType OutputType
	purpose    int
}

var prefixes = map[Prefix]prefixInfo{
	PrefixXpub: {version: [4]byte{0x04, 0x88, 0xb2, 0x1e}, outputType: OutputP2PKH, purpose: 44},
	PrefixYpub: {version: [4]byte{0x04, 0x9d, 0x7c, 0xb2}, outputType: OutputP2SHP2WPKH, purpose: 49},
	PrefixZpub: {version: [4]byte{0x04, 0xb2, 0x47, 0x46}, outputType: OutputP2WPKH, purpose: 84},
	PrefixTpub: {version: [4]byte{0x04, 0x35, 0x87, 0xcf}, testnet: true, outputType: OutputP2PKH, purpose: 44},
	PrefixUpub: {version: [4]byte{0x04, 0x4a, 0x52, 0x62}, testnet: true, outputType: OutputP2SHP2WPKH, purpose: 49},
	PrefixVpub: {version: [4]byte{0x04, 0x5f, 0x1c, 0xf6}, testnet: true, outputType: OutputP2WPKH, purpose: 84},
}

// prefixOrder lists the main and test families in output type order.
var prefixOrder = map[bool][]Prefix{
	false: {PrefixXpub, PrefixYpub, PrefixZpub},
	true:  {PrefixTpub, PrefixUpub, PrefixVpub},
}

var (
	ErrUnsupportedKey = errors.New("unsupported extended key")
	ErrPrivateKey     = errors.New("extended private keys are not accepted")
)

// Version returns the serialized version bytes of p.
func (p Prefix) Version() ([]byte, error) {
	info, ok := prefixes[p]
	if !ok {
		return nil, fmt.Errorf("%w: prefix %q", ErrUnsupportedKey, p)
	}
	return info.version[:], nil
}

// ExtendedKey is a parsed extended public key.
type ExtendedKey struct {
	Prefix     Prefix
	Network    chain.Network
	OutputType OutputType
	// BIP32Path is the account level path prefix the key family is exported from.
	BIP32Path string

	key *hdkeychain.ExtendedKey
}

// ParseKey decodes one of the six supported extended public key encodings.
func ParseKey(s string) (*ExtendedKey, error) {
	s = strings.TrimSpace(s)
	if len(s) < 4 {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKey, s)
	}
	prefix := Prefix(s[:4])
	info, ok := prefixes[prefix]
	if !ok {
		return nil, fmt.Errorf("%w: prefix %q", ErrUnsupportedKey, prefix)
	}

	key, err := hdkeychain.NewKeyFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s key: %v", ErrUnsupportedKey, prefix, err)
	}
	if key.IsPrivate() {
		return nil, ErrPrivateKey
	}
	if v := key.Version(); !bytes.Equal(v, info.version[:]) {
		return nil, fmt.Errorf("%w: version %x does not match prefix %s", ErrUnsupportedKey, v, prefix)
	}

	network, coinType := chain.Mainnet, 0
	if info.testnet {
		network, coinType = chain.Testnet, 1
	}
	return &ExtendedKey{
		Prefix:     prefix,
		Network:    network,
		OutputType: info.outputType,
		BIP32Path:  fmt.Sprintf("m/%d'/%d'", info.purpose, coinType),
		key:        key,
	}, nil
}

// String serializes the key with its own prefix.
func (k *ExtendedKey) String() string {
	return k.key.String()
}

// Remap re-encodes the key under another prefix. Only the version bytes change.
func Remap(key *ExtendedKey, to Prefix) (string, error) {
	version, err := to.Version()
	if err != nil {
		return "", err
	}
	cloned, err := key.key.CloneWithVersion(version)
	if err != nil {
		return "", fmt.Errorf("remap %s to %s: %w", key.Prefix, to, err)
	}
	return cloned.String(), nil
}

// RemapString parses s and re-encodes it under another prefix.
func RemapString(s string, to Prefix) (string, error) {
	key, err := ParseKey(s)
	if err != nil {
		return "", err
	}
	return Remap(key, to)
}

// RelatedKey is the same key material under another prefix of the same network.
type RelatedKey struct {
	KeyType      Prefix     `json:"keyType"`
	Key          string     `json:"key"`
	OutputType   OutputType `json:"outputType"`
	FirstAddress string     `json:"firstAddress"`
}

// KeyDetails describes a key and its sibling encodings.
type KeyDetails struct {
	KeyType        Prefix       `json:"keyType"`
	OutputType     OutputType   `json:"outputType"`
	OutputTypeDesc string       `json:"outputTypeDesc"`
	BIP32Path      string       `json:"bip32Path"`
	RelatedKeys    []RelatedKey `json:"relatedKeys"`
}

// Describe lists the key type and, for every other prefix of the key's network, the remapped key
// with its first receive address under params.
func Describe(key *ExtendedKey, params *chaincfg.Params) (KeyDetails, error) {
	details := KeyDetails{
		KeyType:        key.Prefix,
		OutputType:     key.OutputType,
		OutputTypeDesc: key.OutputType.Description(),
		BIP32Path:      key.BIP32Path,
		RelatedKeys:    []RelatedKey{},
	}

	for _, p := range prefixOrder[key.Network.IsTest()] {
		if p == key.Prefix {
			continue
		}
		remapped, err := Remap(key, p)
		if err != nil {
			return KeyDetails{}, err
		}
		outputType := prefixes[p].outputType
		first, err := DeriveAddresses(key, outputType, ChainReceive, 1, 0, params)
		if err != nil {
			return KeyDetails{}, err
		}
		details.RelatedKeys = append(details.RelatedKeys, RelatedKey{
			KeyType:      p,
			Key:          remapped,
			OutputType:   outputType,
			FirstAddress: first[0],
		})
	}
	return details, nil
}
