// Package chain describes the supported bitcoin networks and their well-known constants.
package chain

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
)

type Coin string
type Network string

var (
	BTC Coin = "BTC"
)

var (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
	Regtest Network = "regtest"
	Signet  Network = "signet"
)

// ParseNetwork normalizes user supplied network names.
func ParseNetwork(name string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "main", "mainnet", "bitcoin":
		return Mainnet, nil
	case "test", "testnet", "testnet3":
		return Testnet, nil
	case "regtest":
		return Regtest, nil
	case "signet":
		return Signet, nil
	default:
		return "", fmt.Errorf("unsupported network %q", name)
	}
}

// Params returns the btcd chain parameters for the network.
func (n Network) Params() (*chaincfg.Params, error) {
	switch n {
	case Mainnet:
		return &chaincfg.MainNetParams, nil
	case Testnet:
		return &chaincfg.TestNet3Params, nil
	case Regtest:
		return &chaincfg.RegressionNetParams, nil
	case Signet:
		return &chaincfg.SigNetParams, nil
	default:
		return nil, fmt.Errorf("unsupported network %q", n)
	}
}

// IsTest reports whether extended keys of the network use testnet prefixes.
func (n Network) IsTest() bool {
	return n != Mainnet
}
