package transport

import (
	"context"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/electrum"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/model"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/node"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/xpub"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	AddressRouter interface {
		GetAddressDetails(ctx context.Context, q model.AddressQuery) (model.AddressResult, error)
		Capabilities() model.Capabilities
		BackendName() string
	}
	NodeService interface {
		ValidateAddress(ctx context.Context, address string) (*node.AddressInfo, error)
		GetRawTransaction(ctx context.Context, txid string) (*btcjson.TxRawResult, error)
	}
	KeyScanner interface {
		Details(ctx context.Context, key *xpub.ExtendedKey, addressLimit int) (xpub.KeyReport, error)
		SearchTxids(ctx context.Context, key *xpub.ExtendedKey, addressLimit int) (xpub.ScanResult, error)
		Addresses(key *xpub.ExtendedKey, ch xpub.Chain, count, start int) ([]string, error)
	}
	ElectrumStats interface {
		Stats() electrum.Stats
	}
)
