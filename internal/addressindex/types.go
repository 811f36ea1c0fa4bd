package addressindex

import (
	"context"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/electrum"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Backend answers one page of an address history.
	Backend interface {
		Name() string
		Capabilities() model.Capabilities
		AddressDetails(ctx context.Context, q model.AddressQuery) (model.AddressResult, error)
	}
	ElectrumClient interface {
		GetHistory(ctx context.Context, scripthash string) (electrum.Result[[]electrum.HistoryEntry], error)
		GetBalance(ctx context.Context, scripthash string) (electrum.Result[electrum.Balance], error)
	}
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)
