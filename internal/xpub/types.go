package xpub

import (
	"context"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/model"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/node"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	AddressValidator interface {
		ValidateAddress(ctx context.Context, address string) (*node.AddressInfo, error)
	}
	AddressIndex interface {
		GetAddressDetails(ctx context.Context, q model.AddressQuery) (model.AddressResult, error)
	}
	Metrics interface {
		ObserveScan(err error, started time.Time)
		ObserveAddress(chainName string, used bool)
	}
)
