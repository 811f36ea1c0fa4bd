package electrum

import (
	"context"
	"time"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Conn is one established Electrum protocol connection.
	Conn interface {
		ServerVersion(ctx context.Context) (serverVersion, protocolVersion string, err error)
		GetHistory(ctx context.Context, scripthash string) ([]HistoryEntry, error)
		GetBalance(ctx context.Context, scripthash string) (Balance, error)
		Ping(ctx context.Context) error
		Close()
	}
	Metrics interface {
		Observe(server, method string, err error, started time.Time)
		ObserveConnection(server, event string)
		ObserveConflict(method string)
	}
)
