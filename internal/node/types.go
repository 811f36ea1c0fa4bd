package node

import (
	"context"
	"encoding/json"
	"time"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Transport performs node RPC round trips. Batch sends all requests in one round trip and
	// fails as a whole when any item fails.
	Transport interface {
		Call(ctx context.Context, method string, params []json.RawMessage) (json.RawMessage, error)
		Batch(ctx context.Context, requests []RawRequest) ([]json.RawMessage, error)
	}
	Caller interface {
		Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error)
		CallBatch(ctx context.Context, requests []Request) ([]json.RawMessage, error)
	}
	RPCMetrics interface {
		Observe(operation string, err error, started time.Time)
		ObserveBatch(size int)
	}
)
