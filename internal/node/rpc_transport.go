package node

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/btcsuite/btcd/rpcclient"
)

// RPCTransport sends requests through btcd's rpcclient. Batches go through a dedicated
// batch-mode client, one batch at a time.
type RPCTransport struct {
	client     *rpcclient.Client
	batch      *rpcclient.Client
	batchMu    sync.Mutex
	rpcMetrics RPCMetrics
}

// NewRPCTransport connects both the single-call and the batch client.
func NewRPCTransport(cfg *rpcclient.ConnConfig, rpcMetrics RPCMetrics) (*RPCTransport, error) {
	client, err := rpcclient.New(cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("create rpc client: %w", err)
	}
	batch, err := rpcclient.NewBatch(cfg)
	if err != nil {
		client.Shutdown()
		return nil, fmt.Errorf("create rpc batch client: %w", err)
	}
	return &RPCTransport{
		client:     client,
		batch:      batch,
		rpcMetrics: rpcMetrics,
	}, nil
}

// ConnConfig builds an HTTP POST mode rpcclient config from a node url.
func ConnConfig(rawURL, user, password string) (*rpcclient.ConnConfig, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse rpc url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("rpc url scheme %q not supported, use http or https", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("rpc url missing host")
	}
	return &rpcclient.ConnConfig{
		Host:         parsed.Host,
		User:         user,
		Pass:         password,
		HTTPPostMode: true,
		DisableTLS:   parsed.Scheme == "http",
	}, nil
}

func (r *RPCTransport) Call(ctx context.Context, method string, params []json.RawMessage) (res json.RawMessage, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe(method, err, started)
	}()
	return receive(ctx, r.client.RawRequestAsync(method, params))
}

func (r *RPCTransport) Batch(ctx context.Context, requests []RawRequest) (res []json.RawMessage, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("batch", err, started)
	}()
	r.rpcMetrics.ObserveBatch(len(requests))

	r.batchMu.Lock()
	defer r.batchMu.Unlock()

	futures := make([]rpcclient.FutureRawResult, len(requests))
	for i, req := range requests {
		futures[i] = r.batch.RawRequestAsync(req.Method, req.Params)
	}
	if err := r.batch.Send(); err != nil {
		return nil, fmt.Errorf("send batch: %w", err)
	}

	results := make([]json.RawMessage, len(requests))
	for i, f := range futures {
		raw, err := receive(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("batch item %d %s: %w", i, requests[i].Method, err)
		}
		results[i] = raw
	}
	return results, nil
}

// Shutdown stops both clients.
func (r *RPCTransport) Shutdown() {
	r.client.Shutdown()
	r.batch.Shutdown()
	r.client.WaitForShutdown()
	r.batch.WaitForShutdown()
}

type rawResult struct {
	raw json.RawMessage
	err error
}

// receive waits for a future, giving up when ctx ends.
func receive(ctx context.Context, f rpcclient.FutureRawResult) (json.RawMessage, error) {
	done := make(chan rawResult, 1)
	go func() {
		raw, err := f.Receive()
		done <- rawResult{raw: raw, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.raw, r.err
	}
}
