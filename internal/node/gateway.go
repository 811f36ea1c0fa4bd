// Package node talks to the authoritative full node and caches its answers.
package node

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Request is one call of a batch.
type Request struct {
	Method string
	Params []interface{}
}

// RawRequest is a Request with encoded params.
type RawRequest struct {
	Method string
	Params []json.RawMessage
}

// Gateway executes single and chunked batch calls against the node.
type Gateway struct {
	transport Transport
	chunkSize int
	logger    *zap.Logger
}

// NewGateway creates a Gateway sending at most chunkSize requests per round trip.
func NewGateway(transport Transport, chunkSize int, logger *zap.Logger) *Gateway {
	if chunkSize < 1 {
		chunkSize = defaultChunkSize
	}
	return &Gateway{
		transport: transport,
		chunkSize: chunkSize,
		logger:    logger.Named("gateway"),
	}
}

// Call executes one RPC method.
func (g *Gateway) Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	res, err := g.transport.Call(ctx, method, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return res, nil
}

// CallBatch executes requests in chunks, one chunk at a time, and returns results in request
// order. The first failing chunk aborts the batch and no results are returned.
func (g *Gateway) CallBatch(ctx context.Context, requests []Request) ([]json.RawMessage, error) {
	if len(requests) == 0 {
		return nil, nil
	}

	raw := make([]RawRequest, len(requests))
	for i, r := range requests {
		params, err := marshalParams(r.Params)
		if err != nil {
			return nil, fmt.Errorf("batch item %d %s: %w", i, r.Method, err)
		}
		raw[i] = RawRequest{Method: r.Method, Params: params}
	}

	chunks := (len(raw) + g.chunkSize - 1) / g.chunkSize
	results := make([]json.RawMessage, 0, len(raw))
	for chunk := 0; chunk < chunks; chunk++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := chunk * g.chunkSize
		end := min(start+g.chunkSize, len(raw))

		res, err := g.transport.Batch(ctx, raw[start:end])
		if err != nil {
			g.logger.Warn("batch chunk failed", zap.Int("chunk", chunk), zap.Int("chunks", chunks), zap.Error(err))
			return nil, fmt.Errorf("batch chunk %d/%d: %w", chunk+1, chunks, err)
		}
		if len(res) != end-start {
			return nil, fmt.Errorf("batch chunk %d/%d: got %d results for %d requests", chunk+1, chunks, len(res), end-start)
		}
		results = append(results, res...)
	}
	return results, nil
}

func marshalParams(params []interface{}) ([]json.RawMessage, error) {
	raw := make([]json.RawMessage, len(params))
	for i, p := range params {
		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("marshal param %d: %w", i, err)
		}
		raw[i] = b
	}
	return raw, nil
}
