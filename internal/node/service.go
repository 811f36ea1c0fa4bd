package node

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/cache"
	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/chain"
	"go.uber.org/zap"
)

// ErrInvalidAddress is returned when the node does not recognise an address.
var ErrInvalidAddress = errors.New("invalid address")

// AddressInfo is the validateaddress answer.
type AddressInfo struct {
	IsValid        bool   `json:"isvalid"`
	Address        string `json:"address,omitempty"`
	ScriptPubKey   string `json:"scriptPubKey,omitempty"`
	IsScript       bool   `json:"isscript,omitempty"`
	IsWitness      bool   `json:"iswitness,omitempty"`
	WitnessVersion *int   `json:"witness_version,omitempty"`
	WitnessProgram string `json:"witness_program,omitempty"`
}

// BlockchainInfo is the subset of getblockchaininfo the explorer reads. Newer nodes changed
// the shape of several other fields, so they are left out.
type BlockchainInfo struct {
	Chain         string  `json:"chain"`
	Blocks        int32   `json:"blocks"`
	Headers       int32   `json:"headers"`
	BestBlockHash string  `json:"bestblockhash"`
	Difficulty    float64 `json:"difficulty"`
	MedianTime    int64   `json:"mediantime"`
	Pruned        bool    `json:"pruned"`
	PruneHeight   int32   `json:"pruneheight,omitempty"`
}

// Service answers node lookups through the cache.
type Service struct {
	caller   Caller
	resolver *cache.Resolver
	genesis  chain.Genesis
	logger   *zap.Logger
}

// NewService creates a Service for the chain whose genesis coinbase is given.
func NewService(caller Caller, resolver *cache.Resolver, genesis chain.Genesis, logger *zap.Logger) *Service {
	return &Service{
		caller:   caller,
		resolver: resolver,
		genesis:  genesis,
		logger:   logger.Named("node"),
	}
}

// ValidateAddress returns the node's view of address, including its scriptPubKey.
func (s *Service) ValidateAddress(ctx context.Context, address string) (*AddressInfo, error) {
	info, err := cache.Resolve(ctx, s.resolver, cache.Key("getAddress", address), addressTTL,
		func(ctx context.Context) (*AddressInfo, error) {
			var info AddressInfo
			if err := s.call(ctx, &info, "validateaddress", address); err != nil {
				return nil, err
			}
			return &info, nil
		}, nil)
	if err != nil {
		return nil, err
	}
	if !info.IsValid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, address)
	}
	return info, nil
}

// GetBlockchainInfo returns the chain tip summary.
func (s *Service) GetBlockchainInfo(ctx context.Context) (*BlockchainInfo, error) {
	return cache.Resolve(ctx, s.resolver, cache.Key("getBlockchainInfo"), blockchainInfoTTL,
		func(ctx context.Context) (*BlockchainInfo, error) {
			var info BlockchainInfo
			if err := s.call(ctx, &info, "getblockchaininfo"); err != nil {
				return nil, err
			}
			return &info, nil
		}, nil)
}

// GetRawTransaction returns a decoded transaction. Only settled transactions are cached.
func (s *Service) GetRawTransaction(ctx context.Context, txid string) (*btcjson.TxRawResult, error) {
	if txid == s.genesis.CoinbaseTxID {
		return s.genesisTransaction(ctx)
	}
	return cache.Resolve(ctx, s.resolver, transactionKey(txid), transactionTTL,
		func(ctx context.Context) (*btcjson.TxRawResult, error) {
			var tx btcjson.TxRawResult
			if err := s.call(ctx, &tx, "getrawtransaction", txid, 1); err != nil {
				return nil, err
			}
			return &tx, nil
		}, ShouldCacheTransaction)
}

// GetRawTransactions returns transactions in txids order. Cache misses are fetched in one
// chunked batch; any failure fails the whole call.
func (s *Service) GetRawTransactions(ctx context.Context, txids []string) ([]*btcjson.TxRawResult, error) {
	results := make([]*btcjson.TxRawResult, len(txids))
	var (
		missing  []int
		requests []Request
	)
	for i, txid := range txids {
		if txid == s.genesis.CoinbaseTxID {
			tx, err := s.genesisTransaction(ctx)
			if err != nil {
				return nil, err
			}
			results[i] = tx
			continue
		}
		if tx, ok := cache.Lookup[*btcjson.TxRawResult](ctx, s.resolver, transactionKey(txid)); ok && tx != nil {
			results[i] = tx
			continue
		}
		missing = append(missing, i)
		requests = append(requests, Request{Method: "getrawtransaction", Params: []interface{}{txid, 1}})
	}
	if len(requests) == 0 {
		return results, nil
	}

	raw, err := s.caller.CallBatch(ctx, requests)
	if err != nil {
		return nil, fmt.Errorf("get raw transactions: %w", err)
	}
	for j, i := range missing {
		var tx btcjson.TxRawResult
		if err := json.Unmarshal(raw[j], &tx); err != nil {
			return nil, fmt.Errorf("decode transaction %s: %w", txids[i], err)
		}
		results[i] = &tx
		if ShouldCacheTransaction(&tx) {
			s.resolver.Put(ctx, transactionKey(txids[i]), &tx, transactionTTL)
		}
	}
	return results, nil
}

// ShouldCacheTransaction reports whether a transaction is settled and small enough to cache.
func ShouldCacheTransaction(tx *btcjson.TxRawResult) bool {
	if tx == nil || tx.Confirmations < 1 {
		return false
	}
	return len(tx.Vin) <= maxCachedTxInOut && len(tx.Vout) <= maxCachedTxInOut
}

func (s *Service) call(ctx context.Context, out interface{}, method string, params ...interface{}) error {
	raw, err := s.caller.Call(ctx, method, params...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", method, err)
	}
	return nil
}

func transactionKey(txid string) string {
	return cache.Key("getRawTransaction", txid)
}
