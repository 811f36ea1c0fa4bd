package node

import "time"

const (
	defaultChunkSize = 100

	addressTTL        = 15 * time.Minute
	transactionTTL    = 15 * time.Minute
	blockchainInfoTTL = 10 * time.Second

	// transactions with more inputs or outputs are too large to be worth caching
	maxCachedTxInOut = 5
)
