package metrics

import (
	"time"

	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/chain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rpcRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "rpc_client",
		Name:      "operations_total",
		Help:      "Count of node RPC operations.",
	}, []string{"operation", "coin", "network", "status"})
	rpcRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "rpc_client",
		Name:      "operation_duration_seconds",
		Help:      "Duration of node RPC operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "coin", "network", "status"})
	rpcBatchSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "rpc_client",
		Name:      "batch_size",
		Help:      "Number of requests sent in one batched round trip.",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
	}, []string{"coin", "network"})
)

// RPCClient tracks metrics for RPC calls to the full node.
type RPCClient struct {
	coin    chain.Coin
	network chain.Network
}

// NewRPCClient constructs a metrics collector for RPC calls.
func NewRPCClient(coin chain.Coin, network chain.Network) *RPCClient {
	if coin == "" {
		coin = "unknown"
	}
	if network == "" {
		network = "unknown"
	}
	return &RPCClient{coin: coin, network: network}
}

// Observe records a single RPC call outcome and duration.
func (m RPCClient) Observe(operation string, err error, started time.Time) {
	status := statusOf(err)

	rpcRequestsTotal.WithLabelValues(operation, string(m.coin), string(m.network), status).Inc()
	rpcRequestDuration.WithLabelValues(operation, string(m.coin), string(m.network), status).Observe(time.Since(started).Seconds())
}

// ObserveBatch records the size of a batched round trip.
func (m RPCClient) ObserveBatch(size int) {
	rpcBatchSize.WithLabelValues(string(m.coin), string(m.network)).Observe(float64(size))
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
