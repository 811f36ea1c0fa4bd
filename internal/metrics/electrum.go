package metrics

import (
	"time"

	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/chain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	electrumRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "electrum",
		Name:      "requests_total",
		Help:      "Count of Electrum protocol requests per server.",
	}, []string{"server", "method", "network", "status"})
	electrumRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "electrum",
		Name:      "request_duration_seconds",
		Help:      "Duration of Electrum protocol requests per server.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"server", "method", "network", "status"})
	electrumConnectionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "electrum",
		Name:      "connection_events_total",
		Help:      "Count of Electrum connection lifecycle events.",
	}, []string{"server", "network", "event"})
	electrumConflictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "electrum",
		Name:      "conflicts_total",
		Help:      "Count of quorum queries where servers disagreed.",
	}, []string{"method", "network"})
)

// Electrum tracks Electrum quorum requests and connection events.
type Electrum struct {
	network chain.Network
}

// NewElectrum constructs a metrics collector for the Electrum quorum client.
func NewElectrum(network chain.Network) *Electrum {
	if network == "" {
		network = "unknown"
	}
	return &Electrum{network: network}
}

// Observe records a single request outcome and duration for one server.
func (m Electrum) Observe(server, method string, err error, started time.Time) {
	status := statusOf(err)

	electrumRequestsTotal.WithLabelValues(server, method, string(m.network), status).Inc()
	electrumRequestDuration.WithLabelValues(server, method, string(m.network), status).Observe(time.Since(started).Seconds())
}

// ObserveConnection records connect, disconnect and error events.
func (m Electrum) ObserveConnection(server, event string) {
	electrumConnectionEvents.WithLabelValues(server, string(m.network), event).Inc()
}

// ObserveConflict records a quorum disagreement.
func (m Electrum) ObserveConflict(method string) {
	electrumConflictsTotal.WithLabelValues(method, string(m.network)).Inc()
}
