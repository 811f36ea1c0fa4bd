package metrics

import (
	"time"

	"github.com/goodnatureofminers/blockinsight7000-addrindex/internal/chain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	xpubScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "xpub_scanner",
		Name:      "scans_total",
		Help:      "Count of extended key scans.",
	}, []string{"network", "status"})
	xpubScanDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "xpub_scanner",
		Name:      "scan_duration_seconds",
		Help:      "Duration of extended key scans.",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
	}, []string{"network", "status"})
	xpubAddressesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "xpub_scanner",
		Name:      "addresses_total",
		Help:      "Count of derived addresses visited by scans.",
	}, []string{"network", "chain", "state"})
)

// XpubScanner tracks extended key scans.
type XpubScanner struct {
	network chain.Network
}

// NewXpubScanner constructs a metrics collector for extended key scans.
func NewXpubScanner(network chain.Network) *XpubScanner {
	if network == "" {
		network = "unknown"
	}
	return &XpubScanner{network: network}
}

// ObserveScan records a finished scan.
func (m XpubScanner) ObserveScan(err error, started time.Time) {
	status := statusOf(err)

	xpubScansTotal.WithLabelValues(string(m.network), status).Inc()
	xpubScanDuration.WithLabelValues(string(m.network), status).Observe(time.Since(started).Seconds())
}

// ObserveAddress records one visited address.
func (m XpubScanner) ObserveAddress(chainName string, used bool) {
	state := "empty"
	if used {
		state = "used"
	}
	xpubAddressesTotal.WithLabelValues(string(m.network), chainName, state).Inc()
}
