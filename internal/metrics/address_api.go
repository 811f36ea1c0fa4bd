package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	addressAPIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "address_api",
		Name:      "requests_total",
		Help:      "Count of address index backend requests.",
	}, []string{"backend", "operation", "status"})
	addressAPIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "address_api",
		Name:      "request_duration_seconds",
		Help:      "Duration of address index backend requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"backend", "operation", "status"})
)

// AddressAPI tracks requests issued to address index backends.
type AddressAPI struct {
	backend string
}

// NewAddressAPI constructs a metrics collector for the named backend.
func NewAddressAPI(backend string) *AddressAPI {
	if backend == "" {
		backend = "unknown"
	}
	return &AddressAPI{backend: backend}
}

// Observe records a single backend request outcome and duration.
func (m AddressAPI) Observe(operation string, err error, started time.Time) {
	status := statusOf(err)

	addressAPIRequestsTotal.WithLabelValues(m.backend, operation, status).Inc()
	addressAPIRequestDuration.WithLabelValues(m.backend, operation, status).Observe(time.Since(started).Seconds())
}
