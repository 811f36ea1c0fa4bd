package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cacheEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "blockinsight7000",
	Subsystem: "cache",
	Name:      "events_total",
	Help:      "Count of cache events by tier.",
}, []string{"cache", "tier", "event"})

// Cache counts hit/miss/set/error events of a named cache.
type Cache struct {
	name string
}

// NewCache constructs a metrics collector for the named cache.
func NewCache(name string) *Cache {
	if name == "" {
		name = "unknown"
	}
	return &Cache{name: name}
}

// Observe records one cache event.
func (m Cache) Observe(tier, event string) {
	cacheEventsTotal.WithLabelValues(m.name, tier, event).Inc()
}
