package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics aggregates the Prometheus collectors used by the wallet service.
type Metrics struct {
	Operations         *prometheus.CounterVec
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	WalletsProvisioned prometheus.Counter
	EventsConsumed     *prometheus.CounterVec
}

// New registers the wallet service collectors with the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wallet",
			Name:      "operations_total",
			Help:      "Wallet mutations by operation and result.",
		}, []string{"operation", "result"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "wallet",
			Name:      "balance_cache_hits_total",
			Help:      "Balance reads served from the cache.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "wallet",
			Name:      "balance_cache_misses_total",
			Help:      "Balance reads that fell through to the repository.",
		}),
		WalletsProvisioned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "wallet",
			Name:      "provisioned_total",
			Help:      "Wallets created by the provisioning consumer.",
		}),
		EventsConsumed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wallet",
			Name:      "events_consumed_total",
			Help:      "Stream events processed by outcome.",
		}, []string{"event", "outcome"}),
	}
}

// NewUnregistered builds collectors on a private registry. Useful for tests.
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}
