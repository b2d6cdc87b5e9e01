package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_cache_hits_total",
			Help: "Cache hits by memoized function.",
		},
		[]string{"fn"},
	)

	MissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_cache_misses_total",
			Help: "Cache misses by memoized function.",
		},
		[]string{"fn"},
	)
)

func init() {
	prometheus.MustRegister(HitsTotal, MissesTotal)
}
