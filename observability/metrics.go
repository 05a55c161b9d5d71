package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MutationsTotal counts add/remove/edit/star/unstar/tag/untag operations
	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_mutations_total",
		Help: "The total number of catalog mutation operations",
	}, []string{"op", "status"})

	// EvictionsTotal counts policy-driven evictions
	EvictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_evictions_total",
		Help: "The total number of entries evicted from the store",
	}, []string{"policy"})

	// LookupHitsTotal counts successful identity lookups
	LookupHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_lookup_hits_total",
		Help: "The total number of identity lookups that resolved an entry",
	})

	// LookupMissesTotal counts failed identity lookups
	LookupMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_lookup_misses_total",
		Help: "The total number of identity lookups that found no entry",
	})

	// MutationDurationSeconds measures mutation latency
	MutationDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_mutation_duration_seconds",
		Help:    "The latency of catalog mutation operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
)
