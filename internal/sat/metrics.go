package sat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hexel_conflicts_total",
		Help: "the number of conflicts encountered during search",
	})
	metricPropagations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hexel_propagations_total",
		Help: "the number of literals propagated",
	})
	metricRestarts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hexel_restarts_total",
		Help: "the number of inner search restarts",
	})
	metricOuterRestarts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hexel_outer_restarts_total",
		Help: "the number of outer reseeding restarts",
	})
	metricReducePasses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hexel_reduce_passes_total",
		Help: "the number of learnt clause database reductions",
	})
	metricClausesEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hexel_clauses_evicted_total",
		Help: "the number of learnt clauses evicted by reduction",
	})
	metricConsolidations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hexel_arena_consolidations_total",
		Help: "the number of clause arena compactions",
	})
	metricLearntGlue = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hexel_learnt_glue",
		Help:    "the glue of learnt clauses",
		Buckets: prometheus.ExponentialBuckets(1, 2, 8),
	})
)
