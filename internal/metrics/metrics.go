package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brand_analyses_total",
			Help: "Total number of analysis runs by outcome",
		},
		[]string{"outcome"},
	)

	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "brand_analysis_duration_seconds",
			Help:    "Duration of analysis runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"outcome"},
	)

	SearchQueriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_queries_total",
			Help: "Total number of social search queries issued",
		},
	)

	SearchQueryFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_query_failures_total",
			Help: "Total number of social search queries that failed and were dropped",
		},
	)

	MentionsCollected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mentions_collected_total",
			Help: "Total number of deduplicated mentions collected",
		},
	)

	PublishResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publish_results_total",
			Help: "Total number of publish attempts by result kind",
		},
		[]string{"kind"}, // "pinned", "mock" or "error"
	)

	AnalysesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "brand_analyses_active",
			Help: "Number of analysis runs in progress",
		},
	)
)
