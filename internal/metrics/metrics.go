package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus collectors for the analysis service. Registered once at
// package init and shared by the analyzer and the HTTP layer.
var (
	AnalyzeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "truthfi_analyze_requests_total",
		Help: "Analyze requests by outcome status.",
	}, []string{"status"})

	AnalyzeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "truthfi_analyze_duration_seconds",
		Help:    "End-to-end analyze request duration.",
		Buckets: prometheus.DefBuckets,
	})

	PostsAnalyzed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "truthfi_posts_analyzed_total",
		Help: "Total posts scored across all analyze requests.",
	})

	SourceFetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "truthfi_source_fetch_errors_total",
		Help: "Upstream fetch failures by source.",
	}, []string{"source"})
)
