// Package metrics exposes the Prometheus collectors shared across the API
// server and the worker fleet.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "issuefeed_search_requests_total",
		Help: "Total number of hybrid search requests.",
	}, []string{"vector_path"})

	SearchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "issuefeed_search_duration_seconds",
		Help:    "Hybrid search stage1+stage2 latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	SearchCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "issuefeed_search_cache_hits_total",
		Help: "Stage-1 search cache hits.",
	})

	SearchCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "issuefeed_search_cache_misses_total",
		Help: "Stage-1 search cache misses.",
	})

	FeedRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "issuefeed_feed_requests_total",
		Help: "Total feed requests by personalization outcome.",
	}, []string{"personalized"})

	IssuesIngestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "issuefeed_issues_ingested_total",
		Help: "Issues successfully persisted by the embedder worker.",
	})

	IssuesDroppedJunkTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "issuefeed_issues_dropped_junk_total",
		Help: "Issues dropped by the Gather stage's is_junk short-circuit.",
	})

	EmbedderNackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "issuefeed_embedder_nack_total",
		Help: "Messages nacked by the embedder worker.",
	})

	JanitorDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "issuefeed_janitor_deleted_total",
		Help: "Issues deleted by the janitor's percentile prune.",
	})

	RecoEventsQueuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "issuefeed_reco_events_queued_total",
		Help: "Recommendation events accepted onto the flush queue.",
	})

	RecoEventsDedupedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "issuefeed_reco_events_deduped_total",
		Help: "Recommendation events dropped as duplicates.",
	})

	RecoEventsDroppedMismatchTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "issuefeed_reco_events_dropped_mismatch_total",
		Help: "Recommendation events dropped for a position/node_id mismatch.",
	})

	RecoFlushInsertedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "issuefeed_reco_flush_inserted_total",
		Help: "Recommendation events inserted by the flush job.",
	})

	PublishFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "issuefeed_publish_failures_total",
		Help: "Broker publish failures by topic.",
	}, []string{"topic"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "issuefeed_http_request_duration_seconds",
		Help:    "HTTP request latency by route, method and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "method", "status"})

	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "issuefeed_http_requests_in_flight",
		Help: "HTTP requests currently being served.",
	})
)

// RecordSearch records a completed search request.
func RecordSearch(usedVectorPath bool, stage1, stage2 time.Duration) {
	label := "false"
	if usedVectorPath {
		label = "true"
	}
	SearchRequestsTotal.WithLabelValues(label).Inc()
	SearchDuration.WithLabelValues("stage1").Observe(stage1.Seconds())
	SearchDuration.WithLabelValues("stage2").Observe(stage2.Seconds())
}

// RecordFeed records a completed feed request.
func RecordFeed(personalized bool) {
	label := "false"
	if personalized {
		label = "true"
	}
	FeedRequestsTotal.WithLabelValues(label).Inc()
}
