package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DocumentsInserted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "forumdb", Name: "ingest_documents_inserted_total", Help: "Documents committed by bulk inserts, by collection."},
		[]string{"collection"},
	)
	DocumentsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "forumdb", Name: "ingest_documents_rejected_total", Help: "Documents rejected inside bulk inserts, by collection."},
		[]string{"collection"},
	)
	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "forumdb", Name: "ingest_stage_duration_seconds", Help: "Duration of bulk ingest stages.", Buckets: prometheus.ExponentialBuckets(0.01, 4, 8)},
		[]string{"collection", "stage"},
	)
	AuthoringCommits = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "forumdb", Name: "authoring_commits_total", Help: "Documents committed by interactive authoring, by kind."},
		[]string{"kind"},
	)
	AuthoringRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "forumdb", Name: "authoring_rejected_total", Help: "Authoring attempts rejected, by reason."},
		[]string{"reason"},
	)
	SearchQueries = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "forumdb", Name: "search_queries_total", Help: "Term searches served."},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "forumdb", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "forumdb", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(DocumentsInserted)
	reg.MustRegister(DocumentsRejected)
	reg.MustRegister(StageDuration)
	reg.MustRegister(AuthoringCommits)
	reg.MustRegister(AuthoringRejected)
	reg.MustRegister(SearchQueries)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
