package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "popular_vote_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)

	// CacheHits tracks cache hits and misses
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "popular_vote_cache_hits_total",
			Help: "Number of cache lookups by operation and result",
		},
		[]string{"operation", "result"},
	)

	// DatabaseOperations tracks database operations
	DatabaseOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "popular_vote_database_operations_total",
			Help: "Number of database operations",
		},
		[]string{"operation", "status"},
	)

	// VotesCast tracks cast attempts by outcome
	VotesCast = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "popular_vote_votes_cast_total",
			Help: "Number of vote cast attempts by outcome",
		},
		[]string{"outcome"},
	)

	// IdentityProviderCalls tracks role grants mirrored to the identity provider
	IdentityProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "popular_vote_identity_provider_calls_total",
			Help: "Number of identity provider management calls",
		},
		[]string{"operation", "status"},
	)

	// AuditEvents tracks audit entries by delivery path
	AuditEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "popular_vote_audit_events_total",
			Help: "Number of audit events by delivery path",
		},
		[]string{"path"},
	)

	// ActiveConnections tracks active connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "popular_vote_active_connections",
			Help: "Number of in-flight HTTP requests",
		},
	)
)
