// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "warbler_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FeedBuildLatency records how long assembling a timeline takes.
	FeedBuildLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "warbler_feed_build_latency_seconds",
		Help:    "Feed assembly latency in seconds",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	// FeedSize records the number of messages returned per feed.
	FeedSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "warbler_feed_size_messages",
		Help:    "Number of messages returned per feed",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
	})

	// GraphEvents counts follow graph mutations by action (follow, unfollow).
	GraphEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_graph_events_total",
		Help: "Total follow graph mutations by action",
	}, []string{"action"})

	// LikeEvents counts like graph mutations by action (like, unlike).
	LikeEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_like_events_total",
		Help: "Total like graph mutations by action",
	}, []string{"action"})

	// MessagesPosted counts messages created.
	MessagesPosted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warbler_messages_posted_total",
		Help: "Total number of messages posted",
	})

	// SessionEvents counts session lifecycle events (login, logout, rejected).
	SessionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_session_events_total",
		Help: "Total session events by type",
	}, []string{"event"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// ObserveFeed records latency and size of one feed assembly.
func ObserveFeed(start time.Time, size int) {
	FeedBuildLatency.Observe(time.Since(start).Seconds())
	FeedSize.Observe(float64(size))
}
