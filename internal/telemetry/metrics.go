package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Directory counters, served on /metrics.

var (
	// Catalog
	ProjectsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "launchpad",
		Subsystem: "catalog",
		Name:      "projects_submitted_total",
		Help:      "Total project submissions accepted",
	})

	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "launchpad",
		Subsystem: "catalog",
		Name:      "status_transitions_total",
		Help:      "Total moderation transitions by target status",
	}, []string{"status"})

	ProjectViews = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "launchpad",
		Subsystem: "catalog",
		Name:      "project_views_total",
		Help:      "Total project detail views",
	})

	FavoriteToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "launchpad",
		Subsystem: "catalog",
		Name:      "favorite_toggles_total",
		Help:      "Total favorite toggles by resulting action",
	}, []string{"action"})

	MetricReports = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "launchpad",
		Subsystem: "catalog",
		Name:      "metric_reports_total",
		Help:      "Total market metric reports by reporting role",
	}, []string{"source"})

	// Oracle
	OracleLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "launchpad",
		Subsystem: "oracle",
		Name:      "lookups_total",
		Help:      "Total mint lookups by result",
	}, []string{"result"})

	OracleLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "launchpad",
		Subsystem: "oracle",
		Name:      "lookup_duration_seconds",
		Help:      "Mint lookup duration",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	// HTTP
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "launchpad",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	// Reporter
	FeedMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "launchpad",
		Subsystem: "reporter",
		Name:      "feed_messages_total",
		Help:      "Total realtime feed messages by outcome",
	}, []string{"outcome"})
)
