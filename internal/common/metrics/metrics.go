// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SectionLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panel_section_loads_total",
			Help: "Total number of dashboard section loads by outcome",
		},
		[]string{"section", "outcome"},
	)

	SectionLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "panel_section_load_duration_seconds",
			Help:    "Duration of dashboard section loads in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"section"},
	)

	WatchdogTimeouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panel_watchdog_timeouts_total",
			Help: "Total number of section loads abandoned by the watchdog",
		},
		[]string{"section"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "panel_active_sessions",
			Help: "Number of open dashboard sessions",
		},
	)

	ModerationActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_moderation_actions_total",
			Help: "Total number of moderation decisions by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	SnapshotCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_snapshot_cache_lookups_total",
			Help: "Snapshot cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)
