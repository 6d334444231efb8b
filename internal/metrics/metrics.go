package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Monitor loop metrics
	TicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alertsystem_ticks_total",
			Help: "Total number of evaluation ticks",
		},
		[]string{"result"}, // result: ok, error
	)

	TickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "alertsystem_tick_duration_seconds",
			Help:    "Duration of one evaluation tick in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	LastTickTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "alertsystem_last_tick_timestamp_seconds",
			Help: "Unix time at which the last tick finished",
		},
	)

	RuleEvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alertsystem_rule_evaluations_total",
			Help: "Rule evaluations by outcome",
		},
		[]string{"outcome"}, // outcome: fired, no_match, cooldown, skipped, failed
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alertsystem_notifications_total",
			Help: "Notification attempts by email status",
		},
		[]string{"status"}, // status: sent, failed
	)

	PublishErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alertsystem_publish_errors_total",
			Help: "Alert event publish failures by sink",
		},
		[]string{"sink"},
	)

	// API metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alertsystem_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "alertsystem_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)
)
