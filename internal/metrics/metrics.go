package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts served requests by method, route template and status code
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "The total number of HTTP requests",
	}, []string{"method", "route", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "The HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// BootstrapAttempts counts database connection attempts made at startup
	BootstrapAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "db_bootstrap_attempts_total",
		Help: "The total number of database connection attempts during bootstrap",
	})

	// DatabaseReady is 1 once the bootstrapper reached the database
	DatabaseReady = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_bootstrap_ready",
		Help: "Whether the database bootstrap has succeeded",
	})

	SignupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_signups_total",
		Help: "The total number of signup attempts by result",
	}, []string{"result"})

	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "The total number of login attempts by result",
	}, []string{"result"})

	// ActiveSessions tracks sessions held by the in-memory store
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sessions_active",
		Help: "The number of sessions held in memory",
	})
)
