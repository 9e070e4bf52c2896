package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AdminActions counts admin CRUD operations by admin code, action and outcome.
	AdminActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsdesk_admin_actions_total",
		Help: "Total admin CRUD operations by admin, action and outcome",
	}, []string{"admin", "action", "outcome"})

	// AdminActionLatency records admin CRUD latency.
	AdminActionLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "newsdesk_admin_action_latency_seconds",
		Help:    "Admin CRUD latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"admin", "action"})

	// FilterApplications counts datagrid filters that were applied to a query.
	FilterApplications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsdesk_filter_applications_total",
		Help: "Total datagrid filter applications by admin and filter",
	}, []string{"admin", "filter"})

	// PasswordUpdates counts password re-hashes by outcome.
	PasswordUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsdesk_password_updates_total",
		Help: "Total password updates performed by the user manager",
	}, []string{"outcome"})

	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsdesk_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// CacheLookups counts cache-aside lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsdesk_cache_lookups_total",
		Help: "Total cache-aside lookups by result",
	}, []string{"result"})
)

// ObserveAdminAction records one admin operation that started at start.
func ObserveAdminAction(admin, action string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	AdminActions.WithLabelValues(admin, action, outcome).Inc()
	AdminActionLatency.WithLabelValues(admin, action).Observe(time.Since(start).Seconds())
}
