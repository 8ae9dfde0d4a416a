// Package metrics declares the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Domain Metrics
	MembershipToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_membership_toggles_total",
			Help: "Favorite and shopping cart toggles by outcome",
		},
		[]string{"kind", "action", "outcome"}, // action: add|remove, outcome: ok|already_exists|not_found|error
	)

	SubscriptionToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_subscription_toggles_total",
			Help: "Subscribe and unsubscribe calls by outcome",
		},
		[]string{"action", "outcome"},
	)

	ShoppingListsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_shopping_lists_generated_total",
			Help: "Total number of shopping lists rendered",
		},
	)
)
