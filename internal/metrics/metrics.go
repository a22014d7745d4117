// Package metrics exposes the gateway's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tablepay",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests handled, by method, route and status class.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tablepay",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	SessionPolls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tablepay",
		Subsystem: "session",
		Name:      "polls_total",
		Help:      "Upstream session polls, by result.",
	}, []string{"result"})

	ActiveWatchers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tablepay",
		Subsystem: "session",
		Name:      "watchers_active",
		Help:      "Table watchers currently polling.",
	})

	Reservations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tablepay",
		Subsystem: "payment",
		Name:      "reservations_total",
		Help:      "Reservation attempts, by outcome (reserved, blocked, failed).",
	}, []string{"outcome"})

	Confirmations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tablepay",
		Subsystem: "payment",
		Name:      "confirmations_total",
		Help:      "Payment intent confirmations, by outcome.",
	}, []string{"outcome"})

	WSClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tablepay",
		Subsystem: "ws",
		Name:      "clients_connected",
		Help:      "WebSocket clients currently connected.",
	})
)

// ObservePoll records one session poll tick.
func ObservePoll(ok bool) {
	if ok {
		SessionPolls.WithLabelValues("ok").Inc()
	} else {
		SessionPolls.WithLabelValues("error").Inc()
	}
}
