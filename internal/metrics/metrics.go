package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	PinFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pin_failures_total",
			Help: "Total failed PIN validations",
		},
	)
	CardsBlockedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cards_blocked_total",
			Help: "Total cards blocked after exhausting PIN attempts",
		},
	)
	WithdrawalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "withdrawals_total",
			Help: "Withdrawal attempts by outcome",
		},
		[]string{"outcome"}, // ok|insufficient_funds|blocked|unavailable|error
	)
	BalanceInquiriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "balance_inquiries_total",
			Help: "Total recorded balance inquiries",
		},
	)

	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
	WorkerDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "worker_jobs_dropped_total",
			Help: "Jobs dropped because the worker queue was full or stopped",
		},
	)
)

// Handler serves the /metrics endpoint.
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(PinFailuresTotal)
	prometheus.MustRegister(CardsBlockedTotal)
	prometheus.MustRegister(WithdrawalsTotal)
	prometheus.MustRegister(BalanceInquiriesTotal)
	prometheus.MustRegister(WorkerQueueDepth)
	prometheus.MustRegister(WorkerDroppedTotal)
}
