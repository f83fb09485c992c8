package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LeadSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leadbroker_lead_submissions_total",
		Help: "Lead submissions by outcome",
	}, []string{"result"})

	Transactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leadbroker_ledger_transactions_total",
		Help: "Ledger transactions recorded, by type",
	}, []string{"type"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leadbroker_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "leadbroker_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "path"})
)
