package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BillsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "retailbilling",
		Name:      "bills_created_total",
		Help:      "Bills created, by payment method.",
	}, []string{"payment_method"})

	BillAmount = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "retailbilling",
		Name:      "bill_amount",
		Help:      "Total amount of created bills.",
		Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})

	ProductsReconciled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "retailbilling",
		Name:      "products_reconciled_total",
		Help:      "Catalog products touched by bill reconciliation, by outcome.",
	}, []string{"outcome"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "retailbilling",
		Name:      "http_requests_total",
		Help:      "HTTP requests served.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "retailbilling",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

const (
	OutcomeCreated = "created"
	OutcomeUpdated = "updated"
)
