package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Total number of cart mutations",
	}, []string{"op"})

	CartPersistFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_persist_failures_total",
		Help: "Total number of failed cart writes to storage",
	})

	CartRestoreFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_restore_failures_total",
		Help: "Total number of unreadable persisted carts",
	})

	ChatMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_messages_total",
		Help: "Total number of chat messages appended",
	}, []string{"role"})

	ChatIntentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_intents_total",
		Help: "Total number of chat replies by matched intent",
	}, []string{"intent"})

	EmailsCapturedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "emails_captured_total",
		Help: "Total number of newly captured newsletter emails",
	}, []string{"source"})

	CheckoutStepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_steps_total",
		Help: "Total number of completed checkout steps",
	}, []string{"step"})

	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Total number of orders placed through checkout",
	})

	PaymentProcessingLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_processing_latency_seconds",
		Help:    "Latency of simulated payment processing",
		Buckets: prometheus.DefBuckets,
	})

	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "submissions_total",
		Help: "Total number of form submissions",
	}, []string{"kind"})

	IntegrationEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "integration_events_total",
		Help: "Total number of integration events published",
	}, []string{"type", "sink"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
