package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Service bundles the Prometheus collectors of the relay pipeline.
type Service struct {
	registry *prometheus.Registry

	OperationsSubmitted *prometheus.CounterVec
	OperationsFinalized *prometheus.CounterVec
	SponsoredOperations prometheus.Counter
	ReceiptPollAttempts prometheus.Histogram
}

// New creates a metrics service with its own registry.
func New() *Service {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Service{
		registry: registry,
		OperationsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_operations_submitted_total",
			Help: "UserOperations accepted by the bundler, by chain.",
		}, []string{"chain_id"}),
		OperationsFinalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_operations_finalized_total",
			Help: "UserOperations driven to a terminal state, by outcome.",
		}, []string{"outcome"}),
		SponsoredOperations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_operations_sponsored_total",
			Help: "UserOperations submitted with paymaster sponsorship.",
		}),
		ReceiptPollAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "relay_receipt_poll_attempts",
			Help:    "Receipt lookups needed until a terminal state was reached.",
			Buckets: prometheus.LinearBuckets(1, 2, 15),
		}),
	}

	registry.MustRegister(
		s.OperationsSubmitted,
		s.OperationsFinalized,
		s.SponsoredOperations,
		s.ReceiptPollAttempts,
	)

	return s
}

// HTTPHandler exposes the registry for the management metrics endpoint.
func (s *Service) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
