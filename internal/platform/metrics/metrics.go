package metrics

import (
	"net/http"
	"time"

	"github.com/compraventa/marketplace-service/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsManager holds the service's Prometheus collectors on a private registry.
type MetricsManager struct {
	Registry *prometheus.Registry

	VerdictsTotal        *prometheus.CounterVec // outcome: valid, warnings, blocked
	ProfanityHitsTotal   *prometheus.CounterVec // field
	ImageRejectionsTotal *prometheus.CounterVec // reason
	MatcherFailuresTotal prometheus.Counter
	ListingsCreatedTotal prometheus.Counter
	ReportsTotal         *prometheus.CounterVec // reason
	FlaggedTotal         prometheus.Counter
	APIErrorsTotal       *prometheus.CounterVec   // method, code
	APILatency           *prometheus.HistogramVec // method, route
}

// NewMetricsManager registers all collectors under the given namespace.
func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	m := &MetricsManager{
		Registry: registry,
		VerdictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_verdicts_total",
			Help:      "Listing validation verdicts by outcome.",
		}, []string{"outcome"}),
		ProfanityHitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profanity_hits_total",
			Help:      "Texts flagged by the profanity matcher, by field.",
		}, []string{"field"}),
		ImageRejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_rejections_total",
			Help:      "Rejected images by reason.",
		}, []string{"reason"}),
		MatcherFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matcher_failures_total",
			Help:      "Internal profanity matcher failures that were failed open.",
		}),
		ListingsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_created_total",
			Help:      "Listings persisted after an accepted submission.",
		}),
		ReportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Listing reports by reason.",
		}, []string{"reason"}),
		FlaggedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_flagged_total",
			Help:      "Listings flagged by the re-moderation sweep.",
		}),
		APIErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "API errors by method and status code.",
		}, []string{"method", "code"}),
		APILatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_latency_seconds",
			Help:      "Latency of API requests by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		m.VerdictsTotal,
		m.ProfanityHitsTotal,
		m.ImageRejectionsTotal,
		m.MatcherFailuresTotal,
		m.ListingsCreatedTotal,
		m.ReportsTotal,
		m.FlaggedTotal,
		m.APIErrorsTotal,
		m.APILatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest records latency and, for status >= 400, an error.
func (m *MetricsManager) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.APILatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
	if status >= 400 {
		m.APIErrorsTotal.WithLabelValues(method, http.StatusText(status)).Inc()
	}
}

func (m *MetricsManager) RecordVerdict(outcome string) {
	m.VerdictsTotal.WithLabelValues(outcome).Inc()
}

func (m *MetricsManager) RecordProfanity(field string) {
	m.ProfanityHitsTotal.WithLabelValues(field).Inc()
}

func (m *MetricsManager) RecordImageRejection(reason string) {
	m.ImageRejectionsTotal.WithLabelValues(reason).Inc()
}

// MatcherFailed is meant to be passed as the profanity matcher's failure hook.
func (m *MetricsManager) MatcherFailed() {
	m.MatcherFailuresTotal.Inc()
}

func (m *MetricsManager) ListingCreated() {
	m.ListingsCreatedTotal.Inc()
}

func (m *MetricsManager) RecordReport(reason string) {
	m.ReportsTotal.WithLabelValues(reason).Inc()
}

func (m *MetricsManager) ListingFlagged() {
	m.FlaggedTotal.Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *MetricsManager) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// StartMetricsServer serves /metrics on port. An empty port disables it.
func StartMetricsServer(port string, log *logger.Logger, m *MetricsManager) error {
	if port == "" {
		log.Info("Prometheus metrics server port not configured, server will not start")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	log.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}
