// Package metrics provides Prometheus metrics for the pitchperfect service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns every collector of the service on a dedicated registry.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	enabled          bool
	registry         *prometheus.Registry

	// Domain
	matchesCreated   prometheus.Counter
	matchTransitions *prometheus.CounterVec
	reviewsSubmitted prometheus.Counter
	ratingsApplied   prometheus.Counter
	scoutReports     *prometheus.CounterVec
	loginsCompleted  prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager creates a Manager. Without WithRegistry it registers on a fresh
// registry of its own, so several managers can coexist in tests.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pitchperfect",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
	}

	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.matchesCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "matches_created_total",
		Help:      "Total number of matches scheduled",
	})

	m.matchTransitions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "match_transitions_total",
			Help:      "Total number of match status changes by source and target status",
		},
		[]string{"from", "to"},
	)

	m.reviewsSubmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "reviews_submitted_total",
		Help:      "Total number of accepted review submissions",
	})

	m.ratingsApplied = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "ratings_applied_total",
		Help:      "Total number of ratings folded into player statistics",
	})

	m.scoutReports = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "scout_reports_total",
			Help:      "Total number of scout reports served by outcome",
		},
		[]string{"outcome"},
	)

	m.loginsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "logins_completed_total",
		Help:      "Total number of completed onboarding flows",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"route", "method", "status_code"},
	)
}

func (m *Manager) MatchCreated() {
	if m.enabled {
		m.matchesCreated.Inc()
	}
}

func (m *Manager) MatchTransitioned(from, to string) {
	if m.enabled {
		m.matchTransitions.WithLabelValues(from, to).Inc()
	}
}

// ReviewSubmitted counts one submission that applied the given number of ratings.
func (m *Manager) ReviewSubmitted(ratings int) {
	if !m.enabled {
		return
	}
	m.reviewsSubmitted.Inc()
	m.ratingsApplied.Add(float64(ratings))
}

func (m *Manager) LoginCompleted() {
	if m.enabled {
		m.loginsCompleted.Inc()
	}
}

func (m *Manager) ScoutReport(outcome string) {
	if m.enabled {
		m.scoutReports.WithLabelValues(outcome).Inc()
	}
}

// ObserveHTTPRequest records one served request. route is the router
// pattern, not the raw path, to keep label cardinality bounded.
func (m *Manager) ObserveHTTPRequest(route, method string, status int, d time.Duration) {
	if !m.enabled {
		return
	}
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(route, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(route, method, code).Observe(d.Seconds())
}

// Registry returns the registry the collectors live on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
