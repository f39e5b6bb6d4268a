// Package metrics holds the Prometheus instruments of the transcript server.
//
// All recording methods are safe on a nil *Metrics so components can be
// constructed without instrumentation in tests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "yt_transcript"

// Metrics holds all metric instruments.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP layer
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Authentication
	AuthAttemptsTotal *prometheus.CounterVec
	TokenCacheLookups *prometheus.CounterVec
	JWKSFetchesTotal  *prometheus.CounterVec
	DiscoveryFetches  *prometheus.CounterVec

	// Tools
	ToolInvocationsTotal   *prometheus.CounterVec
	ToolInvocationDuration *prometheus.HistogramVec
	TranscriptRetriesTotal prometheus.Counter
}

// New creates and registers all instruments on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by surface, method and status.",
		}, []string{"surface", "method", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by surface.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"surface"}),
		AuthAttemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Authentication attempts by outcome and failure reason.",
		}, []string{"outcome", "reason"}),
		TokenCacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "token_cache_lookups_total",
			Help:      "Token validation cache lookups by result.",
		}, []string{"result"}),
		JWKSFetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "jwks_fetches_total",
			Help:      "JWKS fetches by outcome.",
		}, []string{"outcome"}),
		DiscoveryFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "discovery_fetches_total",
			Help:      "Authorization server metadata fetches by outcome.",
		}, []string{"outcome"}),
		ToolInvocationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tools",
			Name:      "invocations_total",
			Help:      "Tool invocations by tool and error code (ok on success).",
		}, []string{"tool", "code"}),
		ToolInvocationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tools",
			Name:      "invocation_duration_seconds",
			Help:      "Tool handler latency.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"tool"}),
		TranscriptRetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transcript",
			Name:      "retries_total",
			Help:      "Transcript source retries after transient failures.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AuthAttemptsTotal,
		m.TokenCacheLookups,
		m.JWKSFetchesTotal,
		m.DiscoveryFetches,
		m.ToolInvocationsTotal,
		m.ToolInvocationDuration,
		m.TranscriptRetriesTotal,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// HTTPRequest records a served request.
func (m *Metrics) HTTPRequest(surface, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(surface, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(surface).Observe(elapsed.Seconds())
}

// AuthAttempt records one authentication attempt. reason is empty on success.
func (m *Metrics) AuthAttempt(success bool, reason string) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.AuthAttemptsTotal.WithLabelValues(outcome, reason).Inc()
}

// TokenCacheLookup records a validation cache hit or miss.
func (m *Metrics) TokenCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.TokenCacheLookups.WithLabelValues(result).Inc()
}

// JWKSFetch records a JWKS fetch outcome ("ok" or a failure reason).
func (m *Metrics) JWKSFetch(outcome string) {
	if m == nil {
		return
	}
	m.JWKSFetchesTotal.WithLabelValues(outcome).Inc()
}

// DiscoveryFetch records an authorization server metadata fetch outcome.
func (m *Metrics) DiscoveryFetch(outcome string) {
	if m == nil {
		return
	}
	m.DiscoveryFetches.WithLabelValues(outcome).Inc()
}

// ToolInvocation records a finished tool invocation.
func (m *Metrics) ToolInvocation(tool, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ToolInvocationsTotal.WithLabelValues(tool, code).Inc()
	m.ToolInvocationDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// TranscriptRetry records one retry of the transcript source.
func (m *Metrics) TranscriptRetry() {
	if m == nil {
		return
	}
	m.TranscriptRetriesTotal.Inc()
}
