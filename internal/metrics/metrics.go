// Package metrics holds the portal's Prometheus collectors. A nil *Metrics is valid and records nothing,
// so components can be built without metrics in tests.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lms_portal"

type Metrics struct {
	registry        *prometheus.Registry
	authInit        *prometheus.CounterVec
	tokenRefresh    *prometheus.CounterVec
	guardDecisions  *prometheus.CounterVec
	backendRequests *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		authInit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_init_total",
			Help:      "Auth initializer runs by final state.",
		}, []string{"result"}),
		tokenRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refresh_total",
			Help:      "Backend refresh-token calls by result.",
		}, []string{"result"}),
		guardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_decisions_total",
			Help:      "Route guard decisions by action.",
		}, []string{"action"}),
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Requests to the LMS backend by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.authInit,
		m.tokenRefresh,
		m.guardDecisions,
		m.backendRequests,
	)
	return m
}

func (m *Metrics) AuthInit(result string) {
	if m == nil {
		return
	}
	m.authInit.WithLabelValues(result).Inc()
}

func (m *Metrics) TokenRefresh(result string) {
	if m == nil {
		return
	}
	m.tokenRefresh.WithLabelValues(result).Inc()
}

func (m *Metrics) GuardDecision(action string) {
	if m == nil {
		return
	}
	m.guardDecisions.WithLabelValues(action).Inc()
}

func (m *Metrics) BackendRequest(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.backendRequests.WithLabelValues(endpoint, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests that gather values directly
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
