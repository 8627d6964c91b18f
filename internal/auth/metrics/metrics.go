// Package metrics exposes Prometheus counters for authentication outcomes.
// A nil *Metrics is valid and records nothing, so services can run without it.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront_auth"

// Outcome labels shared by the counters below.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeReuse    = "reuse_detected"
	OutcomeExpired  = "expired"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	logins         *prometheus.CounterVec
	refreshes      *prometheus.CounterVec
	revocations    *prometheus.CounterVec
	resetRequests  *prometheus.CounterVec
	passwordResets *prometheus.CounterVec
	rejectedTokens *prometheus.CounterVec
}

// New builds a Metrics on a private registry that also carries the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Refresh token exchanges by outcome.",
		}, []string{"outcome"}),
		revocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_tokens_revoked_total",
			Help:      "Refresh tokens revoked, by reason.",
		}, []string{"reason"}),
		resetRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "password_reset_requests_total",
			Help:      "Password reset requests by outcome.",
		}, []string{"outcome"}),
		passwordResets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "password_resets_total",
			Help:      "Password reset redemptions by method and outcome.",
		}, []string{"method", "outcome"}),
		rejectedTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_tokens_rejected_total",
			Help:      "Bearer tokens that failed verification, by kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.logins,
		m.refreshes,
		m.revocations,
		m.resetRequests,
		m.passwordResets,
		m.rejectedTokens,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Refresh(outcome string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Revoked(reason string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.revocations.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) ResetRequested(outcome string) {
	if m == nil {
		return
	}
	m.resetRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) PasswordReset(method, outcome string) {
	if m == nil {
		return
	}
	m.passwordResets.WithLabelValues(method, outcome).Inc()
}

// TokenRejected matches the onReject hook of httpx.AuthnMiddleware.
func (m *Metrics) TokenRejected(kind string) {
	if m == nil {
		return
	}
	m.rejectedTokens.WithLabelValues(kind).Inc()
}
