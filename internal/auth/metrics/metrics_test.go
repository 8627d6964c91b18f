package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/storefront/internal/auth/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *metrics.Metrics
	require.NotPanics(t, func() {
		m.Login(metrics.OutcomeSuccess)
		m.Refresh(metrics.OutcomeReuse)
		m.Revoked("logout", 3)
		m.ResetRequested(metrics.OutcomeSuccess)
		m.PasswordReset("code", metrics.OutcomeFailure)
		m.TokenRejected("expired")
	})
	require.Nil(t, m.Registry())
}

func TestCounters(t *testing.T) {
	m := metrics.New()
	m.Login(metrics.OutcomeSuccess)
	m.Login(metrics.OutcomeSuccess)
	m.Login(metrics.OutcomeFailure)
	m.Revoked("reuse_detected", 4)
	m.Revoked("logout", 0)
	m.TokenRejected("algorithm_mismatch")

	expected := `
# HELP storefront_auth_logins_total Login attempts by outcome.
# TYPE storefront_auth_logins_total counter
storefront_auth_logins_total{outcome="failure"} 1
storefront_auth_logins_total{outcome="success"} 2
# HELP storefront_auth_refresh_tokens_revoked_total Refresh tokens revoked, by reason.
# TYPE storefront_auth_refresh_tokens_revoked_total counter
storefront_auth_refresh_tokens_revoked_total{reason="reuse_detected"} 4
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"storefront_auth_logins_total", "storefront_auth_refresh_tokens_revoked_total"))
}

func TestHandler(t *testing.T) {
	m := metrics.New()
	m.TokenRejected("expired")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `storefront_auth_access_tokens_rejected_total{kind="expired"} 1`)
	require.Contains(t, string(body), "go_goroutines")
}
