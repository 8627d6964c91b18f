package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time { return c.t }

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"remote addr", nil, "192.168.1.1"},
		{"forwarded for", map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.1"}, "203.0.113.1"},
		{"real ip", map[string]string{"X-Real-IP": "203.0.113.2"}, "203.0.113.2"},
		{"empty forwarded falls back", map[string]string{"X-Forwarded-For": " ,10.0.0.1"}, "192.168.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.168.1.1:54321"
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tt.want, ClientIP(req))
		})
	}
}

func TestIdentityKeyExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:54321"
	key := FirstKeyExtractor(IdentityKeyExtractor, ClientIP)

	require.Equal(t, "192.168.1.1", key(req))

	req = req.WithContext(WithIdentity(context.Background(), jwtx.Identity{UserID: 9, Role: "customer"}))
	require.Equal(t, "user:9", key(req))
}

func TestRateLimit_BlocksOverBurst(t *testing.T) {
	clock := &stepClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cfg := RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}
	set := newLimiterSet(cfg, clock.now)

	h := rateLimit(set, cfg, ClientIP)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := range 3 {
		require.Equal(t, http.StatusOK, call("10.0.0.1:1").Code, "request %d", i+1)
	}

	rec := call("10.0.0.1:1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "20", rec.Header().Get("Retry-After"))
	require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	require.JSONEq(t,
		`{"exitoso":false,"mensaje":"Demasiadas solicitudes, intente más tarde","codigo":429}`,
		rec.Body.String())

	require.Equal(t, http.StatusOK, call("10.0.0.2:1").Code, "other clients have their own bucket")

	clock.t = clock.t.Add(20 * time.Second)
	require.Equal(t, http.StatusOK, call("10.0.0.1:1").Code, "one token refills after 20s")
}

func TestRateLimit_PrunesIdleBuckets(t *testing.T) {
	clock := &stepClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	set := newLimiterSet(RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}, clock.now)

	set.allow("a")
	set.allow("b")
	require.Equal(t, 2, set.size())

	clock.t = clock.t.Add(3 * time.Minute)
	set.allow("c")
	require.Equal(t, 1, set.size())
}

func TestRateLimit_NoKeyAllows(t *testing.T) {
	cfg := RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
	h := RateLimitMiddleware(cfg, func(*http.Request) string { return "" })(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))

	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimitConfigFromEnv(t *testing.T) {
	def := RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	require.Equal(t, def, RateLimitConfigFromEnv("TEST", def))

	t.Setenv("RATELIMIT_TEST_REQUESTS", "10")
	t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "30")
	t.Setenv("RATELIMIT_TEST_BURST", "0")
	got := RateLimitConfigFromEnv("TEST", def)
	require.Equal(t, 10, got.RequestsPerWindow)
	require.Equal(t, 30*time.Second, got.Window)
	require.Equal(t, 5, got.Burst, "non-positive values keep the default")

	t.Setenv("RATELIMIT_TEST_REQUESTS", "lots")
	require.Equal(t, 5, RateLimitConfigFromEnv("TEST", def).RequestsPerWindow)
}
