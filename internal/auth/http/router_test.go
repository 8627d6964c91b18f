package http_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	authhttp "github.com/aussiebroadwan/storefront/internal/auth/http"
	"github.com/aussiebroadwan/storefront/internal/auth/metrics"
	"github.com/aussiebroadwan/storefront/internal/auth/service"
	"github.com/aussiebroadwan/storefront/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/storefront/pkg/authsdk"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "adm1n-pass-word"
	userEmail     = "user@example.com"
	userPassword  = "orig1nal-pass"

	unauthorizedBody = `{"exitoso":false,"mensaje":"Token inválido o expirado","codigo":401}`
	forbiddenBody    = `{"exitoso":false,"mensaje":"Acceso denegado: permisos insuficientes","codigo":403}`
)

var relaxed = httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}

type sent struct{ to, code, link string }

type captureNotifier struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (n *captureNotifier) SendPasswordReset(_ context.Context, to, code, link string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sent{to, code, link})
	return nil
}

func (n *captureNotifier) fail(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.err = err
}

func (n *captureNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

func (n *captureNotifier) last(t *testing.T) sent {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent)
	return n.sent[len(n.sent)-1]
}

type server struct {
	URL      string
	client   *authsdk.SDKClient
	notifier *captureNotifier
	store    *sqlite.Store
	userID   int64
}

func newServer(t *testing.T, limits authhttp.RateLimits) *server {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	codec, err := jwtx.NewCodec(jwtx.CodecOptions{
		Secret:   []byte("router-test-secret-0123456789abcdef"),
		Issuer:   "storefront-auth",
		Audience: "storefront-api",
	})
	require.NoError(t, err)

	boot := &service.BootstrapService{Store: st}
	require.NoError(t, boot.Run(ctx, service.BootstrapAdmin{Email: adminEmail, Password: adminPassword}))

	m := metrics.New()
	n := &captureNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := authhttp.NewRouter(codec, "test", st, logger, limits)
	router.Metrics = m
	router.SessionService = &service.SessionService{
		Store:      st,
		Issuer:     codec,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
		Metrics:    m,
	}
	router.RecoveryService = &service.RecoveryService{
		Store:       st,
		Notifier:    n,
		ResetTTL:    15 * time.Minute,
		LinkBaseURL: "https://shop.example.com/reset-password",
		Metrics:     m,
	}
	router.UserService = &service.UserService{Store: st}
	router.ApplyRoutes()

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	client := authsdk.NewSDKClient(ts.URL)
	reg, err := client.Register(ctx, authsdk.RegisterRequest{
		FirstName: "Ana",
		LastName:  "Pérez",
		Email:     userEmail,
		Password:  userPassword,
	})
	require.NoError(t, err)

	return &server{URL: ts.URL, client: client, notifier: n, store: st, userID: reg.UserID}
}

func newRelaxedServer(t *testing.T) *server {
	return newServer(t, authhttp.RateLimits{Strict: relaxed, Moderate: relaxed})
}

// raw performs a request outside the SDK and returns status and body.
func (s *server) raw(t *testing.T, method, path, token, body string) (int, string) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(t.Context(), method, s.URL+path, rd)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestHealth(t *testing.T) {
	s := newRelaxedServer(t)

	live, err := s.client.GetLiveness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := s.client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
}

func TestLoginAndMe(t *testing.T) {
	s := newRelaxedServer(t)

	sess, err := s.client.AuthenticateWithPassword(t.Context(), "  USER@example.com ", userPassword)
	require.NoError(t, err)
	require.Equal(t, s.userID, sess.UserID())
	require.Equal(t, "customer", sess.Role())

	me, err := sess.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, s.userID, me.UserID)
	require.Equal(t, userEmail, me.Email)
	require.Equal(t, "customer", me.Role)
	require.False(t, me.ExpiresAt.IsZero())
}

func TestLoginFailures(t *testing.T) {
	s := newRelaxedServer(t)

	tests := []struct {
		name     string
		email    string
		password string
		want     *authsdk.APIError
	}{
		{"wrong password", userEmail, "wrong-pass1", authsdk.ErrInvalidCredentials},
		{"unknown email", "nobody@example.com", userPassword, authsdk.ErrInvalidCredentials},
		{"malformed email", "not-an-email", userPassword, authsdk.ErrValidation},
		{"missing password", userEmail, "", authsdk.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.client.Login(t.Context(), tt.email, tt.password)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRequestBodyRejected(t *testing.T) {
	s := newRelaxedServer(t)

	for name, body := range map[string]string{
		"unknown field": `{"email":"user@example.com","password":"x","extra":1}`,
		"not json":      `email=user@example.com`,
		"trailing data": `{"email":"user@example.com","password":"x"}{}`,
	} {
		t.Run(name, func(t *testing.T) {
			code, resp := s.raw(t, http.MethodPost, "/v1/auth/login", "", body)
			require.Equal(t, http.StatusBadRequest, code)
			require.Contains(t, resp, `"error":"invalid_request"`)
		})
	}
}

func TestRefreshRotationAndReuse(t *testing.T) {
	s := newRelaxedServer(t)
	ctx := t.Context()

	first, err := s.client.Login(ctx, userEmail, userPassword)
	require.NoError(t, err)

	second, err := s.client.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)
	require.Equal(t, "Bearer", second.TokenType)
	require.Equal(t, int((15 * time.Minute).Seconds()), second.ExpiresIn)

	// Replaying the spent token ends every session, including the new one.
	_, err = s.client.Refresh(ctx, first.RefreshToken)
	require.ErrorIs(t, err, authsdk.ErrReuseDetected)

	_, err = s.client.Refresh(ctx, second.RefreshToken)
	require.ErrorIs(t, err, authsdk.ErrReuseDetected)

	_, err = s.client.Refresh(ctx, "never-issued")
	require.ErrorIs(t, err, authsdk.ErrRefreshNotFound)
}

func TestRevoke(t *testing.T) {
	s := newRelaxedServer(t)
	ctx := t.Context()

	tok, err := s.client.Login(ctx, userEmail, userPassword)
	require.NoError(t, err)

	require.NoError(t, s.client.Revoke(ctx, tok.RefreshToken))
	require.NoError(t, s.client.Revoke(ctx, tok.RefreshToken), "revoke is idempotent")

	err = s.client.Revoke(ctx, "never-issued")
	require.ErrorIs(t, err, authsdk.ErrRefreshNotFound)
}

func TestAccessDenials(t *testing.T) {
	s := newRelaxedServer(t)

	customer, err := s.client.Login(t.Context(), userEmail, userPassword)
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		code   int
		body   string
	}{
		{"no token", http.MethodGet, "/v1/auth/me", "", http.StatusUnauthorized, unauthorizedBody},
		{"garbage token", http.MethodGet, "/v1/auth/me", "not.a.jwt", http.StatusUnauthorized, unauthorizedBody},
		{"admin route anonymous", http.MethodPost, "/v1/admin/users/1/sessions/revoke", "", http.StatusUnauthorized, unauthorizedBody},
		{"admin route as customer", http.MethodPost, "/v1/admin/users/1/sessions/revoke", customer.AccessToken, http.StatusForbidden, forbiddenBody},
		{"change password anonymous", http.MethodPost, "/v1/auth/password/change", "", http.StatusUnauthorized, unauthorizedBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := s.raw(t, tt.method, tt.path, tt.token, "")
			require.Equal(t, tt.code, code)
			require.Equal(t, tt.body, body)
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	s := newRelaxedServer(t)

	_, err := s.client.Register(t.Context(), authsdk.RegisterRequest{
		FirstName: "Otra",
		Email:     "User@Example.com",
		Password:  "an0ther-pass",
	})
	require.ErrorIs(t, err, authsdk.ErrEmailTaken)

	_, err = s.client.Register(t.Context(), authsdk.RegisterRequest{
		FirstName: "Weak",
		Email:     "weak@example.com",
		Password:  "short",
	})
	require.ErrorIs(t, err, authsdk.ErrValidation)
	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Contains(t, apiErr.Problems, "password")
}

func TestAdminSessionsAndActive(t *testing.T) {
	s := newRelaxedServer(t)
	ctx := t.Context()

	admin, err := s.client.AuthenticateWithPassword(ctx, adminEmail, adminPassword)
	require.NoError(t, err)
	require.Equal(t, "admin", admin.Role())

	for range 2 {
		_, err := s.client.Login(ctx, userEmail, userPassword)
		require.NoError(t, err)
	}

	res, err := admin.RevokeUserSessions(ctx, s.userID)
	require.NoError(t, err)
	require.Equal(t, int64(2), res.Revoked)

	_, err = admin.RevokeUserSessions(ctx, 999999)
	require.ErrorIs(t, err, authsdk.ErrUserNotFound)

	require.NoError(t, admin.SetUserActive(ctx, s.userID, false))
	_, err = s.client.Login(ctx, userEmail, userPassword)
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)

	require.NoError(t, admin.SetUserActive(ctx, s.userID, true))
	_, err = s.client.Login(ctx, userEmail, userPassword)
	require.NoError(t, err)

	code, _ := s.raw(t, http.MethodPost, "/v1/admin/users/abc/sessions/revoke", admin.AccessToken(), "")
	require.Equal(t, http.StatusBadRequest, code)
}

func TestPasswordRecoveryByCode(t *testing.T) {
	s := newRelaxedServer(t)
	ctx := t.Context()

	old, err := s.client.Login(ctx, userEmail, userPassword)
	require.NoError(t, err)

	require.NoError(t, s.client.ForgotPassword(ctx, userEmail))
	msg := s.notifier.last(t)
	require.Equal(t, userEmail, msg.to)
	require.Len(t, msg.code, 6)

	require.NoError(t, s.client.VerifyResetCode(ctx, userEmail, msg.code))

	err = s.client.ResetPassword(ctx, userEmail, msg.code, "weak")
	require.ErrorIs(t, err, authsdk.ErrValidation)

	require.NoError(t, s.client.ResetPassword(ctx, userEmail, msg.code, "brand-new-pass1"))

	err = s.client.ResetPassword(ctx, userEmail, msg.code, "another-pass2")
	require.ErrorIs(t, err, authsdk.ErrInvalidOrExpired, "codes are single use")

	_, err = s.client.Login(ctx, userEmail, userPassword)
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)
	_, err = s.client.Login(ctx, userEmail, "brand-new-pass1")
	require.NoError(t, err)

	// The reset ended the session opened before it.
	_, err = s.client.Refresh(ctx, old.RefreshToken)
	require.ErrorIs(t, err, authsdk.ErrReuseDetected)
}

func TestPasswordRecoveryByLink(t *testing.T) {
	s := newRelaxedServer(t)
	ctx := t.Context()

	require.NoError(t, s.client.ForgotPassword(ctx, userEmail))
	link, err := url.Parse(s.notifier.last(t).link)
	require.NoError(t, err)
	token := link.Query().Get("token")
	require.NotEmpty(t, token)

	err = s.client.ResetPasswordByLink(ctx, token, "other@example.com", "brand-new-pass1")
	require.ErrorIs(t, err, authsdk.ErrInvalidOrExpired)

	require.NoError(t, s.client.ResetPasswordByLink(ctx, token, userEmail, "brand-new-pass1"))

	_, err = s.client.Login(ctx, userEmail, "brand-new-pass1")
	require.NoError(t, err)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	s := newRelaxedServer(t)

	require.NoError(t, s.client.ForgotPassword(t.Context(), "nobody@example.com"))
	require.Zero(t, s.notifier.count())

	err := s.client.VerifyResetCode(t.Context(), "nobody@example.com", "123456")
	require.ErrorIs(t, err, authsdk.ErrInvalidOrExpired)
}

func TestChangePassword(t *testing.T) {
	s := newRelaxedServer(t)
	ctx := t.Context()

	sess, err := s.client.AuthenticateWithPassword(ctx, userEmail, userPassword)
	require.NoError(t, err)

	err = sess.ChangePassword(ctx, "wrong-pass1", "brand-new-pass1")
	require.ErrorIs(t, err, authsdk.ErrWrongCurrentPassword)

	require.NoError(t, sess.ChangePassword(ctx, userPassword, "brand-new-pass1"))

	_, err = s.client.Refresh(ctx, sess.RefreshToken())
	require.ErrorIs(t, err, authsdk.ErrReuseDetected)

	_, err = s.client.Login(ctx, userEmail, "brand-new-pass1")
	require.NoError(t, err)
}

func TestLoginRateLimited(t *testing.T) {
	s := newServer(t, authhttp.RateLimits{
		Strict:   httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2},
		Moderate: relaxed,
	})

	for range 2 {
		_, err := s.client.Login(t.Context(), userEmail, userPassword)
		require.NoError(t, err)
	}

	_, err := s.client.Login(t.Context(), userEmail, userPassword)
	require.Equal(t, http.StatusTooManyRequests, authsdk.StatusCode(err))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newRelaxedServer(t)

	_, err := s.client.Login(t.Context(), userEmail, "wrong-pass1")
	require.Error(t, err)
	code, _ := s.raw(t, http.MethodGet, "/v1/auth/me", "not.a.jwt", "")
	require.Equal(t, http.StatusUnauthorized, code)

	code, body := s.raw(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, `storefront_auth_logins_total{outcome="failure"} 1`)
	require.Contains(t, body, `storefront_auth_access_tokens_rejected_total{kind="malformed"} 1`)
}

func TestForgotPasswordNotifierDown(t *testing.T) {
	s := newRelaxedServer(t)
	s.notifier.fail(errors.New("smtp: connection refused"))

	knownStatus, knownBody := s.raw(t, http.MethodPost, "/v1/auth/password/forgot", "",
		`{"email":"`+userEmail+`"}`)
	unknownStatus, unknownBody := s.raw(t, http.MethodPost, "/v1/auth/password/forgot", "",
		`{"email":"nobody@example.com"}`)

	require.Equal(t, http.StatusOK, knownStatus)
	require.Equal(t, unknownStatus, knownStatus)
	require.Equal(t, unknownBody, knownBody)
	require.Zero(t, s.notifier.count())
}

func TestStoreFailureIsServerError(t *testing.T) {
	s := newRelaxedServer(t)
	require.NoError(t, s.store.Close())

	tests := []struct {
		path string
		body string
	}{
		{"/v1/auth/password/forgot", `{"email":"` + userEmail + `"}`},
		{"/v1/auth/login", `{"email":"` + userEmail + `","password":"` + userPassword + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, body := s.raw(t, http.MethodPost, tt.path, "", tt.body)
			require.Equal(t, http.StatusInternalServerError, status)
			require.JSONEq(t,
				`{"exitoso":false,"mensaje":"Error interno del servidor","codigo":500,"datos":{"error":"server_error"}}`,
				body)
		})
	}
}
