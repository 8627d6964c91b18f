package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/storefront/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitLoginEndpoint verifies that /v1/auth/login is rate limited.
// This endpoint has strict limits (5 req/min) to prevent brute force attacks.
func TestRateLimitLoginEndpoint(t *testing.T) {
	c := setupAuthContainerWithDefaultRateLimits(t)
	client := authsdk.NewSDKClient(c.URL)

	for i := range 5 {
		_, err := client.Login(t.Context(), "nobody@example.com", "wrong-pass1")
		require.ErrorIs(t, err, authsdk.ErrInvalidCredentials, "Should not be rate limited yet (request %d)", i+1)
	}

	_, err := client.Login(t.Context(), "nobody@example.com", "wrong-pass1")
	require.Equal(t, http.StatusTooManyRequests, authsdk.StatusCode(err), "Should be rate limited after 5 requests")
}

// TestRateLimitForgotPassword verifies the reset endpoint shares the strict profile.
func TestRateLimitForgotPassword(t *testing.T) {
	c := setupAuthContainerWithDefaultRateLimits(t)
	client := authsdk.NewSDKClient(c.URL)

	for range 5 {
		require.NoError(t, client.ForgotPassword(t.Context(), "nobody@example.com"))
	}

	err := client.ForgotPassword(t.Context(), "nobody@example.com")
	require.Equal(t, http.StatusTooManyRequests, authsdk.StatusCode(err))
}
