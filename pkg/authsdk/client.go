package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the storefront authentication service. It covers
// the public endpoints and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Login exchanges email and password for a token pair.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	var out TokenResponse
	err := c.call(ctx, http.MethodPost, "/v1/auth/login", "", LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// spent whether or not the caller receives the response.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	var out TokenResponse
	err := c.call(ctx, http.MethodPost, "/v1/auth/refresh", "", RefreshRequest{RefreshToken: refreshToken}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Revoke revokes a refresh token.
func (c *SDKClient) Revoke(ctx context.Context, refreshToken string) error {
	return c.call(ctx, http.MethodPost, "/v1/auth/revoke", "", RevokeRequest{RefreshToken: refreshToken}, nil)
}

// Register creates a customer account.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := c.call(ctx, http.MethodPost, "/v1/auth/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForgotPassword asks for a reset code and link. It succeeds for unknown
// emails too.
func (c *SDKClient) ForgotPassword(ctx context.Context, email string) error {
	return c.call(ctx, http.MethodPost, "/v1/auth/password/forgot", "", ForgotPasswordRequest{Email: email}, nil)
}

// VerifyResetCode checks a reset code without using it up.
func (c *SDKClient) VerifyResetCode(ctx context.Context, email, code string) error {
	return c.call(ctx, http.MethodPost, "/v1/auth/password/verify-code", "",
		VerifyCodeRequest{Email: email, Code: code}, nil)
}

// ResetPassword sets a new password using a reset code.
func (c *SDKClient) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return c.call(ctx, http.MethodPost, "/v1/auth/password/reset", "",
		ResetByCodeRequest{Email: email, Code: code, NewPassword: newPassword}, nil)
}

// ResetPasswordByLink sets a new password using the token of a reset link.
func (c *SDKClient) ResetPasswordByLink(ctx context.Context, token, email, newPassword string) error {
	return c.call(ctx, http.MethodPost, "/v1/auth/password/reset-link", "",
		ResetByLinkRequest{Token: token, Email: email, NewPassword: newPassword}, nil)
}

// AuthenticateWithPassword logs in and wraps the pair in a Session.
func (c *SDKClient) AuthenticateWithPassword(ctx context.Context, email, password string) (*Session, error) {
	tok, err := c.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return newSession(c, tok), nil
}
