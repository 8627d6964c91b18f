package authsdk

import (
	"encoding/json"
	"time"
)

// ============================================================================
// Envelope
// ============================================================================

// Envelope is the wire shape of every JSON response of the auth service.
// Datos is kept raw so callers decode it into the type of the endpoint.
type Envelope struct {
	Exitoso bool            `json:"exitoso"`
	Mensaje string          `json:"mensaje"`
	Codigo  int             `json:"codigo"`
	Datos   json.RawMessage `json:"datos,omitempty"`
}

// ErrorDetails is carried in Datos of a failed response.
type ErrorDetails struct {
	// Error is a stable machine readable code, e.g. "reuse_detected".
	Error string `json:"error"`

	// Problems maps request fields to validation failures.
	Problems map[string]string `json:"problems,omitempty"`
}

// ============================================================================
// Session Types
// ============================================================================

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RevokeRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken string `json:"access_token"`

	// RefreshToken is single use; every refresh returns a new one.
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	ExpiresIn        int       `json:"expires_in"` // seconds
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	UserID           int64     `json:"user_id"`
	Role             string    `json:"role"`
}

// RevokeAllResponse reports how many sessions an admin revocation ended.
type RevokeAllResponse struct {
	UserID  int64 `json:"user_id"`
	Revoked int64 `json:"revoked"`
}

// ============================================================================
// Password Types
// ============================================================================

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ResetByCodeRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

type ResetByLinkRequest struct {
	Token       string `json:"token"`
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ============================================================================
// User Types
// ============================================================================

type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type RegisterResponse struct {
	UserID int64 `json:"user_id"`
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

// MeResponse describes the caller of GET /v1/auth/me.
type MeResponse struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"token_expires_at"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response from /livez and /readyz endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks contains individual health check results.
type HealthChecks struct {
	Database string `json:"database"`
}
