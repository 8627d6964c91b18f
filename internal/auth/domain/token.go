package domain

import "time"

// Revocation reasons recorded on refresh tokens.
const (
	RevokeReasonLogout         = "logout"
	RevokeReasonReuseDetected  = "reuse_detected"
	RevokeReasonPasswordReset  = "password_reset"
	RevokeReasonPasswordChange = "password_change"
	RevokeReasonAdmin          = "admin"
)

// TokenPair is what a successful login or refresh hands back.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	TokenType        string // always "Bearer"
	ExpiresIn        time.Duration
	RefreshExpiresAt time.Time
	UserID           int64
	Role             string
}

// ClientMeta describes the caller that triggered an operation. It is stored
// next to issued credentials for auditing only.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// RefreshToken is the stored record of an opaque refresh token. TokenHash is
// the fingerprint of the value; the value itself is never persisted.
type RefreshToken struct {
	ID            string
	UserID        int64
	TokenHash     string
	CreatedAt     time.Time
	ExpiresAt     time.Time
	Used          bool
	Revoked       bool
	ReplacedBy    string // fingerprint of the token issued on rotation
	RevokedReason string
	ClientIP      string
	UserAgent     string
	UpdatedAt     time.Time
}

// Expired reports whether the token is past its expiry at now.
func (t RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Active reports whether the token may still be exchanged at now.
func (t RefreshToken) Active(now time.Time) bool {
	return !t.Used && !t.Revoked && !t.Expired(now)
}
