package domain

import "time"

// PasswordResetToken backs one password recovery request. Both credentials
// it was issued with, the six-digit code and the link token, are stored only
// as fingerprints.
type PasswordResetToken struct {
	ID        string
	UserID    int64
	CodeHash  string
	LinkHash  string
	CreatedAt time.Time
	ExpiresAt time.Time
	Used      bool
	UsedAt    *time.Time
	ClientIP  string
	UserAgent string
}

// Expired reports whether the reset is past its expiry at now.
func (p PasswordResetToken) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// Valid reports whether the reset can still be redeemed at now.
func (p PasswordResetToken) Valid(now time.Time) bool {
	return !p.Used && !p.Expired(now)
}
