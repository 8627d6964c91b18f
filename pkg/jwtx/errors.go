package jwtx

import "errors"

var (
	ErrMissingSecret   = errors.New("jwtx: missing signing secret")
	ErrWeakSecret      = errors.New("jwtx: signing secret shorter than 32 bytes")
	ErrUnsupportedAlg  = errors.New("jwtx: unsupported algorithm")
	ErrMissingIssuer   = errors.New("jwtx: missing issuer")
	ErrMissingAudience = errors.New("jwtx: missing audience")

	// Verification failures. Every rejected token maps to exactly one of these.
	ErrExpired     = errors.New("jwtx: token expired")
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
)

// Kind returns the short label used in logs and metrics for a verification
// error.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrAlgMismatch):
		return "algorithm_mismatch"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	default:
		return "internal"
	}
}
