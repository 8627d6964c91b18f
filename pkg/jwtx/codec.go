// Package jwtx issues and verifies the HMAC-signed access tokens handed out
// by the auth service.
package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest accepted HMAC secret, in bytes.
const MinSecretLength = 32

// Verifier validates an access token and returns the identity it carries.
type Verifier interface {
	Verify(token string) (Identity, error)
}

// CodecOptions configures a Codec.
type CodecOptions struct {
	Secret    []byte
	Algorithm string // HS256 (default), HS384 or HS512
	Issuer    string
	Audience  string

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Codec signs and verifies access tokens with a single shared secret. It is
// safe for concurrent use and holds no mutable state.
type Codec struct {
	secret   []byte
	method   *jwt.SigningMethodHMAC
	issuer   string
	audience string
	now      func() time.Time
	parser   *jwt.Parser
}

var _ Verifier = (*Codec)(nil)

// NewCodec validates opts and builds a Codec.
func NewCodec(opts CodecOptions) (*Codec, error) {
	switch {
	case len(opts.Secret) == 0:
		return nil, ErrMissingSecret
	case len(opts.Secret) < MinSecretLength:
		return nil, ErrWeakSecret
	case opts.Issuer == "":
		return nil, ErrMissingIssuer
	case opts.Audience == "":
		return nil, ErrMissingAudience
	}

	method, err := hmacMethod(opts.Algorithm)
	if err != nil {
		return nil, err
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	secret := make([]byte, len(opts.Secret))
	copy(secret, opts.Secret)

	c := &Codec{
		secret:   secret,
		method:   method,
		issuer:   opts.Issuer,
		audience: opts.Audience,
		now:      now,
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(opts.Issuer),
		jwt.WithAudience(opts.Audience),
		jwt.WithTimeFunc(now),
	)
	return c, nil
}

func hmacMethod(alg string) (*jwt.SigningMethodHMAC, error) {
	switch alg {
	case "", jwt.SigningMethodHS256.Alg():
		return jwt.SigningMethodHS256, nil
	case jwt.SigningMethodHS384.Alg():
		return jwt.SigningMethodHS384, nil
	case jwt.SigningMethodHS512.Alg():
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlg, alg)
	}
}

// Algorithm returns the configured JWS algorithm name.
func (c *Codec) Algorithm() string { return c.method.Alg() }

// Issue signs an access token for userID with the given role, valid for ttl
// from now.
func (c *Codec) Issue(userID int64, role string, ttl time.Duration) (string, error) {
	if userID <= 0 {
		return "", fmt.Errorf("jwtx: invalid user id %d", userID)
	}
	if role == "" {
		return "", errors.New("jwtx: empty role")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("jwtx: non-positive ttl %s", ttl)
	}

	claims := NewAccessClaims(userID, role, c.issuer, c.audience, ttl, c.now())
	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, issuer, audience and expiry with zero
// leeway. The returned error is always one of ErrExpired, ErrAlgMismatch or
// ErrMalformed.
func (c *Codec) Verify(raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, ErrMalformed
	}

	// The header is inspected first so a token signed with another algorithm
	// is reported as such rather than as a bad signature.
	unverified, _, err := c.parser.ParseUnverified(raw, &Claims{})
	if err != nil && !errors.Is(err, jwt.ErrTokenUnverifiable) {
		return Identity{}, ErrMalformed
	}
	if unverified == nil {
		return Identity{}, ErrMalformed
	}
	alg, _ := unverified.Header["alg"].(string)
	switch {
	case alg == "":
		return Identity{}, ErrMalformed
	case alg != c.method.Alg():
		return Identity{}, ErrAlgMismatch
	}

	claims := &Claims{}
	token, err := c.parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrAlgMismatch
		}
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Identity{}, ErrExpired
		default:
			return Identity{}, ErrMalformed
		}
	}
	if !token.Valid {
		return Identity{}, ErrMalformed
	}

	return identityFromClaims(claims)
}
