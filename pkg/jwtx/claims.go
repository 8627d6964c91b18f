package jwtx

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the access-token claims. Subject carries the decimal user id.
type Claims struct {
	jwt.RegisteredClaims

	Role string `json:"role"`
}

// NewAccessClaims builds the claim set for one access token.
func NewAccessClaims(userID int64, role, issuer, audience string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(userID, 10),
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Role: role,
	}
}

// NewJTI returns a random identifier for the "jti" claim.
func NewJTI() string {
	return uuid.NewString()
}

// Identity is what a verified access token proves about its bearer.
type Identity struct {
	UserID    int64
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// HasRole reports whether the identity holds one of roles.
func (i Identity) HasRole(roles ...string) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

func identityFromClaims(c *Claims) (Identity, error) {
	uid, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || uid <= 0 {
		return Identity{}, ErrMalformed
	}
	if c.Role == "" || c.IssuedAt == nil || c.ExpiresAt == nil {
		return Identity{}, ErrMalformed
	}
	return Identity{
		UserID:    uid,
		Role:      c.Role,
		IssuedAt:  c.IssuedAt.Time,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}
