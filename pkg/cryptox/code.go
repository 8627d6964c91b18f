package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
)

// ResetCodeDigits is the length of a password reset code.
const ResetCodeDigits = 6

var resetCodeSpace = big.NewInt(1_000_000)

// GenerateResetCode returns a uniformly random numeric code of exactly
// ResetCodeDigits characters. Leading zeros are kept: "004213" is a valid code
// and is never shortened to "4213".
func GenerateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, resetCodeSpace)
	if err != nil {
		return "", fmt.Errorf("failed to generate reset code: %w", err)
	}
	return fmt.Sprintf("%0*d", ResetCodeDigits, n.Int64()), nil
}

// EqualFingerprints compares two token fingerprints in constant time.
func EqualFingerprints(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
