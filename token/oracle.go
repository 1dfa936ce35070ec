package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrAbsent is returned by ExpiresAt for an empty token.
var ErrAbsent = errors.New("token absent")

// ErrNoExpiry is returned by ExpiresAt when the payload carries no exp claim.
var ErrNoExpiry = errors.New("token has no expiry claim")

// ExpiredOrAbsent reports whether raw is empty, malformed, or at/past its
// exp claim. Malformed is never treated as valid.
func ExpiredOrAbsent(raw string) bool {
	exp, err := ExpiresAt(raw)
	if err != nil {
		return true
	}
	return !time.Now().Before(exp)
}

// ExpiresAt decodes the exp claim from raw without signature verification.
func ExpiresAt(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, ErrAbsent
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiry
	}
	return exp.Time, nil
}
