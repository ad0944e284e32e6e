// Package tokenx decodes bearer tokens for scheduling purposes.
//
// Security note: tokens are parsed WITHOUT signature verification. The
// decoded claims are only good for deciding when to renew a token. They must
// never feed an authorization decision; the backend verifies every token it
// receives.
package tokenx

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptyToken = errors.New("empty token")
	ErrNoExpiry   = errors.New("token has no exp claim")
)

// DecodeError reports a token that cannot be parsed for its expiry.
// Callers treat it as "expiry unknown".
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "decode token: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

var parser = jwt.NewParser()

// Decode returns the claim set of raw without verifying its signature.
func Decode(raw string) (jwt.MapClaims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, &DecodeError{Err: ErrEmptyToken}
	}

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return claims, nil
}

// Expiry returns the exp claim of raw.
func Expiry(raw string) (time.Time, error) {
	claims, err := Decode(raw)
	if err != nil {
		return time.Time{}, err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, &DecodeError{Err: err}
	}
	if exp == nil {
		return time.Time{}, &DecodeError{Err: ErrNoExpiry}
	}
	return exp.Time, nil
}

// IsExpiringSoon reports whether exp falls within window of now. A zero exp
// (unknown expiry) is always expiring soon.
func IsExpiringSoon(exp, now time.Time, window time.Duration) bool {
	if exp.IsZero() {
		return true
	}
	return exp.Sub(now) < window
}
