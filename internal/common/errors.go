// Package common defines shared constants and sentinel errors used across
// bidmatch components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
