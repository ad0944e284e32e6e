package session

import (
	"errors"

	"github.com/dmitrijs2005/bidmatch/internal/client/api"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrEmptyCredentials = errors.New("email and password are required")
)

// AuthenticationError is a rejected login or password change. Message is
// meant for display as-is.
type AuthenticationError struct {
	Message string
	Err     error
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// newAuthenticationError prefers the backend's own reason over fallback.
func newAuthenticationError(err error, fallback string) *AuthenticationError {
	msg := fallback
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		msg = apiErr.Message
	}
	return &AuthenticationError{Message: msg, Err: err}
}

// TokenRefreshError is a failed renewal. By the time a caller sees it the
// session has already been ended.
type TokenRefreshError struct {
	Err error
}

func (e *TokenRefreshError) Error() string {
	return "token refresh failed: " + e.Err.Error()
}

func (e *TokenRefreshError) Unwrap() error {
	return e.Err
}
