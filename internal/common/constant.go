// Package common contains shared constants and sentinel errors used across
// bidmatch client components.
package common

const (
	// AuthorizationHeaderName carries bearer credentials on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme prefixes tokens in the Authorization header.
	BearerScheme = "Bearer"

	// RequestIDHeaderName correlates a client request with backend logs.
	RequestIDHeaderName = "X-Request-ID"

	// AccessTokenCookieName is the cookie that mirrors the access token so
	// server-side request handling can observe authentication state.
	AccessTokenCookieName = "access_token"
)
