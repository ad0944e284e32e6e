// Package api is the REST client for the bidmatch authentication backend.
//
// # Endpoints
//
//	POST {prefix}/auth/login            {email, password}
//	POST {prefix}/auth/refresh          Authorization: Bearer <refresh_token>
//	POST {prefix}/auth/change-password  {old_password, new_password}
//
// The prefix is empty for client accounts and configurable for writers.
//
// # Error Handling
//
// Non-2xx responses become *APIError carrying the backend's human-readable
// message. Callers match conditions with errors.Is: ErrUnauthorized (401/403),
// ErrUnavailable (transport failure), ErrBadResponse (unexpected payload).
package api
