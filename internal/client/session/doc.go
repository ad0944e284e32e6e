// Package session owns the authenticated-user session of one actor (client
// or writer): login, logout, password change and proactive renewal of the
// access token before it expires.
//
// # Lifecycle
//
//	Unauthenticated → Authenticating → Fresh ⇄ Refreshing → Fresh | Unauthenticated
//
// A Manager is an explicit, single-owner object created at application start
// and closed at teardown. Client and writer sessions use separate Managers
// and separately namespaced storage keys, so they may coexist.
//
// # Renewal
//
// At most one refresh timer is armed per Manager. Arming always stops the
// previous one, and each timer carries its generation and sequence number so
// a callback that was already running when its timer was stopped or replaced
// does nothing. Renewal is guarded so that a second attempt while one is in
// flight is dropped. A failed renewal ends the
// session and navigates to the login screen.
//
// Restore renews a stored token before returning only when it is expiring
// soon (Policy.ExpiringSoonWindow); a token that is merely inside the lead
// time is scheduled instead.
//
// # Calling protected APIs
//
// The Manager is an oauth2.TokenSource. Host applications that call protected
// endpoints wrap their transport with it instead of reading tokens directly:
//
//	hc := &http.Client{Transport: m.Transport(http.DefaultTransport)}
//
// Each request carries the live access token, and requests made after Logout
// fail with ErrNotAuthenticated.
//
// # Security
//
// Access tokens are decoded without signature verification only to learn
// their expiry. Nothing here makes an authorization decision from claims.
package session
