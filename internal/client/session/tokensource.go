package session

import (
	"net/http"

	"golang.org/x/oauth2"
)

var _ oauth2.TokenSource = (*Manager)(nil)

// Token implements oauth2.TokenSource over the live session. It never
// renews by itself; the refresh timer keeps the token fresh.
func (m *Manager) Token() (*oauth2.Token, error) {
	s, ok := m.Current()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	return &oauth2.Token{
		AccessToken: s.AccessToken,
		TokenType:   "Bearer",
		Expiry:      s.AccessTokenExpiry,
	}, nil
}

// Transport returns a RoundTripper that adds the current access token to
// every request. The token is looked up per request, so requests made after
// Logout fail with ErrNotAuthenticated instead of reusing a stale token.
func (m *Manager) Transport(base http.RoundTripper) http.RoundTripper {
	return &oauth2.Transport{Source: m, Base: base}
}
