// Package cookies mirrors the access token into a cookie jar shared with the
// backend HTTP client, so server-side request handling can observe the
// authentication state the same way it would see a browser cookie.
package cookies

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"golang.org/x/net/publicsuffix"
)

// DefaultMaxAge is how long a mirrored cookie lives without renewal.
const DefaultMaxAge = 7 * 24 * time.Hour

// NewJar returns an in-memory jar using the public suffix list.
func NewJar() (http.CookieJar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}

// JarMirror writes one named cookie for a single backend URL.
type JarMirror struct {
	jar    http.CookieJar
	url    *url.URL
	name   string
	maxAge time.Duration
}

func NewJarMirror(jar http.CookieJar, baseURL, name string, maxAge time.Duration) (*JarMirror, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse cookie url: %w", err)
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &JarMirror{jar: jar, url: u, name: name, maxAge: maxAge}, nil
}

// SetAccessToken stores token in the cookie with the configured max age.
func (m *JarMirror) SetAccessToken(token string) {
	m.jar.SetCookies(m.url, []*http.Cookie{m.cookie(token, int(m.maxAge/time.Second))})
}

// Clear expires the cookie immediately (Max-Age < 0).
func (m *JarMirror) Clear() {
	m.jar.SetCookies(m.url, []*http.Cookie{m.cookie("", -1)})
}

// AccessToken returns the mirrored value, or "" when absent.
func (m *JarMirror) AccessToken() string {
	for _, c := range m.jar.Cookies(m.url) {
		if c.Name == m.name {
			return c.Value
		}
	}
	return ""
}

func (m *JarMirror) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   m.url.Scheme == "https",
		SameSite: http.SameSiteLaxMode,
	}
}
