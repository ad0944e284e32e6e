// Package apitest runs an in-process auth backend for tests. It issues real
// HS256 access tokens, keeps refresh tokens in memory and serves the same
// JSON endpoints as the production backend, optionally under a path prefix.
package apitest

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/bidmatch/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access token claims: the registered ones plus the subject's
// user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

type account struct {
	password  []byte
	subjectID string
	userID    string
	temporary bool
}

type refreshToken struct {
	email   string
	expires time.Time
}

// Server is a fake auth backend.
type Server struct {
	*httptest.Server

	secret []byte

	mu         sync.Mutex
	accounts   map[string]*account
	refresh    map[string]refreshToken
	accessTTL  time.Duration
	refreshTTL time.Duration
	refreshes  int
	cookies    []string
}

// NewServer starts the backend. Client endpoints live at the root and writer
// endpoints under /writers; the two differ only in the id field of the login
// response.
func NewServer() *Server {
	s := &Server{
		secret:     []byte(randHex(32)),
		accounts:   map[string]*account{},
		refresh:    map[string]refreshToken{},
		accessTTL:  time.Hour,
		refreshTTL: 7 * 24 * time.Hour,
	}

	root := http.NewServeMux()
	root.Handle("/", s.routes("client_id"))
	root.Handle("/writers/", http.StripPrefix("/writers", s.routes("writer_id")))

	s.Server = httptest.NewServer(root)
	return s
}

func (s *Server) routes(subjectKey string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) { s.login(w, r, subjectKey) })
	mux.HandleFunc("POST /auth/refresh", s.refreshAccess)
	mux.HandleFunc("POST /auth/change-password", s.changePassword)
	return mux
}

// AddAccount registers a user.
func (s *Server) AddAccount(email, password, subjectID, userID string, temporary bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[email] = &account{password: []byte(password), subjectID: subjectID, userID: userID, temporary: temporary}
}

// SetAccessTTL changes the lifetime of access tokens issued from now on.
func (s *Server) SetAccessTTL(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessTTL = d
}

// RevokeRefreshTokens invalidates every refresh token issued so far.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = map[string]refreshToken{}
}

// Refreshes reports how many refresh requests were served.
func (s *Server) Refreshes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes
}

// Cookies returns the access_token cookie values seen on change-password.
func (s *Server) Cookies() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.cookies...)
}

// UserID validates an access token the way a protected endpoint would.
func (s *Server) UserID(accessToken string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(accessToken, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}
	if !token.Valid {
		return "", common.ErrInvalidToken
	}
	return claims.UserID, nil
}

func (s *Server) issueAccessToken(userID string) (string, error) {
	s.mu.Lock()
	ttl := s.accessTTL
	s.mu.Unlock()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        randHex(8),
		},
		UserID: userID,
	})
	return token.SignedString(s.secret)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request, subjectKey string) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[req.Email]
	s.mu.Unlock()
	if !ok || subtle.ConstantTimeCompare(acc.password, []byte(req.Password)) != 1 {
		writeError(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	access, err := s.issueAccessToken(acc.userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, common.ErrorInternal.Error())
		return
	}
	refresh := randHex(32)

	s.mu.Lock()
	s.refresh[refresh] = refreshToken{email: req.Email, expires: time.Now().Add(s.refreshTTL)}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":          access,
		"refresh_token":         refresh,
		subjectKey:              acc.subjectID,
		"user_id":               acc.userID,
		"is_password_temporary": acc.temporary,
	})
}

func (s *Server) refreshAccess(w http.ResponseWriter, r *http.Request) {
	raw := bearer(r)

	s.mu.Lock()
	s.refreshes++
	rt, ok := s.refresh[raw]
	var acc *account
	if ok {
		acc = s.accounts[rt.email]
	}
	s.mu.Unlock()

	if !ok || acc == nil || rt.expires.Before(time.Now()) {
		writeError(w, http.StatusUnauthorized, "refresh token expired")
		return
	}

	access, err := s.issueAccessToken(acc.userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, common.ErrorInternal.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": access})
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := s.UserID(bearer(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, err := r.Cookie(common.AccessTokenCookieName); err == nil {
		s.cookies = append(s.cookies, c.Value)
	}
	for _, acc := range s.accounts {
		if acc.userID != userID {
			continue
		}
		if subtle.ConstantTimeCompare(acc.password, []byte(req.OldPassword)) != 1 {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"detail": []map[string]string{{"msg": "Old password is incorrect"}},
			})
			return
		}
		acc.password = []byte(req.NewPassword)
		acc.temporary = false
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeError(w, http.StatusUnauthorized, common.ErrorUnauthorized.Error())
}

func bearer(r *http.Request) string {
	h := r.Header.Get(common.AuthorizationHeaderName)
	token, ok := strings.CutPrefix(h, common.BearerScheme+" ")
	if !ok {
		return ""
	}
	return token
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func randHex(size int) string {
	b := make([]byte, size)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
