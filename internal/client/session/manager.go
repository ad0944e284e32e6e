package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/bidmatch/internal/client/api"
	"github.com/dmitrijs2005/bidmatch/internal/logging"
	"github.com/dmitrijs2005/bidmatch/internal/tokenx"
)

// Manager is the single source of truth for one actor's session.
//
// All storage writes happen under mu so that a logout can never be
// overtaken by a late renewal persisting a token.
type Manager struct {
	actor   Actor
	keys    keys
	api     api.Client
	store   Store
	cookies CookieMirror
	nav     Navigator
	clock   Clock
	log     logging.Logger
	policy  Policy

	mu      sync.Mutex
	session *Session
	state   State
	gen     uint64
	timer   Timer
	// timerSeq identifies the armed timer within a generation.
	timerSeq uint64

	renewing atomic.Bool
}

type Option func(*Manager)

func WithCookies(c CookieMirror) Option {
	return func(m *Manager) { m.cookies = c }
}

func WithNavigator(n Navigator) Option {
	return func(m *Manager) { m.nav = n }
}

func WithClock(c Clock) Option {
	return func(m *Manager) { m.clock = c }
}

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.log = l }
}

func WithPolicy(p Policy) Option {
	return func(m *Manager) { m.policy = p }
}

func NewManager(actor Actor, client api.Client, store Store, opts ...Option) *Manager {
	m := &Manager{
		actor:   actor,
		keys:    keysFor(actor),
		api:     client,
		store:   store,
		cookies: noopCookies{},
		nav:     noopNavigator{},
		clock:   realClock{},
		log:     logging.Discard(),
		policy:  DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.policy.normalize()
	m.log = m.log.With("actor", string(actor))
	return m
}

func (m *Manager) Actor() Actor {
	return m.actor
}

// Current returns a copy of the live session.
func (m *Manager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return Session{}, false
	}
	return *m.session, true
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Login authenticates against the backend, persists the session and arms the
// refresh timer. The returned Destination is also sent to the Navigator.
// A rejected login leaves the Manager and storage untouched.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, Destination, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", &AuthenticationError{Message: ErrEmptyCredentials.Error(), Err: ErrEmptyCredentials}
	}

	m.mu.Lock()
	prev := m.state
	m.state = StateAuthenticating
	m.mu.Unlock()

	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.restoreState(prev)
		m.log.Info(ctx, "login rejected", "error", err)
		return nil, "", newAuthenticationError(err, "login failed")
	}

	exp, err := tokenx.Expiry(resp.AccessToken)
	if err != nil {
		m.log.Warn(ctx, "access token expiry unknown", "error", err)
	}

	s := &Session{
		Email:               email,
		SubjectID:           resp.SubjectID(),
		UserID:              resp.UserID,
		AccessToken:         resp.AccessToken,
		RefreshToken:        resp.RefreshToken,
		AccessTokenExpiry:   exp,
		PasswordIsTemporary: resp.IsPasswordTemporary,
	}

	m.mu.Lock()
	err = m.store.SetMany(ctx, map[string][]byte{
		m.keys.access:  []byte(s.AccessToken),
		m.keys.refresh: []byte(s.RefreshToken),
		m.keys.user:    newUserRecord(m.actor, s).marshal(),
	})
	if err != nil {
		m.state = prev
		m.mu.Unlock()
		return nil, "", fmt.Errorf("persist session: %w", err)
	}
	m.cookies.SetAccessToken(s.AccessToken)
	m.gen++
	m.session = s
	m.state = StateFresh
	m.armLocked(ctx, m.gen, exp, true)
	out := *s
	m.mu.Unlock()

	dest := DestinationDashboard
	if s.PasswordIsTemporary {
		dest = DestinationChangePassword
	}
	m.log.Info(ctx, "logged in", "subject_id", s.SubjectID, "expires_at", exp, "password_temporary", s.PasswordIsTemporary)
	m.nav.Navigate(m.actor, dest)
	return &out, dest, nil
}

// Logout ends the session locally: it stops the timer, erases the actor's
// keys and cookie and navigates to the login screen. It needs no network and
// never fails; storage errors are logged.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.clearLocked(ctx)
	m.mu.Unlock()

	m.log.Info(ctx, "logged out")
	m.nav.Navigate(m.actor, DestinationLogin)
}

// ChangePassword changes the password and clears the temporary-password
// flag. The new password is expected to be validated by the caller.
func (m *Manager) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	m.mu.Lock()
	if m.session == nil {
		m.mu.Unlock()
		return ErrNotAuthenticated
	}
	access := m.session.AccessToken
	gen := m.gen
	m.mu.Unlock()

	if err := m.api.ChangePassword(ctx, access, oldPassword, newPassword); err != nil {
		m.log.Info(ctx, "password change rejected", "error", err)
		return newAuthenticationError(err, "password change failed")
	}

	m.mu.Lock()
	if gen != m.gen || m.session == nil {
		m.mu.Unlock()
		return ErrNotAuthenticated
	}
	m.session.PasswordIsTemporary = false
	if err := m.store.Set(ctx, m.keys.user, newUserRecord(m.actor, m.session).marshal()); err != nil {
		m.log.Error(ctx, "failed to persist user record", "error", err)
	}
	m.mu.Unlock()

	m.log.Info(ctx, "password changed")
	m.nav.Navigate(m.actor, DestinationDashboard)
	return nil
}

// Restore rebuilds the session from storage at process start. A token that
// is expired, expiring soon or undecodable is renewed before Restore returns,
// so callers may fetch protected data right after it. If that renewal fails
// the session is ended and ok is false.
func (m *Manager) Restore(ctx context.Context) (s Session, ok bool, err error) {
	access, err := m.store.Get(ctx, m.keys.access)
	if err != nil {
		return Session{}, false, fmt.Errorf("load access token: %w", err)
	}
	refresh, err := m.store.Get(ctx, m.keys.refresh)
	if err != nil {
		return Session{}, false, fmt.Errorf("load refresh token: %w", err)
	}
	rawUser, err := m.store.Get(ctx, m.keys.user)
	if err != nil {
		return Session{}, false, fmt.Errorf("load user: %w", err)
	}

	if len(access) == 0 || len(refresh) == 0 {
		if len(access) > 0 || len(refresh) > 0 || len(rawUser) > 0 {
			m.log.Warn(ctx, "discarding incomplete stored session")
			m.mu.Lock()
			m.clearLocked(ctx)
			m.mu.Unlock()
		}
		return Session{}, false, nil
	}

	var u userRecord
	if len(rawUser) > 0 {
		if err := json.Unmarshal(rawUser, &u); err != nil {
			m.log.Warn(ctx, "stored user record is unreadable", "error", err)
		}
	}

	exp, err := tokenx.Expiry(string(access))
	if err != nil {
		m.log.Warn(ctx, "stored access token expiry unknown", "error", err)
	}

	restored := &Session{
		Email:               u.Email,
		SubjectID:           u.subjectID(),
		UserID:              u.UserID,
		AccessToken:         string(access),
		RefreshToken:        string(refresh),
		AccessTokenExpiry:   exp,
		PasswordIsTemporary: u.PasswordIsTemporary,
	}

	m.mu.Lock()
	m.stopTimerLocked()
	m.gen++
	m.session = restored
	m.state = StateFresh
	m.cookies.SetAccessToken(restored.AccessToken)
	now := m.clock.Now()
	if !m.policy.ExpiringSoon(now, exp) {
		m.armLocked(ctx, m.gen, exp, false)
		out := *restored
		m.mu.Unlock()
		m.log.Info(ctx, "session restored", "expires_at", exp, "plan", m.policy.Plan(now, exp).Action.String())
		return out, true, nil
	}
	m.mu.Unlock()

	m.log.Info(ctx, "stored access token is stale, renewing", "expires_at", exp)
	if err := m.Renew(ctx); err != nil {
		return Session{}, false, nil
	}
	s, ok = m.Current()
	return s, ok, nil
}

// Renew exchanges the refresh token for a new access token and re-arms the
// timer. A call made while another renewal is in flight returns nil without
// contacting the backend. On failure the session is ended, the Navigator is
// sent to login once, and a *TokenRefreshError is returned.
func (m *Manager) Renew(ctx context.Context) error {
	if !m.renewing.CompareAndSwap(false, true) {
		m.log.Debug(ctx, "renewal already in flight")
		return nil
	}
	defer m.renewing.Store(false)

	m.mu.Lock()
	if m.session == nil {
		m.mu.Unlock()
		return ErrNotAuthenticated
	}
	gen := m.gen
	refresh := m.session.RefreshToken
	m.state = StateRefreshing
	m.mu.Unlock()

	access, err := m.api.Refresh(ctx, refresh)
	if err != nil {
		m.log.Warn(ctx, "token renewal failed, ending session", "error", err)
		m.endSession(ctx, gen)
		return &TokenRefreshError{Err: err}
	}

	exp, derr := tokenx.Expiry(access)
	if derr != nil {
		m.log.Warn(ctx, "renewed access token expiry unknown", "error", derr)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen || m.session == nil {
		// Logged out or logged in again while the request was in flight.
		return nil
	}
	if err := m.store.Set(ctx, m.keys.access, []byte(access)); err != nil {
		m.log.Error(ctx, "failed to persist renewed access token", "error", err)
	}
	m.cookies.SetAccessToken(access)
	m.session.AccessToken = access
	m.session.AccessTokenExpiry = exp
	m.state = StateFresh
	m.armLocked(ctx, gen, exp, false)
	m.log.Info(ctx, "access token renewed", "expires_at", exp)
	return nil
}

// Close stops the refresh timer without touching the session. Call it when
// the application shuts down.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopTimerLocked()
	m.gen++
}

func (m *Manager) restoreState(prev State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateAuthenticating {
		m.state = prev
	}
}

// endSession ends the session started in generation gen, if it is still the
// live one, and redirects to login.
func (m *Manager) endSession(ctx context.Context, gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.session == nil {
		m.mu.Unlock()
		return
	}
	m.clearLocked(ctx)
	m.mu.Unlock()

	m.nav.Navigate(m.actor, DestinationLogin)
}

func (m *Manager) clearLocked(ctx context.Context) {
	m.stopTimerLocked()
	m.gen++
	m.session = nil
	m.state = StateUnauthenticated
	if err := m.store.DeleteMany(ctx, m.keys.all()...); err != nil {
		m.log.Error(ctx, "failed to erase stored session", "error", err)
	}
	m.cookies.Clear()
}

func (m *Manager) stopTimerLocked() {
	m.timerSeq++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// armLocked replaces the refresh timer according to the policy. When the
// plan is Immediate, a token with time left is renewed halfway through its
// remaining life so short-lived tokens cannot make the chain spin; an unknown
// or past expiry renews right away only if allowNow is set.
func (m *Manager) armLocked(ctx context.Context, gen uint64, exp time.Time, allowNow bool) {
	m.stopTimerLocked()

	now := m.clock.Now()
	plan := m.policy.Plan(now, exp)
	delay := plan.Delay

	switch plan.Action {
	case ActionLazy:
		m.log.Debug(ctx, "token outlives the timer limit, renewal deferred to next start", "expires_at", exp)
		return
	case ActionImmediate:
		remaining := exp.Sub(now)
		switch {
		case !exp.IsZero() && remaining > 0:
			delay = remaining / 2
		case allowNow:
			delay = 0
		default:
			m.log.Warn(ctx, "access token has no usable expiry, renewal deferred to next start")
			return
		}
	}

	seq := m.timerSeq
	m.log.Debug(ctx, "refresh timer armed", "in", delay)
	m.timer = m.clock.AfterFunc(delay, func() { m.fire(gen, seq) })
}

// fire runs the renewal for the timer armed as (gen, seq). A callback whose
// timer has since been stopped or replaced does nothing.
func (m *Manager) fire(gen, seq uint64) {
	m.mu.Lock()
	if gen != m.gen || seq != m.timerSeq {
		m.mu.Unlock()
		return
	}
	m.timer = nil
	timeout := m.policy.RenewTimeout
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_ = m.Renew(ctx)
}
