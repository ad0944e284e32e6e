package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/bidmatch/internal/client/api"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// ---- tokens ----

func mintToken(t *testing.T, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "subject",
		"exp": exp.Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return s
}

// ---- clock ----

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now().Truncate(time.Second)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves time forward and runs the timers that became due.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

// Armed returns the timers that are neither stopped nor fired.
func (c *fakeClock) Armed() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// runStale invokes every stopped callback, as if it had already been
// dispatched when Stop was called.
func (c *fakeClock) runStale() {
	c.mu.Lock()
	var stale []*fakeTimer
	for _, t := range c.timers {
		if t.stopped && !t.fired {
			stale = append(stale, t)
		}
	}
	c.mu.Unlock()
	for _, t := range stale {
		t.f()
	}
}

// ---- backend ----

type fakeAPI struct {
	mu sync.Mutex

	loginResp *api.LoginResponse
	loginErr  error

	refreshTokens []string
	refreshErr    error
	refreshCalls  int
	refreshArgs   []string
	refreshGate   chan struct{}
	refreshEnter  chan struct{}

	changeErr   error
	changeCalls int
	changeToken string
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*api.LoginResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	resp := *f.loginResp
	return &resp, nil
}

func (f *fakeAPI) Refresh(ctx context.Context, refreshToken string) (string, error) {
	f.mu.Lock()
	f.refreshCalls++
	f.refreshArgs = append(f.refreshArgs, refreshToken)
	gate, enter := f.refreshGate, f.refreshEnter
	f.mu.Unlock()

	if enter != nil {
		enter <- struct{}{}
	}
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	if len(f.refreshTokens) == 0 {
		return "", errors.New("no refresh token scripted")
	}
	tok := f.refreshTokens[0]
	f.refreshTokens = f.refreshTokens[1:]
	return tok, nil
}

func (f *fakeAPI) ChangePassword(ctx context.Context, accessToken, oldPassword, newPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changeCalls++
	f.changeToken = accessToken
	return f.changeErr
}

func (f *fakeAPI) RefreshCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls
}

// ---- storage ----

type memStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	writes int
	err    error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (s *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.data[key], nil
}

func (s *memStore) Set(ctx context.Context, key string, value []byte) error {
	return s.SetMany(ctx, map[string][]byte{key: value})
}

func (s *memStore) SetMany(ctx context.Context, values map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for k, v := range values {
		s.data[k] = append([]byte(nil), v...)
		s.writes++
	}
	return nil
}

func (s *memStore) DeleteMany(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func (s *memStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

func (s *memStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *memStore) Value(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.data[key])
}

// ---- navigation & cookies ----

type navRecorder struct {
	mu    sync.Mutex
	dests []Destination
}

func (n *navRecorder) Navigate(actor Actor, dest Destination) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dests = append(n.dests, dest)
}

func (n *navRecorder) All() []Destination {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Destination(nil), n.dests...)
}

func (n *navRecorder) Count(d Destination) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, x := range n.dests {
		if x == d {
			c++
		}
	}
	return c
}

type cookieRecorder struct {
	mu     sync.Mutex
	value  string
	clears int
}

func (c *cookieRecorder) SetAccessToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = token
}

func (c *cookieRecorder) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = ""
	c.clears++
}

func (c *cookieRecorder) Value() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// ---- fixture ----

type fixture struct {
	api     *fakeAPI
	store   *memStore
	nav     *navRecorder
	cookies *cookieRecorder
	clock   *fakeClock
	m       *Manager
}

func newFixture(t *testing.T, actor Actor) *fixture {
	t.Helper()
	f := &fixture{
		api:     &fakeAPI{},
		store:   newMemStore(),
		nav:     &navRecorder{},
		cookies: &cookieRecorder{},
		clock:   newFakeClock(),
	}
	f.m = NewManager(actor, f.api, f.store,
		WithNavigator(f.nav),
		WithCookies(f.cookies),
		WithClock(f.clock),
	)
	t.Cleanup(f.m.Close)
	return f
}

// seed writes a stored session as a previous process would have left it.
func (f *fixture) seed(t *testing.T, actor Actor, access, refresh string, user userRecord) {
	t.Helper()
	k := keysFor(actor)
	require.NoError(t, f.store.SetMany(context.Background(), map[string][]byte{
		k.access:  []byte(access),
		k.refresh: []byte(refresh),
		k.user:    user.marshal(),
	}))
}
