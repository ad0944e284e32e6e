package session

import (
	"math"
	"time"

	"github.com/dmitrijs2005/bidmatch/internal/tokenx"
)

const (
	// DefaultRefreshLeadTime is how long before expiry the timer fires.
	DefaultRefreshLeadTime = 10 * time.Minute

	// DefaultExpiringSoonWindow is how close to expiry a stored token must be
	// for Restore to renew it before returning.
	DefaultExpiringSoonWindow = 5 * time.Minute

	// MaxTimerDelay caps a single scheduled renewal (2^31-1 ms, about 24.8
	// days). Tokens living longer are checked again on the next start.
	MaxTimerDelay = time.Duration(math.MaxInt32) * time.Millisecond

	// DefaultRenewTimeout bounds a renewal started by the timer.
	DefaultRenewTimeout = 30 * time.Second
)

// Policy holds the tunable renewal thresholds.
type Policy struct {
	LeadTime           time.Duration
	ExpiringSoonWindow time.Duration
	MaxDelay           time.Duration
	RenewTimeout       time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		LeadTime:           DefaultRefreshLeadTime,
		ExpiringSoonWindow: DefaultExpiringSoonWindow,
		MaxDelay:           MaxTimerDelay,
		RenewTimeout:       DefaultRenewTimeout,
	}
}

func (p *Policy) normalize() {
	if p.LeadTime <= 0 {
		p.LeadTime = DefaultRefreshLeadTime
	}
	if p.ExpiringSoonWindow <= 0 {
		p.ExpiringSoonWindow = DefaultExpiringSoonWindow
	}
	if p.ExpiringSoonWindow > p.LeadTime {
		p.ExpiringSoonWindow = p.LeadTime
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = MaxTimerDelay
	}
	if p.RenewTimeout <= 0 {
		p.RenewTimeout = DefaultRenewTimeout
	}
}

type Action int

const (
	// ActionImmediate: renew now, the token is unknown, expired or expiring soon.
	ActionImmediate Action = iota
	// ActionScheduled: arm the timer for Delay.
	ActionScheduled
	// ActionLazy: too far out for a timer; re-check on the next start.
	ActionLazy
)

func (a Action) String() string {
	switch a {
	case ActionScheduled:
		return "scheduled"
	case ActionLazy:
		return "lazy"
	default:
		return "immediate"
	}
}

type Plan struct {
	Action Action
	Delay  time.Duration
}

// Plan decides what to do with a token expiring at exp. A token with exactly
// LeadTime left is Scheduled with zero delay; anything less is Immediate.
func (p Policy) Plan(now, exp time.Time) Plan {
	if exp.IsZero() {
		return Plan{Action: ActionImmediate}
	}
	remaining := exp.Sub(now)
	if remaining < p.LeadTime {
		return Plan{Action: ActionImmediate}
	}
	delay := remaining - p.LeadTime
	if delay > p.MaxDelay {
		return Plan{Action: ActionLazy}
	}
	return Plan{Action: ActionScheduled, Delay: delay}
}

// ExpiringSoon reports whether a token expiring at exp is too close to expiry
// to be trusted without renewal. An unknown expiry counts as expiring soon.
func (p Policy) ExpiringSoon(now, exp time.Time) bool {
	return tokenx.IsExpiringSoon(exp, now, p.ExpiringSoonWindow)
}
