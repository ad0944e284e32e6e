package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bidmatch/internal/client/session"
)

// WhoAmI prints the identity of the selected actor.
func (a *App) WhoAmI(ctx context.Context) error {
	s, ok := a.current().Current()
	if !ok {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	fmt.Fprintf(a.out, "%s %s (id %s)\n", a.actor, s.Email, s.SubjectID)
	if s.PasswordIsTemporary {
		fmt.Fprintln(a.out, "password: temporary")
	}
	return nil
}

// Status prints the session state of every actor.
func (a *App) Status(ctx context.Context) error {
	for _, actor := range []session.Actor{session.ActorClient, session.ActorWriter} {
		m := a.managers[actor]
		s, ok := m.Current()
		if !ok {
			fmt.Fprintf(a.out, "%-7s %s\n", actor, m.State())
			continue
		}
		fmt.Fprintf(a.out, "%-7s %s %s, token valid until %s\n", actor, m.State(), s.Email, formatExpiry(s.AccessTokenExpiry))
	}
	return nil
}

func formatExpiry(exp time.Time) string {
	if exp.IsZero() {
		return "unknown"
	}
	return fmt.Sprintf("%s (%s)", exp.Local().Format(time.DateTime), time.Until(exp).Round(time.Second))
}
