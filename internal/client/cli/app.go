package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/bidmatch/internal/client/session"
	"github.com/dmitrijs2005/bidmatch/internal/logging"
)

// App is the interactive client. It holds one session manager per actor and
// operates on the selected one.
type App struct {
	managers map[session.Actor]*session.Manager
	actor    session.Actor
	reader   *bufio.Reader
	out      io.Writer
	log      logging.Logger
}

func NewApp(client, writer *session.Manager, in io.Reader, out io.Writer, log logging.Logger) *App {
	return &App{
		managers: map[session.Actor]*session.Manager{
			session.ActorClient: client,
			session.ActorWriter: writer,
		},
		actor:  session.ActorClient,
		reader: bufio.NewReader(in),
		out:    out,
		log:    log,
	}
}

// Run restores stored sessions and blocks in the REPL until the user exits
// or input ends.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to bidmatch (type 'help' for commands)")
	a.Restore(ctx)
	runREPL(ctx, a, a.getStatus, a.reader)
}

// Restore brings back the stored session of every actor.
func (a *App) Restore(ctx context.Context) {
	for _, actor := range []session.Actor{session.ActorClient, session.ActorWriter} {
		m := a.managers[actor]
		s, ok, err := m.Restore(ctx)
		if err != nil {
			a.log.Error(ctx, "restore session", "actor", string(actor), "error", err)
			continue
		}
		if !ok {
			continue
		}
		fmt.Fprintf(a.out, "[%s] welcome back, %s\n", actor, s.Email)
		if dest, allowed := m.Authorize(session.DestinationDashboard); !allowed {
			fmt.Fprintf(a.out, "[%s] -> %s\n", actor, dest.Path(actor))
		}
	}
}

func (a *App) current() *session.Manager {
	return a.managers[a.actor]
}

func (a *App) isLoggedIn() bool {
	_, ok := a.current().Current()
	return ok
}

func (a *App) getStatus() string {
	parts := []string{string(a.actor)}
	m := a.current()
	if s, ok := m.Current(); ok {
		parts = append(parts, s.Email)
	}
	parts = append(parts, m.State().String())
	return "(" + strings.Join(parts, " ") + ")"
}

// SwitchActor selects which account type the following commands act on.
func (a *App) SwitchActor(ctx context.Context, name string) error {
	actor := session.Actor(strings.ToLower(strings.TrimSpace(name)))
	m, ok := a.managers[actor]
	if !ok {
		fmt.Fprintf(a.out, "Unknown actor %q, use client or writer\n", name)
		return fmt.Errorf("unknown actor %q", name)
	}
	a.actor = actor
	dest, _ := m.Authorize(session.DestinationDashboard)
	fmt.Fprintf(a.out, "Acting as %s -> %s\n", actor, dest.Path(actor))
	return nil
}
