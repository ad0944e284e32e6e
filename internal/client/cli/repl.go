package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. App satisfies it.
type execIface interface {
	isLoggedIn() bool
	SwitchActor(ctx context.Context, name string) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Status(ctx context.Context) error
	Refresh(ctx context.Context) error
}

// runREPL reads commands from r and dispatches them to a until EOF, "exit"
// or "quit".
//
//	help                    show available commands
//	actor client|writer     select the account type
//	login                   sign in
//	logout                  sign out
//	passwd                  change password
//	whoami                  show the signed-in identity
//	status                  show both sessions
//	refresh                 renew the access token now
//	exit | quit             leave the program
//
// Handlers report their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("bm %s > ", statusFn()))
		line, err := r.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, status, refresh, passwd, logout, actor <client|writer>, exit")
			} else {
				printlnFn("Available commands: login, status, actor <client|writer>, exit")
			}

		case "actor":
			if len(args) != 1 {
				printlnFn("Usage: actor client|writer")
				continue
			}
			_ = a.SwitchActor(ctx, args[0])

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "passwd":
			_ = a.ChangePassword(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "status":
			_ = a.Status(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
