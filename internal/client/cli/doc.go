// Package cli provides the interactive bidmatch terminal client.
//
// It drives one session manager per actor (client and writer) from a small
// REPL: sign in and out, change a temporary password, inspect both sessions
// and force a token renewal. Stored sessions are restored on start, and
// navigation signals from the managers are printed as route paths.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
