package cli

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/bidmatch/internal/client/session"
	"github.com/dmitrijs2005/bidmatch/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

const minPasswordLength = 8

var (
	errPasswordTooShort  = fmt.Errorf("new password must be at least %d characters", minPasswordLength)
	errPasswordMismatch  = errors.New("passwords do not match")
	errPasswordUnchanged = errors.New("new password must differ from the current one")
)

// Login prompts for credentials and signs the selected actor in.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, _, err := a.current().Login(ctx, email, string(password))
	if err != nil {
		fmt.Fprintln(a.out, "Login failed:", displayError(err))
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", s.Email)
	if s.PasswordIsTemporary {
		fmt.Fprintln(a.out, "Your password is temporary. Run 'passwd' to choose a new one.")
	}
	return nil
}

// Logout ends the selected actor's session.
func (a *App) Logout(ctx context.Context) error {
	a.current().Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// ChangePassword prompts for the current and new password and submits them.
func (a *App) ChangePassword(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in")
		return session.ErrNotAuthenticated
	}

	current, err := getPassword(a.out, "Current password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)
	next, err := getPassword(a.out, "New password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(next)
	confirm, err := getPassword(a.out, "Repeat new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := validateNewPassword(string(current), string(next), string(confirm)); err != nil {
		fmt.Fprintln(a.out, "Password not changed:", err)
		return err
	}

	if err := a.current().ChangePassword(ctx, string(current), string(next)); err != nil {
		fmt.Fprintln(a.out, "Password not changed:", displayError(err))
		return err
	}
	fmt.Fprintln(a.out, "Password changed")
	return nil
}

// Refresh renews the access token now.
func (a *App) Refresh(ctx context.Context) error {
	m := a.current()
	if err := m.Renew(ctx); err != nil {
		fmt.Fprintln(a.out, "Refresh failed:", displayError(err))
		return err
	}
	if s, ok := m.Current(); ok {
		fmt.Fprintf(a.out, "Access token valid until %s\n", formatExpiry(s.AccessTokenExpiry))
	}
	return nil
}

func validateNewPassword(current, next, confirm string) error {
	switch {
	case utf8.RuneCountInString(next) < minPasswordLength:
		return errPasswordTooShort
	case next != confirm:
		return errPasswordMismatch
	case next == current:
		return errPasswordUnchanged
	}
	return nil
}

func displayError(err error) string {
	var authErr *session.AuthenticationError
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	if errors.Is(err, session.ErrNotAuthenticated) {
		return "not logged in"
	}
	return err.Error()
}
