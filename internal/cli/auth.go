package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/breathepure/internal/auth"
	"github.com/dmitrijs2005/breathepure/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// readSecret reads a password, hidden when stdin is a terminal.
func (a *App) readSecret(prompt string) (string, error) {
	if !a.hidden {
		return getSimpleText(a.reader, prompt, a.out)
	}
	pw, err := getPassword(prompt, a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// SignUp prompts for the sign-up form and creates the account.
func (a *App) SignUp(ctx context.Context) error {
	var req auth.SignUpRequest
	var err error

	if req.UserName, err = getSimpleText(a.reader, "Enter user name", a.out); err != nil {
		return err
	}
	if req.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}
	if req.DeviceName, err = getSimpleText(a.reader, "Enter device name", a.out); err != nil {
		return err
	}
	if req.Password, err = a.readSecret("Enter password"); err != nil {
		return err
	}
	if req.ConfirmPassword, err = a.readSecret("Confirm password"); err != nil {
		return err
	}

	if err := a.auth.SignUp(ctx, req); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Account created successfully!")
	return nil
}

// Login prompts for credentials. Logging in while already logged in
// switches the identity; the previous session is ended first.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := a.readSecret("Enter password")
	if err != nil {
		return err
	}

	id, err := a.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if a.identity != nil && a.identity.Email != id.Email {
		if err := a.auth.Logout(ctx, a.identity); err != nil {
			a.log.Warn(ctx, "ending previous session failed", "email", a.identity.Email, "error", err)
		}
	}
	a.identity = id

	if id.IsAdmin() {
		fmt.Fprintln(a.out, "Admin logged in!")
	} else {
		fmt.Fprintf(a.out, "Welcome, %s!\n", id.UserName)
	}
	return nil
}

// Logout ends the current session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if err := a.auth.Logout(ctx, a.identity); err != nil {
		return err
	}
	a.identity = nil
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// WhoAmI prints the current identity.
func (a *App) WhoAmI(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	id := a.identity
	fmt.Fprintf(a.out, "email:  %s\nrole:   %s\n", id.Email, id.Role)
	if id.UserName != "" {
		fmt.Fprintf(a.out, "name:   %s\n", id.UserName)
	}
	if id.DeviceName != "" {
		fmt.Fprintf(a.out, "device: %s\n", id.DeviceName)
	}
	return nil
}
