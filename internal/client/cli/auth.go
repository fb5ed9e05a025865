package cli

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/dmitrijs2005/pairchat/internal/client/client"
	"github.com/dmitrijs2005/pairchat/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Signup prompts for a name, e-mail and password and creates an account.
// The password byte slice is wiped before returning.
func (a *App) Signup(ctx context.Context) error {
	fullName, err := getSimpleText(a.reader, "Enter full name", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.authService.Signup(ctx, fullName, email, password)
	if err != nil {
		reportError("Signup unsuccessful", err)
		return err
	}

	a.setUser(u)
	a.printf("Welcome, %s!\n", u.FullName)
	return nil
}

// Login prompts for credentials and opens a session.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.authService.Login(ctx, email, password)
	if err != nil {
		reportError("Login unsuccessful", err)
		return err
	}

	a.setUser(u)
	a.printf("Logged in as %s\n", u.FullName)
	return nil
}

// Logout stops the listener, revokes the session and wipes the local cache.
func (a *App) Logout(ctx context.Context) error {
	a.stopListening()

	err := a.authService.Logout(ctx)
	a.setUser(nil)
	if err != nil {
		reportError("Logout", err)
		return err
	}
	a.printf("Logged out\n")
	return nil
}

// reportError logs err with a hint for the common cases.
func reportError(action string, err error) {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		log.Printf("%s: server unavailable", action)
	case errors.Is(err, client.ErrUnauthorized):
		log.Printf("%s: not authorized, please log in again", action)
	default:
		log.Printf("%s: %v", action, err)
	}
}
