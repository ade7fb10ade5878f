package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/studyshare/internal/client/client"
	"github.com/dmitrijs2005/studyshare/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for email, password and school and creates the account.
// An empty school leaves it to the server default.
//
// The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	school, err := getSimpleText(a.reader, "Enter school name (empty for default)", a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	pending, err := a.authService.Register(ctx, email, password, school)
	if err != nil {
		return a.report(ctx, "Register", err)
	}

	if pending {
		a.println("Check your inbox and confirm your email, then log in.")
	} else {
		a.println("Registered. You can log in now.")
	}
	return nil
}

// Login prompts for credentials, signs in and shows the school's files.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	lctx, cancel := a.withTimeout(ctx)
	err = a.authService.Login(lctx, email, password)
	cancel()
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			a.println("Login: wrong email or password")
			return err
		}
		return a.report(ctx, "Login", err)
	}

	a.email = email
	a.logger.Info(ctx, "logged in", "email", email)
	a.println("Logged in as", email)

	return a.Refresh(ctx)
}

// Logout forgets the session locally even when the server cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	err := a.authService.Logout(ctx)
	a.email = ""
	a.browser.ClearCategory()
	if err != nil {
		a.logger.Warn(ctx, "logout incomplete", "error", err)
	}
	a.println("Logged out")
	return err
}

func (a *App) WhoAmI(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	id, err := a.authService.WhoAmI(ctx)
	if err != nil {
		return a.report(ctx, "WhoAmI", err)
	}
	a.println(id.Email, "at", id.School)
	return nil
}
