package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filevault/internal/client/client"
	"github.com/dmitrijs2005/filevault/internal/client/services"
)

// Prompt seams, swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	confirm       = Confirm
)

func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter your name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	s, err := a.sessions.Register(ctx, name, email, password)
	if err != nil {
		if errors.Is(err, services.ErrRegisteredNotLoggedIn) {
			fmt.Fprintln(a.out, "Account created. Please log in.")
		}
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s!\n", s.Name)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	s, err := a.sessions.Login(ctx, email, password)
	if err != nil {
		return err
	}
	a.files.Reset()
	fmt.Fprintf(a.out, "Signed in as %s\n", s.Email)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	err := a.sessions.Logout(ctx)
	a.files.Reset()
	if err != nil && !errors.Is(err, services.ErrRevokeFailed) {
		return err
	}
	fmt.Fprintln(a.out, "Signed out.")
	if err != nil {
		a.logger.Warn(ctx, "logout", "error", err)
	}
	return nil
}

func (a *App) WhoAmI(context.Context) error {
	s := a.sessions.Current()
	if s == nil {
		return client.ErrUnauthenticated
	}
	fmt.Fprintf(a.out, "%s <%s>, session valid until %s\n", s.Name, s.Email, s.ExpiresAt.Local().Format(dateTimeLayout))
	return nil
}
