package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gopherblog/internal/client/client"
	"github.com/dmitrijs2005/gopherblog/internal/common"
)

// Register prompts for name, email and the password twice. Password
// buffers are wiped before returning.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword(a.out, "Confirm password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	user, err := a.api.Register(ctx, client.Registration{
		Name:            name,
		Email:           email,
		Password:        string(password),
		PasswordConfirm: string(confirm),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s, you can login now\n", user.Email)
	return nil
}

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

	if err := a.api.Login(ctx, email, string(password)); err != nil {
		return err
	}

	user, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	a.email = user.Email

	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Me(ctx context.Context) error {
	var user *client.User
	err := a.authorized(ctx, func() (err error) {
		user, err = a.api.Me(ctx)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s <%s>, role %s, joined %s\n", user.Name, user.Email, user.Role, user.CreatedAt.Format("2006-01-02"))
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	if err := a.api.Refresh(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Access token refreshed")
	return nil
}

// Logout forgets the local session even if the server call fails.
func (a *App) Logout(ctx context.Context) error {
	err := a.api.Logout(ctx)
	a.email = ""
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
