// Package cli implements the interactive GopherBlog client.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gopherblog/internal/client/client"
	"github.com/dmitrijs2005/gopherblog/internal/client/config"
)

// getSimpleText, getPassword and getMultiline are swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
)

type apiClient interface {
	Register(ctx context.Context, reg client.Registration) (*client.User, error)
	Login(ctx context.Context, email, password string) error
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*client.User, error)
	Posts(ctx context.Context, limit, page int, search string) ([]client.PublicPost, error)
	MyPosts(ctx context.Context, limit, page int, search string) ([]client.Post, error)
	CreatePost(ctx context.Context, p client.NewPost) (*client.Post, error)
	DeletePost(ctx context.Context, id string) error
	AttachImage(ctx context.Context, id string) (*client.ImageUpload, error)
	UploadObject(ctx context.Context, url string, data []byte) error
	Ping(ctx context.Context) error
}

type App struct {
	config *config.Config
	api    apiClient
	reader *bufio.Reader
	out    io.Writer
	email  string
}

func NewApp(c *config.Config) (*App, error) {
	api, err := client.NewAPIClient(c.ServerURL, c.RequestTimeout)
	if err != nil {
		return nil, err
	}
	return &App{config: c, api: api, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

func (a *App) isLoggedIn() bool {
	return a.email != ""
}

func (a *App) status() string {
	if a.email == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.email)
}

// authorized runs fn and, if the access token has expired, refreshes it
// once and retries.
func (a *App) authorized(ctx context.Context, fn func() error) error {
	err := fn()
	if !errors.Is(err, client.ErrUnauthorized) {
		return err
	}
	if rerr := a.api.Refresh(ctx); rerr != nil {
		a.email = ""
		return err
	}
	return fn()
}

// Run greets the user, checks the server and starts the REPL.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to GopherBlog CLI (type 'help' for commands)")
	if err := a.api.Ping(ctx); err != nil {
		fmt.Fprintf(a.out, "Warning: %s at %s\n", describe(err), a.config.ServerURL)
	}
	runREPL(ctx, a, a.status, a.reader)
}

// describe turns client errors into a line for the user.
func describe(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Detail
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable"
	default:
		return err.Error()
	}
}
