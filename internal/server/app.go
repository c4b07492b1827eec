// Package server wires configuration, storage, the session manager and the
// HTTP transport together and runs them until the process is signalled.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gopherblog/internal/logging"
	"github.com/dmitrijs2005/gopherblog/internal/server/auth"
	"github.com/dmitrijs2005/gopherblog/internal/server/config"
	"github.com/dmitrijs2005/gopherblog/internal/server/media"
	"github.com/dmitrijs2005/gopherblog/internal/server/metrics"
	"github.com/dmitrijs2005/gopherblog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gopherblog/internal/server/rest"
	"github.com/dmitrijs2005/gopherblog/internal/server/services"
	"github.com/dmitrijs2005/gopherblog/internal/server/session"
)

const ephemeralKeyBits = 2048

// openRepositories is swapped in tests.
var openRepositories = repomanager.New

type App struct {
	config *config.Config
	logger logging.Logger
	repos  repomanager.RepositoryManager
	http   *rest.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	keys, err := loadKeys(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	repos, err := openRepositories(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	hasher := auth.NewBcryptHasher(0)
	sessions := session.NewManager(session.Config{
		Keys:                  keys,
		AccessTokenExpiresIn:  c.AccessTokenExpiresIn,
		RefreshTokenExpiresIn: c.RefreshTokenExpiresIn,
		CookieSecure:          c.CookieSecure,
	}, repos.Users(), hasher)

	srv := rest.NewServer(c.EndpointAddrHTTP, logger, rest.Deps{
		Sessions: sessions,
		Users:    services.NewUserService(repos.Users(), hasher),
		Authors:  services.NewAuthorService(repos.Posts(), media.NewPresigner(c)),
		Posts:    services.NewPostService(repos.Posts()),
		Health:   repos,
		Metrics:  metrics.New(),
	})

	return &App{config: c, logger: logger, repos: repos, http: srv}, nil
}

// loadKeys decodes the configured key pair, or generates a throwaway one
// when none is configured. Tokens signed with a throwaway key do not
// survive a restart.
func loadKeys(ctx context.Context, c *config.Config, l logging.Logger) (*auth.Keys, error) {
	if c.JWTPrivateKey == "" {
		l.Warn(ctx, "no JWT key pair configured, generating an ephemeral one")
		keys, err := auth.GenerateKeys(ephemeralKeyBits)
		if err != nil {
			return nil, fmt.Errorf("generate keys: %w", err)
		}
		return keys, nil
	}

	keys, err := auth.ParseKeys(c.JWTPrivateKey, c.JWTPublicKey)
	if err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}
	return keys, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives or ctx is cancelled, then stops the
// HTTP server and closes the store.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repos.Close(context.Background()); err != nil {
		app.logger.Error(ctx, "close storage", "error", err.Error())
	}

	app.logger.Info(ctx, "App stopped")
}
