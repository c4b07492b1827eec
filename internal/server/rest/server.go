// Package rest exposes the blog over HTTP with echo.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dmitrijs2005/gopherblog/internal/common"
	"github.com/dmitrijs2005/gopherblog/internal/logging"
	"github.com/dmitrijs2005/gopherblog/internal/server/metrics"
	"github.com/dmitrijs2005/gopherblog/internal/server/models"
	"github.com/dmitrijs2005/gopherblog/internal/server/services"
	"github.com/dmitrijs2005/gopherblog/internal/server/session"
)

const shutdownTimeout = 10 * time.Second

type sessionManager interface {
	Authenticate(ctx context.Context, email, password string) (*session.TokenPair, error)
	ValidateAccess(r *http.Request) (string, error)
	RefreshAccess(r *http.Request) (*session.Token, error)
	SetSessionCookies(w http.ResponseWriter, pair *session.TokenPair)
	SetAccessCookies(w http.ResponseWriter, access *session.Token)
	Logout(w http.ResponseWriter)
}

type userService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
}

type authorService interface {
	List(ctx context.Context, userID string, q models.PostQuery) ([]models.Post, error)
	Get(ctx context.Context, userID, id string) (*models.Post, error)
	Create(ctx context.Context, userID string, post *models.Post) (*models.Post, error)
	Update(ctx context.Context, userID, id string, patch models.PostPatch) (*models.Post, error)
	Delete(ctx context.Context, userID, id string) error
	AttachImage(ctx context.Context, userID, id string) (*services.ImageUpload, error)
}

type postService interface {
	List(ctx context.Context, q models.PostQuery) ([]models.PostWithAuthor, error)
	Get(ctx context.Context, id string) (*models.PostWithAuthor, error)
}

// Pinger reports store health for /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the HTTP layer dispatches to.
type Deps struct {
	Sessions sessionManager
	Users    userService
	Authors  authorService
	Posts    postService
	Health   Pinger
	Metrics  *metrics.Metrics
}

type Server struct {
	address  string
	logger   logging.Logger
	sessions sessionManager
	users    userService
	authors  authorService
	posts    postService
	health   Pinger
	metrics  *metrics.Metrics
	echo     *echo.Echo
}

func NewServer(address string, l logging.Logger, d Deps) *Server {
	s := &Server{
		address:  address,
		logger:   l.With("module", "http_server"),
		sessions: d.Sessions,
		users:    d.Users,
		authors:  d.Authors,
		posts:    d.Posts,
		health:   d.Health,
		metrics:  d.Metrics,
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	s.echo = s.newEcho()
	return s
}

func (s *Server) newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = JSONSerializer{}
	e.Validator = NewValidator()
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: newRequestID}))
	e.Use(s.observe)
	e.Use(middleware.Recover())

	e.GET("/healthz", s.healthz)
	e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	api := e.Group(common.APIPrefix)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)
	authGroup.GET("/refresh", s.refresh)
	authGroup.GET("/logout", s.logout, s.requireUser)

	api.GET("/users/me", s.me, s.requireUser)

	author := api.Group("/author/posts", s.requireUser)
	author.GET("", s.listAuthorPosts)
	author.POST("", s.createPost)
	author.GET("/:id", s.getAuthorPost)
	author.PATCH("/:id", s.updatePost)
	author.DELETE("/:id", s.deletePost)
	author.POST("/:id/image", s.attachImage)

	api.GET("/posts", s.listPosts)
	api.GET("/posts/:id", s.getPost)

	return e
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return s.echo.Shutdown(shutdownCtx)
}

func (s *Server) healthz(c echo.Context) error {
	if s.health != nil {
		if err := s.health.Ping(c.Request().Context()); err != nil {
			s.logger.Error(c.Request().Context(), "health check failed", "error", err.Error())
			return echo.NewHTTPError(http.StatusServiceUnavailable, "store unavailable").SetInternal(err)
		}
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "ok"})
}
