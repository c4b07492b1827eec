package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/gopherblog/internal/server/services"
)

// Auth event names for metrics.
const (
	eventRegister = "register"
	eventLogin    = "login"
	eventRefresh  = "refresh"
	eventLogout   = "logout"
)

func (s *Server) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	req.confirmation()
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := s.users.Register(ctx, services.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		Photo:           req.Photo,
	})
	s.metrics.AuthEvent(eventRegister, err == nil)
	if err != nil {
		return sessionError(err, false)
	}

	s.logger.Info(ctx, "Registered", "user_id", user.ID)
	return c.JSON(http.StatusCreated, userEnvelope{Status: "success", User: newUserResponse(user)})
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	pair, err := s.sessions.Authenticate(c.Request().Context(), req.Email, req.Password)
	s.metrics.AuthEvent(eventLogin, err == nil)
	if err != nil {
		return sessionError(err, false)
	}

	s.sessions.SetSessionCookies(c.Response(), pair)
	return c.JSON(http.StatusOK, loginResponse{Status: "success", AccessToken: pair.Access.Value})
}

func (s *Server) refresh(c echo.Context) error {
	access, err := s.sessions.RefreshAccess(c.Request())
	s.metrics.AuthEvent(eventRefresh, err == nil)
	if err != nil {
		return sessionError(err, true)
	}

	s.sessions.SetAccessCookies(c.Response(), access)
	return c.JSON(http.StatusOK, refreshResponse{Message: "success", AccessToken: access.Value})
}

func (s *Server) logout(c echo.Context) error {
	s.sessions.Logout(c.Response())
	s.metrics.AuthEvent(eventLogout, true)
	return c.JSON(http.StatusOK, statusResponse{Status: "success"})
}

func (s *Server) me(c echo.Context) error {
	user, err := s.users.Get(c.Request().Context(), currentUserID(c))
	if err != nil {
		return sessionError(err, false)
	}
	return c.JSON(http.StatusOK, userEnvelope{Status: "success", User: newUserResponse(user)})
}
