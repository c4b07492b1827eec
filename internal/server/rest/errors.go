package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/gopherblog/internal/common"
	"github.com/dmitrijs2005/gopherblog/internal/server/session"
)

const internalErrorMessage = "internal error"

// sessionStatus maps a refusal to a status code. Token problems on the
// refresh route are the client's fault (400); on protected routes they
// mean the caller is unauthenticated (401).
func sessionStatus(kind session.Kind, refresh bool) int {
	switch kind {
	case session.KindMissingToken, session.KindTokenExpiredOrInvalid:
		if refresh {
			return http.StatusBadRequest
		}
		return http.StatusUnauthorized
	case session.KindInvalidCredentials, session.KindPasswordMismatch:
		return http.StatusBadRequest
	case session.KindUserNotFound, session.KindNotVerified, session.KindInvalidRefreshState:
		return http.StatusUnauthorized
	case session.KindDuplicateEmail:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// sessionError converts a session refusal into an HTTP error. Anything
// else becomes a 500 that keeps the cause for logging only.
func sessionError(err error, refresh bool) error {
	kind, ok := session.KindOf(err)
	if !ok {
		return internalError(err)
	}
	return echo.NewHTTPError(sessionStatus(kind, refresh), kind.Message()).SetInternal(err)
}

func postError(err error, id string) error {
	switch {
	case errors.Is(err, common.ErrorInvalidID):
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid id: %s", id)).SetInternal(err)
	case errors.Is(err, common.ErrorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("No post with this id: %s found", id)).SetInternal(err)
	case errors.Is(err, common.ErrorStorageDisabled):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Image storage is not configured").SetInternal(err)
	default:
		return internalError(err)
	}
}

func internalError(err error) error {
	return echo.NewHTTPError(http.StatusInternalServerError, internalErrorMessage).SetInternal(fmt.Errorf("%w: %w", common.ErrorInternal, err))
}

// errorHandler renders every error as {"detail": "..."} and logs it.
// Session refusals go to Warn with their kind, server faults to Error.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	detail := internalErrorMessage

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			detail = msg
		} else {
			detail = http.StatusText(code)
		}
		if he.Internal != nil {
			err = he.Internal
		}
	}

	ctx := c.Request().Context()
	switch kind, ok := session.KindOf(err); {
	case ok:
		s.logger.Warn(ctx, "request refused", "kind", kind.String(), "path", c.Path(), "status", code)
	case code >= http.StatusInternalServerError:
		s.logger.Error(ctx, "request failed", "error", err.Error(), "path", c.Path(), "status", code)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, errorResponse{Detail: detail})
	}
	if err != nil {
		s.logger.Error(ctx, "write error response", "error", err.Error())
	}
}
