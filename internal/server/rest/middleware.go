package rest

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const userIDKey = "userID"

// unmatchedRoute labels requests that hit no route, keeping the metric
// cardinality bounded.
const unmatchedRoute = "unmatched"

func newRequestID() string {
	return uuid.NewString()
}

// observe writes one access log line and the request metrics. Errors are
// rendered here so the final status is known.
func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		if err := next(c); err != nil {
			c.Error(err)
		}

		elapsed := time.Since(start)
		req := c.Request()
		status := c.Response().Status

		route := c.Path()
		if route == "" || strings.HasSuffix(route, "*") {
			route = unmatchedRoute
		}

		s.metrics.ObserveRequest(req.Method, route, strconv.Itoa(status), elapsed)
		s.logger.Info(req.Context(), "request",
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"method", req.Method,
			"route", route,
			"uri", req.RequestURI,
			"status", status,
			"latency", elapsed.String(),
			"remote_ip", c.RealIP(),
		)
		return nil
	}
}

// requireUser rejects requests without a valid access token and stores
// the caller's id on the context.
func (s *Server) requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := s.sessions.ValidateAccess(c.Request())
		if err != nil {
			return sessionError(err, false)
		}
		c.Set(userIDKey, id)
		return next(c)
	}
}

func currentUserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}
