// Package handler exposes the HTTP handlers.  Handlers bind and validate
// input, call a service and translate service errors into status codes;
// they hold no booking rules of their own.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gaming-lounge-booking/internal/logger"
	"github.com/iliyamo/gaming-lounge-booking/internal/middleware"
	"github.com/iliyamo/gaming-lounge-booking/internal/service"
)

var errNoUser = errors.New("invalid user_id in context")

// getUserID reads the authenticated user set by middleware.JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
	if id, ok := middleware.UserID(c); ok {
		return id, nil
	}
	return 0, errNoUser
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, &service.ValidationError{Field: name, Msg: "must be a positive integer"}
	}
	return n, nil
}

// queryID parses an optional positive integer query parameter.
func queryID(c echo.Context, name string) (*uint64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return nil, &service.ValidationError{Field: name, Msg: "must be a positive integer"}
	}
	return &n, nil
}

// queryTime parses an optional RFC3339 query parameter.
func queryTime(c echo.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, &service.ValidationError{Field: name, Msg: "must be an RFC3339 timestamp"}
	}
	t = t.UTC()
	return &t, nil
}

// bindValid binds the request body into dst and runs the struct validator.
func bindValid(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return &service.ValidationError{Msg: "invalid body"}
	}
	return c.Validate(dst)
}

// respondError maps service errors onto HTTP responses.  Anything
// unrecognised is logged and reported as a bare 500.
func respondError(c echo.Context, err error) error {
	var (
		ve *service.ValidationError
		ce *service.ConflictError
		se *service.StateError
	)
	switch {
	case errors.As(err, &ve):
		body := echo.Map{"error": ve.Error()}
		if ve.Field != "" {
			body["field"] = ve.Field
		}
		return c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, errNoUser):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.As(err, &ce):
		body := echo.Map{"error": ce.Msg}
		if ce.Until != nil {
			body["available_after"] = ce.Until.UTC().Format(time.RFC3339)
		}
		return c.JSON(http.StatusConflict, body)
	case errors.As(err, &se):
		return c.JSON(http.StatusConflict, echo.Map{"error": se.Msg})
	}
	logger.WithContext(c.Request().Context()).Error().Err(err).
		Str("method", c.Request().Method).Str("route", c.Path()).Msg("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}
