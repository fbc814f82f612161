package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/gaming-lounge-booking/internal/logger"
	"github.com/iliyamo/gaming-lounge-booking/internal/metrics"
)

const headerRequestID = "X-Request-ID"

// RequestID reuses an incoming X-Request-ID or mints one, echoes it on the
// response and stores it in the request context for logger.WithContext.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(headerRequestID)
			if id == "" || len(id) > 128 {
				id = logger.NewRequestID()
			}
			c.Response().Header().Set(headerRequestID, id)
			c.SetRequest(req.WithContext(logger.ContextWithRequestID(req.Context(), id)))
			return next(c)
		}
	}
}

// AccessLog writes one structured line per request and feeds the HTTP
// Prometheus collectors.  Errors returned by handlers are passed to Echo's
// error handler first so the logged status is the one the client saw.
func AccessLog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			latency := time.Since(start)

			req, res := c.Request(), c.Response()
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.HTTPRequests.WithLabelValues(route, req.Method, strconv.Itoa(res.Status)).Inc()
			metrics.HTTPDuration.WithLabelValues(route, req.Method).Observe(latency.Seconds())

			var ev *zerolog.Event
			log := logger.WithContext(req.Context())
			switch {
			case res.Status >= http.StatusInternalServerError:
				ev = log.Error().Err(err)
			case res.Status >= http.StatusBadRequest:
				ev = log.Warn()
			default:
				ev = log.Info()
			}
			ev.Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("route", route).
				Int("status", res.Status).
				Int64("bytes", res.Size).
				Dur("latency", latency).
				Str("client_ip", c.RealIP()).
				Msg("request")
			return nil
		}
	}
}

// Recover turns a panic into a 500 and logs the stack.
func Recover() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.WithContext(c.Request().Context()).Error().
						Str("panic", fmt.Sprint(r)).
						Bytes("stack", debug.Stack()).
						Str("path", c.Request().URL.Path).
						Msg("panic recovered")
					err = c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
				}
			}()
			return next(c)
		}
	}
}
