package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gaming-lounge-booking/internal/model"
)

// RequireCapability aborts with 403 unless the authenticated user holds
// every bit of want.  It must run after JWTAuth.
func RequireCapability(want model.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caps, ok := c.Get(CtxCaps).(model.Capability)
			if !ok || !caps.Has(want) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
