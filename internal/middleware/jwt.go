package middleware // middleware holds the Echo middleware shared by all route groups

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gaming-lounge-booking/internal/logger"
	"github.com/iliyamo/gaming-lounge-booking/internal/utils"
)

// Context keys set by JWTAuth.
const (
	CtxUserID = "user_id" // uint64
	CtxCaps   = "caps"    // model.Capability
)

// JWTAuth validates a Bearer access token and injects the caller's ID and
// capabilities into the Echo context.  The user ID is also attached to the
// request context so log lines written further down carry it.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxCaps, claims.Capabilities())
			req := c.Request()
			c.SetRequest(req.WithContext(logger.ContextWithUserID(req.Context(), claims.UserID)))
			return next(c)
		}
	}
}
