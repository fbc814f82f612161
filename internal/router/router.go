package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/gaming-lounge-booking/internal/handler"
	"github.com/iliyamo/gaming-lounge-booking/internal/middleware"
)

// RegisterRoutes registers the operational endpoints: liveness and the
// Prometheus scrape target.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers the identity endpoints.  Token issuing lives under
// /v1/auth and is rate limited; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register, limit)
	g.POST("/login", a.Login, limit)
	g.POST("/refresh", a.Refresh)              // rotates the refresh token
	g.POST("/refresh-access", a.RefreshAccess) // new access token only
	g.POST("/logout", a.Logout)                // refresh_token body or bearer

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic registers the unauthenticated browse endpoints.  Listings
// go through the short-lived response cache.
func RegisterPublic(e *echo.Echo, st *handler.StationHandler, sh *handler.ShopHandler, t *handler.TournamentHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/stations", st.List, cache)
	e.GET("/v1/stations/available", st.Available, cache)

	e.GET("/v1/shops", sh.List, cache)
	e.GET("/v1/shops/:id", sh.Get, cache)
	e.GET("/v1/shops/:id/stations", st.ListForShop, cache)

	e.GET("/v1/tournaments", t.List, cache)
	e.GET("/v1/tournaments/:id", t.Get)
}
