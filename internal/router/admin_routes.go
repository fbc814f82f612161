package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gaming-lounge-booking/internal/handler"
	"github.com/iliyamo/gaming-lounge-booking/internal/middleware"
	"github.com/iliyamo/gaming-lounge-booking/internal/model"
)

// RegisterAdmin registers the back-office endpoints under /v1/admin.  All
// routes require a valid JWT carrying the Admin capability.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireCapability(model.CapAdmin),
	)

	g.GET("/users", a.ListUsers)

	// ---- Shops ----
	g.GET("/shops", a.ListShops)
	g.POST("/shops", a.CreateShop)
	g.POST("/shops/:id/stations", a.AddStations)

	// ---- Tournaments ----
	g.GET("/tournaments", a.ListTournaments)
	g.POST("/tournaments", a.CreateTournament)
	g.DELETE("/tournaments/:id", a.DeleteTournament)
}
