package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gaming-lounge-booking/internal/handler"
	"github.com/iliyamo/gaming-lounge-booking/internal/middleware"
)

// RegisterCustomer registers the endpoints any signed-in user may call:
// the reservation lifecycle and tournament registration.  Ownership of a
// reservation is checked by the service, not here.  Mutations are rate
// limited.
func RegisterCustomer(e *echo.Echo, r *handler.ReservationHandler, t *handler.TournamentHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	g.POST("/reservations", r.Create, limit)
	g.DELETE("/reservations/:id", r.Cancel, limit)
	g.POST("/reservations/:id/complete", r.Complete, limit)
	g.GET("/my-reservations", r.ListMine)

	g.POST("/tournaments/:id/register", t.Register, limit)
	g.GET("/my-tournament-registrations", t.MyRegistrations)
}
