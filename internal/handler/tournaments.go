package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gaming-lounge-booking/internal/model"
	"github.com/iliyamo/gaming-lounge-booking/internal/service"
)

// TournamentOps is the tournament service as seen by HTTP.
type TournamentOps interface {
	List(ctx context.Context, status string) ([]model.Tournament, error)
	Get(ctx context.Context, id uint64) (*service.TournamentDetail, error)
	Register(ctx context.Context, userID, tournamentID uint64) (*model.TournamentRegistration, error)
	MyRegistrations(ctx context.Context, userID uint64) ([]model.RegistrationDetail, error)
	Create(ctx context.Context, in service.CreateTournamentInput) (*model.Tournament, error)
	Delete(ctx context.Context, id uint64) error
}

type TournamentHandler struct {
	Tournaments TournamentOps
}

func NewTournamentHandler(t TournamentOps) *TournamentHandler {
	return &TournamentHandler{Tournaments: t}
}

// List handles GET /v1/tournaments?status=.
func (h *TournamentHandler) List(c echo.Context) error {
	items, err := h.Tournaments.List(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/tournaments/:id.
func (h *TournamentHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	t, err := h.Tournaments.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// Register handles POST /v1/tournaments/:id/register.
func (h *TournamentHandler) Register(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	reg, err := h.Tournaments.Register(c.Request().Context(), uid, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, reg)
}

// MyRegistrations handles GET /v1/my-tournament-registrations.
func (h *TournamentHandler) MyRegistrations(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	items, err := h.Tournaments.MyRegistrations(c.Request().Context(), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
