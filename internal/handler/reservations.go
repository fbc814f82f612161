package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gaming-lounge-booking/internal/booking"
	"github.com/iliyamo/gaming-lounge-booking/internal/model"
	"github.com/iliyamo/gaming-lounge-booking/internal/service"
)

// ReservationCommands is the reservation lifecycle as seen by HTTP.
type ReservationCommands interface {
	Create(ctx context.Context, userID uint64, in service.CreateReservationInput) (*service.CreateResult, error)
	Cancel(ctx context.Context, userID, reservationID uint64) error
	Complete(ctx context.Context, userID, reservationID uint64) (*service.CompletionResult, error)
	ListMine(ctx context.Context, userID uint64) ([]model.ReservationDetail, error)
}

type ReservationHandler struct {
	Reservations ReservationCommands
}

func NewReservationHandler(r ReservationCommands) *ReservationHandler {
	return &ReservationHandler{Reservations: r}
}

type createReservationReq struct {
	StationID uint64    `json:"station_id" validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
	Notes     string    `json:"notes" validate:"max=500"`
}

type createReservationResp struct {
	Reservation      *model.Reservation `json:"reservation"`
	Pricing          booking.Quote      `json:"pricing"`
	NewLoyaltyPoints int                `json:"new_loyalty_points"`
}

// Create handles POST /v1/reservations.
func (h *ReservationHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req createReservationReq
	if err := bindValid(c, &req); err != nil {
		return respondError(c, err)
	}
	res, err := h.Reservations.Create(c.Request().Context(), uid, service.CreateReservationInput{
		StationID: req.StationID,
		Start:     req.StartTime,
		End:       req.EndTime,
		Notes:     req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, createReservationResp{
		Reservation:      res.Reservation,
		Pricing:          res.Quote,
		NewLoyaltyPoints: res.NewBalance,
	})
}

// Cancel handles DELETE /v1/reservations/:id.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Reservations.Cancel(c.Request().Context(), uid, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reservation cancelled", "id": id})
}

// Complete handles POST /v1/reservations/:id/complete.
func (h *ReservationHandler) Complete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.Reservations.Complete(c.Request().Context(), uid, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ListMine handles GET /v1/my-reservations.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	items, err := h.Reservations.ListMine(c.Request().Context(), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
