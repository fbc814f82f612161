package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/gaming-lounge-booking/internal/service"
)

// AdminHandler serves /v1/admin.  Every route sits behind
// RequireCapability(model.CapAdmin).
type AdminHandler struct {
	Shops       ShopOps
	Tournaments TournamentOps
}

func NewAdminHandler(s ShopOps, t TournamentOps) *AdminHandler {
	return &AdminHandler{Shops: s, Tournaments: t}
}

// ListUsers handles GET /v1/admin/users: customers only, newest first.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.Shops.ListCustomers(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]userPart, 0, len(users))
	for i := range users {
		out = append(out, toUserPart(&users[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// ListShops handles GET /v1/admin/shops, inactive shops included.
func (h *AdminHandler) ListShops(c echo.Context) error {
	items, err := h.Shops.ListAll(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type createShopReq struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Address     string          `json:"address" validate:"required,max=500"`
	City        string          `json:"city" validate:"required,max=100"`
	Country     string          `json:"country" validate:"required,max=100"`
	PhoneNumber string          `json:"phone_number" validate:"omitempty,max=20"`
	Email       string          `json:"email" validate:"omitempty,email,max=255"`
	HourlyRate  decimal.Decimal `json:"hourly_rate"`
	OwnerID     *uint64         `json:"owner_id"`
}

// CreateShop handles POST /v1/admin/shops.
func (h *AdminHandler) CreateShop(c echo.Context) error {
	var req createShopReq
	if err := bindValid(c, &req); err != nil {
		return respondError(c, err)
	}
	d, err := h.Shops.Create(c.Request().Context(), service.CreateShopInput{
		Name:        req.Name,
		Address:     req.Address,
		City:        req.City,
		Country:     req.Country,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		HourlyRate:  req.HourlyRate,
		OwnerID:     req.OwnerID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

// AddStations handles POST /v1/admin/shops/:id/stations.
func (h *AdminHandler) AddStations(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	stations, err := h.Shops.AddDefaultStations(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"shop_id": id, "items": stations})
}

// ListTournaments handles GET /v1/admin/tournaments.
func (h *AdminHandler) ListTournaments(c echo.Context) error {
	items, err := h.Tournaments.List(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// createTournamentReq accepts either multipart form (with an optional
// "image" file part) or JSON.  Amounts and dates travel as strings so both
// encodings bind the same way.
type createTournamentReq struct {
	ShopID               uint64 `json:"shop_id" form:"shop_id" validate:"required"`
	Name                 string `json:"name" form:"name" validate:"required,max=200"`
	Game                 string `json:"game" form:"game" validate:"required,max=100"`
	Description          string `json:"description" form:"description" validate:"max=2000"`
	StartDate            string `json:"start_date" form:"start_date" validate:"required"`
	RegistrationDeadline string `json:"registration_deadline" form:"registration_deadline" validate:"required"`
	MaxParticipants      int    `json:"max_participants" form:"max_participants" validate:"gte=1"`
	EntryFee             string `json:"entry_fee" form:"entry_fee" validate:"omitempty,money"`
	PrizePool            string `json:"prize_pool" form:"prize_pool" validate:"omitempty,money"`
	ImageURL             string `json:"image_url" form:"image_url" validate:"omitempty,url,max=500"`
}

func parseFormTime(field, raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, &service.ValidationError{Field: field, Msg: "must be an RFC3339 timestamp"}
	}
	return t.UTC(), nil
}

func parseMoney(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// CreateTournament handles POST /v1/admin/tournaments.
func (h *AdminHandler) CreateTournament(c echo.Context) error {
	var req createTournamentReq
	if err := bindValid(c, &req); err != nil {
		return respondError(c, err)
	}
	start, err := parseFormTime("start_date", req.StartDate)
	if err != nil {
		return respondError(c, err)
	}
	deadline, err := parseFormTime("registration_deadline", req.RegistrationDeadline)
	if err != nil {
		return respondError(c, err)
	}
	in := service.CreateTournamentInput{
		ShopID:               req.ShopID,
		Name:                 req.Name,
		Game:                 req.Game,
		Description:          req.Description,
		StartDate:            start,
		RegistrationDeadline: deadline,
		MaxParticipants:      req.MaxParticipants,
		EntryFee:             parseMoney(req.EntryFee),
		PrizePool:            parseMoney(req.PrizePool),
		ImageURL:             req.ImageURL,
	}

	if fh, err := c.FormFile("image"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return respondError(c, &service.ValidationError{Field: "image", Msg: "unreadable upload"})
		}
		defer f.Close()
		in.Image = &service.ImageUpload{Filename: fh.Filename, Body: f}
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		return respondError(c, &service.ValidationError{Field: "image", Msg: "invalid upload"})
	}

	t, err := h.Tournaments.Create(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// DeleteTournament handles DELETE /v1/admin/tournaments/:id.
func (h *AdminHandler) DeleteTournament(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Tournaments.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
