package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gaming-lounge-booking/internal/model"
	"github.com/iliyamo/gaming-lounge-booking/internal/service"
)

// ShopOps is the shop service as seen by HTTP.
type ShopOps interface {
	ListActive(ctx context.Context, city, country string) ([]model.Shop, error)
	Get(ctx context.Context, id uint64) (*service.ShopDetail, error)
	ListAll(ctx context.Context) ([]model.Shop, error)
	ListCustomers(ctx context.Context) ([]model.User, error)
	Create(ctx context.Context, in service.CreateShopInput) (*service.ShopDetail, error)
	AddDefaultStations(ctx context.Context, shopID uint64) ([]model.Station, error)
}

type ShopHandler struct {
	Shops ShopOps
}

func NewShopHandler(s ShopOps) *ShopHandler { return &ShopHandler{Shops: s} }

// List handles GET /v1/shops?city=&country=.
func (h *ShopHandler) List(c echo.Context) error {
	items, err := h.Shops.ListActive(c.Request().Context(), c.QueryParam("city"), c.QueryParam("country"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/shops/:id.
func (h *ShopHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	d, err := h.Shops.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}
