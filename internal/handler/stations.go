package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gaming-lounge-booking/internal/model"
	"github.com/iliyamo/gaming-lounge-booking/internal/service"
)

// StationQueries is the read side of the station service.
type StationQueries interface {
	ListWithStatus(ctx context.Context, shopID *uint64) ([]model.StationView, error)
	Search(ctx context.Context, in service.SearchInput) (*service.SearchResult, error)
}

type StationHandler struct {
	Stations StationQueries
}

func NewStationHandler(s StationQueries) *StationHandler { return &StationHandler{Stations: s} }

// List handles GET /v1/stations?shop_id=.
func (h *StationHandler) List(c echo.Context) error {
	shopID, err := queryID(c, "shop_id")
	if err != nil {
		return respondError(c, err)
	}
	return h.list(c, shopID)
}

// ListForShop handles GET /v1/shops/:id/stations.
func (h *StationHandler) ListForShop(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	return h.list(c, &id)
}

func (h *StationHandler) list(c echo.Context, shopID *uint64) error {
	views, err := h.Stations.ListWithStatus(c.Request().Context(), shopID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": views})
}

// Available handles GET /v1/stations/available?shop_id=&type=&start=&end=.
func (h *StationHandler) Available(c echo.Context) error {
	var (
		in  service.SearchInput
		err error
	)
	if in.ShopID, err = queryID(c, "shop_id"); err != nil {
		return respondError(c, err)
	}
	if in.Start, err = queryTime(c, "start"); err != nil {
		return respondError(c, err)
	}
	if in.End, err = queryTime(c, "end"); err != nil {
		return respondError(c, err)
	}
	if t := strings.TrimSpace(c.QueryParam("type")); t != "" {
		st := model.StationType(t)
		in.Type = &st
	}

	res, err := h.Stations.Search(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
