package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gaming-lounge-booking/internal/handler"
	"github.com/iliyamo/gaming-lounge-booking/internal/model"
	"github.com/iliyamo/gaming-lounge-booking/internal/utils"
)

const secret = "router-secret"

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func newServer() *echo.Echo {
	e := echo.New()
	e.Validator = handler.NewValidator()
	RegisterRoutes(e, nil)
	RegisterAuth(e, &handler.AuthHandler{}, secret, passThrough)
	RegisterPublic(e, &handler.StationHandler{}, &handler.ShopHandler{}, &handler.TournamentHandler{}, passThrough)
	RegisterCustomer(e, &handler.ReservationHandler{}, &handler.TournamentHandler{}, secret, passThrough)
	RegisterAdmin(e, &handler.AdminHandler{}, secret)
	return e
}

func call(e *echo.Echo, method, target, auth string) int {
	req := httptest.NewRequest(method, target, nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func token(t *testing.T, caps model.Capability) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, 1, caps, 5, time.Now())
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func TestOperationalRoutes(t *testing.T) {
	e := newServer()
	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/healthz", ""))
	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/metrics", ""))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := newServer()
	for _, r := range []struct{ method, path string }{
		{http.MethodPost, "/v1/reservations"},
		{http.MethodDelete, "/v1/reservations/1"},
		{http.MethodPost, "/v1/reservations/1/complete"},
		{http.MethodGet, "/v1/my-reservations"},
		{http.MethodPost, "/v1/tournaments/1/register"},
		{http.MethodGet, "/v1/my-tournament-registrations"},
		{http.MethodGet, "/v1/me"},
		{http.MethodGet, "/v1/admin/users"},
	} {
		assert.Equal(t, http.StatusUnauthorized, call(e, r.method, r.path, ""), r.method+" "+r.path)
	}
}

func TestAdminRoutesRequireCapability(t *testing.T) {
	e := newServer()
	customer := token(t, 0)
	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/v1/admin/users"},
		{http.MethodGet, "/v1/admin/shops"},
		{http.MethodPost, "/v1/admin/shops"},
		{http.MethodPost, "/v1/admin/shops/1/stations"},
		{http.MethodPost, "/v1/admin/tournaments"},
		{http.MethodDelete, "/v1/admin/tournaments/1"},
	} {
		assert.Equal(t, http.StatusForbidden, call(e, r.method, r.path, customer), r.method+" "+r.path)
	}
}
