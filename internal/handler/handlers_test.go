package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gaming-lounge-booking/internal/booking"
	"github.com/iliyamo/gaming-lounge-booking/internal/middleware"
	"github.com/iliyamo/gaming-lounge-booking/internal/model"
	"github.com/iliyamo/gaming-lounge-booking/internal/service"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// asUser stands in for JWTAuth.
func asUser(id uint64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.CtxUserID, id)
			return next(c)
		}
	}
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newRequest(method, target, auth string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	return req
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

type fakeReservations struct {
	gotUser  uint64
	gotInput service.CreateReservationInput
	err      error
}

func (f *fakeReservations) Create(_ context.Context, userID uint64, in service.CreateReservationInput) (*service.CreateResult, error) {
	f.gotUser, f.gotInput = userID, in
	if f.err != nil {
		return nil, f.err
	}
	return &service.CreateResult{
		Reservation: &model.Reservation{ID: 1, UserID: userID, StationID: in.StationID, StartTime: in.Start, EndTime: in.End,
			Status: model.ReservationConfirmed, TotalPrice: decimal.RequireFromString("20")},
		Quote:      booking.Quote{TotalPrice: decimal.RequireFromString("20")},
		NewBalance: 40,
	}, nil
}

func (f *fakeReservations) Cancel(_ context.Context, userID, id uint64) error {
	f.gotUser = userID
	return f.err
}

func (f *fakeReservations) Complete(_ context.Context, userID, id uint64) (*service.CompletionResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.CompletionResult{ReservationID: id, PointsAwarded: 10, NewBalance: 50, DurationHours: decimal.NewFromInt(2)}, nil
}

func (f *fakeReservations) ListMine(context.Context, uint64) ([]model.ReservationDetail, error) {
	return []model.ReservationDetail{{Reservation: model.Reservation{ID: 3}}}, f.err
}

func TestCreateReservationHandler(t *testing.T) {
	fake := &fakeReservations{}
	e := newEcho()
	h := NewReservationHandler(fake)
	e.POST("/v1/reservations", h.Create, asUser(7))

	rec := do(e, http.MethodPost, "/v1/reservations",
		`{"station_id":4,"start_time":"2025-03-10T10:00:00Z","end_time":"2025-03-10T12:00:00Z","notes":"hi"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, uint64(7), fake.gotUser)
	assert.Equal(t, uint64(4), fake.gotInput.StationID)
	assert.True(t, fake.gotInput.Start.Equal(time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)))
	body := decode(t, rec)
	assert.Equal(t, float64(40), body["new_loyalty_points"])
	assert.Contains(t, body, "pricing")
}

func TestCreateReservationHandler_Validation(t *testing.T) {
	e := newEcho()
	e.POST("/v1/reservations", NewReservationHandler(&fakeReservations{}).Create, asUser(7))

	rec := do(e, http.MethodPost, "/v1/reservations", `{"start_time":"2025-03-10T10:00:00Z","end_time":"2025-03-10T12:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "station_id", decode(t, rec)["field"])

	rec = do(e, http.MethodPost, "/v1/reservations", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateReservationHandler_RequiresUser(t *testing.T) {
	e := newEcho()
	e.POST("/v1/reservations", NewReservationHandler(&fakeReservations{}).Create)

	rec := do(e, http.MethodPost, "/v1/reservations", `{"station_id":4}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReservationErrorMapping(t *testing.T) {
	until := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"conflict", &service.ConflictError{Msg: "taken", Until: &until}, http.StatusConflict},
		{"state", &service.StateError{Msg: "cannot cancel this reservation"}, http.StatusConflict},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"not found", errors.Join(service.ErrNotFound), http.StatusNotFound},
		{"validation", &service.ValidationError{Field: "end_time", Msg: "bad"}, http.StatusBadRequest},
		{"unexpected", errors.New("db exploded"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEcho()
			e.DELETE("/v1/reservations/:id", NewReservationHandler(&fakeReservations{err: tc.err}).Cancel, asUser(7))

			rec := do(e, http.MethodDelete, "/v1/reservations/5", "")
			assert.Equal(t, tc.status, rec.Code)
			if tc.name == "conflict" {
				assert.Equal(t, "2025-03-10T12:00:00Z", decode(t, rec)["available_after"])
			}
			if tc.name == "unexpected" {
				assert.NotContains(t, rec.Body.String(), "exploded")
			}
		})
	}
}

func TestCancelReservationHandler_BadID(t *testing.T) {
	e := newEcho()
	e.DELETE("/v1/reservations/:id", NewReservationHandler(&fakeReservations{}).Cancel, asUser(7))

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodDelete, "/v1/reservations/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodDelete, "/v1/reservations/0", "").Code)
}

func TestCompleteAndListMine(t *testing.T) {
	e := newEcho()
	h := NewReservationHandler(&fakeReservations{})
	e.POST("/v1/reservations/:id/complete", h.Complete, asUser(7))
	e.GET("/v1/my-reservations", h.ListMine, asUser(7))

	rec := do(e, http.MethodPost, "/v1/reservations/5/complete", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(10), body["points_awarded"])
	assert.Equal(t, float64(50), body["new_loyalty_points"])

	rec = do(e, http.MethodGet, "/v1/my-reservations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["items"], 1)
}

type fakeStations struct {
	got service.SearchInput
}

func (f *fakeStations) ListWithStatus(_ context.Context, shopID *uint64) ([]model.StationView, error) {
	return []model.StationView{{Station: model.Station{ID: 1}, CurrentStatus: model.StationInUse}}, nil
}

func (f *fakeStations) Search(_ context.Context, in service.SearchInput) (*service.SearchResult, error) {
	f.got = in
	return &service.SearchResult{}, nil
}

func TestAvailableStationsHandler(t *testing.T) {
	fake := &fakeStations{}
	e := newEcho()
	e.GET("/v1/stations/available", NewStationHandler(fake).Available)

	rec := do(e, http.MethodGet, "/v1/stations/available?shop_id=2&type=PC&start=2025-03-10T10:00:00Z", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, fake.got.ShopID)
	assert.Equal(t, uint64(2), *fake.got.ShopID)
	require.NotNil(t, fake.got.Type)
	assert.Equal(t, model.StationPC, *fake.got.Type)
	require.NotNil(t, fake.got.Start)
	assert.Nil(t, fake.got.End)

	rec = do(e, http.MethodGet, "/v1/stations/available?start=tomorrow", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "start", decode(t, rec)["field"])
}

func TestListStationsForShop(t *testing.T) {
	e := newEcho()
	e.GET("/v1/shops/:id/stations", NewStationHandler(&fakeStations{}).ListForShop)

	rec := do(e, http.MethodGet, "/v1/shops/3/stations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode(t, rec)["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "InUse", items[0].(map[string]any)["current_status"])
}

type fakeTournaments struct {
	created service.CreateTournamentInput
	image   string
	err     error
}

func (f *fakeTournaments) List(context.Context, string) ([]model.Tournament, error) { return nil, nil }
func (f *fakeTournaments) Get(context.Context, uint64) (*service.TournamentDetail, error) {
	return nil, service.ErrNotFound
}
func (f *fakeTournaments) Register(_ context.Context, userID, id uint64) (*model.TournamentRegistration, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.TournamentRegistration{ID: 1, TournamentID: id, UserID: userID, Status: model.RegistrationConfirmed}, nil
}
func (f *fakeTournaments) MyRegistrations(context.Context, uint64) ([]model.RegistrationDetail, error) {
	return nil, nil
}
func (f *fakeTournaments) Create(_ context.Context, in service.CreateTournamentInput) (*model.Tournament, error) {
	f.created = in
	if in.Image != nil {
		b, _ := io.ReadAll(in.Image.Body)
		f.image = string(b)
	}
	return &model.Tournament{ID: 9, Name: in.Name, Status: model.TournamentRegistrationOpen}, nil
}
func (f *fakeTournaments) Delete(context.Context, uint64) error { return f.err }

func TestRegisterTournamentHandler(t *testing.T) {
	e := newEcho()
	e.POST("/v1/tournaments/:id/register", NewTournamentHandler(&fakeTournaments{}).Register, asUser(7))
	rec := do(e, http.MethodPost, "/v1/tournaments/3/register", "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	e = newEcho()
	e.POST("/v1/tournaments/:id/register", NewTournamentHandler(&fakeTournaments{err: &service.ConflictError{Msg: "tournament is full"}}).Register, asUser(7))
	rec = do(e, http.MethodPost, "/v1/tournaments/3/register", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "tournament is full", decode(t, rec)["error"])
}

func TestCreateTournamentMultipart(t *testing.T) {
	fake := &fakeTournaments{}
	e := newEcho()
	e.POST("/v1/admin/tournaments", NewAdminHandler(nil, fake).CreateTournament)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"shop_id":               "1",
		"name":                  "Spring Cup",
		"game":                  "Tekken 8",
		"start_date":            "2030-05-01T18:00:00Z",
		"registration_deadline": "2030-04-30T18:00:00Z",
		"max_participants":      "16",
		"entry_fee":             "12.50",
	} {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("image", "banner.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("pngdata"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/tournaments", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Spring Cup", fake.created.Name)
	assert.Equal(t, 16, fake.created.MaxParticipants)
	assert.True(t, decimal.RequireFromString("12.5").Equal(fake.created.EntryFee))
	require.NotNil(t, fake.created.Image)
	assert.Equal(t, "banner.png", fake.created.Image.Filename)
	assert.Equal(t, "pngdata", fake.image)
}

func TestCreateTournamentJSON_BadDate(t *testing.T) {
	e := newEcho()
	e.POST("/v1/admin/tournaments", NewAdminHandler(nil, &fakeTournaments{}).CreateTournament)

	rec := do(e, http.MethodPost, "/v1/admin/tournaments",
		`{"shop_id":1,"name":"Cup","game":"Chess","start_date":"soon","registration_deadline":"2030-04-30T18:00:00Z","max_participants":8}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "start_date", decode(t, rec)["field"])
}

func TestGetTournamentNotFound(t *testing.T) {
	e := newEcho()
	e.GET("/v1/tournaments/:id", NewTournamentHandler(&fakeTournaments{}).Get)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/v1/tournaments/4", "").Code)
}

func TestHealthWithoutDatabase(t *testing.T) {
	e := newEcho()
	e.GET("/healthz", Health(nil))
	rec := do(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}
