package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/OmarAbdelrahmn/Hajzy-sub001/models"
	"github.com/OmarAbdelrahmn/Hajzy-sub001/services"
	"github.com/OmarAbdelrahmn/Hajzy-sub001/storage"
	"github.com/OmarAbdelrahmn/Hajzy-sub001/utils"
)

// buildTestApp wires a minimal Iris app with the reservation, unit,
// and admin routes against an in-memory database.
func buildTestApp(t *testing.T) *iris.Application {
	t.Helper()
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")

	db, err := storage.Open(sqlite.Open("file::memory:"))
	require.NoError(t, err)
	storage.DB = db

	svc := services.NewReservationService(db, services.NewSystemClock(), nil, services.NoopNotifier{}, nil)
	InitEngine(svc)

	app := iris.New()
	app.Validator = validator.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(utils.AccessToken) })

	reservations := app.Party("/api/reservations", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		reservations.Post("/", CreateReservation)
		reservations.Post("/quote", QuoteReservation)
		reservations.Get("/mine", GetMyReservations)
		reservations.Get("/{id:uint}", GetReservation)
		reservations.Post("/{id:uint}/cancel", CancelReservation)
	}

	units := app.Party("/api/units")
	{
		units.Post("/", accessTokenVerifierMiddleware, utils.HostOnlyMiddleware, CreateUnit)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/reservations", AdminListReservations)
	}

	err = app.Build()
	require.NoError(t, err)
	return app
}

// signTestToken returns a signed JWT for the given user and role.
func signTestToken(id uint, role string) string {
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 15*time.Minute)
	token, _ := signer.Sign(utils.AccessToken{ID: id, Role: role})
	return string(token)
}

func doJSON(app *iris.Application, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func seedRouteUnit(t *testing.T) *models.Unit {
	t.Helper()
	truthy := true
	unit := models.Unit{HostID: 1, Name: "Riverside Flat", BasePrice: decimal.RequireFromString("150.00"), IsActive: &truthy}
	require.NoError(t, storage.DB.Create(&unit).Error)
	return &unit
}

func TestReservationFlowOverHTTP(t *testing.T) {
	app := buildTestApp(t)
	unit := seedRouteUnit(t)
	guest := signTestToken(9, "user")

	// Unauthenticated create is rejected before the handler runs.
	resp := doJSON(app, http.MethodPost, "/api/reservations", "", iris.Map{})
	assert.NotEqual(t, http.StatusCreated, resp.Code)

	create := iris.Map{
		"unitID":    unit.ID,
		"checkIn":   "2027-03-10",
		"checkOut":  "2027-03-13",
		"numGuests": 2,
	}
	resp = doJSON(app, http.MethodPost, "/api/reservations", guest, create)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var created models.Reservation
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.True(t, strings.HasPrefix(created.Number, "HJZ-S-"))
	assert.Equal(t, models.ReservationPending, created.Status)
	assert.Equal(t, uint(9), created.GuestID)

	// Double booking the same range conflicts.
	resp = doJSON(app, http.MethodPost, "/api/reservations", guest, create)
	assert.Equal(t, http.StatusConflict, resp.Code, resp.Body.String())

	// The guest sees their reservation.
	resp = doJSON(app, http.MethodGet, "/api/reservations/mine", guest, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var mine []models.Reservation
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &mine))
	require.Len(t, mine, 1)

	// Another guest cannot read or cancel it.
	stranger := signTestToken(77, "user")
	resp = doJSON(app, http.MethodGet, "/api/reservations/1", stranger, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)
	resp = doJSON(app, http.MethodPost, "/api/reservations/1/cancel", stranger, iris.Map{"reason": "not mine"})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// The owner cancels.
	resp = doJSON(app, http.MethodPost, "/api/reservations/1/cancel", guest, iris.Map{"reason": "change of plans"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var result services.CancelResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.Equal(t, models.ReservationCancelled, result.Reservation.Status)
}

func TestReservationValidationOverHTTP(t *testing.T) {
	app := buildTestApp(t)
	unit := seedRouteUnit(t)
	guest := signTestToken(9, "user")

	// Malformed date fails request validation.
	resp := doJSON(app, http.MethodPost, "/api/reservations", guest, iris.Map{
		"unitID":    unit.ID,
		"checkIn":   "March 10",
		"checkOut":  "2027-03-13",
		"numGuests": 2,
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	// Reversed range is rejected by the engine.
	resp = doJSON(app, http.MethodPost, "/api/reservations", guest, iris.Map{
		"unitID":    unit.ID,
		"checkIn":   "2027-03-13",
		"checkOut":  "2027-03-10",
		"numGuests": 2,
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestQuoteOverHTTP(t *testing.T) {
	app := buildTestApp(t)
	unit := seedRouteUnit(t)
	guest := signTestToken(9, "user")

	resp := doJSON(app, http.MethodPost, "/api/reservations/quote", guest, iris.Map{
		"unitID":   unit.ID,
		"checkIn":  "2027-03-10",
		"checkOut": "2027-03-13",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var quote services.PriceQuote
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &quote))
	assert.Equal(t, 3, quote.Nights)
	assert.True(t, quote.Total.Equal(decimal.NewFromInt(450)), "total should be 450, got %s", quote.Total)
}

func TestAdminRBAC(t *testing.T) {
	app := buildTestApp(t)

	resp := doJSON(app, http.MethodGet, "/api/admin/reservations", "", nil)
	assert.NotEqual(t, http.StatusOK, resp.Code)

	resp = doJSON(app, http.MethodGet, "/api/admin/reservations", signTestToken(2, "user"), nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = doJSON(app, http.MethodGet, "/api/admin/reservations", signTestToken(2, "admin"), nil)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestHostOnlyUnitCreation(t *testing.T) {
	app := buildTestApp(t)

	body := iris.Map{"name": "New Unit", "basePrice": "120.00"}

	resp := doJSON(app, http.MethodPost, "/api/units", signTestToken(3, "user"), body)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = doJSON(app, http.MethodPost, "/api/units", signTestToken(3, "host"), body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var unit models.Unit
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &unit))
	assert.Equal(t, uint(3), unit.HostID)
}
