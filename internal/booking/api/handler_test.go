package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campus-booking/internal/booking"
	"campus-booking/internal/booking/api"
	"campus-booking/internal/inventory"
	"campus-booking/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateBooking(ctx context.Context, b models.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockDBLayer) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockDBLayer) UpdateBookingStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockDBLayer) DeleteBooking(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDBLayer) ListBookings(ctx context.Context, limit int) ([]models.Booking, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockDBLayer) ListBookingsByEmail(ctx context.Context, email string) ([]models.Booking, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

type MockInventory struct {
	mock.Mock
}

func (m *MockInventory) GetShow(ctx context.Context, showID string) (*models.Show, error) {
	args := m.Called(ctx, showID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Show), args.Error(1)
}

func (m *MockInventory) Reserve(ctx context.Context, showID string, seatIDs []string, ownerID string) (*models.Show, error) {
	args := m.Called(ctx, showID, seatIDs, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Show), args.Error(1)
}

func (m *MockInventory) Release(ctx context.Context, showID string, seatIDs []string) (*models.Show, int, error) {
	args := m.Called(ctx, showID, seatIDs)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).(*models.Show), args.Int(1), args.Error(2)
}

type MockShowLocker struct {
	mock.Mock
}

func (m *MockShowLocker) LockShow(ctx context.Context, showID, token string) (bool, error) {
	args := m.Called(ctx, showID, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockShowLocker) UnlockShow(ctx context.Context, showID, token string) error {
	args := m.Called(ctx, showID, token)
	return args.Error(0)
}

func setupHandler(db *MockDBLayer, inv *MockInventory, locks *MockShowLocker) (*api.Handler, *chi.Mux) {
	svc := booking.NewService(db, inv, locks, nil, nil)
	svc.LockWait = 50 * time.Millisecond
	h := &api.Handler{Bookings: svc}

	r := chi.NewRouter()
	r.Post("/api/bookings", h.CreateBooking)
	r.Get("/api/bookings/{bookingId}", h.GetBooking)
	r.Put("/api/bookings/{bookingId}/cancel", h.CancelBooking)
	return h, r
}

func postBooking(t *testing.T, r http.Handler, payload interface{}) *httptest.ResponseRecorder {
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateBookingConflictNamesSeats(t *testing.T) {
	db := new(MockDBLayer)
	inv := new(MockInventory)
	locks := new(MockShowLocker)
	_, router := setupHandler(db, inv, locks)

	locks.On("LockShow", mock.Anything, "show-1", mock.Anything).Return(true, nil)
	locks.On("UnlockShow", mock.Anything, "show-1", mock.Anything).Return(nil)
	inv.On("Reserve", mock.Anything, "show-1", []string{"A1", "A2"}, "alice@campus.edu").
		Return(nil, &inventory.SeatConflictError{ShowID: "show-1", Seats: []string{"A1", "A2"}})

	rec := postBooking(t, router, models.BookingRequest{
		ShowID:    "show-1",
		UserEmail: "alice@campus.edu",
		Seats:     []string{"A1", "A2"},
	})

	assert.Equal(t, http.StatusConflict, rec.Code)

	var body struct {
		Error            string   `json:"error"`
		ConflictingSeats []string `json:"conflicting_seats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "seat_conflict", body.Error)
	assert.Equal(t, []string{"A1", "A2"}, body.ConflictingSeats)
}

func TestCreateBookingValidationIs400(t *testing.T) {
	db := new(MockDBLayer)
	inv := new(MockInventory)
	locks := new(MockShowLocker)
	_, router := setupHandler(db, inv, locks)

	rec := postBooking(t, router, models.BookingRequest{
		ShowID:    "show-1",
		UserEmail: "alice@campus.edu",
		// no seats
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation_error", body["error"])
}

func TestCreateBookingBusyIs503Retryable(t *testing.T) {
	db := new(MockDBLayer)
	inv := new(MockInventory)
	locks := new(MockShowLocker)
	_, router := setupHandler(db, inv, locks)

	locks.On("LockShow", mock.Anything, "show-1", mock.Anything).Return(false, nil)

	rec := postBooking(t, router, models.BookingRequest{
		ShowID:    "show-1",
		UserEmail: "alice@campus.edu",
		Seats:     []string{"A1"},
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Error     string `json:"error"`
		Retryable bool   `json:"retryable"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "busy", body.Error)
	assert.True(t, body.Retryable)
}

func TestGetBookingNotFoundIs404(t *testing.T) {
	db := new(MockDBLayer)
	inv := new(MockInventory)
	locks := new(MockShowLocker)
	_, router := setupHandler(db, inv, locks)

	db.On("GetBookingByID", mock.Anything, "missing").Return(nil, booking.ErrBookingNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelBookingTwiceIs409(t *testing.T) {
	db := new(MockDBLayer)
	inv := new(MockInventory)
	locks := new(MockShowLocker)
	_, router := setupHandler(db, inv, locks)

	cancelled := &models.Booking{
		BookingID: "booking-1",
		ShowID:    "show-1",
		Status:    models.BookingStatusCancelled,
	}
	db.On("GetBookingByID", mock.Anything, "booking-1").Return(cancelled, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/bookings/booking-1/cancel", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "already_cancelled", body["error"])
}
