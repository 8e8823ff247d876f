package users_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"campus-booking/internal/models"
	"campus-booking/internal/users"
	users_db "campus-booking/internal/users/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"
)

type stubBookings struct {
	bookings []models.Booking
	err      error
}

func (s stubBookings) ListBookings(context.Context, string) ([]models.Booking, error) {
	return s.bookings, s.err
}

func setupService(t *testing.T, bookings users.BookingLister) *users.Service {
	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { bunDB.Close() })

	_, err = bunDB.NewCreateTable().Model((*models.User)(nil)).Exec(context.Background())
	require.NoError(t, err)

	return users.NewService(users_db.NewDB(bunDB), bookings, nil)
}

func TestSyncUpsertsByEmail(t *testing.T) {
	svc := setupService(t, stubBookings{})

	first, err := svc.Sync(context.Background(), models.UserRequest{
		ExternalID: "idp-1",
		Name:       "Alice",
		Email:      "alice@campus.edu",
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.UserID)

	// A repeat push for the same email updates in place and keeps the
	// original identity.
	second, err := svc.Sync(context.Background(), models.UserRequest{
		ExternalID: "idp-1",
		Name:       "Alice Chen",
		Email:      "alice@campus.edu",
		Image:      "/avatars/alice.png",
	})
	require.NoError(t, err)
	assert.Equal(t, first.UserID, second.UserID)
	assert.Equal(t, "Alice Chen", second.Name)
	assert.Equal(t, "/avatars/alice.png", second.Image)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSyncValidation(t *testing.T) {
	svc := setupService(t, stubBookings{})

	_, err := svc.Sync(context.Background(), models.UserRequest{Name: "Alice"})
	assert.ErrorIs(t, err, users.ErrValidation)

	_, err = svc.Sync(context.Background(), models.UserRequest{Email: "alice@campus.edu"})
	assert.ErrorIs(t, err, users.ErrValidation)
}

func TestGetUnknownUser(t *testing.T) {
	svc := setupService(t, stubBookings{})

	_, err := svc.Get(context.Background(), "nobody@campus.edu")
	assert.ErrorIs(t, err, users.ErrUserNotFound)
}

func TestDeleteUser(t *testing.T) {
	svc := setupService(t, stubBookings{})

	_, err := svc.Sync(context.Background(), models.UserRequest{Name: "Alice", Email: "alice@campus.edu"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "alice@campus.edu"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "alice@campus.edu"), users.ErrUserNotFound)
}

func TestProfileBundlesBookings(t *testing.T) {
	svc := setupService(t, stubBookings{bookings: []models.Booking{
		{BookingID: "booking-1", UserEmail: "alice@campus.edu"},
		{BookingID: "booking-2", UserEmail: "alice@campus.edu"},
	}})

	_, err := svc.Sync(context.Background(), models.UserRequest{Name: "Alice", Email: "alice@campus.edu"})
	require.NoError(t, err)

	profile, err := svc.Profile(context.Background(), "alice@campus.edu")
	require.NoError(t, err)
	assert.Equal(t, "Alice", profile.User.Name)
	assert.Len(t, profile.Bookings, 2)
}

func TestProfileDegradesWhenBookingsFail(t *testing.T) {
	svc := setupService(t, stubBookings{err: errors.New("ledger down")})

	_, err := svc.Sync(context.Background(), models.UserRequest{Name: "Alice", Email: "alice@campus.edu"})
	require.NoError(t, err)

	profile, err := svc.Profile(context.Background(), "alice@campus.edu")
	require.NoError(t, err)
	assert.Empty(t, profile.Bookings)
}
