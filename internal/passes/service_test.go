package passes_test

import (
	"context"
	"database/sql"
	"testing"

	"campus-booking/internal/models"
	"campus-booking/internal/passes"
	passes_db "campus-booking/internal/passes/db"
	"campus-booking/internal/passes/qr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"
)

func setupService(t *testing.T) *passes.Service {
	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { bunDB.Close() })

	_, err = bunDB.NewCreateTable().Model((*models.EntryPass)(nil)).Exec(context.Background())
	require.NoError(t, err)

	return passes.NewService(passes_db.NewDB(bunDB), qr.NewGenerator("test-secret"), nil)
}

func confirmedBooking() *models.Booking {
	return &models.Booking{
		BookingID:   "booking-1",
		ShowID:      "show-1",
		UserEmail:   "alice@campus.edu",
		BookedSeats: []string{"A1", "A2"},
		Status:      models.BookingStatusConfirmed,
	}
}

func TestIssueForBookingIsIdempotent(t *testing.T) {
	svc := setupService(t)

	first, err := svc.IssueForBooking(context.Background(), confirmedBooking())
	require.NoError(t, err)
	assert.NotEmpty(t, first.PassID)
	assert.NotEmpty(t, first.QRCode)

	// A second issue hands back the existing pass instead of minting another.
	second, err := svc.IssueForBooking(context.Background(), confirmedBooking())
	require.NoError(t, err)
	assert.Equal(t, first.PassID, second.PassID)
}

func TestIssueRejectsCancelledBooking(t *testing.T) {
	svc := setupService(t)

	b := confirmedBooking()
	b.Status = models.BookingStatusCancelled

	_, err := svc.IssueForBooking(context.Background(), b)
	assert.ErrorIs(t, err, passes.ErrBookingNotEligible)
}

func TestGetForBookingNotFound(t *testing.T) {
	svc := setupService(t)

	_, err := svc.GetForBooking(context.Background(), "missing")
	assert.ErrorIs(t, err, passes.ErrPassNotFound)
}

func TestCheckInIsSingleUse(t *testing.T) {
	svc := setupService(t)

	_, err := svc.IssueForBooking(context.Background(), confirmedBooking())
	require.NoError(t, err)

	pass, err := svc.CheckIn(context.Background(), "booking-1")
	require.NoError(t, err)
	assert.True(t, pass.CheckedIn)
	assert.False(t, pass.CheckedInAt.IsZero())

	// One QR image admits one group, once.
	_, err = svc.CheckIn(context.Background(), "booking-1")
	assert.ErrorIs(t, err, passes.ErrAlreadyCheckedIn)
}
