package admin_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"campus-booking/internal/admin"
	"campus-booking/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"
)

func setupService(t *testing.T) (*admin.Service, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { bunDB.Close() })

	for _, model := range []interface{}{
		(*models.Event)(nil),
		(*models.Show)(nil),
		(*models.Booking)(nil),
		(*models.User)(nil),
	} {
		_, err = bunDB.NewCreateTable().Model(model).Exec(context.Background())
		require.NoError(t, err)
	}

	return admin.NewService(bunDB), bunDB
}

func seedData(t *testing.T, bunDB *bun.DB) {
	ctx := context.Background()

	event := &models.Event{EventID: "event-1", Title: "Tech Symposium", CreatedAt: time.Now()}
	_, err := bunDB.NewInsert().Model(event).Exec(ctx)
	require.NoError(t, err)

	shows := []models.Show{
		{ShowID: "show-1", EventID: "event-1", ShowDateTime: time.Now(), ShowPrice: 10, TotalSeats: 50, AvailableSeats: 47, OccupiedSeats: map[string]string{"A1": "a", "A2": "a", "A3": "b"}, CreatedAt: time.Now()},
		{ShowID: "show-2", EventID: "event-1", ShowDateTime: time.Now().Add(time.Hour), ShowPrice: 12, TotalSeats: 30, AvailableSeats: 30, OccupiedSeats: map[string]string{}, CreatedAt: time.Now()},
	}
	_, err = bunDB.NewInsert().Model(&shows).Exec(ctx)
	require.NoError(t, err)

	bookings := []models.Booking{
		{BookingID: "booking-1", EventID: "event-1", ShowID: "show-1", UserEmail: "a@campus.edu", BookedSeats: []string{"A1", "A2"}, Amount: 20, Status: models.BookingStatusConfirmed, CreatedAt: time.Now().Add(-2 * time.Hour)},
		{BookingID: "booking-2", EventID: "event-1", ShowID: "show-1", UserEmail: "b@campus.edu", BookedSeats: []string{"A3"}, Amount: 10, Status: models.BookingStatusConfirmed, CreatedAt: time.Now().Add(-time.Hour)},
		{BookingID: "booking-3", EventID: "event-1", ShowID: "show-2", UserEmail: "c@campus.edu", BookedSeats: []string{"B1"}, Amount: 12, Status: models.BookingStatusCancelled, CreatedAt: time.Now()},
	}
	_, err = bunDB.NewInsert().Model(&bookings).Exec(ctx)
	require.NoError(t, err)

	user := &models.User{UserID: "user-1", Name: "Alice", Email: "a@campus.edu", CreatedAt: time.Now()}
	_, err = bunDB.NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)
}

func TestDashboardStats(t *testing.T) {
	svc, bunDB := setupService(t)
	seedData(t, bunDB)

	stats, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TotalEvents)
	assert.Equal(t, 2, stats.TotalShows)
	assert.Equal(t, 3, stats.TotalBookings)
	assert.Equal(t, 2, stats.ActiveBookings)
	assert.Equal(t, 1, stats.CancelledBookings)
	assert.Equal(t, 1, stats.TotalUsers)

	// Cancelled bookings do not count towards revenue.
	assert.Equal(t, 30.0, stats.TotalRevenue)

	// Seats sold comes from the inventory counters.
	assert.Equal(t, 3, stats.SeatsSold)
}

func TestDashboardToleratesEmptyStore(t *testing.T) {
	svc, _ := setupService(t)

	stats, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalEvents)
	assert.Equal(t, 0, stats.TotalBookings)
	// SUM over zero rows is NULL; the projection must still come back as 0.
	assert.Equal(t, 0.0, stats.TotalRevenue)
	assert.Equal(t, 0, stats.SeatsSold)
}

func TestRecentBookingsOrderAndLimit(t *testing.T) {
	svc, bunDB := setupService(t)
	seedData(t, bunDB)

	recent, err := svc.RecentBookings(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "booking-3", recent[0].BookingID, "newest first")
	assert.Equal(t, "booking-2", recent[1].BookingID)

	// Zero means the default limit.
	all, err := svc.RecentBookings(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestEventReport(t *testing.T) {
	svc, bunDB := setupService(t)
	seedData(t, bunDB)

	report, err := svc.EventReport(context.Background(), "event-1")
	require.NoError(t, err)

	assert.Equal(t, "Tech Symposium", report.Event.Title)
	require.Len(t, report.Shows, 2)

	assert.Equal(t, "show-1", report.Shows[0].Show.ShowID)
	assert.Equal(t, 2, report.Shows[0].Bookings)
	assert.Equal(t, 30.0, report.Shows[0].Revenue)
	assert.Equal(t, 3, report.Shows[0].Occupied)

	// show-2 only ever had a cancelled booking.
	assert.Equal(t, 0, report.Shows[1].Bookings)
	assert.Equal(t, 0.0, report.Shows[1].Revenue)

	assert.Equal(t, 30.0, report.Revenue)
}

func TestEventReportUnknownEvent(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.EventReport(context.Background(), "missing")
	assert.Error(t, err)
}
