package inventory_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"campus-booking/internal/inventory"
	"campus-booking/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) (*inventory.Store, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = bunDB.NewCreateTable().Model((*models.Show)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to create shows table: %v", err)
	}

	return inventory.NewStore(bunDB, 0), bunDB
}

func insertShow(t *testing.T, bunDB *bun.DB, totalSeats int, occupied map[string]string) *models.Show {
	if occupied == nil {
		occupied = map[string]string{}
	}
	show := &models.Show{
		ShowID:         uuid.New().String(),
		EventID:        "event-1",
		ShowDateTime:   time.Now().Add(24 * time.Hour),
		ShowPrice:      12.5,
		Theater:        "Main Auditorium",
		TotalSeats:     totalSeats,
		AvailableSeats: totalSeats - len(occupied),
		OccupiedSeats:  occupied,
		CreatedAt:      time.Now(),
	}
	_, err := bunDB.NewInsert().Model(show).Exec(context.Background())
	require.NoError(t, err)
	return show
}

// The seat accounting invariant: free counter plus occupied map size always
// equals the fixed seat total.
func assertInvariant(t *testing.T, show *models.Show) {
	t.Helper()
	assert.Equal(t, show.TotalSeats, show.AvailableSeats+len(show.OccupiedSeats))
}

func TestReserveMarksSeatsAndDecrementsCounter(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seeded := insertShow(t, bunDB, 20, nil)

	show, err := store.Reserve(context.Background(), seeded.ShowID, []string{"A1", "A2", "A3"}, "alice@campus.edu")
	require.NoError(t, err)
	assert.Equal(t, 17, show.AvailableSeats)
	assert.Equal(t, "alice@campus.edu", show.OccupiedSeats["A1"])
	assert.Equal(t, "alice@campus.edu", show.OccupiedSeats["A3"])
	assertInvariant(t, show)

	// Committed state survives a reload.
	reloaded, err := store.GetShow(context.Background(), seeded.ShowID)
	require.NoError(t, err)
	assert.Equal(t, 17, reloaded.AvailableSeats)
	assert.Len(t, reloaded.OccupiedSeats, 3)
	assertInvariant(t, reloaded)
}

func TestReserveConflictWritesNothing(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seeded := insertShow(t, bunDB, 10, map[string]string{"A2": "bob@campus.edu"})

	_, err := store.Reserve(context.Background(), seeded.ShowID, []string{"A1", "A2", "A3"}, "alice@campus.edu")
	var conflict *inventory.SeatConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"A2"}, conflict.Seats)

	// No partial write: A1 and A3 stay free and the counter is untouched.
	reloaded, err := store.GetShow(context.Background(), seeded.ShowID)
	require.NoError(t, err)
	assert.Equal(t, 9, reloaded.AvailableSeats)
	assert.Len(t, reloaded.OccupiedSeats, 1)
	assert.Equal(t, "bob@campus.edu", reloaded.OccupiedSeats["A2"])
	assertInvariant(t, reloaded)
}

func TestReserveTreatsEmptyOwnerAsOccupied(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	// A seat held with an empty owner string is still held.
	seeded := insertShow(t, bunDB, 10, map[string]string{"B1": ""})

	_, err := store.Reserve(context.Background(), seeded.ShowID, []string{"B1"}, "alice@campus.edu")
	var conflict *inventory.SeatConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"B1"}, conflict.Seats)
}

func TestReserveUnknownShow(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	_, err := store.Reserve(context.Background(), "no-such-show", []string{"A1"}, "alice@campus.edu")
	assert.ErrorIs(t, err, inventory.ErrShowNotFound)
}

func TestReleaseIsIdempotent(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seeded := insertShow(t, bunDB, 10, map[string]string{
		"A1": "alice@campus.edu",
		"A2": "alice@campus.edu",
	})

	show, released, err := store.Release(context.Background(), seeded.ShowID, []string{"A1", "A2"})
	require.NoError(t, err)
	assert.Equal(t, 2, released)
	assert.Equal(t, 10, show.AvailableSeats)
	assertInvariant(t, show)

	// Releasing the same seats again changes nothing.
	show, released, err = store.Release(context.Background(), seeded.ShowID, []string{"A1", "A2"})
	require.NoError(t, err)
	assert.Equal(t, 0, released)
	assert.Equal(t, 10, show.AvailableSeats)
	assertInvariant(t, show)
}

func TestReleaseCountsOnlyHeldSeats(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seeded := insertShow(t, bunDB, 10, map[string]string{"A1": "alice@campus.edu"})

	// A3 was never occupied, so only A1 comes back.
	show, released, err := store.Release(context.Background(), seeded.ShowID, []string{"A1", "A3"})
	require.NoError(t, err)
	assert.Equal(t, 1, released)
	assert.Equal(t, 10, show.AvailableSeats)
	assertInvariant(t, show)
}

func TestCheckAvailable(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seeded := insertShow(t, bunDB, 10, map[string]string{"A1": "bob@campus.edu"})

	ok, conflicts, err := store.CheckAvailable(context.Background(), seeded.ShowID, []string{"A2", "A3"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, conflicts)

	ok, conflicts, err = store.CheckAvailable(context.Background(), seeded.ShowID, []string{"A1", "A2"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"A1"}, conflicts)
}

func TestConcurrentReserveSameSeat(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seeded := insertShow(t, bunDB, 10, nil)

	const attempts = 4
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.Reserve(context.Background(), seeded.ShowID, []string{"C5"}, "user@campus.edu")
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		// Losers see either the conflict or the retry budget running out.
		var conflict *inventory.SeatConflictError
		ok := errors.As(err, &conflict) || errors.Is(err, inventory.ErrShowBusy)
		assert.True(t, ok, "unexpected error: %v", err)
	}
	assert.Equal(t, 1, successes, "exactly one reservation of the same seat may win")

	reloaded, err := store.GetShow(context.Background(), seeded.ShowID)
	require.NoError(t, err)
	assert.Equal(t, "user@campus.edu", reloaded.OccupiedSeats["C5"])
	assert.Equal(t, 9, reloaded.AvailableSeats)
	assertInvariant(t, reloaded)
}
