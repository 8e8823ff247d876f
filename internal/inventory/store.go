package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"campus-booking/internal/models"

	"github.com/uptrace/bun"
)

const defaultMaxRetries = 3

// Store reads and mutates the seat inventory on the shows table.
type Store struct {
	Bun        *bun.DB
	MaxRetries int
}

func NewStore(db *bun.DB, maxRetries int) *Store {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &Store{Bun: db, MaxRetries: maxRetries}
}

// GetShow fetches one show row.
func (s *Store) GetShow(ctx context.Context, showID string) (*models.Show, error) {
	var show models.Show
	err := s.Bun.NewSelect().
		Model(&show).
		Where("show_id = ?", showID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load show %s: %w", showID, err)
	}
	if show.OccupiedSeats == nil {
		show.OccupiedSeats = map[string]string{}
	}
	return &show, nil
}

// CheckAvailable reports whether every requested seat is free on a single
// snapshot of the show, and which ones are not.
func (s *Store) CheckAvailable(ctx context.Context, showID string, seatIDs []string) (bool, []string, error) {
	show, err := s.GetShow(ctx, showID)
	if err != nil {
		return false, nil, err
	}
	conflicts := conflictingSeats(show.OccupiedSeats, seatIDs)
	return len(conflicts) == 0, conflicts, nil
}

// Reserve writes every seat in seatIDs into the occupied map with ownerID and
// decrements the available counter by len(seatIDs) in one conditional update.
// If any seat is already occupied nothing is written and a *SeatConflictError
// names the offenders. A lost version race reloads and retries up to
// MaxRetries times before giving up with ErrShowBusy.
//
// The returned show is the state as committed.
func (s *Store) Reserve(ctx context.Context, showID string, seatIDs []string, ownerID string) (*models.Show, error) {
	if len(seatIDs) == 0 {
		return nil, errors.New("no seats requested")
	}

	for attempt := 0; attempt <= s.MaxRetries; attempt++ {
		show, err := s.GetShow(ctx, showID)
		if err != nil {
			return nil, err
		}

		conflicts := conflictingSeats(show.OccupiedSeats, seatIDs)
		if len(conflicts) > 0 {
			return nil, &SeatConflictError{ShowID: showID, Seats: conflicts}
		}

		occupied := make(map[string]string, len(show.OccupiedSeats)+len(seatIDs))
		for seat, owner := range show.OccupiedSeats {
			occupied[seat] = owner
		}
		for _, seat := range seatIDs {
			occupied[seat] = ownerID
		}

		prevVersion := show.Version
		show.OccupiedSeats = occupied
		show.AvailableSeats -= len(seatIDs)
		show.Version = prevVersion + 1

		ok, err := s.commit(ctx, show, prevVersion)
		if err != nil {
			return nil, err
		}
		if ok {
			return show, nil
		}
		// Lost the race against a concurrent writer; reload and re-check.
	}
	return nil, ErrShowBusy
}

// Release removes the given seats from the occupied map and increments the
// available counter by the number of seats actually removed. Releasing a seat
// that is already free is a no-op per seat, so the call is idempotent.
func (s *Store) Release(ctx context.Context, showID string, seatIDs []string) (*models.Show, int, error) {
	for attempt := 0; attempt <= s.MaxRetries; attempt++ {
		show, err := s.GetShow(ctx, showID)
		if err != nil {
			return nil, 0, err
		}

		occupied := make(map[string]string, len(show.OccupiedSeats))
		for seat, owner := range show.OccupiedSeats {
			occupied[seat] = owner
		}
		released := 0
		for _, seat := range seatIDs {
			if _, taken := occupied[seat]; taken {
				delete(occupied, seat)
				released++
			}
		}
		if released == 0 {
			return show, 0, nil
		}

		prevVersion := show.Version
		show.OccupiedSeats = occupied
		show.AvailableSeats += released
		show.Version = prevVersion + 1

		ok, err := s.commit(ctx, show, prevVersion)
		if err != nil {
			return nil, 0, err
		}
		if ok {
			return show, released, nil
		}
	}
	return nil, 0, ErrShowBusy
}

// commit writes the inventory columns conditional on the version the caller
// read. Returns false when a concurrent writer got there first.
func (s *Store) commit(ctx context.Context, show *models.Show, prevVersion int64) (bool, error) {
	res, err := s.Bun.NewUpdate().
		Model(show).
		Column("occupied_seats", "available_seats", "version").
		Where("show_id = ?", show.ShowID).
		Where("version = ?", prevVersion).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("update show %s inventory: %w", show.ShowID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// conflictingSeats tests key PRESENCE, never the value: a seat held with an
// empty owner string is still occupied.
func conflictingSeats(occupied map[string]string, seatIDs []string) []string {
	var conflicts []string
	for _, seat := range seatIDs {
		if _, taken := occupied[seat]; taken {
			conflicts = append(conflicts, seat)
		}
	}
	sort.Strings(conflicts)
	return conflicts
}
