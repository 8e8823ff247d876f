package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campus-booking/internal/catalog"
	"campus-booking/internal/inventory"
	"campus-booking/internal/models"

	"github.com/uptrace/bun"
)

// DB is the catalog's bun-backed storage layer.
type DB struct {
	Bun *bun.DB
}

func NewDB(bdb *bun.DB) *DB {
	return &DB{Bun: bdb}
}

func (d *DB) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (d *DB) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	event := new(models.Event)
	err := d.Bun.NewSelect().
		Model(event).
		Where("event_id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", id, err)
	}
	return event, nil
}

func (d *DB) CreateEvent(ctx context.Context, e *models.Event) error {
	_, err := d.Bun.NewInsert().Model(e).Exec(ctx)
	return err
}

func (d *DB) UpdateEvent(ctx context.Context, e *models.Event) error {
	res, err := d.Bun.NewUpdate().
		Model(e).
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return catalog.ErrEventNotFound
	}
	return nil
}

func (d *DB) DeleteEvent(ctx context.Context, id string) error {
	res, err := d.Bun.NewDelete().
		Model((*models.Event)(nil)).
		Where("event_id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return catalog.ErrEventNotFound
	}
	return nil
}

func (d *DB) ListShows(ctx context.Context) ([]models.Show, error) {
	var shows []models.Show
	err := d.Bun.NewSelect().
		Model(&shows).
		Order("show_datetime ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shows: %w", err)
	}
	return shows, nil
}

func (d *DB) ListShowsByEvent(ctx context.Context, eventID string) ([]models.Show, error) {
	var shows []models.Show
	err := d.Bun.NewSelect().
		Model(&shows).
		Where("event_id = ?", eventID).
		Order("show_datetime ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shows for event %s: %w", eventID, err)
	}
	return shows, nil
}

func (d *DB) GetShow(ctx context.Context, id string) (*models.Show, error) {
	show := new(models.Show)
	err := d.Bun.NewSelect().
		Model(show).
		Where("show_id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, inventory.ErrShowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get show %s: %w", id, err)
	}
	if show.OccupiedSeats == nil {
		show.OccupiedSeats = map[string]string{}
	}
	return show, nil
}

func (d *DB) CreateShow(ctx context.Context, s *models.Show) error {
	_, err := d.Bun.NewInsert().Model(s).Exec(ctx)
	return err
}

// UpdateShow persists the schedule fields. Inventory columns stay out of the
// column list so a concurrent booking can never be overwritten here.
func (d *DB) UpdateShow(ctx context.Context, s *models.Show) error {
	res, err := d.Bun.NewUpdate().
		Model(s).
		Column("show_datetime", "show_price", "theater").
		Where("show_id = ?", s.ShowID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return inventory.ErrShowNotFound
	}
	return nil
}

func (d *DB) DeleteShow(ctx context.Context, id string) error {
	res, err := d.Bun.NewDelete().
		Model((*models.Show)(nil)).
		Where("show_id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return inventory.ErrShowNotFound
	}
	return nil
}
