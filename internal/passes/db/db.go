package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campus-booking/internal/models"
	"campus-booking/internal/passes"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func NewDB(bdb *bun.DB) *DB {
	return &DB{Bun: bdb}
}

func (d *DB) CreatePass(ctx context.Context, p *models.EntryPass) error {
	_, err := d.Bun.NewInsert().Model(p).Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert pass %s: %w", p.PassID, err)
	}
	return nil
}

func (d *DB) GetPassByBooking(ctx context.Context, bookingID string) (*models.EntryPass, error) {
	pass := new(models.EntryPass)
	err := d.Bun.NewSelect().
		Model(pass).
		Where("booking_id = ?", bookingID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, passes.ErrPassNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pass for booking %s: %w", bookingID, err)
	}
	return pass, nil
}

// MarkCheckedIn flips checked_in only when it was false, so the single-scan
// rule holds even against two concurrent gate scans.
func (d *DB) MarkCheckedIn(ctx context.Context, passID string, at time.Time) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.EntryPass)(nil)).
		Set("checked_in = ?", true).
		Set("checked_in_at = ?", at).
		Where("pass_id = ?", passID).
		Where("checked_in = ?", false).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return passes.ErrAlreadyCheckedIn
	}
	return nil
}
