package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campus-booking/internal/models"
	"campus-booking/internal/users"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func NewDB(bdb *bun.DB) *DB {
	return &DB{Bun: bdb}
}

// UpsertUser inserts the profile, or refreshes the mutable fields when the
// email already exists. The original user_id and created_at survive the
// update.
func (d *DB) UpsertUser(ctx context.Context, u *models.User) error {
	_, err := d.Bun.NewInsert().
		Model(u).
		On("CONFLICT (email) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("image = EXCLUDED.image").
		Set("external_id = EXCLUDED.external_id").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", u.Email, err)
	}

	// Re-read so a conflict path hands back the stored identity, not the
	// freshly generated one.
	stored, err := d.GetUserByEmail(ctx, u.Email)
	if err != nil {
		return err
	}
	*u = *stored
	return nil
}

func (d *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := new(models.User)
	err := d.Bun.NewSelect().
		Model(user).
		Where("email = ?", email).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", email, err)
	}
	return user, nil
}

func (d *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	var list []models.User
	err := d.Bun.NewSelect().
		Model(&list).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return list, nil
}

func (d *DB) DeleteUser(ctx context.Context, email string) error {
	res, err := d.Bun.NewDelete().
		Model((*models.User)(nil)).
		Where("email = ?", email).
		Exec(ctx)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return users.ErrUserNotFound
	}
	return nil
}
