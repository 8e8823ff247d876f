package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User mirrors the profile pushed by the external identity provider. The
// service never manages credentials; it only syncs what the IdP sends.
type User struct {
	bun.BaseModel `bun:"table:users"`

	UserID     string    `bun:"user_id,pk" json:"user_id"`
	ExternalID string    `bun:"external_id" json:"external_id,omitempty"`
	Name       string    `bun:"name,notnull" json:"name"`
	Email      string    `bun:"email,notnull,unique" json:"email"`
	Image      string    `bun:"image" json:"image,omitempty"`
	CreatedAt  time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at" json:"updated_at"`
}

// UserProfile bundles a user with their bookings, newest first.
type UserProfile struct {
	User     User      `json:"user"`
	Bookings []Booking `json:"bookings"`
}
