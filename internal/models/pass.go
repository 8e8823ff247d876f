package models

import (
	"time"

	"github.com/uptrace/bun"
)

// EntryPass is the QR entry pass issued for a confirmed booking. One pass per
// booking; the QR payload is AES-encrypted so the gate scanner is the only
// consumer that can read it.
type EntryPass struct {
	bun.BaseModel `bun:"table:entry_passes"`

	PassID      string    `bun:"pass_id,pk" json:"pass_id"`
	BookingID   string    `bun:"booking_id,notnull,unique" json:"booking_id"`
	QRCode      []byte    `bun:"qr_code" json:"qr_code,omitempty"`
	IssuedAt    time.Time `bun:"issued_at,notnull" json:"issued_at"`
	CheckedIn   bool      `bun:"checked_in" json:"checked_in"`
	CheckedInAt time.Time `bun:"checked_in_at,nullzero" json:"checked_in_at,omitempty"`
}

// PassClaim is what gets encrypted into the QR image.
type PassClaim struct {
	PassID    string    `json:"pass_id"`
	BookingID string    `json:"booking_id"`
	ShowID    string    `json:"show_id"`
	Seats     []string  `json:"seats"`
	UserEmail string    `json:"user_email"`
	IssuedAt  time.Time `json:"issued_at"`
}
