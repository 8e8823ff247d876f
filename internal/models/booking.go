package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Booking is one confirmed (or later cancelled) reservation of seats on a
// single show. Bookings are created only by the booking service, never by a
// handler writing to the table directly.
type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	BookingID   string    `bun:"booking_id,pk" json:"booking_id"`
	EventID     string    `bun:"event_id,notnull" json:"event_id"`
	ShowID      string    `bun:"show_id" json:"show_id"`
	UserName    string    `bun:"user_name" json:"user_name"`
	UserEmail   string    `bun:"user_email,notnull" json:"user_email"`
	BookedSeats []string  `bun:"booked_seats,type:jsonb" json:"booked_seats"`
	Amount      float64   `bun:"amount" json:"amount"`
	IsPaid      bool      `bun:"is_paid" json:"is_paid"`
	Status      string    `bun:"status,notnull" json:"status"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at"`
}

// BookingRequest is the payload accepted by POST /api/bookings. Fields are
// validated explicitly at the boundary; the store never sees a raw payload.
type BookingRequest struct {
	ShowID    string   `json:"show_id"`
	UserName  string   `json:"user_name"`
	UserEmail string   `json:"user_email"`
	Seats     []string `json:"seats"`
	Amount    float64  `json:"amount"`
}
