package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Show is a bookable instance of an event at a specific date-time with its
// own seat inventory.
//
// OccupiedSeats maps seat ID (e.g. "A1") to the owner's email. A seat is
// occupied iff its key is PRESENT in the map; the value is never consulted
// for occupancy, so an empty owner string still occupies the seat.
//
// Invariant: AvailableSeats + len(OccupiedSeats) == TotalSeats after every
// committed mutation. Version guards that invariant: every inventory write
// increments it and is conditional on the value it read.
type Show struct {
	bun.BaseModel `bun:"table:shows"`

	ShowID         string            `bun:"show_id,pk" json:"show_id"`
	EventID        string            `bun:"event_id,notnull" json:"event_id"`
	ShowDateTime   time.Time         `bun:"show_datetime,notnull" json:"show_datetime"`
	ShowPrice      float64           `bun:"show_price,notnull" json:"show_price"`
	Theater        string            `bun:"theater" json:"theater,omitempty"`
	TotalSeats     int               `bun:"total_seats,notnull" json:"total_seats"`
	AvailableSeats int               `bun:"available_seats,notnull" json:"available_seats"`
	OccupiedSeats  map[string]string `bun:"occupied_seats,type:jsonb" json:"occupied_seats"`
	Version        int64             `bun:"version,notnull,default:0" json:"-"`
	CreatedAt      time.Time         `bun:"created_at,notnull" json:"created_at"`
}

// SeatAvailability is the response shape for the available-seats endpoint.
type SeatAvailability struct {
	ShowID         string   `json:"show_id"`
	AvailableSeats []string `json:"available_seats"`
	TotalSeats     int      `json:"total_seats"`
}
