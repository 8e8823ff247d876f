package models

import (
	"errors"
	"time"
)

const (
	SeatStatusOccupied  = "occupied"
	SeatStatusAvailable = "available"
)

// SeatStatusEvent is published to Kafka and pushed over SSE whenever seats on
// a show change state, so clients can re-render their seat map instead of
// guessing from a failed booking.
type SeatStatusEvent struct {
	ShowID         string    `json:"show_id"`
	SeatIDs        []string  `json:"seat_ids"`
	Status         string    `json:"status"`
	AvailableSeats int       `json:"available_seats"`
	Timestamp      time.Time `json:"timestamp"`
}

func NewSeatStatusEvent(showID string, seatIDs []string, status string, available int) (SeatStatusEvent, error) {
	if status != SeatStatusOccupied && status != SeatStatusAvailable {
		return SeatStatusEvent{}, errors.New("invalid seat status: " + status)
	}
	return SeatStatusEvent{
		ShowID:         showID,
		SeatIDs:        seatIDs,
		Status:         status,
		AvailableSeats: available,
		Timestamp:      time.Now().UTC(),
	}, nil
}
