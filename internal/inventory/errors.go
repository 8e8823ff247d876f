// Package inventory owns per-show seat occupancy: who holds which seat and
// how many seats remain. Every mutation is all-or-nothing and guarded by an
// optimistic version check on the show row, so two concurrent writers can
// never both claim the same seat or corrupt the available-seats counter.
package inventory

import (
	"errors"
	"fmt"
	"strings"
)

// ErrShowNotFound is returned when the show row does not exist. Handlers
// translate this into an HTTP 404.
var ErrShowNotFound = errors.New("show not found")

// ErrShowBusy is returned when the bounded retry budget for the optimistic
// version check is exhausted. The operation had no effect and is safe to
// retry; handlers translate this into an HTTP 503.
var ErrShowBusy = errors.New("show is busy, retry")

// SeatConflictError reports exactly which requested seats were already
// occupied. The whole reservation is rejected; no seat was written.
type SeatConflictError struct {
	ShowID string
	Seats  []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seats already booked on show %s: %s", e.ShowID, strings.Join(e.Seats, ", "))
}
