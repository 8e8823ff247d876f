package booking

import (
	"errors"
	"fmt"
)

// ErrBookingNotFound is returned when the booking id does not exist.
// Handlers translate this into an HTTP 404.
var ErrBookingNotFound = errors.New("booking not found")

// ErrAlreadyCancelled signals a second cancellation of the same booking. The
// first cancellation already released the seats; repeating it must never
// release them again, so the caller gets an explicit signal instead of a
// silent no-op.
var ErrAlreadyCancelled = errors.New("booking already cancelled")

// ValidationError reports a missing or malformed field in a caller-supplied
// payload. Handlers translate this into an HTTP 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
