package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"campus-booking/internal/auth"
	"campus-booking/internal/booking"
	"campus-booking/internal/inventory"
	"campus-booking/internal/logger"
	"campus-booking/internal/models"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Bookings *booking.Service
	Logger   *logger.Logger
}

// CreateBooking handles POST /api/bookings. If the payload omits the owner
// identity and the request carries a bearer token, the token's claims fill
// the gap; the external IdP is trusted for identity either way.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body: "+err.Error())
		return
	}

	if req.UserEmail == "" {
		if token, err := auth.ExtractTokenFromRequest(r); err == nil {
			if claims, err := auth.ExtractClaims(token); err == nil {
				req.UserEmail = claims.Email
				if req.UserName == "" {
					req.UserName = claims.Name
				}
			}
		}
	}

	b, err := h.Bookings.CreateBooking(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.Bookings.GetBooking(r.Context(), chi.URLParam(r, "bookingId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// ListBookings handles GET /api/bookings with an optional ?email= filter.
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.Bookings.ListBookings(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// GetUserBookings handles GET /api/bookings/user/{email}.
func (h *Handler) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "email is required")
		return
	}
	bookings, err := h.Bookings.ListBookings(r.Context(), email)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.Bookings.CancelBooking(r.Context(), chi.URLParam(r, "bookingId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Booking cancelled successfully",
		"booking": b,
	})
}

func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	if err := h.Bookings.DeleteBooking(r.Context(), chi.URLParam(r, "bookingId")); err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Booking deleted successfully"})
}

// respondError maps service errors onto the HTTP boundary. Seat conflicts are
// machine-distinguishable so a client can re-render its seat map instead of
// showing a generic failure.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var validationErr *booking.ValidationError
	var conflictErr *inventory.SeatConflictError

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, "validation_error", validationErr.Error())
	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":             "seat_conflict",
			"message":           conflictErr.Error(),
			"conflicting_seats": conflictErr.Seats,
		})
	case errors.Is(err, booking.ErrAlreadyCancelled):
		writeError(w, http.StatusConflict, "already_cancelled", "booking is already cancelled")
	case errors.Is(err, booking.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, "not_found", "booking not found")
	case errors.Is(err, inventory.ErrShowNotFound):
		writeError(w, http.StatusNotFound, "not_found", "show not found")
	case errors.Is(err, inventory.ErrShowBusy):
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"error":     "busy",
			"message":   "show is busy, please retry",
			"retryable": true,
		})
	default:
		if h.Logger != nil {
			h.Logger.Error("API", fmt.Sprintf("booking request failed: %v", err))
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}
