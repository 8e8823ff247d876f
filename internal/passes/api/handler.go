package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"campus-booking/internal/booking"
	"campus-booking/internal/logger"
	"campus-booking/internal/models"
	"campus-booking/internal/passes"

	"github.com/go-chi/chi/v5"
)

// BookingGetter is the slice of the booking service the pass endpoints need.
type BookingGetter interface {
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
}

type Handler struct {
	Passes   *passes.Service
	Bookings BookingGetter
	Logger   *logger.Logger
}

// GetPass handles GET /api/bookings/{bookingId}/pass. A confirmed booking
// whose pass went missing (issuance is best effort at booking time) gets one
// issued on the spot. ?format=png returns the raw QR image.
func (h *Handler) GetPass(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")

	pass, err := h.Passes.GetForBooking(r.Context(), bookingID)
	if errors.Is(err, passes.ErrPassNotFound) {
		b, berr := h.Bookings.GetBooking(r.Context(), bookingID)
		if berr != nil {
			h.respondError(w, berr)
			return
		}
		pass, err = h.Passes.IssueForBooking(r.Context(), b)
	}
	if err != nil {
		h.respondError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "png" {
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write(pass.QRCode)
		return
	}
	writeJSON(w, http.StatusOK, pass)
}

// CheckIn handles POST /api/bookings/{bookingId}/pass/checkin.
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	pass, err := h.Passes.CheckIn(r.Context(), chi.URLParam(r, "bookingId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Checked in successfully",
		"pass":    pass,
	})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, passes.ErrPassNotFound):
		writeError(w, http.StatusNotFound, "not_found", "entry pass not found")
	case errors.Is(err, booking.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, "not_found", "booking not found")
	case errors.Is(err, passes.ErrAlreadyCheckedIn):
		writeError(w, http.StatusConflict, "already_checked_in", "pass was already checked in")
	case errors.Is(err, passes.ErrBookingNotEligible):
		writeError(w, http.StatusConflict, "not_eligible", "only confirmed bookings have entry passes")
	default:
		if h.Logger != nil {
			h.Logger.Error("API", fmt.Sprintf("pass request failed: %v", err))
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
