package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"campus-booking/internal/admin"
	"campus-booking/internal/logger"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Admin  *admin.Service
	Logger *logger.Logger
}

// RegisterRoutes mounts the dashboard endpoints on an (already authenticated)
// router group.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard/stats", h.GetDashboard)
	r.Get("/bookings/recent", h.GetRecentBookings)
	r.Get("/events/{eventId}/stats", h.GetEventReport)
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Admin.Dashboard(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) GetRecentBookings(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "validation_error", "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	bookings, err := h.Admin.RecentBookings(r.Context(), limit)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *Handler) GetEventReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.Admin.EventReport(r.Context(), chi.URLParam(r, "eventId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "not_found", "event not found")
		return
	}
	if h.Logger != nil {
		h.Logger.Error("API", fmt.Sprintf("admin request failed: %v", err))
	}
	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}
