package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"campus-booking/internal/catalog"
	"campus-booking/internal/inventory"
	"campus-booking/internal/logger"
	"campus-booking/internal/models"
	"campus-booking/internal/sse"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Catalog *catalog.Service
	Seats   *sse.Broadcaster
	Logger  *logger.Logger
}

// ---------------- EVENTS ----------------

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Catalog.ListEvents(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.Catalog.GetEvent(r.Context(), chi.URLParam(r, "eventId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body: "+err.Error())
		return
	}
	event, err := h.Catalog.CreateEvent(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body: "+err.Error())
		return
	}
	event, err := h.Catalog.UpdateEvent(r.Context(), chi.URLParam(r, "eventId"), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteEvent(r.Context(), chi.URLParam(r, "eventId")); err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Event deleted successfully"})
}

// ---------------- SHOWS ----------------

func (h *Handler) ListShows(w http.ResponseWriter, r *http.Request) {
	if eventID := r.URL.Query().Get("event_id"); eventID != "" {
		shows, err := h.Catalog.ListShowsByEvent(r.Context(), eventID)
		if err != nil {
			h.respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, shows)
		return
	}
	shows, err := h.Catalog.ListShows(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shows)
}

func (h *Handler) GetShowsByEvent(w http.ResponseWriter, r *http.Request) {
	shows, err := h.Catalog.ListShowsByEvent(r.Context(), chi.URLParam(r, "eventId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shows)
}

func (h *Handler) GetShow(w http.ResponseWriter, r *http.Request) {
	show, err := h.Catalog.GetShow(r.Context(), chi.URLParam(r, "showId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, show)
}

func (h *Handler) CreateShow(w http.ResponseWriter, r *http.Request) {
	var req models.ShowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body: "+err.Error())
		return
	}
	show, err := h.Catalog.CreateShow(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, show)
}

func (h *Handler) UpdateShow(w http.ResponseWriter, r *http.Request) {
	var req models.ShowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body: "+err.Error())
		return
	}
	show, err := h.Catalog.UpdateShow(r.Context(), chi.URLParam(r, "showId"), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, show)
}

func (h *Handler) DeleteShow(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteShow(r.Context(), chi.URLParam(r, "showId")); err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Show deleted successfully"})
}

// GetAvailableSeats handles GET /api/shows/{showId}/seats.
func (h *Handler) GetAvailableSeats(w http.ResponseWriter, r *http.Request) {
	availability, err := h.Catalog.AvailableSeats(r.Context(), chi.URLParam(r, "showId"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, availability)
}

// StreamSeats handles GET /api/shows/{showId}/seats/stream. It pushes seat
// status changes as SSE until the client disconnects.
func (h *Handler) StreamSeats(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported", "streaming unsupported")
		return
	}
	showID := chi.URLParam(r, "showId")

	// Fail early on unknown shows rather than holding a dead stream open.
	if _, err := h.Catalog.GetShow(r.Context(), showID); err != nil {
		h.respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := h.Seats.Subscribe(r.Context(), showID)
	fmt.Fprintf(w, "event: connected\ndata: {\"show_id\":%q}\n\n", showID)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: seats\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, catalog.ErrEventNotFound):
		writeError(w, http.StatusNotFound, "not_found", "event not found")
	case errors.Is(err, inventory.ErrShowNotFound):
		writeError(w, http.StatusNotFound, "not_found", "show not found")
	default:
		if h.Logger != nil {
			h.Logger.Error("API", fmt.Sprintf("catalog request failed: %v", err))
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
