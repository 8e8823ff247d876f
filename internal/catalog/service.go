// Package catalog serves the browse side of the app: events and their shows.
// Reads are pure projections; the only write with any subtlety is show
// creation, which initialises the seat inventory the booking path relies on.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus-booking/internal/inventory"
	"campus-booking/internal/logger"
	"campus-booking/internal/models"

	"github.com/google/uuid"
)

// ErrEventNotFound is returned when the event id does not exist.
var ErrEventNotFound = errors.New("event not found")

// ErrValidation marks caller-correctable input problems; wrap it with the
// specifics: fmt.Errorf("%w: title is required", ErrValidation).
var ErrValidation = errors.New("validation failed")

type DBLayer interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	CreateEvent(ctx context.Context, e *models.Event) error
	UpdateEvent(ctx context.Context, e *models.Event) error
	DeleteEvent(ctx context.Context, id string) error

	ListShows(ctx context.Context) ([]models.Show, error)
	ListShowsByEvent(ctx context.Context, eventID string) ([]models.Show, error)
	GetShow(ctx context.Context, id string) (*models.Show, error)
	CreateShow(ctx context.Context, s *models.Show) error
	UpdateShow(ctx context.Context, s *models.Show) error
	DeleteShow(ctx context.Context, id string) error
}

// ReadFallback is a read-only catalog served when the primary store errors,
// so the browse pages stay up through a database outage. It is injected, not
// ambient; write paths never fall back.
type ReadFallback interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	ListShows(ctx context.Context) ([]models.Show, error)
	ListShowsByEvent(ctx context.Context, eventID string) ([]models.Show, error)
}

type Service struct {
	DB       DBLayer
	Fallback ReadFallback
	Logger   *logger.Logger
}

func NewService(db DBLayer, fallback ReadFallback, log *logger.Logger) *Service {
	return &Service{DB: db, Fallback: fallback, Logger: log}
}

// ---------------- EVENTS ----------------

func (s *Service) ListEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.DB.ListEvents(ctx)
	if err != nil && s.Fallback != nil {
		s.warn("CATALOG", fmt.Sprintf("event listing fell back to seed data: %v", err))
		return s.Fallback.ListEvents(ctx)
	}
	return events, err
}

func (s *Service) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.DB.GetEvent(ctx, id)
	if err != nil && !errors.Is(err, ErrEventNotFound) && s.Fallback != nil {
		s.warn("CATALOG", fmt.Sprintf("event %s read fell back to seed data: %v", id, err))
		return s.Fallback.GetEvent(ctx, id)
	}
	return event, err
}

func (s *Service) CreateEvent(ctx context.Context, req models.EventRequest) (*models.Event, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if req.PosterPath == "" {
		return nil, fmt.Errorf("%w: poster_path is required", ErrValidation)
	}

	now := time.Now().UTC()
	event := &models.Event{
		EventID:      uuid.NewString(),
		Title:        req.Title,
		Overview:     req.Overview,
		PosterPath:   req.PosterPath,
		BackdropPath: req.BackdropPath,
		ReleaseDate:  req.ReleaseDate,
		Tagline:      req.Tagline,
		Genres:       req.Genres,
		VoteAverage:  req.VoteAverage,
		Runtime:      req.Runtime,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.DB.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *Service) UpdateEvent(ctx context.Context, id string, req models.EventRequest) (*models.Event, error) {
	event, err := s.DB.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		event.Title = req.Title
	}
	if req.Overview != "" {
		event.Overview = req.Overview
	}
	if req.PosterPath != "" {
		event.PosterPath = req.PosterPath
	}
	if req.BackdropPath != "" {
		event.BackdropPath = req.BackdropPath
	}
	if req.ReleaseDate != "" {
		event.ReleaseDate = req.ReleaseDate
	}
	if req.Tagline != "" {
		event.Tagline = req.Tagline
	}
	if req.Genres != nil {
		event.Genres = req.Genres
	}
	if req.VoteAverage != 0 {
		event.VoteAverage = req.VoteAverage
	}
	if req.Runtime != 0 {
		event.Runtime = req.Runtime
	}
	event.UpdatedAt = time.Now().UTC()

	if err := s.DB.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("update event %s: %w", id, err)
	}
	return event, nil
}

func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	return s.DB.DeleteEvent(ctx, id)
}

// ---------------- SHOWS ----------------

func (s *Service) ListShows(ctx context.Context) ([]models.Show, error) {
	shows, err := s.DB.ListShows(ctx)
	if err != nil && s.Fallback != nil {
		s.warn("CATALOG", fmt.Sprintf("show listing fell back to seed data: %v", err))
		return s.Fallback.ListShows(ctx)
	}
	return shows, err
}

func (s *Service) ListShowsByEvent(ctx context.Context, eventID string) ([]models.Show, error) {
	shows, err := s.DB.ListShowsByEvent(ctx, eventID)
	if err != nil && s.Fallback != nil {
		s.warn("CATALOG", fmt.Sprintf("shows for event %s fell back to seed data: %v", eventID, err))
		return s.Fallback.ListShowsByEvent(ctx, eventID)
	}
	return shows, err
}

func (s *Service) GetShow(ctx context.Context, id string) (*models.Show, error) {
	return s.DB.GetShow(ctx, id)
}

func (s *Service) CreateShow(ctx context.Context, req models.ShowRequest) (*models.Show, error) {
	if req.EventID == "" {
		return nil, fmt.Errorf("%w: event_id is required", ErrValidation)
	}
	if req.ShowPrice <= 0 {
		return nil, fmt.Errorf("%w: show_price must be positive", ErrValidation)
	}
	if req.TotalSeats <= 0 {
		return nil, fmt.Errorf("%w: total_seats must be positive", ErrValidation)
	}
	when, err := time.Parse(time.RFC3339, req.ShowDateTime)
	if err != nil {
		return nil, fmt.Errorf("%w: show_datetime must be RFC3339", ErrValidation)
	}

	show := &models.Show{
		ShowID:         uuid.NewString(),
		EventID:        req.EventID,
		ShowDateTime:   when,
		ShowPrice:      req.ShowPrice,
		Theater:        req.Theater,
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.TotalSeats,
		OccupiedSeats:  map[string]string{},
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.DB.CreateShow(ctx, show); err != nil {
		return nil, fmt.Errorf("create show: %w", err)
	}
	return show, nil
}

// UpdateShow changes the schedule fields only. Seat inventory is off limits:
// the booking path is the sole writer of occupancy and the counter.
func (s *Service) UpdateShow(ctx context.Context, id string, req models.ShowRequest) (*models.Show, error) {
	show, err := s.DB.GetShow(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ShowDateTime != "" {
		when, err := time.Parse(time.RFC3339, req.ShowDateTime)
		if err != nil {
			return nil, fmt.Errorf("%w: show_datetime must be RFC3339", ErrValidation)
		}
		show.ShowDateTime = when
	}
	if req.ShowPrice > 0 {
		show.ShowPrice = req.ShowPrice
	}
	if req.Theater != "" {
		show.Theater = req.Theater
	}

	if err := s.DB.UpdateShow(ctx, show); err != nil {
		return nil, fmt.Errorf("update show %s: %w", id, err)
	}
	return show, nil
}

func (s *Service) DeleteShow(ctx context.Context, id string) error {
	return s.DB.DeleteShow(ctx, id)
}

// AvailableSeats lists the free seat IDs of a show's grid.
func (s *Service) AvailableSeats(ctx context.Context, showID string) (*models.SeatAvailability, error) {
	show, err := s.DB.GetShow(ctx, showID)
	if err != nil {
		return nil, err
	}

	available := []string{}
	for _, seat := range inventory.SeatGrid(show.TotalSeats) {
		if _, taken := show.OccupiedSeats[seat]; !taken {
			available = append(available, seat)
		}
	}
	return &models.SeatAvailability{
		ShowID:         show.ShowID,
		AvailableSeats: available,
		TotalSeats:     show.TotalSeats,
	}, nil
}

func (s *Service) warn(category, msg string) {
	if s.Logger != nil {
		s.Logger.Warn(category, msg)
	}
}
