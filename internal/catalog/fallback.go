package catalog

import (
	"context"
	"time"

	"campus-booking/internal/models"
)

// SeedCatalog is an in-memory ReadFallback with a small fixed programme, so
// the browse pages render something sensible while the database is down.
type SeedCatalog struct {
	events []models.Event
	shows  []models.Show
}

func NewSeedCatalog() *SeedCatalog {
	now := time.Now().UTC()
	events := []models.Event{
		{
			EventID:     "seed-orientation-night",
			Title:       "Orientation Night Live",
			Overview:    "Kick off the semester with live music and club showcases at the main auditorium.",
			PosterPath:  "/seed/orientation-night.jpg",
			ReleaseDate: now.Format("2006-01-02"),
			Tagline:     "Start the year loud",
			Genres:      []models.Genre{{ID: 1, Name: "Music"}},
			VoteAverage: 8.2,
			Runtime:     120,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			EventID:     "seed-tech-symposium",
			Title:       "Annual Tech Symposium",
			Overview:    "Student research demos, guest keynotes and the robotics finals.",
			PosterPath:  "/seed/tech-symposium.jpg",
			ReleaseDate: now.Format("2006-01-02"),
			Tagline:     "Build. Demo. Repeat.",
			Genres:      []models.Genre{{ID: 2, Name: "Technology"}},
			VoteAverage: 7.9,
			Runtime:     180,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
	shows := []models.Show{
		{
			ShowID:         "seed-show-orientation-1",
			EventID:        "seed-orientation-night",
			ShowDateTime:   now.Add(48 * time.Hour),
			ShowPrice:      5,
			Theater:        "Main Auditorium",
			TotalSeats:     100,
			AvailableSeats: 100,
			OccupiedSeats:  map[string]string{},
			CreatedAt:      now,
		},
		{
			ShowID:         "seed-show-symposium-1",
			EventID:        "seed-tech-symposium",
			ShowDateTime:   now.Add(96 * time.Hour),
			ShowPrice:      0,
			Theater:        "Engineering Hall B",
			TotalSeats:     60,
			AvailableSeats: 60,
			OccupiedSeats:  map[string]string{},
			CreatedAt:      now,
		},
	}
	return &SeedCatalog{events: events, shows: shows}
}

func (c *SeedCatalog) ListEvents(_ context.Context) ([]models.Event, error) {
	out := make([]models.Event, len(c.events))
	copy(out, c.events)
	return out, nil
}

func (c *SeedCatalog) GetEvent(_ context.Context, id string) (*models.Event, error) {
	for i := range c.events {
		if c.events[i].EventID == id {
			event := c.events[i]
			return &event, nil
		}
	}
	return nil, ErrEventNotFound
}

func (c *SeedCatalog) ListShows(_ context.Context) ([]models.Show, error) {
	out := make([]models.Show, len(c.shows))
	copy(out, c.shows)
	return out, nil
}

func (c *SeedCatalog) ListShowsByEvent(_ context.Context, eventID string) ([]models.Show, error) {
	out := []models.Show{}
	for i := range c.shows {
		if c.shows[i].EventID == eventID {
			out = append(out, c.shows[i])
		}
	}
	return out, nil
}
