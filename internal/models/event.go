package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Genre is a small embedded tag on an event, e.g. {"id": 4, "name": "Cultural"}.
type Genre struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}

// Event is a catalog entry. It owns zero or more shows; shows keep their own
// seat inventory.
type Event struct {
	bun.BaseModel `bun:"table:events"`

	EventID      string    `bun:"event_id,pk" json:"event_id"`
	Title        string    `bun:"title,notnull" json:"title"`
	Overview     string    `bun:"overview" json:"overview,omitempty"`
	PosterPath   string    `bun:"poster_path,notnull" json:"poster_path"`
	BackdropPath string    `bun:"backdrop_path" json:"backdrop_path,omitempty"`
	ReleaseDate  string    `bun:"release_date" json:"release_date,omitempty"`
	Tagline      string    `bun:"tagline" json:"tagline,omitempty"`
	Genres       []Genre   `bun:"genres,type:jsonb" json:"genres,omitempty"`
	VoteAverage  float64   `bun:"vote_average" json:"vote_average"`
	Runtime      int       `bun:"runtime" json:"runtime"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at" json:"updated_at"`
}
