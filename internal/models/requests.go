package models

// EventRequest is the payload for creating or updating a catalog event.
type EventRequest struct {
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	Tagline      string  `json:"tagline"`
	Genres       []Genre `json:"genres"`
	VoteAverage  float64 `json:"vote_average"`
	Runtime      int     `json:"runtime"`
}

// ShowRequest is the payload for creating or updating a show. Seat inventory
// fields are not part of it: total seats is fixed at creation and the
// occupied map is only ever touched by the booking path.
type ShowRequest struct {
	EventID      string  `json:"event_id"`
	ShowDateTime string  `json:"show_datetime"`
	ShowPrice    float64 `json:"show_price"`
	TotalSeats   int     `json:"total_seats"`
	Theater      string  `json:"theater"`
}

// UserRequest is the payload for the user upsert pushed by the identity
// provider webhook.
type UserRequest struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Image      string `json:"image"`
}
