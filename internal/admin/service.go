// Package admin aggregates the dashboard numbers. Everything here is a
// read-only projection over the live tables; nothing is precomputed.
package admin

import (
	"context"
	"fmt"

	"campus-booking/internal/models"

	"github.com/uptrace/bun"
)

// DashboardStats is the headline card of the admin dashboard.
type DashboardStats struct {
	TotalEvents       int     `json:"total_events"`
	TotalShows        int     `json:"total_shows"`
	TotalBookings     int     `json:"total_bookings"`
	ActiveBookings    int     `json:"active_bookings"`
	CancelledBookings int     `json:"cancelled_bookings"`
	TotalUsers        int     `json:"total_users"`
	TotalRevenue      float64 `json:"total_revenue"`
	SeatsSold         int     `json:"seats_sold"`
}

// ShowStats is the per-show breakdown inside an event report.
type ShowStats struct {
	Show     models.Show `json:"show"`
	Bookings int         `json:"bookings"`
	Revenue  float64     `json:"revenue"`
	Occupied int         `json:"occupied_seats"`
}

// EventStats is the drill-down report for one event.
type EventStats struct {
	Event   models.Event `json:"event"`
	Shows   []ShowStats  `json:"shows"`
	Revenue float64      `json:"revenue"`
}

type Service struct {
	Bun *bun.DB
}

func NewService(bdb *bun.DB) *Service {
	return &Service{Bun: bdb}
}

func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	var err error
	if stats.TotalEvents, err = s.Bun.NewSelect().Model((*models.Event)(nil)).Count(ctx); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	if stats.TotalShows, err = s.Bun.NewSelect().Model((*models.Show)(nil)).Count(ctx); err != nil {
		return nil, fmt.Errorf("count shows: %w", err)
	}
	if stats.TotalBookings, err = s.Bun.NewSelect().Model((*models.Booking)(nil)).Count(ctx); err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	if stats.CancelledBookings, err = s.Bun.NewSelect().
		Model((*models.Booking)(nil)).
		Where("status = ?", models.BookingStatusCancelled).
		Count(ctx); err != nil {
		return nil, fmt.Errorf("count cancelled bookings: %w", err)
	}
	stats.ActiveBookings = stats.TotalBookings - stats.CancelledBookings
	if stats.TotalUsers, err = s.Bun.NewSelect().Model((*models.User)(nil)).Count(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	// Cancelled bookings keep their row but stop counting towards revenue.
	// The 0.0 literal keeps the fallback a float so the scan works on every
	// dialect (an integer 0 cannot scan into float64 on SQLite).
	err = s.Bun.NewSelect().
		Model((*models.Booking)(nil)).
		ColumnExpr("COALESCE(SUM(amount), 0.0)").
		Where("status = ?", models.BookingStatusConfirmed).
		Scan(ctx, &stats.TotalRevenue)
	if err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}

	// Seats sold comes from the inventory counters, the source of truth for
	// occupancy.
	var shows []models.Show
	if err := s.Bun.NewSelect().Model(&shows).Scan(ctx); err != nil {
		return nil, fmt.Errorf("load shows for seat totals: %w", err)
	}
	for i := range shows {
		stats.SeatsSold += shows[i].TotalSeats - shows[i].AvailableSeats
	}
	return stats, nil
}

// RecentBookings returns the latest bookings, newest first. limit <= 0 means
// the default of 10.
func (s *Service) RecentBookings(ctx context.Context, limit int) ([]models.Booking, error) {
	if limit <= 0 {
		limit = 10
	}
	var bookings []models.Booking
	err := s.Bun.NewSelect().
		Model(&bookings).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("recent bookings: %w", err)
	}
	return bookings, nil
}

// EventReport builds the per-show breakdown for one event.
func (s *Service) EventReport(ctx context.Context, eventID string) (*EventStats, error) {
	event := new(models.Event)
	err := s.Bun.NewSelect().
		Model(event).
		Where("event_id = ?", eventID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load event %s: %w", eventID, err)
	}

	var shows []models.Show
	err = s.Bun.NewSelect().
		Model(&shows).
		Where("event_id = ?", eventID).
		Order("show_datetime ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load shows for event %s: %w", eventID, err)
	}

	report := &EventStats{Event: *event, Shows: make([]ShowStats, 0, len(shows))}
	for i := range shows {
		show := shows[i]

		count, err := s.Bun.NewSelect().
			Model((*models.Booking)(nil)).
			Where("show_id = ?", show.ShowID).
			Where("status = ?", models.BookingStatusConfirmed).
			Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count bookings for show %s: %w", show.ShowID, err)
		}

		var revenue float64
		err = s.Bun.NewSelect().
			Model((*models.Booking)(nil)).
			ColumnExpr("COALESCE(SUM(amount), 0.0)").
			Where("show_id = ?", show.ShowID).
			Where("status = ?", models.BookingStatusConfirmed).
			Scan(ctx, &revenue)
		if err != nil {
			return nil, fmt.Errorf("sum revenue for show %s: %w", show.ShowID, err)
		}

		report.Shows = append(report.Shows, ShowStats{
			Show:     show,
			Bookings: count,
			Revenue:  revenue,
			Occupied: show.TotalSeats - show.AvailableSeats,
		})
		report.Revenue += revenue
	}
	return report, nil
}
