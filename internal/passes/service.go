// Package passes issues QR entry passes for confirmed bookings and handles
// gate check-in. Issuance is best effort from the booking path's point of
// view; a pass can always be re-issued later from the booking page.
package passes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus-booking/internal/logger"
	"campus-booking/internal/models"
	"campus-booking/internal/passes/qr"

	"github.com/google/uuid"
)

var (
	ErrPassNotFound       = errors.New("entry pass not found")
	ErrAlreadyCheckedIn   = errors.New("pass already checked in")
	ErrBookingNotEligible = errors.New("booking is not eligible for an entry pass")
)

type DBLayer interface {
	CreatePass(ctx context.Context, p *models.EntryPass) error
	GetPassByBooking(ctx context.Context, bookingID string) (*models.EntryPass, error)
	MarkCheckedIn(ctx context.Context, passID string, at time.Time) error
}

type Service struct {
	DB     DBLayer
	QR     *qr.Generator
	Logger *logger.Logger
}

func NewService(db DBLayer, generator *qr.Generator, log *logger.Logger) *Service {
	return &Service{DB: db, QR: generator, Logger: log}
}

// IssueForBooking creates the pass for a confirmed booking. Idempotent: if a
// pass already exists for the booking it is returned as is.
func (s *Service) IssueForBooking(ctx context.Context, b *models.Booking) (*models.EntryPass, error) {
	if b.Status != models.BookingStatusConfirmed {
		return nil, ErrBookingNotEligible
	}

	existing, err := s.DB.GetPassByBooking(ctx, b.BookingID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrPassNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	pass := &models.EntryPass{
		PassID:    uuid.NewString(),
		BookingID: b.BookingID,
		IssuedAt:  now,
	}

	code, err := s.QR.Generate(models.PassClaim{
		PassID:    pass.PassID,
		BookingID: b.BookingID,
		ShowID:    b.ShowID,
		Seats:     b.BookedSeats,
		UserEmail: b.UserEmail,
		IssuedAt:  now,
	})
	if err != nil {
		return nil, fmt.Errorf("render pass QR for booking %s: %w", b.BookingID, err)
	}
	pass.QRCode = code

	if err := s.DB.CreatePass(ctx, pass); err != nil {
		return nil, fmt.Errorf("store pass for booking %s: %w", b.BookingID, err)
	}
	if s.Logger != nil {
		s.Logger.Info("PASSES", fmt.Sprintf("issued entry pass %s for booking %s", pass.PassID, b.BookingID))
	}
	return pass, nil
}

func (s *Service) GetForBooking(ctx context.Context, bookingID string) (*models.EntryPass, error) {
	return s.DB.GetPassByBooking(ctx, bookingID)
}

// CheckIn flips the pass to checked-in exactly once. A second scan of the
// same pass is rejected so one QR image cannot admit two groups.
func (s *Service) CheckIn(ctx context.Context, bookingID string) (*models.EntryPass, error) {
	pass, err := s.DB.GetPassByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if pass.CheckedIn {
		return nil, ErrAlreadyCheckedIn
	}

	now := time.Now().UTC()
	if err := s.DB.MarkCheckedIn(ctx, pass.PassID, now); err != nil {
		return nil, fmt.Errorf("check in pass %s: %w", pass.PassID, err)
	}
	pass.CheckedIn = true
	pass.CheckedInAt = now
	return pass, nil
}
