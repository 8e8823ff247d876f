// Package booking is the transaction coordinator: the only code path that
// creates or cancels a booking, and therefore the only code path that moves
// seats between free and occupied. The check-then-reserve sequence for a show
// runs under that show's Redis lock, and the inventory store's version check
// backs it up, so overlapping requests can never double-sell a seat.
package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"campus-booking/internal/inventory"
	"campus-booking/internal/kafka"
	"campus-booking/internal/logger"
	"campus-booking/internal/models"

	"github.com/google/uuid"
)

const (
	defaultLockWait   = 2 * time.Second
	lockRetryInterval = 50 * time.Millisecond
)

type DBLayer interface {
	CreateBooking(ctx context.Context, b models.Booking) error
	GetBookingByID(ctx context.Context, id string) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id, status string) error
	DeleteBooking(ctx context.Context, id string) error
	ListBookings(ctx context.Context, limit int) ([]models.Booking, error)
	ListBookingsByEmail(ctx context.Context, email string) ([]models.Booking, error)
}

type SeatInventory interface {
	GetShow(ctx context.Context, showID string) (*models.Show, error)
	Reserve(ctx context.Context, showID string, seatIDs []string, ownerID string) (*models.Show, error)
	Release(ctx context.Context, showID string, seatIDs []string) (*models.Show, int, error)
}

type ShowLocker interface {
	LockShow(ctx context.Context, showID, token string) (bool, error)
	UnlockShow(ctx context.Context, showID, token string) error
}

type Publisher interface {
	Publish(topic string, key string, value []byte) error
}

type PassIssuer interface {
	IssueForBooking(ctx context.Context, b models.Booking) error
}

type SeatNotifier interface {
	Broadcast(event models.SeatStatusEvent)
}

type Service struct {
	DB        DBLayer
	Inventory SeatInventory
	Locks     ShowLocker
	Kafka     Publisher
	Passes    PassIssuer
	Notifier  SeatNotifier
	Logger    *logger.Logger

	// LockWait bounds how long a booking attempt waits for the per-show
	// lock before failing with a retryable busy signal.
	LockWait time.Duration
}

func NewService(db DBLayer, inv SeatInventory, locks ShowLocker, pub Publisher, log *logger.Logger) *Service {
	return &Service{DB: db, Inventory: inv, Locks: locks, Kafka: pub, Logger: log}
}

// CreateBooking validates the request, reserves the seats and persists the
// ledger entry, or fails leaving no partial effect. Step order matters: the
// occupancy check and the occupancy write happen inside Reserve under the
// show lock, and a failed persist releases the seats before the error
// surfaces.
func (s *Service) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	if err := validateBookingRequest(req); err != nil {
		return nil, err
	}

	token := uuid.NewString()
	if err := s.acquireShowLock(ctx, req.ShowID, token); err != nil {
		return nil, err
	}
	defer s.unlockShow(ctx, req.ShowID, token)

	show, err := s.Inventory.Reserve(ctx, req.ShowID, req.Seats, req.UserEmail)
	if err != nil {
		return nil, err
	}

	amount := req.Amount
	if amount <= 0 {
		amount = show.ShowPrice * float64(len(req.Seats))
	}

	b := models.Booking{
		BookingID:   uuid.NewString(),
		EventID:     show.EventID,
		ShowID:      show.ShowID,
		UserName:    req.UserName,
		UserEmail:   req.UserEmail,
		BookedSeats: req.Seats,
		Amount:      amount,
		IsPaid:      true, // payment is stubbed: every booking is recorded as paid
		Status:      models.BookingStatusConfirmed,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.DB.CreateBooking(ctx, b); err != nil {
		// The seats are reserved but there is no ledger entry to justify
		// them. Release before surfacing, otherwise they stay locked forever.
		if _, _, rbErr := s.Inventory.Release(ctx, req.ShowID, req.Seats); rbErr != nil {
			s.logError("BOOKING", fmt.Sprintf("rollback of seats %s on show %s failed: %v", strings.Join(req.Seats, ","), req.ShowID, rbErr))
			return nil, fmt.Errorf("persist booking failed (%v); seat rollback also failed: %w", err, rbErr)
		}
		return nil, fmt.Errorf("persist booking: %w", err)
	}

	s.logInfo("BOOKING", fmt.Sprintf("booking %s confirmed: %d seat(s) on show %s for %s", b.BookingID, len(b.BookedSeats), b.ShowID, b.UserEmail))

	s.issuePass(ctx, b)
	s.publishBooking(kafka.TopicBookingCreated, b)
	s.notifySeats(show, b.BookedSeats, models.SeatStatusOccupied)

	return &b, nil
}

// CancelBooking releases the booking's seats back to its show and marks the
// booking cancelled. The transition is terminal: cancelling twice returns
// ErrAlreadyCancelled and does not touch the inventory again.
func (s *Service) CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.DB.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == models.BookingStatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	if err := s.releaseBookingSeats(ctx, b); err != nil {
		return nil, err
	}

	if err := s.DB.UpdateBookingStatus(ctx, bookingID, models.BookingStatusCancelled); err != nil {
		return nil, fmt.Errorf("mark booking %s cancelled: %w", bookingID, err)
	}
	b.Status = models.BookingStatusCancelled

	s.logInfo("BOOKING", fmt.Sprintf("booking %s cancelled, %d seat(s) released", bookingID, len(b.BookedSeats)))
	s.publishBooking(kafka.TopicBookingCancelled, *b)

	return b, nil
}

// DeleteBooking removes the ledger entry entirely. Unlike the cancel path
// this is administrative and irreversible, but a still-confirmed booking has
// its seats released first so the inventory invariant survives the delete.
func (s *Service) DeleteBooking(ctx context.Context, bookingID string) error {
	b, err := s.DB.GetBookingByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.Status == models.BookingStatusConfirmed {
		if err := s.releaseBookingSeats(ctx, b); err != nil {
			return err
		}
	}
	return s.DB.DeleteBooking(ctx, bookingID)
}

func (s *Service) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.DB.GetBookingByID(ctx, bookingID)
}

func (s *Service) ListBookings(ctx context.Context, email string) ([]models.Booking, error) {
	if email != "" {
		return s.DB.ListBookingsByEmail(ctx, email)
	}
	return s.DB.ListBookings(ctx, 0)
}

// releaseBookingSeats gives the booking's seats back to its show under the
// per-show lock. A missing show is tolerated: shows can be deleted
// independently, and a dangling booking must still be cancellable.
func (s *Service) releaseBookingSeats(ctx context.Context, b *models.Booking) error {
	if b.ShowID == "" || len(b.BookedSeats) == 0 {
		return nil
	}

	token := uuid.NewString()
	if err := s.acquireShowLock(ctx, b.ShowID, token); err != nil {
		return err
	}
	defer s.unlockShow(ctx, b.ShowID, token)

	show, released, err := s.Inventory.Release(ctx, b.ShowID, b.BookedSeats)
	if errors.Is(err, inventory.ErrShowNotFound) {
		s.logWarn("BOOKING", fmt.Sprintf("show %s for booking %s no longer exists, nothing to release", b.ShowID, b.BookingID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("release seats for booking %s: %w", b.BookingID, err)
	}
	if released > 0 {
		s.notifySeats(show, b.BookedSeats, models.SeatStatusAvailable)
	}
	return nil
}

// acquireShowLock takes the per-show lock with a bounded wait. A show under
// sustained contention yields ErrShowBusy rather than blocking forever.
func (s *Service) acquireShowLock(ctx context.Context, showID, token string) error {
	wait := s.LockWait
	if wait <= 0 {
		wait = defaultLockWait
	}
	deadline := time.Now().Add(wait)

	for {
		ok, err := s.Locks.LockShow(ctx, showID, token)
		if err != nil {
			return fmt.Errorf("lock show %s: %w", showID, err)
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return inventory.ErrShowBusy
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

func (s *Service) unlockShow(ctx context.Context, showID, token string) {
	if err := s.Locks.UnlockShow(ctx, showID, token); err != nil {
		s.logWarn("BOOKING", fmt.Sprintf("unlock show %s failed: %v", showID, err))
	}
}

// issuePass generates the QR entry pass. Failures are logged, never fatal:
// the booking is already committed and a pass can be re-issued later.
func (s *Service) issuePass(ctx context.Context, b models.Booking) {
	if s.Passes == nil {
		return
	}
	if err := s.Passes.IssueForBooking(ctx, b); err != nil {
		s.logError("PASS", fmt.Sprintf("issue pass for booking %s: %v", b.BookingID, err))
	}
}

func (s *Service) publishBooking(topic string, b models.Booking) {
	if s.Kafka == nil {
		return
	}
	value, err := json.Marshal(b)
	if err != nil {
		s.logError("KAFKA", fmt.Sprintf("marshal booking %s: %v", b.BookingID, err))
		return
	}
	if err := s.Kafka.Publish(topic, b.BookingID, value); err != nil {
		s.logError("KAFKA", fmt.Sprintf("publish %s for booking %s: %v", topic, b.BookingID, err))
	}
}

// notifySeats pushes the seat state change to SSE subscribers and onto the
// seat status topic. Both deliveries are best effort.
func (s *Service) notifySeats(show *models.Show, seatIDs []string, status string) {
	if show == nil {
		return
	}
	event, err := models.NewSeatStatusEvent(show.ShowID, seatIDs, status, show.AvailableSeats)
	if err != nil {
		s.logError("SEATS", err.Error())
		return
	}
	if s.Notifier != nil {
		s.Notifier.Broadcast(event)
	}
	if s.Kafka != nil {
		value, err := json.Marshal(event)
		if err != nil {
			s.logError("KAFKA", fmt.Sprintf("marshal seat event for show %s: %v", show.ShowID, err))
			return
		}
		if err := s.Kafka.Publish(kafka.TopicSeatStatus, show.ShowID, value); err != nil {
			s.logError("KAFKA", fmt.Sprintf("publish seat status for show %s: %v", show.ShowID, err))
		}
	}
}

func validateBookingRequest(req models.BookingRequest) error {
	if req.ShowID == "" {
		return &ValidationError{Field: "show_id", Reason: "required"}
	}
	if req.UserEmail == "" {
		return &ValidationError{Field: "user_email", Reason: "required"}
	}
	if len(req.Seats) == 0 {
		return &ValidationError{Field: "seats", Reason: "at least one seat is required"}
	}
	seen := make(map[string]bool, len(req.Seats))
	for _, seat := range req.Seats {
		if seat == "" {
			return &ValidationError{Field: "seats", Reason: "seat ids must be non-empty"}
		}
		if seen[seat] {
			return &ValidationError{Field: "seats", Reason: "duplicate seat " + seat}
		}
		seen[seat] = true
	}
	return nil
}

func (s *Service) logInfo(category, msg string) {
	if s.Logger != nil {
		s.Logger.Info(category, msg)
	}
}

func (s *Service) logWarn(category, msg string) {
	if s.Logger != nil {
		s.Logger.Warn(category, msg)
	}
}

func (s *Service) logError(category, msg string) {
	if s.Logger != nil {
		s.Logger.Error(category, msg)
	}
}
