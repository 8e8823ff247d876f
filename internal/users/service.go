// Package users syncs profiles from the external identity provider and
// serves the account pages. There is no local signup; the IdP webhook is the
// only writer.
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus-booking/internal/logger"
	"campus-booking/internal/models"

	"github.com/google/uuid"
)

var ErrUserNotFound = errors.New("user not found")

// ErrValidation marks caller-correctable input problems.
var ErrValidation = errors.New("validation failed")

type DBLayer interface {
	UpsertUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, email string) error
}

// BookingLister supplies the bookings half of a profile.
type BookingLister interface {
	ListBookings(ctx context.Context, email string) ([]models.Booking, error)
}

type Service struct {
	DB       DBLayer
	Bookings BookingLister
	Logger   *logger.Logger
}

func NewService(db DBLayer, bookings BookingLister, log *logger.Logger) *Service {
	return &Service{DB: db, Bookings: bookings, Logger: log}
}

// Sync upserts the profile the IdP pushed. Email is the natural key; a repeat
// push for the same email updates in place.
func (s *Service) Sync(ctx context.Context, req models.UserRequest) (*models.User, error) {
	if req.Email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	now := time.Now().UTC()
	user := &models.User{
		UserID:     uuid.NewString(),
		ExternalID: req.ExternalID,
		Name:       req.Name,
		Email:      req.Email,
		Image:      req.Image,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.DB.UpsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("sync user %s: %w", req.Email, err)
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, email string) (*models.User, error) {
	return s.DB.GetUserByEmail(ctx, email)
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	return s.DB.ListUsers(ctx)
}

func (s *Service) Delete(ctx context.Context, email string) error {
	return s.DB.DeleteUser(ctx, email)
}

// Profile returns the user plus their bookings. A booking lookup failure
// degrades to an empty list rather than hiding the whole profile.
func (s *Service) Profile(ctx context.Context, email string) (*models.UserProfile, error) {
	user, err := s.DB.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	bookings, err := s.Bookings.ListBookings(ctx, email)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("USERS", fmt.Sprintf("bookings lookup for profile %s failed: %v", email, err))
		}
		bookings = []models.Booking{}
	}
	return &models.UserProfile{User: *user, Bookings: bookings}, nil
}
