package bookingRepo

import (
	"context"
	"time"

	"kymaclub/models"
)

// BookingRepository defines the read surface the earnings and metrics
// aggregations need. The booking lifecycle itself is owned elsewhere.
type BookingRepository interface {
	// GetByID retrieves a booking by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// Create inserts a new booking record.
	Create(ctx context.Context, booking *models.Booking) error
	// ListForBusinessCreatedBetween returns non-deleted bookings of a business
	// created within the half-open interval [from, to).
	ListForBusinessCreatedBetween(ctx context.Context, businessID string, from, to time.Time) ([]models.Booking, error)
	// CountCheckInsBetween counts bookings of a business checked in within
	// the half-open interval [from, to).
	CountCheckInsBetween(ctx context.Context, businessID string, from, to time.Time) (int64, error)
}
