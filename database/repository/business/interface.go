package businessRepo

import (
	"context"
	"errors"

	"kymaclub/models"
)

// ErrNotFound is returned when a referenced business does not exist.
var ErrNotFound = errors.New("business not found")

// BusinessRepository defines methods for business data access.
type BusinessRepository interface {
	// GetByID retrieves a business by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Business, error)
	// Create inserts a new business record.
	Create(ctx context.Context, business *models.Business) error
	// UpdateFeeStructure patches the fee structure and records the updating actor.
	UpdateFeeStructure(ctx context.Context, id string, fees models.FeeStructure) error
}
