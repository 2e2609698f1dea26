package userRepo

import (
	"context"
	"errors"

	"kymaclub/models"
)

// ErrNotFound is returned when a referenced user does not exist.
var ErrNotFound = errors.New("user not found")

// UserRepository defines methods for user data access.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail retrieves a user by its email address.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Create inserts a new user record.
	Create(ctx context.Context, user *models.User) error
	// Update modifies an existing user record.
	Update(ctx context.Context, user *models.User) error
}
