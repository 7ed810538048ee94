package driving

import (
	"context"

	"github.com/pagesense-labs/pagesense-core/internal/core/domain"
)

// UserService manages user accounts
type UserService interface {
	// Get retrieves a user by ID
	Get(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update updates a user's mutable fields
	Update(ctx context.Context, id string, req domain.UpdateUserRequest) (*domain.User, error)

	// Delete deletes a user and all their data
	Delete(ctx context.Context, id string) error
}
