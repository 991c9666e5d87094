package repositories

import (
	"context"

	"cafe/internal/models"
)

// UserRepository defines the interface for user data access.
// Lookups preload the user's basket and order references.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
