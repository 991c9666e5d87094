package repositories

import (
	"context"

	"cafe/internal/models"
)

// BasketRepository defines per-line basket mutations. Each method is a
// single conditional statement keyed by (userID, productID).
type BasketRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.BasketLine, error)
	// Increment inserts line with its quantity, or adds one to the existing line.
	Increment(ctx context.Context, line *models.BasketLine) error
	// SetQuantity returns ErrNotFound when the line does not exist.
	SetQuantity(ctx context.Context, userID, productID string, quantity int) error
	Remove(ctx context.Context, userID, productID string) error
}
