package repositories

import (
	"context"

	"cafe/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// CreateFromBasket stores order and removes the ordered quantities from
	// the owner's basket atomically.
	CreateFromBasket(ctx context.Context, order *models.Order) error
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
}
