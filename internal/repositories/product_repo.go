package repositories

import (
	"context"

	"cafe/internal/models"
)

// ProductRepository defines the interface for catalog data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	// GetByIDs returns the products that exist among ids; unknown ids are skipped.
	GetByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Count(ctx context.Context) (int64, error)
}
