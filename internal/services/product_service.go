package services

import (
	"context"

	"cafe/internal/models"
	"cafe/internal/repositories"

	"github.com/sirupsen/logrus"
)

// ProductService exposes the read-mostly catalog.
type ProductService struct {
	repo repositories.ProductRepository
	log  *logrus.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, logger *logrus.Logger) *ProductService {
	return &ProductService{
		repo: repo,
		log:  logger,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, storageError("list products", err)
	}
	return products, nil
}

// SeedProducts stores products when the catalog is empty. It reports how
// many were created.
func (s *ProductService) SeedProducts(ctx context.Context, products []models.Product) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, storageError("count products", err)
	}
	if n > 0 {
		return 0, nil
	}
	for i := range products {
		if products[i].Price < 0 {
			return i, &ValidationError{Field: "price", Message: "price cannot be negative"}
		}
		if err := s.repo.Create(ctx, &products[i]); err != nil {
			return i, storageError("create product", err)
		}
		s.log.WithField("product_id", products[i].ID).Debugf("Seeded product: %s", products[i].ProductName)
	}
	return len(products), nil
}

// GetProductsByIDs returns the products whose ids appear in ids. Unknown ids
// are skipped.
func (s *ProductService) GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	products, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, storageError("find products", err)
	}
	return products, nil
}

// priceList returns the catalog entries for ids keyed by product id.
// Duplicate ids are looked up once.
func (s *ProductService) priceList(ctx context.Context, ids []string) (map[string]models.Product, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	products, err := s.GetProductsByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	catalog := make(map[string]models.Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
	}
	return catalog, nil
}
