package repositories

import (
	"context"
	"fmt"
	"time"

	"cafe/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMBasketRepository is a GORM implementation of BasketRepository.
type GORMBasketRepository struct {
	db *gorm.DB
}

// NewGORMBasketRepository creates a new instance of GORMBasketRepository.
func NewGORMBasketRepository(db *gorm.DB) *GORMBasketRepository {
	return &GORMBasketRepository{
		db: db,
	}
}

// ListByUser returns the user's basket in insertion order.
func (r *GORMBasketRepository) ListByUser(ctx context.Context, userID string) ([]models.BasketLine, error) {
	lines := []models.BasketLine{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to list basket for user %s: %w", userID, err)
	}
	return lines, nil
}

// Increment upserts the line. On conflict only the quantity and timestamp
// change, so the stored product name keeps its first value.
func (r *GORMBasketRepository) Increment(ctx context.Context, line *models.BasketLine) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("basket_lines.quantity + ?", 1),
			"updated_at": time.Now(),
		}),
	}).Create(line).Error
	if err != nil {
		return fmt.Errorf("failed to add product %s to basket: %w", line.ProductID, err)
	}
	return nil
}

// SetQuantity overwrites the quantity of an existing line.
func (r *GORMBasketRepository) SetQuantity(ctx context.Context, userID, productID string, quantity int) error {
	res := r.db.WithContext(ctx).Model(&models.BasketLine{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to update quantity of product %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Remove deletes the line if present. Removing an absent line is not an error.
func (r *GORMBasketRepository) Remove(ctx context.Context, userID, productID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.BasketLine{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove product %s from basket: %w", productID, err)
	}
	return nil
}
