package repositories

import (
	"context"
	"fmt"
	"time"

	"cafe/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// CreateFromBasket inserts the order with its items and, in the same
// transaction, takes each item's quantity out of the owner's basket. Lines
// that drop to zero are deleted; anything added after the basket was read
// stays in the basket.
func (r *GORMOrderRepository) CreateFromBasket(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.OrderDate.IsZero() {
		order.OrderDate = time.Now()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for _, item := range order.Items {
			err := tx.Model(&models.BasketLine{}).
				Where("user_id = ? AND product_id = ?", order.UserID, item.ProductID).
				Update("quantity", gorm.Expr("quantity - ?", item.Quantity)).Error
			if err != nil {
				return err
			}
		}
		return tx.Where("user_id = ? AND quantity <= 0", order.UserID).Delete(&models.BasketLine{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create order for user %s: %w", order.UserID, err)
	}
	return nil
}

// ListByUser returns the user's orders with their items, oldest first.
func (r *GORMOrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	orders := []models.Order{}
	err := r.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).Order("order_date").Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for user %s: %w", userID, err)
	}
	return orders, nil
}
