package models

import "time"

// BasketLine is one product entry of a user's checkout basket.
// (UserID, ProductID) is unique: a product appears at most once per basket.
type BasketLine struct {
	ID          uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	UserID      string    `json:"-" gorm:"type:varchar(36);not null;uniqueIndex:idx_basket_user_product"`
	ProductID   string    `json:"productId" gorm:"type:varchar(36);not null;uniqueIndex:idx_basket_user_product"`
	ProductName string    `json:"productName" gorm:"type:varchar(255)"` // snapshot taken on insert
	Quantity    int       `json:"quantity" gorm:"not null;default:1"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}
