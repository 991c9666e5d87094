package models

import "time"

// OrderStatusPending is the status of a freshly placed order.
const OrderStatusPending = "pending"

// OrderItem represents a single product line within an order.
type OrderItem struct {
	ID           uint    `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID      string  `json:"-" gorm:"type:varchar(36);index;not null"`
	ProductID    string  `json:"productId" gorm:"type:varchar(36);not null"`
	ProductName  string  `json:"productName" gorm:"type:varchar(255)"`
	Quantity     int     `json:"quantity" gorm:"not null"`
	ProductPrice float64 `json:"productPrice" gorm:"not null"` // price at the time of order
}

// Order is a basket snapshot placed by a user.
type Order struct {
	ID         string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string      `json:"userId" gorm:"type:varchar(36);index;not null"`
	Items      []OrderItem `json:"orderedProducts" gorm:"foreignKey:OrderID"`
	TotalValue float64     `json:"totalValue"`
	Status     string      `json:"status" gorm:"type:varchar(32)"`
	OrderDate  time.Time   `json:"orderDate"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}
