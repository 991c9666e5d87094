package models

import "time"

// User roles within an associated business.
const (
	RoleOwner    = "owner"
	RoleEmployee = "employee"
)

// BusinessAssociation links a user to the business they own or work for.
type BusinessAssociation struct {
	BusinessID   string `json:"businessId" gorm:"type:varchar(36)"`
	BusinessName string `json:"businessName" gorm:"type:varchar(255)"`
	Role         string `json:"userRole" gorm:"type:varchar(16)"`
}

// User is an account of the marketplace. The user exclusively owns its basket.
type User struct {
	ID           string              `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email        string              `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	PasswordHash string              `json:"-" gorm:"type:varchar(255);not null"` // never serialized
	Business     BusinessAssociation `json:"business" gorm:"embedded;embeddedPrefix:business_"`
	Basket       []BasketLine        `json:"checkoutBasket" gorm:"foreignKey:UserID"`
	Orders       []Order             `json:"-" gorm:"foreignKey:UserID"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// HasBusiness reports whether the user is associated with a business.
func (u *User) HasBusiness() bool {
	return u.Business.BusinessID != ""
}
