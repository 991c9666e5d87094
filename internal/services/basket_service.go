package services

import (
	"context"
	"errors"

	"cafe/internal/models"
	"cafe/internal/repositories"

	"github.com/sirupsen/logrus"
)

// SuppliedLine is a basket entry sent by a client. Quantity may be fractional.
type SuppliedLine struct {
	ProductID string
	Quantity  float64
}

// BasketSource selects which basket ComputeTotal prices.
type BasketSource struct {
	supplied bool
	lines    []SuppliedLine
}

// PersistedBasket prices the basket stored for the user.
func PersistedBasket() BasketSource { return BasketSource{} }

// SuppliedBasket prices lines provided by the caller instead of the stored basket.
func SuppliedBasket(lines []SuppliedLine) BasketSource {
	return BasketSource{supplied: true, lines: lines}
}

// Total is the value of a basket. Empty is set when there was nothing to price.
type Total struct {
	Value float64
	Empty bool
}

// BasketService mutates and prices users' checkout baskets.
type BasketService struct {
	userRepo   repositories.UserRepository
	basketRepo repositories.BasketRepository
	catalog    *ProductService
	log        *logrus.Logger
}

// NewBasketService creates a new BasketService. Prices come from catalog.
func NewBasketService(userRepo repositories.UserRepository, basketRepo repositories.BasketRepository, catalog *ProductService, logger *logrus.Logger) *BasketService {
	return &BasketService{
		userRepo:   userRepo,
		basketRepo: basketRepo,
		catalog:    catalog,
		log:        logger,
	}
}

// AddItem puts one unit of productID in the basket, creating the line with
// productName if absent. It returns the updated basket.
func (s *BasketService) AddItem(ctx context.Context, email, productID, productName string) ([]models.BasketLine, error) {
	if productID == "" {
		return nil, &ValidationError{Field: "productId", Message: "productId is required"}
	}
	user, err := s.user(ctx, email)
	if err != nil {
		return nil, err
	}

	line := &models.BasketLine{
		UserID:      user.ID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    1,
	}
	if err := s.basketRepo.Increment(ctx, line); err != nil {
		return nil, storageError("add basket item", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "product_id": productID}).Debug("Basket item added")
	return s.Lines(ctx, user.ID)
}

// SetQuantity overwrites the quantity of an existing line. Quantities below
// one are rejected; use RemoveItem to drop a line.
func (s *BasketService) SetQuantity(ctx context.Context, email, productID string, quantity int) ([]models.BasketLine, error) {
	if productID == "" {
		return nil, &ValidationError{Field: "productId", Message: "productId is required"}
	}
	if quantity < 1 {
		return nil, &ValidationError{Field: "quantity", Message: "quantity must be at least 1"}
	}
	user, err := s.user(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := s.basketRepo.SetQuantity(ctx, user.ID, productID, quantity); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, storageError("update basket quantity", err)
	}
	return s.Lines(ctx, user.ID)
}

// RemoveItem drops productID from the basket. Absent lines are ignored.
func (s *BasketService) RemoveItem(ctx context.Context, email, productID string) ([]models.BasketLine, error) {
	user, err := s.user(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.basketRepo.Remove(ctx, user.ID, productID); err != nil {
		return nil, storageError("remove basket item", err)
	}
	return s.Lines(ctx, user.ID)
}

// ComputeTotal prices the basket chosen by src against current catalog
// prices. Products missing from the catalog count as zero.
func (s *BasketService) ComputeTotal(ctx context.Context, email string, src BasketSource) (Total, error) {
	user, err := s.user(ctx, email)
	if err != nil {
		return Total{}, err
	}

	lines := src.lines
	if !src.supplied {
		lines = make([]SuppliedLine, 0, len(user.Basket))
		for _, l := range user.Basket {
			lines = append(lines, SuppliedLine{ProductID: l.ProductID, Quantity: float64(l.Quantity)})
		}
	}
	if len(lines) == 0 {
		return Total{Empty: true}, nil
	}

	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	catalog, err := s.catalog.priceList(ctx, ids)
	if err != nil {
		return Total{}, err
	}
	return Total{Value: linesTotal(lines, catalog)}, nil
}

// Lines returns the stored basket of userID.
func (s *BasketService) Lines(ctx context.Context, userID string) ([]models.BasketLine, error) {
	lines, err := s.basketRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, storageError("list basket", err)
	}
	return lines, nil
}

func (s *BasketService) user(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, &ValidationError{Field: "userEmail", Message: "userEmail is required"}
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, userLookupError("find user by email", err)
	}
	return user, nil
}

// BasketTotal sums price * quantity over stored lines. Unknown products and
// non-positive quantities contribute nothing.
func BasketTotal(lines []models.BasketLine, catalog map[string]models.Product) float64 {
	var total float64
	for _, l := range lines {
		total += lineValue(catalog, l.ProductID, float64(l.Quantity))
	}
	return total
}

func linesTotal(lines []SuppliedLine, catalog map[string]models.Product) float64 {
	var total float64
	for _, l := range lines {
		total += lineValue(catalog, l.ProductID, l.Quantity)
	}
	return total
}

func lineValue(catalog map[string]models.Product, productID string, quantity float64) float64 {
	product, ok := catalog[productID]
	if !ok || quantity <= 0 {
		return 0
	}
	return product.Price * quantity
}
