package services

import (
	"context"
	"fmt"
	"time"

	"cafe/internal/models"
	"cafe/internal/repositories"
	"cafe/pkg/rabbitmq"

	"github.com/sirupsen/logrus"
)

// OrderCreatedEvent is published after an order has been stored.
type OrderCreatedEvent struct {
	OrderID    string    `json:"orderId"`
	UserID     string    `json:"userId"`
	Status     string    `json:"status"`
	TotalValue float64   `json:"totalValue"`
	Items      int       `json:"items"`
	OrderDate  time.Time `json:"orderDate"`
}

// OrderService turns checkout baskets into orders.
type OrderService struct {
	userRepo    repositories.UserRepository
	orderRepo   repositories.OrderRepository
	catalog     *ProductService
	publisher   rabbitmq.Publisher // may be nil
	log         *logrus.Logger
	now         func() time.Time
}

// NewOrderService creates a new OrderService. A nil publisher disables events.
func NewOrderService(userRepo repositories.UserRepository, orderRepo repositories.OrderRepository, catalog *ProductService, publisher rabbitmq.Publisher, logger *logrus.Logger) *OrderService {
	return &OrderService{
		userRepo:    userRepo,
		orderRepo:   orderRepo,
		catalog:     catalog,
		publisher:   publisher,
		log:         logger,
		now:         time.Now,
	}
}

// PlaceOrder snapshots the user's basket at current catalog prices into a
// pending order and takes the ordered quantities out of the basket.
func (s *OrderService) PlaceOrder(ctx context.Context, email string) (*models.Order, error) {
	if email == "" {
		return nil, &ValidationError{Field: "userEmail", Message: "userEmail is required"}
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, userLookupError("find user by email", err)
	}
	if len(user.Basket) == 0 {
		return nil, &ValidationError{Field: "checkoutBasket", Message: "Basket is empty"}
	}

	ids := make([]string, 0, len(user.Basket))
	for _, line := range user.Basket {
		ids = append(ids, line.ProductID)
	}
	catalog, err := s.catalog.priceList(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(user.Basket))
	for _, line := range user.Basket {
		product, ok := catalog[line.ProductID]
		if !ok {
			return nil, &ValidationError{
				Field:   "checkoutBasket",
				Message: fmt.Sprintf("product %s is no longer available", line.ProductID),
			}
		}
		items = append(items, models.OrderItem{
			ProductID:    line.ProductID,
			ProductName:  product.ProductName,
			Quantity:     line.Quantity,
			ProductPrice: product.Price,
		})
	}

	order := &models.Order{
		UserID:     user.ID,
		Items:      items,
		TotalValue: BasketTotal(user.Basket, catalog),
		Status:     models.OrderStatusPending,
		OrderDate:  s.now(),
	}
	if err := s.orderRepo.CreateFromBasket(ctx, order); err != nil {
		return nil, storageError("create order", err)
	}

	s.publish(ctx, order)
	return order, nil
}

// ListOrders returns the orders placed by userID.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, storageError("list orders", err)
	}
	return orders, nil
}

// publish emits order.created. Failures are logged and never fail the order.
func (s *OrderService) publish(ctx context.Context, order *models.Order) {
	if s.publisher == nil {
		s.log.Debug("RabbitMQ publisher is not configured. Skipping order event.")
		return
	}
	event := OrderCreatedEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     order.Status,
		TotalValue: order.TotalValue,
		Items:      len(order.Items),
		OrderDate:  order.OrderDate,
	}
	if err := s.publisher.Publish(ctx, rabbitmq.OrderCreatedQueue, event); err != nil {
		s.log.WithError(err).WithField("order_id", order.ID).Warn("Failed to publish order created event")
		return
	}
	s.log.WithField("order_id", order.ID).Info("Published order created event")
}
