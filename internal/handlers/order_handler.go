package handlers

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"cafe/internal/middleware"
	"cafe/internal/models"
	"cafe/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// OrderHandler handles basket pricing and order placement.
type OrderHandler struct {
	basketService *services.BasketService
	orderService  *services.OrderService
	validate      *validator.Validate
	log           *logrus.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(basketService *services.BasketService, orderService *services.OrderService, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		basketService: basketService,
		orderService:  orderService,
		validate:      newValidator(),
		log:           logger,
	}
}

// RegisterRoutes registers the order routes on a router already guarded by
// the auth gate.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/calculateTotalCheckoutValue", h.HandleCalculateTotal)
	router.Post("/placeOrder", h.HandlePlaceOrder)
	router.Get("/fetchUserOrders", h.HandleListOrders)
}

// TotalRequest is the body of calculateTotalCheckoutValue. A present
// userCheckoutBasket is priced instead of the stored basket.
type TotalRequest struct {
	UserEmail          string          `json:"userEmail"`
	UserCheckoutBasket json.RawMessage `json:"userCheckoutBasket"`
}

// PlaceOrderRequest is the body of placeOrder.
type PlaceOrderRequest struct {
	UserEmail string `json:"userEmail"`
}

type suppliedLine struct {
	ProductID string      `json:"productId"`
	Quantity  interface{} `json:"quantity"`
}

// basketSource picks the basket to price from the raw request field.
// An absent or falsy value selects the stored basket. Any other non-array
// value prices as an empty basket.
func basketSource(raw json.RawMessage) services.BasketSource {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isFalsy(raw) {
		return services.PersistedBasket()
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return services.SuppliedBasket(nil)
	}
	lines := make([]services.SuppliedLine, 0, len(elems))
	for _, e := range elems {
		var l suppliedLine
		if err := json.Unmarshal(e, &l); err != nil {
			continue
		}
		lines = append(lines, services.SuppliedLine{ProductID: l.ProductID, Quantity: quantityValue(l.Quantity)})
	}
	return services.SuppliedBasket(lines)
}

// isFalsy reports whether raw is null, false, zero or the empty string.
func isFalsy(raw json.RawMessage) bool {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case float64:
		return x == 0
	case string:
		return x == ""
	default:
		return false
	}
}

// quantityValue reads a quantity sent as a number or a numeric string.
// Anything else counts as zero.
func quantityValue(v interface{}) float64 {
	switch q := v.(type) {
	case float64:
		return q
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(q), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}

// HandleCalculateTotal prices a basket at current catalog prices.
func (h *OrderHandler) HandleCalculateTotal(c *fiber.Ctx) error {
	var req TotalRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, h.log, err)
	}
	email, ok := basketOwner(c, req.UserEmail)
	if !ok {
		return fail(c, fiber.StatusForbidden, "Cannot access another user's basket", "userEmail")
	}

	total, err := h.basketService.ComputeTotal(c.UserContext(), email, basketSource(req.UserCheckoutBasket))
	if err != nil {
		return writeError(c, h.log, err)
	}
	if total.Empty {
		return c.JSON(fiber.Map{
			"success": true,
			"total":   0,
			"message": "Basket is empty",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"total":   total.Value,
	})
}

// HandlePlaceOrder turns the stored basket into an order.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	var req PlaceOrderRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, h.log, err)
	}
	email, ok := basketOwner(c, req.UserEmail)
	if !ok {
		return fail(c, fiber.StatusForbidden, "Cannot place an order for another user", "userEmail")
	}

	order, err := h.orderService.PlaceOrder(c.UserContext(), email)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Order placed successfully",
		"order":   order,
	})
}

// HandleListOrders returns the authenticated user's orders.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Access token required", "")
	}

	orders, err := h.orderService.ListOrders(c.UserContext(), claims.ID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return c.JSON(fiber.Map{
		"success": true,
		"orders":  orders,
	})
}
