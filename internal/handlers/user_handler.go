package handlers

import (
	"strings"

	"cafe/internal/middleware"
	"cafe/internal/models"
	"cafe/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// UserHandler handles the authenticated user and checkout basket routes.
type UserHandler struct {
	authService   *services.AuthService
	basketService *services.BasketService
	validate      *validator.Validate
	log           *logrus.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService, basketService *services.BasketService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{
		authService:   authService,
		basketService: basketService,
		validate:      newValidator(),
		log:           logger,
	}
}

// RegisterRoutes registers the user routes on a router already guarded by
// the auth gate.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/fetchCurrentUserInformation", h.HandleCurrentUser)
	router.Post("/userLogout", h.HandleLogout)
	router.Post("/addItemToCheckout", h.HandleAddItem)
	router.Post("/updateCheckoutQuantity", h.HandleUpdateQuantity)
	router.Post("/removeFromCheckout", h.HandleRemoveItem)
}

// AddItemRequest is the body of addItemToCheckout.
type AddItemRequest struct {
	UserEmail   string `json:"userEmail"`
	ProductID   string `json:"productId" validate:"required"`
	ProductName string `json:"productName"`
}

// UpdateQuantityRequest is the body of updateCheckoutQuantity.
type UpdateQuantityRequest struct {
	UserEmail string `json:"userEmail"`
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"`
}

// RemoveItemRequest is the body of removeFromCheckout.
type RemoveItemRequest struct {
	UserEmail string `json:"userEmail"`
	ProductID string `json:"productId" validate:"required"`
}

// LogoutRequest is the body of userLogout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type orderRef struct {
	OrderID string `json:"orderId"`
}

type businessView struct {
	BusinessID   string `json:"businessId"`
	BusinessName string `json:"businessName"`
}

type userView struct {
	ID             string              `json:"id"`
	Email          string              `json:"email"`
	Business       *businessView       `json:"business"`
	Orders         []orderRef          `json:"orders"`
	UserRole       string              `json:"userRole"`
	BusinessID     string              `json:"businessId"`
	CheckoutBasket []models.BasketLine `json:"checkoutBasket"`
	CreatedAt      string              `json:"createdAt"`
}

func newUserView(u *models.User) userView {
	v := userView{
		ID:             u.ID,
		Email:          u.Email,
		Orders:         make([]orderRef, 0, len(u.Orders)),
		UserRole:       u.Business.Role,
		BusinessID:     u.Business.BusinessID,
		CheckoutBasket: u.Basket,
		CreatedAt:      u.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	if u.HasBusiness() {
		v.Business = &businessView{BusinessID: u.Business.BusinessID, BusinessName: u.Business.BusinessName}
	}
	for _, o := range u.Orders {
		v.Orders = append(v.Orders, orderRef{OrderID: o.ID})
	}
	if v.CheckoutBasket == nil {
		v.CheckoutBasket = []models.BasketLine{}
	}
	return v
}

// HandleCurrentUser returns the profile of the authenticated user.
func (h *UserHandler) HandleCurrentUser(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Access token required", "")
	}

	user, err := h.authService.FindByID(c.UserContext(), claims.ID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    newUserView(user),
	})
}

// HandleLogout ends the session and revokes the supplied refresh token.
func (h *UserHandler) HandleLogout(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Access token required", "")
	}
	var req LogoutRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, h.log, err)
	}

	if err := h.authService.Logout(c.UserContext(), claims, req.RefreshToken); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out successfully",
	})
}

// HandleAddItem adds one unit of a product to the basket.
func (h *UserHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, h.log, err)
	}
	email, ok := basketOwner(c, req.UserEmail)
	if !ok {
		return fail(c, fiber.StatusForbidden, "Cannot modify another user's basket", "userEmail")
	}

	lines, err := h.basketService.AddItem(c.UserContext(), email, req.ProductID, req.ProductName)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return basketResponse(c, "Updated the checkout basket with the new item", lines)
}

// HandleUpdateQuantity overwrites the quantity of a basket line.
func (h *UserHandler) HandleUpdateQuantity(c *fiber.Ctx) error {
	var req UpdateQuantityRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, h.log, err)
	}
	email, ok := basketOwner(c, req.UserEmail)
	if !ok {
		return fail(c, fiber.StatusForbidden, "Cannot modify another user's basket", "userEmail")
	}

	lines, err := h.basketService.SetQuantity(c.UserContext(), email, req.ProductID, req.Quantity)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return basketResponse(c, "Updated item quantity", lines)
}

// HandleRemoveItem drops a product from the basket.
func (h *UserHandler) HandleRemoveItem(c *fiber.Ctx) error {
	var req RemoveItemRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, h.log, err)
	}
	email, ok := basketOwner(c, req.UserEmail)
	if !ok {
		return fail(c, fiber.StatusForbidden, "Cannot modify another user's basket", "userEmail")
	}

	lines, err := h.basketService.RemoveItem(c.UserContext(), email, req.ProductID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return basketResponse(c, "Item removed from checkout basket", lines)
}

func basketResponse(c *fiber.Ctx, message string, lines []models.BasketLine) error {
	if lines == nil {
		lines = []models.BasketLine{}
	}
	return c.JSON(fiber.Map{
		"success":        true,
		"message":        message,
		"checkoutBasket": lines,
	})
}

// basketOwner resolves the email a basket request acts on. An empty value
// defaults to the token's email; a different email is refused.
func basketOwner(c *fiber.Ctx, requested string) (string, bool) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return "", false
	}
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return claims.Email, true
	}
	if !strings.EqualFold(requested, claims.Email) {
		return "", false
	}
	return claims.Email, true
}
