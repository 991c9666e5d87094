package handlers

import (
	"cafe/internal/models"
	"cafe/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ProductHandler handles the public catalog routes.
type ProductHandler struct {
	productService *services.ProductService
	log            *logrus.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService *services.ProductService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		log:            logger,
	}
}

// RegisterRoutes registers the catalog routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/getAllProducts", h.HandleGetAllProducts)
}

// HandleGetAllProducts lists the catalog.
func (h *ProductHandler) HandleGetAllProducts(c *fiber.Ctx) error {
	products, err := h.productService.GetAllProducts(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"products": products,
	})
}
