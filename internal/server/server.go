// Package server assembles the fiber application and its route table.
package server

import (
	"errors"
	"time"

	"cafe/internal/handlers"
	"cafe/internal/middleware"
	"cafe/internal/services"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Tokens   *services.TokenService
	Auth     *services.AuthService
	Basket   *services.BasketService
	Products *services.ProductService
	Orders   *services.OrderService

	// Redis backs the rate limiter; nil disables it.
	Redis     *redis.Client
	RateLimit middleware.RateLimitConfig

	RequestTimeout time.Duration
	// AccessLog enables fiber's request log line.
	AccessLog bool
	Logger    *logrus.Logger
}

// New builds the fiber app with every route registered.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "cafe",
		ErrorHandler: errorHandler(d.Logger),
	})

	app.Use(recover.New())
	if d.AccessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{Output: d.Logger.Out}))
	}
	app.Use(middleware.RequestTimeout(d.RequestTimeout))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authRequired := middleware.AuthRequired(d.Tokens, d.Logger)
	limiter := middleware.RateLimit(d.Redis, d.RateLimit, d.Logger)

	api := app.Group("/api")

	authHandler := handlers.NewAuthHandler(d.Auth, d.Logger)
	authHandler.RegisterRoutes(api.Group("/user-unAuth"), limiter)

	userHandler := handlers.NewUserHandler(d.Auth, d.Basket, d.Logger)
	userHandler.RegisterRoutes(api.Group("/user-auth", authRequired))

	orderHandler := handlers.NewOrderHandler(d.Basket, d.Orders, d.Logger)
	orderHandler.RegisterRoutes(api.Group("/order-auth", authRequired))

	productHandler := handlers.NewProductHandler(d.Products, d.Logger)
	productHandler.RegisterRoutes(api.Group("/product-unAuth"))

	return app
}

// errorHandler answers errors that escape handlers, such as unknown routes.
func errorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Server error"
		var ferr *fiber.Error
		if errors.As(err, &ferr) {
			code = ferr.Code
			message = ferr.Message
		} else {
			logger.WithError(err).WithField("path", c.Path()).Error("Request failed")
		}
		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}
}
