package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"cafe/internal/config"
	"cafe/internal/database"
	"cafe/internal/logging"
	"cafe/internal/middleware"
	"cafe/internal/models"
	"cafe/internal/repositories"
	"cafe/internal/server"
	"cafe/internal/services"
	"cafe/pkg/rabbitmq"
)

func main() {
	log := logging.New()

	// --- Configuration ---
	cfg, err := config.Load(log)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Configure(log, cfg.LogLevel, cfg.LogFormat)

	// --- Database ---
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	log.Infof("Connected to %s database", cfg.DBDriver)

	// --- Redis (optional) ---
	var rdb *redis.Client
	var tokenRepo repositories.TokenRepository = repositories.NewMemoryTokenRepository()
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to Redis at %s: %v", cfg.Redis.Addr, err)
		}
		defer rdb.Close()
		tokenRepo = repositories.NewRedisTokenRepository(rdb)
		log.Infof("Connected to Redis at %s", cfg.Redis.Addr)
	} else {
		log.Warn("REDIS_ADDR not set: revoked tokens are kept in memory and rate limiting is disabled")
	}
	limiterRedis := rdb
	if !cfg.RateLimit.Enabled {
		limiterRedis = nil
	}

	// --- RabbitMQ (optional) ---
	var publisher rabbitmq.Publisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:    cfg.RabbitMQURL,
			Queues: []string{rabbitmq.OrderCreatedQueue},
		}, log)
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		publisher = mqClient

		if err := mqClient.Consume(rabbitmq.OrderCreatedQueue, logOrderEvent(log)); err != nil {
			log.WithError(err).Error("Failed to start RabbitMQ consumer")
		}
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	basketRepo := repositories.NewGORMBasketRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	// --- Services ---
	tokenService := services.NewTokenService(services.TokenConfig{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
	})
	authService := services.NewAuthService(userRepo, tokenRepo, tokenService, services.AuthOptions{
		BcryptCost:       cfg.BcryptCost,
		SingleUseRefresh: cfg.RefreshSingleUse,
	}, log)
	productService := services.NewProductService(productRepo, log)
	basketService := services.NewBasketService(userRepo, basketRepo, productService, log)
	orderService := services.NewOrderService(userRepo, orderRepo, productService, publisher, log)

	if cfg.SeedCatalog {
		n, err := productService.SeedProducts(context.Background(), demoCatalog())
		if err != nil {
			log.WithError(err).Error("Failed to seed catalog")
		} else if n > 0 {
			log.Infof("Seeded %d catalog products", n)
		}
	}

	// --- HTTP ---
	app := server.New(server.Deps{
		Tokens:   tokenService,
		Auth:     authService,
		Basket:   basketService,
		Products: productService,
		Orders:   orderService,
		Redis:    limiterRedis,
		RateLimit: middleware.RateLimitConfig{
			Requests: cfg.RateLimit.Requests,
			Window:   cfg.RateLimit.Window,
			Prefix:   "rl:auth",
		},
		RequestTimeout: cfg.RequestTimeout,
		AccessLog:      true,
		Logger:         log,
	})

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Infof("Starting server on %s", cfg.AppPort)
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Error("Error during Fiber shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("Server gracefully stopped")
}

// logOrderEvent is the handler of the order.created consumer.
func logOrderEvent(log *logrus.Logger) func(msg amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		log.WithField("delivery_tag", msg.DeliveryTag).Infof("Received order event: %s", msg.Body)
		return nil
	}
}

func demoCatalog() []models.Product {
	return []models.Product{
		{ID: "P1", ProductName: "Latte", Description: "Espresso with steamed milk", Price: 3.50, Category: "coffee"},
		{ID: "P2", ProductName: "Cappuccino", Description: "Espresso, steamed milk and foam", Price: 3.20, Category: "coffee"},
		{ID: "P3", ProductName: "Flat White", Description: "Double ristretto with microfoam", Price: 3.40, Category: "coffee"},
		{ID: "P4", ProductName: "Croissant", Description: "Butter croissant", Price: 2.10, Category: "bakery"},
		{ID: "P5", ProductName: "Blueberry Muffin", Description: "Baked daily", Price: 2.60, Category: "bakery"},
		{ID: "P6", ProductName: "Iced Tea", Description: "Black tea with lemon", Price: 2.80, Category: "cold drinks"},
	}
}
