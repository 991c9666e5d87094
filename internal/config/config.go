// Package config loads the service configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration values.
type Config struct {
	AppPort   string
	LogLevel  string
	LogFormat string

	DBDriver    string
	DatabaseDSN string
	SeedCatalog bool

	JWT JWTConfig

	BcryptCost       int
	RefreshSingleUse bool
	RequestTimeout   time.Duration

	Redis     RedisConfig
	RateLimit RateLimitConfig

	RabbitMQURL string
}

// JWTConfig holds token signing secrets and lifetimes.
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// RedisConfig holds redis connection details. An empty Addr disables redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RateLimitConfig bounds requests per client on the public auth routes.
type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

// Load reads the configuration. A missing .env file is not an error.
func Load(log *logrus.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug("No .env file found, using environment variables and defaults")
		} else {
			log.Warnf("Error loading .env file: %v", err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return FromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "cafe.db")
	v.SetDefault("SEED_CATALOG", true)
	v.SetDefault("JWT_EXPIRES_IN", "15m")
	v.SetDefault("JWT_REFRESH_EXPIRES_IN", "7d")
	v.SetDefault("REFRESH_SINGLE_USE", false)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("REQUEST_TIMEOUT", "5s")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_REQUESTS", 10)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")
	v.SetDefault("RABBITMQ_URL", "")
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:     v.GetString("APP_PORT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogFormat:   v.GetString("LOG_FORMAT"),
		DBDriver:    strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN: v.GetString("DATABASE_DSN"),
		SeedCatalog: v.GetBool("SEED_CATALOG"),
		JWT: JWTConfig{
			AccessSecret:  v.GetString("JWT_SECRET"),
			RefreshSecret: v.GetString("JWT_REFRESH_SECRET"),
		},
		BcryptCost:       v.GetInt("BCRYPT_COST"),
		RefreshSingleUse: v.GetBool("REFRESH_SINGLE_USE"),
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:  v.GetBool("RATE_LIMIT_ENABLED"),
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
		},
		RabbitMQURL: v.GetString("RABBITMQ_URL"),
	}

	if cfg.JWT.AccessSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.JWT.RefreshSecret == "" {
		return nil, errors.New("JWT_REFRESH_SECRET is required")
	}

	var err error
	if cfg.JWT.AccessTTL, err = positiveTTL(v, "JWT_EXPIRES_IN"); err != nil {
		return nil, err
	}
	if cfg.JWT.RefreshTTL, err = positiveTTL(v, "JWT_REFRESH_EXPIRES_IN"); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Window, err = positiveTTL(v, "RATE_LIMIT_WINDOW"); err != nil {
		return nil, err
	}
	// Zero disables the request timeout.
	if cfg.RequestTimeout, err = ParseTTL(v.GetString("REQUEST_TIMEOUT")); err != nil {
		return nil, fmt.Errorf("REQUEST_TIMEOUT: %w", err)
	}
	if cfg.RequestTimeout < 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT: must not be negative, got %s", cfg.RequestTimeout)
	}

	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.BcryptCost <= 0 {
		cfg.BcryptCost = 10
	}
	if cfg.RateLimit.Requests < 1 {
		cfg.RateLimit.Requests = 1
	}
	return cfg, nil
}

func positiveTTL(v *viper.Viper, key string) (time.Duration, error) {
	d, err := ParseTTL(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", key, d)
	}
	return d, nil
}

// ParseTTL parses a lifetime such as "15m", "7d" or "3600" (seconds).
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty duration")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}
