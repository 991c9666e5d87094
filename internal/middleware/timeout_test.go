package middleware_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"cafe/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestTimeout(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.RequestTimeout(50 * time.Millisecond))
	app.Get("/", func(c *fiber.Ctx) error {
		deadline, ok := c.UserContext().Deadline()
		if !ok || time.Until(deadline) > 50*time.Millisecond {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		<-c.UserContext().Done()
		return c.SendStatus(fiber.StatusGatewayTimeout)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusGatewayTimeout, resp.StatusCode)
}

func TestRequestTimeout_ZeroDisables(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.RequestTimeout(0))
	app.Get("/", func(c *fiber.Ctx) error {
		if _, ok := c.UserContext().Deadline(); ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
