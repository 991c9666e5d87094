package middleware_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"cafe/internal/middleware"
	"cafe/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testTokens() *services.TokenService {
	return services.NewTokenService(services.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
	})
}

func TestAuthenticate(t *testing.T) {
	tokens := testTokens()
	pair, err := tokens.IssueTokenPair(services.UserClaims{ID: "u-1", Email: "alice@example.com"})
	require.NoError(t, err)
	expired, err := tokens.WithClock(func() time.Time { return time.Now().Add(-time.Hour) }).
		IssueTokenPair(services.UserClaims{ID: "u-1", Email: "alice@example.com"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		allowed bool
		status  int
		message string
	}{
		{"missing header", "", false, fiber.StatusUnauthorized, "Access token required"},
		{"wrong scheme", "Basic " + pair.AccessToken, false, fiber.StatusUnauthorized, "Access token required"},
		{"scheme only", "Bearer ", false, fiber.StatusUnauthorized, "Access token required"},
		{"no scheme", pair.AccessToken, false, fiber.StatusUnauthorized, "Access token required"},
		{"garbage token", "Bearer garbage", false, fiber.StatusForbidden, "Invalid or expired token"},
		{"refresh token", "Bearer " + pair.RefreshToken, false, fiber.StatusForbidden, "Invalid or expired token"},
		{"expired token", "Bearer " + expired.AccessToken, false, fiber.StatusForbidden, "Invalid or expired token"},
		{"valid token", "Bearer " + pair.AccessToken, true, fiber.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := middleware.Authenticate(tokens, tt.header)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.status, d.Status)
			assert.Equal(t, tt.message, d.Message)
			if tt.allowed {
				require.NotNil(t, d.Claims)
				assert.Equal(t, "u-1", d.Claims.ID)
				assert.Equal(t, "alice@example.com", d.Claims.Email)
			} else {
				assert.Nil(t, d.Claims)
			}
		})
	}
}

func TestAuthRequired(t *testing.T) {
	tokens := testTokens()
	reached := false

	app := fiber.New()
	app.Get("/me", middleware.AuthRequired(tokens, quietLogger()), func(c *fiber.Ctx) error {
		reached = true
		claims, ok := middleware.CurrentClaims(c)
		require.True(t, ok)
		return c.SendString(claims.Email)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Access token required", body["message"])
	assert.False(t, reached)

	req = httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer nope")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.False(t, reached)

	pair, err := tokens.IssueTokenPair(services.UserClaims{ID: "u-1", Email: "alice@example.com"})
	require.NoError(t, err)
	req = httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "alice@example.com", string(b))
	assert.True(t, reached)
}

func TestCurrentClaims_Absent(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		_, ok := middleware.CurrentClaims(c)
		if ok {
			return c.SendStatus(fiber.StatusOK)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
