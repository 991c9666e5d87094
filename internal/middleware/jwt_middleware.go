package middleware

import (
	"strings"

	"cafe/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const claimsKey = "claims"

// Decision is the outcome of authenticating one request.
type Decision struct {
	Allowed bool
	Claims  *services.Claims
	Status  int
	Message string
}

// Authenticate decides on an Authorization header value. A missing or
// non-bearer header is 401; a token that fails verification is 403.
func Authenticate(tokens *services.TokenService, header string) Decision {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !ok || scheme != "Bearer" || token == "" {
		return Decision{Status: fiber.StatusUnauthorized, Message: "Access token required"}
	}

	claims, err := tokens.VerifyAccess(token)
	if err != nil {
		return Decision{Status: fiber.StatusForbidden, Message: "Invalid or expired token"}
	}
	return Decision{Allowed: true, Claims: claims, Status: fiber.StatusOK}
}

// AuthRequired is a Fiber middleware to check for a valid access token.
func AuthRequired(tokens *services.TokenService, logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d := Authenticate(tokens, c.Get(fiber.HeaderAuthorization))
		if !d.Allowed {
			logger.WithFields(logrus.Fields{"path": c.Path(), "status": d.Status}).Debug("Request rejected by auth gate")
			return c.Status(d.Status).JSON(fiber.Map{
				"success": false,
				"message": d.Message,
			})
		}

		// Store claims in Fiber context for subsequent handlers
		c.Locals(claimsKey, d.Claims)
		return c.Next()
	}
}

// CurrentClaims returns the claims stored by AuthRequired.
func CurrentClaims(c *fiber.Ctx) (*services.Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*services.Claims)
	return claims, ok && claims != nil
}
