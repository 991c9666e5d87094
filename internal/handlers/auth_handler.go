package handlers

import (
	"cafe/internal/models"
	"cafe/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles HTTP requests for registration, login and token refresh.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	log         *logrus.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    newValidator(),
		log:         logger,
	}
}

// RegisterRoutes registers the unauthenticated user routes. limiter guards
// the credential endpoints.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, limiter fiber.Handler) {
	router.Post("/createUser", limiter, h.HandleCreateUser)
	router.Post("/userLogin", limiter, h.HandleLogin)
	router.Post("/refresh", h.HandleRefresh)
}

// CredentialsRequest is the body of createUser and userLogin.
type CredentialsRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is the body of refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type userSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func sessionResponse(message string, user *models.User, pair services.TokenPair) fiber.Map {
	return fiber.Map{
		"success":      true,
		"message":      message,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"user":         userSummary{ID: user.ID, Email: user.Email},
	}
}

// HandleCreateUser registers an account and logs it in.
func (h *AuthHandler) HandleCreateUser(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := bind(c, h.validate, &req); err != nil {
		return fail(c, fiber.StatusBadRequest, "All fields are required", "general")
	}
	if err := h.validate.Var(req.Email, "email"); err != nil {
		return fail(c, fiber.StatusBadRequest, "email must be a valid email address", "email")
	}

	user, err := h.authService.CreateUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		h.log.WithError(err).Info("Registration failed")
		return writeError(c, h.log, err)
	}

	pair, err := h.authService.IssueTokens(user)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sessionResponse("Account created successfully", user, pair))
}

// HandleLogin authenticates a user and issues a token pair.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, h.log, err)
	}

	user, pair, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		h.log.WithError(err).Info("Login failed")
		return writeError(c, h.log, err)
	}
	return c.JSON(sessionResponse("Login successful", user, pair))
}

// HandleRefresh rotates a refresh token into a new pair.
func (h *AuthHandler) HandleRefresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, h.log, err)
	}
	if req.RefreshToken == "" {
		return fail(c, fiber.StatusUnauthorized, "Refresh token required", "")
	}

	pair, err := h.authService.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		if isInvalidToken(err) {
			return fail(c, fiber.StatusForbidden, "Invalid refresh token", "")
		}
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}
