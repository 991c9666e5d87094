package handlers

import (
	"errors"
	"reflect"
	"strings"

	"cafe/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// newValidator reports field errors by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// bind parses the JSON body into req and validates it.
func bind(c *fiber.Ctx, v *validator.Validate, req interface{}) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return &services.ValidationError{Field: "general", Message: "Invalid request body"}
		}
	}
	if err := v.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return &services.ValidationError{Field: e.Field(), Message: validationMessage(e)}
		}
		return &services.ValidationError{Field: "general", Message: err.Error()}
	}
	return nil
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return e.Field() + " must be a valid email address"
	default:
		return "Field '" + e.Field() + "' failed on the '" + e.Tag() + "' tag"
	}
}

func fail(c *fiber.Ctx, status int, message, field string) error {
	body := fiber.Map{
		"success": false,
		"message": message,
	}
	if field != "" {
		body["field"] = field
	}
	return c.Status(status).JSON(body)
}

// writeError maps service errors to HTTP responses. Storage failures are
// logged and answered with a generic message.
func writeError(c *fiber.Ctx, logger *logrus.Logger, err error) error {
	var (
		verr *services.ValidationError
		cerr *services.CredentialsError
		serr *services.StorageError
	)
	switch {
	case errors.As(err, &verr):
		return fail(c, fiber.StatusBadRequest, verr.Message, verr.Field)
	case errors.As(err, &cerr):
		return fail(c, fiber.StatusUnauthorized, "Invalid email or password", cerr.Field)
	case errors.Is(err, services.ErrDuplicateEmail):
		return fail(c, fiber.StatusConflict, "Email already exists", "email")
	case errors.Is(err, services.ErrUserNotFound):
		return fail(c, fiber.StatusNotFound, "Cannot find user by email in the database", "")
	case errors.Is(err, services.ErrItemNotFound):
		return fail(c, fiber.StatusNotFound, "Item not found in checkout basket", "")
	case errors.Is(err, services.ErrInvalidToken):
		return fail(c, fiber.StatusForbidden, "Invalid or expired token", "")
	case errors.As(err, &serr):
		logger.WithError(serr.Err).WithField("op", serr.Op).Error("Storage failure")
		return fail(c, fiber.StatusInternalServerError, "Server error", "")
	default:
		logger.WithError(err).WithField("path", c.Path()).Error("Unhandled error")
		return fail(c, fiber.StatusInternalServerError, "Server error", "")
	}
}

func isInvalidToken(err error) bool {
	return errors.Is(err, services.ErrInvalidToken)
}
