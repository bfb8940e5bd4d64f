package handlers

import (
	"errors"
	"log"

	"bazaar/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// principal returns the authenticated user id set by the auth middleware.
// An empty string means the route was reached without authentication.
func principal(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}

func principalRole(c *fiber.Ctx) string {
	role, _ := c.Locals("role").(string)
	return role
}

// validationErrorResponse renders field-level validator failures.
func validationErrorResponse(c *fiber.Ctx, err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = "Field '" + e.Field() + "' failed on the '" + e.Tag() + "' tag"
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// respondError maps the service error taxonomy to HTTP responses in one
// place, so every handler reports the same shapes for the same failures.
func respondError(c *fiber.Ctx, err error) error {
	var (
		validationErr *services.ValidationError
		stockErr      *services.InsufficientStockError
		stateErr      *services.InvalidStateError
		externalErr   *services.ExternalServiceError
	)

	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized. Please login and try again.",
		})
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": validationErr.Message,
		})
	case errors.Is(err, services.ErrCartEmpty):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Cart is empty",
		})
	case errors.Is(err, services.ErrMissingAddress):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Shipping address not found",
		})
	case errors.Is(err, services.ErrPaymentVerificationFailed):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Payment verification failed - signature mismatch",
		})
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrCartNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": err.Error(),
		})
	case errors.As(err, &stockErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":   stockErr.Error(),
			"product":   stockErr.ProductID,
			"available": stockErr.Available,
		})
	case errors.As(err, &stateErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": stateErr.Error(),
			"status":  string(stateErr.Current),
		})
	case errors.As(err, &externalErr):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "Upstream service failed, please retry",
			"service": externalErr.Service,
		})
	default:
		// Detail stays in the server log; the response carries none of it.
		log.Printf("Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
		})
	}
}
