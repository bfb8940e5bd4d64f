package handlers

import (
	"log"

	"bazaar/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PaymentHandler handles HTTP requests for the payment workflow.
type PaymentHandler struct {
	service  *services.PaymentService
	validate *validator.Validate
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the payment routes with the Fiber app.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	paymentRoutes := router.Group("/payments")
	paymentRoutes.Post("/intent", h.HandleCreateIntent)
	paymentRoutes.Post("/verify", h.HandleVerifyPayment)
}

// CreateIntentRequest represents the request body for a payment intent.
type CreateIntentRequest struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Currency string  `json:"currency" validate:"omitempty,len=3"`
	Receipt  string  `json:"receipt" validate:"omitempty,max=64"`
}

// HandleCreateIntent obtains a provider-side order handle the client uses
// to run the provider's checkout flow.
func (h *PaymentHandler) HandleCreateIntent(c *fiber.Ctx) error {
	var req CreateIntentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	intent, err := h.service.CreateIntent(req.Amount, req.Currency, req.Receipt)
	if err != nil {
		log.Printf("Error creating payment intent: %v", err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Payment order created successfully",
		"intent":  intent,
	})
}

// HandleVerifyPayment checks the provider's payment proof and finalizes
// the paid order.
func (h *PaymentHandler) HandleVerifyPayment(c *fiber.Ctx) error {
	var input services.VerifyPaymentInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(input); err != nil {
		return validationErrorResponse(c, err)
	}

	order, err := h.service.VerifyPayment(principal(c), input)
	if err != nil {
		log.Printf("Error verifying payment %s: %v", input.ProviderPaymentID, err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Payment verified and order created successfully",
		"order":   order,
	})
}
