package handlers

import (
	"log"

	"bazaar/internal/middleware"
	"bazaar/internal/models"
	"bazaar/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
// The /vendor and /admin listings are registered before /:id so the
// static segments win route matching.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/vendor", middleware.RoleRequired(models.RoleVendor), h.HandleGetVendorOrders)
	orderRoutes.Get("/admin", middleware.RoleRequired(models.RoleAdmin), h.HandleGetAllOrders)
	orderRoutes.Get("/", h.HandleGetMyOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Post("/:id/cancel", h.HandleCancelOrder)
	orderRoutes.Patch("/:id/status", middleware.RoleRequired(models.RoleAdmin), h.HandleUpdateOrderStatus)
}

// HandleCreateOrder creates a new order from the buyer's cart or a direct
// purchase request. The buyer identity comes from the session principal,
// never from the body.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var input services.CreateOrderInput
	if err := c.BodyParser(&input); err != nil {
		log.Printf("Error parsing request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(input); err != nil {
		return validationErrorResponse(c, err)
	}

	order, err := h.service.CreateOrder(principal(c), input)
	if err != nil {
		log.Printf("Error creating order: %v", err)
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order created successfully",
		"order":   order,
	})
}

// HandleGetMyOrders retrieves the authenticated buyer's order history.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetOrdersByUser(principal(c))
	if err != nil {
		log.Printf("Error getting orders: %v", err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Orders retrieved successfully",
		"orders":  orders,
	})
}

// HandleGetOrderByID retrieves one of the buyer's orders by record id or
// order code.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrderByID(principal(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Order retrieved successfully",
		"order":   order,
	})
}

// CancelOrderRequest represents the request body for cancelling an order.
type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// HandleCancelOrder cancels one of the buyer's orders and restores stock.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	var req CancelOrderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid request body",
				"error":   err.Error(),
			})
		}
	}

	order, err := h.service.CancelOrder(principal(c), c.Params("id"), req.Reason)
	if err != nil {
		log.Printf("Error cancelling order %s: %v", c.Params("id"), err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Order cancelled successfully",
		"order":   order,
	})
}

// UpdateOrderStatusRequest represents the request body for a status update.
type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

// HandleUpdateOrderStatus moves an order along the fulfilment state
// machine. Admin only.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for status update",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	order, err := h.service.UpdateOrderStatus(c.Params("id"), req.Status)
	if err != nil {
		log.Printf("Error updating order status for order %s: %v", c.Params("id"), err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Order status updated successfully",
		"order":   order,
	})
}

// HandleGetVendorOrders lists the acting vendor's orders with optional
// status filter and pagination.
func (h *OrderHandler) HandleGetVendorOrders(c *fiber.Ctx) error {
	status := models.OrderStatus(c.Query("status"))
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	orders, total, err := h.service.GetOrdersBySeller(principal(c), status, page, limit)
	if err != nil {
		log.Printf("Error getting vendor orders: %v", err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Orders retrieved successfully",
		"orders":  orders,
		"pagination": fiber.Map{
			"currentPage": page,
			"totalOrders": total,
		},
	})
}

// HandleGetAllOrders lists every order with pagination. Admin only.
func (h *OrderHandler) HandleGetAllOrders(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	orders, total, err := h.service.GetAllOrders(page, limit)
	if err != nil {
		log.Printf("Error getting all orders: %v", err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Orders retrieved successfully",
		"orders":  orders,
		"pagination": fiber.Map{
			"currentPage": page,
			"totalOrders": total,
		},
	})
}
