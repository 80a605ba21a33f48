package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/bazaar/internal/middleware"
	"github.com/example/bazaar/internal/services"
)

// CartHandler manages cart endpoints.
type CartHandler struct {
	cart *services.CartService
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(cart *services.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// AddItem adds a product to the cart, merging into an existing line for
// the same (product, size, color) key.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	line, err := h.cart.AddItem(c.Context(), identity.UserID, productID, quantity, req.Size, req.Color)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "item added to cart",
		"item":    line,
	})
}

// GetCart returns the cart with product snapshots and totals.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	summary, err := h.cart.GetCart(c.Context(), identity.UserID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"cart": summary})
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// UpdateItem sets a cart line to an absolute quantity.
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	lineID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	line, err := h.cart.UpdateQuantity(c.Context(), identity.UserID, lineID, req.Quantity)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "cart updated", "item": line})
}

// RemoveItem deletes a single cart line.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	lineID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.cart.RemoveItem(c.Context(), identity.UserID, lineID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "item removed from cart"})
}

// ClearCart empties the cart.
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	if err := h.cart.ClearCart(c.Context(), identity.UserID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "cart cleared"})
}
