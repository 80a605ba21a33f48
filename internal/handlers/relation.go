package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/bazaar/internal/middleware"
	"github.com/example/bazaar/internal/services"
)

// RelationHandler manages wishlist and booking endpoints.
type RelationHandler struct {
	relations *services.RelationService
}

// NewRelationHandler constructs RelationHandler.
func NewRelationHandler(relations *services.RelationService) *RelationHandler {
	return &RelationHandler{relations: relations}
}

func relationTarget(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	return identity.UserID, productID, nil
}

// ToggleWishlist flips the wishlist relation for a product.
func (h *RelationHandler) ToggleWishlist(c *fiber.Ctx) error {
	userID, productID, err := relationTarget(c)
	if err != nil {
		return err
	}

	action, err := h.relations.ToggleWishlist(c.Context(), userID, productID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "wishlist " + action, "action": action})
}

// RemoveWishlist removes the wishlist relation (and any booking) explicitly.
func (h *RelationHandler) RemoveWishlist(c *fiber.Ctx) error {
	userID, productID, err := relationTarget(c)
	if err != nil {
		return err
	}

	if err := h.relations.RemoveWishlist(c.Context(), userID, productID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "wishlist removed"})
}

// ListWishlist returns the caller's wishlist.
func (h *RelationHandler) ListWishlist(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	items, err := h.relations.ListWishlist(c.Context(), identity.UserID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"wishlist": items})
}

// ToggleBooking flips the booking relation for a product.
func (h *RelationHandler) ToggleBooking(c *fiber.Ctx) error {
	userID, productID, err := relationTarget(c)
	if err != nil {
		return err
	}

	action, err := h.relations.ToggleBooking(c.Context(), userID, productID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "booking " + action, "action": action})
}

// ListBookings returns the caller's bookings.
func (h *RelationHandler) ListBookings(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	items, err := h.relations.ListBookings(c.Context(), identity.UserID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"bookings": items})
}
