package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/bazaar/internal/middleware"
	"github.com/example/bazaar/internal/services"
)

// ShopHandler manages shop registration.
type ShopHandler struct {
	shops *services.ShopService
}

// NewShopHandler constructs ShopHandler.
func NewShopHandler(shops *services.ShopService) *ShopHandler {
	return &ShopHandler{shops: shops}
}

type registerShopRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	City        string `json:"city"`
}

// Register creates the caller's shop and promotes them to merchant.
func (h *ShopHandler) Register(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req registerShopRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	shop, err := h.shops.Register(c.Context(), identity.UserID, req.Name, req.Description, req.City)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "shop registered, merchant access granted",
		"shop":    shop,
	})
}

// GetMyShop returns the caller's shop.
func (h *ShopHandler) GetMyShop(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	shop, err := h.shops.GetByOwner(c.Context(), identity.UserID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"shop": shop})
}
