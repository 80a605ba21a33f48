package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/apperr"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/services"
	"github.com/example/bazaar/internal/utils"
)

// AdminHandler exposes administrative endpoints.
type AdminHandler struct {
	db     *gorm.DB
	orders *services.OrderService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB, orders *services.OrderService) *AdminHandler {
	return &AdminHandler{db: db, orders: orders}
}

// ListUsers returns a paginated user listing, optionally filtered by role
// or a phone/name search term.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	p := utils.ParsePagination(c)

	query := h.db.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if search := c.Query("search"); search != "" {
		term := "%" + search + "%"
		query = query.Where("phone LIKE ? OR LOWER(name) LIKE LOWER(?)", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var users []models.User
	if err := query.Order("created_at DESC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&users).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"users":      users,
		"pagination": p.BuildMeta(total),
	})
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user merchant admin"`
}

// UpdateUserRole changes a user's role. Admin is never granted implicitly
// anywhere else, this endpoint is the only path to it.
func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	result := h.db.Model(&models.User{}).Where("id = ?", userID).Update("role", req.Role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "user not found")
	}

	return c.JSON(fiber.Map{"message": "role updated"})
}

// ReconcileOrders re-runs purchased-item fanout for orders whose fanout
// did not complete.
func (h *AdminHandler) ReconcileOrders(c *fiber.Ctx) error {
	repaired, err := h.orders.Reconcile(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message":  "reconciliation complete",
		"repaired": repaired,
	})
}
