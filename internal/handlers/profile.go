package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/apperr"
	"github.com/example/bazaar/internal/middleware"
	"github.com/example/bazaar/internal/models"
)

// ProfileHandler manages user profile endpoints.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// GetProfile returns the authenticated user's profile.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var user models.User
	if err := h.db.Preload("Addresses").First(&user, "id = ?", identity.UserID).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"user": user})
}

type updateProfileRequest struct {
	Name         *string  `json:"name"`
	Email        *string  `json:"email" validate:"omitempty,email"`
	Age          *int     `json:"age" validate:"omitempty,min=0,max=150"`
	Gender       *string  `json:"gender"`
	City         *string  `json:"city"`
	Interests    []string `json:"interests"`
	NotifyOrders *bool    `json:"notify_orders"`
	NotifyPromos *bool    `json:"notify_promos"`
}

// UpdateProfile updates profile fields. An empty email clears the column
// to NULL so it never collides on the unique index.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		if *req.Email == "" {
			updates["email"] = nil
		} else {
			updates["email"] = *req.Email
		}
	}
	if req.Age != nil {
		updates["age"] = *req.Age
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.NotifyOrders != nil {
		updates["notify_orders"] = *req.NotifyOrders
	}
	if req.NotifyPromos != nil {
		updates["notify_promos"] = *req.NotifyPromos
	}

	if len(updates) == 0 && req.Interests == nil {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	if req.Interests != nil {
		// Serialized columns do not go through the map-update path.
		if err := h.db.Model(&models.User{}).Where("id = ?", identity.UserID).
			Update("interests", req.Interests).Error; err != nil {
			return err
		}
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		if err := h.db.Model(&models.User{}).Where("id = ?", identity.UserID).
			Updates(updates).Error; err != nil {
			return err
		}
	}

	return c.JSON(fiber.Map{"message": "profile updated"})
}

type addressRequest struct {
	Label       string `json:"label"`
	AddressLine string `json:"address_line" validate:"required"`
	Apartment   string `json:"apartment"`
	City        string `json:"city" validate:"required"`
	District    string `json:"district"`
	PostalCode  string `json:"postal_code"`
	IsDefault   bool   `json:"is_default"`
}

// ListAddresses returns the user's address book.
func (h *ProfileHandler) ListAddresses(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var addresses []models.UserAddress
	if err := h.db.Where("user_id = ?", identity.UserID).Find(&addresses).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"addresses": addresses})
}

// CreateAddress adds an address. Default reassignment happens inside one
// transaction so concurrent writes cannot leave two defaults.
func (h *ProfileHandler) CreateAddress(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req addressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	address := models.UserAddress{
		UserID:      identity.UserID,
		Label:       req.Label,
		AddressLine: req.AddressLine,
		Apartment:   req.Apartment,
		City:        req.City,
		District:    req.District,
		PostalCode:  req.PostalCode,
		IsDefault:   req.IsDefault,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			if err := tx.Model(&models.UserAddress{}).
				Where("user_id = ? AND is_default = ?", identity.UserID, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "address added",
		"address": address,
	})
}

// SetDefaultAddress marks an address as the default, clearing the
// previous one in the same transaction.
func (h *ProfileHandler) SetDefaultAddress(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	addrID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		var address models.UserAddress
		if err := tx.First(&address, "id = ? AND user_id = ?", addrID, identity.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.NotFound, "address not found")
			}
			return err
		}

		if err := tx.Model(&models.UserAddress{}).
			Where("user_id = ? AND is_default = ?", identity.UserID, true).
			Update("is_default", false).Error; err != nil {
			return err
		}

		return tx.Model(&address).Update("is_default", true).Error
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "default address updated"})
}

// DeleteAddress removes an address from the book.
func (h *ProfileHandler) DeleteAddress(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	addrID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	result := h.db.Where("id = ? AND user_id = ?", addrID, identity.UserID).
		Delete(&models.UserAddress{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "address not found")
	}

	return c.JSON(fiber.Map{"message": "address deleted"})
}
