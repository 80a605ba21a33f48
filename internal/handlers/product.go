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
	"github.com/example/bazaar/internal/services"
	"github.com/example/bazaar/internal/utils"
)

// ProductHandler manages merchant product CRUD.
type ProductHandler struct {
	db    *gorm.DB
	shops *services.ShopService
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB, shops *services.ShopService) *ProductHandler {
	return &ProductHandler{db: db, shops: shops}
}

type productRequest struct {
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description"`
	Price         float64  `json:"price" validate:"required,gt=0"`
	OriginalPrice *float64 `json:"original_price"`
	Category      string   `json:"category" validate:"required"`
	Brand         string   `json:"brand"`
	Images        []string `json:"images" validate:"min=1"`
	VariantType   string   `json:"variant_type" validate:"omitempty,oneof=size storage color capacity none"`
	Variants      []string `json:"variants"`
	Stock         int      `json:"stock" validate:"min=0"`
}

func (r productRequest) check() error {
	if r.OriginalPrice != nil && *r.OriginalPrice < r.Price {
		return apperr.New(apperr.Validation, "original price must not be lower than price")
	}
	return nil
}

// CreateProduct lists a new product under the caller's shop.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	shop, err := h.shops.GetByOwner(c.Context(), identity.UserID)
	if err != nil {
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateStruct(req); err != nil {
		return err
	}
	if err := req.check(); err != nil {
		return err
	}

	variantType := req.VariantType
	if variantType == "" {
		variantType = models.VariantNone
	}

	product := models.Product{
		ShopID:        shop.ID,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Category:      req.Category,
		Brand:         req.Brand,
		Images:        req.Images,
		VariantType:   variantType,
		Variants:      req.Variants,
		Stock:         req.Stock,
		IsActive:      true,
	}

	if err := h.db.Create(&product).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "product created",
		"product": product,
	})
}

func (h *ProductHandler) ownedProduct(c *fiber.Ctx) (*models.Product, error) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "product not found")
		}
		return nil, err
	}

	if identity.Role != models.RoleAdmin {
		shop, err := h.shops.GetByOwner(c.Context(), identity.UserID)
		if err != nil {
			return nil, err
		}
		if product.ShopID != shop.ID {
			return nil, apperr.New(apperr.Authorization, "product belongs to another shop")
		}
	}

	return &product, nil
}

// UpdateProduct edits a product in the caller's shop.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	product, err := h.ownedProduct(c)
	if err != nil {
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateStruct(req); err != nil {
		return err
	}
	if err := req.check(); err != nil {
		return err
	}

	variantType := req.VariantType
	if variantType == "" {
		variantType = models.VariantNone
	}

	product.Images = req.Images
	product.Variants = req.Variants
	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.OriginalPrice = req.OriginalPrice
	product.Category = req.Category
	product.Brand = req.Brand
	product.VariantType = variantType
	product.Stock = req.Stock

	if err := h.db.Save(product).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "product updated", "product": product})
}

// DeleteProduct soft-deletes a product. It disappears from customer
// queries but stays behind order history.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	product, err := h.ownedProduct(c)
	if err != nil {
		return err
	}

	if err := h.db.Model(product).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "product removed"})
}

// ListMyProducts returns every product of the caller's shop, inactive
// ones included.
func (h *ProductHandler) ListMyProducts(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	shop, err := h.shops.GetByOwner(c.Context(), identity.UserID)
	if err != nil {
		return err
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Product{}).Where("shop_id = ?", shop.ID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"products": products, "pagination": pg.BuildMeta(total)})
}
