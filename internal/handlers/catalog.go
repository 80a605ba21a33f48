package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/bazaar/internal/services"
	"github.com/example/bazaar/internal/utils"
)

// CatalogHandler serves the public, unauthenticated product catalog.
type CatalogHandler struct {
	catalog *services.CatalogService
	reviews *services.ReviewService
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(catalog *services.CatalogService, reviews *services.ReviewService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, reviews: reviews}
}

// ListProducts returns a filtered, sorted, paginated product page with
// catalog-wide facets.
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	query := services.CatalogQuery{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Brand:    c.Query("brand"),
		Sort:     c.Query("sort"),
		Page:     utils.ParsePagination(c),
	}

	if v := c.Query("min_price"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			query.MinPrice = &parsed
		}
	}
	if v := c.Query("max_price"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			query.MaxPrice = &parsed
		}
	}

	result, err := h.catalog.List(c.Context(), query)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"products":   result.Products,
		"pagination": result.Meta,
		"facets": fiber.Map{
			"categories": result.Categories,
			"brands":     result.Brands,
		},
	})
}

// GetProduct loads a single active product.
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	product, err := h.catalog.GetProduct(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"product": product})
}

// ListReviews returns a product's reviews.
func (h *CatalogHandler) ListReviews(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	reviews, meta, err := h.reviews.ListReviews(c.Context(), id, utils.ParsePagination(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"reviews": reviews, "pagination": meta})
}
