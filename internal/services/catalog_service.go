package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/apperr"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/utils"
)

// DefaultCategoryAliases maps the canonical lowercase category parameters
// to the display form stored on products. Prefix matching happens against
// the mapped value; unmapped input is used verbatim.
var DefaultCategoryAliases = map[string]string{
	"men":         "Men",
	"women":       "Women",
	"kids":        "Kids",
	"home":        "Home",
	"beauty":      "Beauty",
	"footwear":    "Footwear",
	"accessories": "Accessories",
	"sports":      "Sports",
	"electronics": "Electronics",
}

// CatalogQuery carries the filter/sort/page parameters of a catalog request.
type CatalogQuery struct {
	Search   string
	Category string
	Brand    string
	MinPrice *float64
	MaxPrice *float64
	Sort     string
	Page     utils.Pagination
}

// BrandCount is a facet row: products per brand.
type BrandCount struct {
	Brand string `json:"brand"`
	Count int64  `json:"count"`
}

// CatalogResult is a catalog page with pagination metadata and facets.
// Facets cover the entire active catalog regardless of the applied filters.
type CatalogResult struct {
	Products   []models.Product `json:"products"`
	Meta       utils.Meta       `json:"pagination"`
	Categories map[string]int64 `json:"categories"`
	Brands     []BrandCount     `json:"brands"`
}

// CatalogService answers read-only product queries. It has no side
// effects and requires no authentication.
type CatalogService struct {
	db      *gorm.DB
	aliases map[string]string
}

// NewCatalogService constructs a CatalogService with the given category
// alias table.
func NewCatalogService(db *gorm.DB, aliases map[string]string) *CatalogService {
	if aliases == nil {
		aliases = DefaultCategoryAliases
	}
	return &CatalogService{db: db, aliases: aliases}
}

// predicate is one optional filter folded onto the base query.
type predicate func(*gorm.DB) *gorm.DB

func (s *CatalogService) predicates(q CatalogQuery) []predicate {
	var preds []predicate

	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		preds = append(preds, func(db *gorm.DB) *gorm.DB {
			return db.Where(
				"LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(category) LIKE ?",
				pattern, pattern, pattern, pattern,
			)
		})
	}

	if category := strings.TrimSpace(q.Category); category != "" {
		prefix := category
		if mapped, ok := s.aliases[strings.ToLower(category)]; ok {
			prefix = mapped
		}
		pattern := strings.ToLower(prefix) + "%"
		preds = append(preds, func(db *gorm.DB) *gorm.DB {
			return db.Where("LOWER(category) LIKE ?", pattern)
		})
	}

	if brand := strings.TrimSpace(q.Brand); brand != "" {
		preds = append(preds, func(db *gorm.DB) *gorm.DB {
			return db.Where("LOWER(brand) = ?", strings.ToLower(brand))
		})
	}

	if q.MinPrice != nil {
		min := *q.MinPrice
		preds = append(preds, func(db *gorm.DB) *gorm.DB {
			return db.Where("price >= ?", min)
		})
	}

	if q.MaxPrice != nil {
		max := *q.MaxPrice
		preds = append(preds, func(db *gorm.DB) *gorm.DB {
			return db.Where("price <= ?", max)
		})
	}

	return preds
}

func orderClause(sort string) string {
	switch sort {
	case "price_asc":
		return "price asc"
	case "price_desc":
		return "price desc"
	case "rating":
		return "rating desc"
	case "name":
		// Case-insensitive so "apple" and "iPhone" compare by letter.
		return "LOWER(name) asc"
	default:
		return "created_at desc"
	}
}

// List runs the catalog query and returns a page of active products with
// pagination metadata and catalog-wide facets.
func (s *CatalogService) List(ctx context.Context, q CatalogQuery) (*CatalogResult, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true)
	for _, pred := range s.predicates(q) {
		query = pred(query)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var products []models.Product
	if err := query.
		Order(orderClause(q.Sort)).
		Limit(q.Page.Limit).Offset(q.Page.Offset).
		Find(&products).Error; err != nil {
		return nil, err
	}

	categories, err := s.categoryFacets(ctx)
	if err != nil {
		return nil, err
	}

	brands, err := s.brandFacets(ctx)
	if err != nil {
		return nil, err
	}

	return &CatalogResult{
		Products:   products,
		Meta:       q.Page.BuildMeta(total),
		Categories: categories,
		Brands:     brands,
	}, nil
}

// GetProduct loads a single active product.
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "product not found")
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *CatalogService) categoryFacets(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Name  string
		Count int64
	}

	var rows []row
	if err := s.db.WithContext(ctx).Model(&models.Product{}).
		Select("LOWER(category) AS name, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group("LOWER(category)").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	facets := make(map[string]int64, len(rows))
	for _, r := range rows {
		facets[r.Name] = r.Count
	}
	return facets, nil
}

func (s *CatalogService) brandFacets(ctx context.Context) ([]BrandCount, error) {
	var rows []BrandCount
	if err := s.db.WithContext(ctx).Model(&models.Product{}).
		Select("brand, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group("brand").
		Order("count desc").
		Limit(20).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
