package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/bazaar/internal/apperr"
	"github.com/example/bazaar/internal/models"
)

const (
	freeShippingThreshold = 999
	shippingFee           = 99
)

// CartSummary is a cart joined to its product snapshots with order-ready
// totals.
type CartSummary struct {
	Items         []models.CartLine `json:"items"`
	Subtotal      float64           `json:"subtotal"`
	OriginalTotal float64           `json:"original_total"`
	Savings       float64           `json:"savings"`
	Shipping      float64           `json:"shipping"`
	Total         float64           `json:"total"`
}

// CartService maintains per-user cart lines.
type CartService struct {
	db *gorm.DB
}

// NewCartService constructs a CartService.
func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// AddItem inserts a cart line or merges into the existing line for the
// same (product, size, color) key. The merge is an atomic upsert at the
// storage layer, so concurrent adds for the same key cannot lose updates.
// Stock is not checked here; it is advisory only.
func (s *CartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int, size, color string) (*models.CartLine, error) {
	if quantity <= 0 {
		quantity = 1
	}

	var product models.Product
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", productID, true).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "product not found")
	}
	if err != nil {
		return nil, err
	}

	line := models.CartLine{
		UserID:    userID,
		ProductID: productID,
		Size:      size,
		Color:     color,
		Quantity:  quantity,
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "product_id"}, {Name: "size"}, {Name: "color"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", quantity),
			"updated_at": time.Now(),
		}),
	}).Create(&line).Error; err != nil {
		return nil, err
	}

	var merged models.CartLine
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND size = ? AND color = ?", userID, productID, size, color).
		First(&merged).Error; err != nil {
		return nil, err
	}

	return &merged, nil
}

// UpdateQuantity sets a cart line to an absolute quantity.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, lineID uuid.UUID, quantity int) (*models.CartLine, error) {
	if quantity <= 0 {
		return nil, apperr.New(apperr.Validation, "quantity must be a positive integer")
	}

	var line models.CartLine
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "cart item not found")
	}
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&line).
		Updates(map[string]interface{}{"quantity": quantity, "updated_at": time.Now()}).Error; err != nil {
		return nil, err
	}

	return &line, nil
}

// RemoveItem deletes a single cart line.
func (s *CartService) RemoveItem(ctx context.Context, userID, lineID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		Delete(&models.CartLine{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "cart item not found")
	}
	return nil
}

// GetCart joins lines to their product snapshots and computes totals.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartSummary, error) {
	var lines []models.CartLine
	if err := s.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&lines).Error; err != nil {
		return nil, err
	}

	summary := &CartSummary{Items: lines}
	for _, line := range lines {
		if line.Product == nil {
			continue
		}
		qty := float64(line.Quantity)
		summary.Subtotal += line.Product.Price * qty

		original := line.Product.Price
		if line.Product.OriginalPrice != nil {
			original = *line.Product.OriginalPrice
		}
		summary.OriginalTotal += original * qty
	}

	summary.Savings = summary.OriginalTotal - summary.Subtotal
	if summary.Subtotal > 0 && summary.Subtotal <= freeShippingThreshold {
		summary.Shipping = shippingFee
	}
	summary.Total = summary.Subtotal + summary.Shipping

	return summary, nil
}

// ClearCart deletes every line for the user. Clearing an already-empty
// cart is a no-op.
func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartLine{}).Error
}
