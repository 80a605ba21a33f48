package models

import "github.com/google/uuid"

// Variant axes a product may carry.
const (
	VariantNone     = "none"
	VariantSize     = "size"
	VariantStorage  = "storage"
	VariantColor    = "color"
	VariantCapacity = "capacity"
)

// Product belongs to exactly one shop. Rating and ReviewCount are derived
// columns maintained by the review service. Inactive products are hidden
// from every customer-facing query but kept for order history.
type Product struct {
	BaseModel
	ShopID        uuid.UUID `gorm:"type:uuid;index" json:"shop_id"`
	Shop          *Shop     `json:"shop,omitempty"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	OriginalPrice *float64  `json:"original_price"`
	Category      string    `gorm:"index" json:"category"`
	Brand         string    `gorm:"index" json:"brand"`
	Images        []string  `gorm:"serializer:json" json:"images"`
	VariantType   string    `gorm:"default:none" json:"variant_type"`
	Variants      []string  `gorm:"serializer:json" json:"variants"`
	Stock         int       `json:"stock"`
	Rating        float64   `json:"rating"`
	ReviewCount   int       `json:"review_count"`
	IsActive      bool      `gorm:"index;default:true" json:"is_active"`
}

// Review is a single user's rating of a product. One review per
// (user, product), gated by a prior purchase.
type Review struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_review_user_product" json:"user_id"`
	User      *User     `json:"user,omitempty"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_review_user_product;index" json:"product_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
}
