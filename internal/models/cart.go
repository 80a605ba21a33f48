package models

import "github.com/google/uuid"

// CartLine is one entry in a user's cart, keyed by the full
// (user, product, size, color) tuple. Size and color are stored as empty
// strings rather than NULLs so the composite unique index treats "no
// variant selected" as a single distinct key and re-adds merge into the
// existing line.
type CartLine struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_line_key" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_line_key" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	Size      string    `gorm:"uniqueIndex:idx_cart_line_key;default:''" json:"size"`
	Color     string    `gorm:"uniqueIndex:idx_cart_line_key;default:''" json:"color"`
	Quantity  int       `json:"quantity"`
}
