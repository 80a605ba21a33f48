package models

import "github.com/google/uuid"

// WishlistItem is the (user, product) wishlist relation. Removing it also
// removes any BookingItem for the same pair.
type WishlistItem struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_wishlist_user_product" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_wishlist_user_product;index" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
}

// BookingItem is the (user, product) booking relation. It may exist
// without a wishlist entry; only the wishlist-removal cascade ties the
// two together.
type BookingItem struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_booking_user_product" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_booking_user_product;index" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
}
