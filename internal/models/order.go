package models

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses, forward-only.
const (
	OrderConfirmed = "confirmed"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// Order is immutable once created. Lines carry a denormalized snapshot of
// the product at placement time so later price changes never alter
// historical totals. OrderNumber is the human-readable identifier exposed
// externally; the uuid key stays internal.
type Order struct {
	BaseModel
	UserID          uuid.UUID   `gorm:"type:uuid;index" json:"user_id"`
	User            *User       `json:"user,omitempty"`
	OrderNumber     string      `gorm:"uniqueIndex" json:"order_number"`
	Status          string      `json:"status"`
	PlacedAt        time.Time   `json:"placed_at"`
	ShippingAddress string      `json:"shipping_address"`
	PaymentMethod   string      `json:"payment_method"`
	Subtotal        float64     `json:"subtotal"`
	ShippingFee     float64     `json:"shipping_fee"`
	TotalAmount     float64     `json:"total_amount"`
	Items           []OrderItem `json:"items,omitempty"`
}

// OrderItem is one denormalized line of an order.
type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	Size        string    `json:"size"`
	Color       string    `json:"color"`
	LineTotal   float64   `json:"line_total"`
}

// PurchasedItem exists solely to answer "has user U purchased product P"
// for review eligibility. Written once at order time, never updated. The
// (order, product) unique index makes fulfillment retries idempotent.
type PurchasedItem struct {
	BaseModel
	OrderID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_purchased_order_product" json:"order_id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_purchased_order_product;index" json:"product_id"`
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
}
