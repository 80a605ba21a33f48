package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles. A user is promoted to merchant by shop registration and is
// never demoted except through an admin edit.
const (
	RoleUser     = "user"
	RoleMerchant = "merchant"
	RoleAdmin    = "admin"
)

// User represents an account identified by its phone number. Accounts are
// created implicitly on the first successful OTP verification.
type User struct {
	BaseModel
	Name         string        `json:"name"`
	Phone        string        `gorm:"uniqueIndex" json:"phone"`
	Email        *string       `gorm:"uniqueIndex" json:"email"`
	Role         string        `gorm:"default:user" json:"role"`
	PasswordHash string        `json:"-"`
	IsVerified   bool          `json:"is_verified"`
	Age          int           `json:"age"`
	Gender       string        `json:"gender"`
	City         string        `json:"city"`
	Interests    []string      `gorm:"serializer:json" json:"interests"`
	NotifyOrders bool          `gorm:"default:true" json:"notify_orders"`
	NotifyPromos bool          `gorm:"default:true" json:"notify_promos"`
	Addresses    []UserAddress `json:"addresses,omitempty"`
}

// OTPChallenge is the single active one-time code for a phone number.
// Requesting a new code upsert-replaces the previous row; expiry is
// enforced lazily by the lookup filter, never by a cleanup job.
type OTPChallenge struct {
	BaseModel
	Phone     string    `gorm:"uniqueIndex" json:"phone"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
}

// UserAddress is a shipping address in the user's address book.
type UserAddress struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Label       string    `json:"label"`
	AddressLine string    `json:"address_line"`
	Apartment   string    `json:"apartment"`
	City        string    `json:"city"`
	District    string    `json:"district"`
	PostalCode  string    `json:"postal_code"`
	IsDefault   bool      `json:"is_default"`
}
