package models

import "github.com/google/uuid"

// Shop is a merchant storefront. One shop per owner.
type Shop struct {
	BaseModel
	OwnerID     uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	City        string    `json:"city"`
	IsVerified  bool      `json:"is_verified"`
	Products    []Product `json:"products,omitempty"`
}
