package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/apperr"
	"github.com/example/bazaar/internal/models"
)

// ShopService handles merchant shop registration.
type ShopService struct {
	db *gorm.DB
}

// NewShopService constructs a ShopService.
func NewShopService(db *gorm.DB) *ShopService {
	return &ShopService{db: db}
}

// Register creates the caller's shop and promotes them to merchant. One
// shop per user; a second registration conflicts. The role promotion
// never demotes an admin.
func (s *ShopService) Register(ctx context.Context, ownerID uuid.UUID, name, description, city string) (*models.Shop, error) {
	if name == "" {
		return nil, apperr.New(apperr.Validation, "shop name is required")
	}

	var existing models.Shop
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&existing).Error
	if err == nil {
		return nil, apperr.New(apperr.Conflict, "shop already registered")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	shop := models.Shop{
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		City:        city,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&shop).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ? AND role = ?", ownerID, models.RoleUser).
			Updates(map[string]interface{}{"role": models.RoleMerchant, "updated_at": time.Now()}).Error
	})
	if err != nil {
		return nil, err
	}

	return &shop, nil
}

// GetByOwner loads the caller's shop.
func (s *ShopService) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "shop not found")
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}
