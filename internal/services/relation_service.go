package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/apperr"
	"github.com/example/bazaar/internal/models"
)

// Toggle actions returned to callers.
const (
	ActionAdded   = "added"
	ActionRemoved = "removed"
)

// RelationService owns the wishlist and booking (user, product) sets.
// Bookings may exist without a wishlist entry; the only coupling is the
// wishlist-removal cascade.
type RelationService struct {
	db *gorm.DB
}

// NewRelationService constructs a RelationService.
func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{db: db}
}

func (s *RelationService) requireActiveProduct(ctx context.Context, productID uuid.UUID) error {
	var product models.Product
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", productID, true).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.NotFound, "product not found")
	}
	return err
}

// ToggleWishlist flips the wishlist relation. Removal also removes any
// booking for the same pair in the same transaction. Calling it twice
// returns to the original state.
func (s *RelationService) ToggleWishlist(ctx context.Context, userID, productID uuid.UUID) (string, error) {
	if err := s.requireActiveProduct(ctx, productID); err != nil {
		return "", err
	}

	action := ActionAdded
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.WishlistItem
		err := tx.Where("user_id = ? AND product_id = ?", userID, productID).
			First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&models.WishlistItem{UserID: userID, ProductID: productID}).Error
		case err != nil:
			return err
		}

		action = ActionRemoved
		if err := tx.Delete(&existing).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND product_id = ?", userID, productID).
			Delete(&models.BookingItem{}).Error
	})
	if err != nil {
		return "", err
	}

	return action, nil
}

// RemoveWishlist is the explicit, non-toggle removal. It carries the same
// booking cascade as the toggle path and is a no-op when the relation is
// already absent.
func (s *RelationService) RemoveWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND product_id = ?", userID, productID).
			Delete(&models.WishlistItem{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND product_id = ?", userID, productID).
			Delete(&models.BookingItem{}).Error
	})
}

// ToggleBooking flips the booking relation. No wishlist dependency is
// enforced in either direction.
func (s *RelationService) ToggleBooking(ctx context.Context, userID, productID uuid.UUID) (string, error) {
	if err := s.requireActiveProduct(ctx, productID); err != nil {
		return "", err
	}

	var existing models.BookingItem
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.WithContext(ctx).
			Create(&models.BookingItem{UserID: userID, ProductID: productID}).Error; err != nil {
			return "", err
		}
		return ActionAdded, nil
	case err != nil:
		return "", err
	}

	if err := s.db.WithContext(ctx).Delete(&existing).Error; err != nil {
		return "", err
	}
	return ActionRemoved, nil
}

// ListWishlist returns the user's wishlist with product snapshots.
func (s *RelationService) ListWishlist(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := s.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&items).Error
	return items, err
}

// ListBookings returns the user's bookings with product snapshots.
func (s *RelationService) ListBookings(ctx context.Context, userID uuid.UUID) ([]models.BookingItem, error) {
	var items []models.BookingItem
	err := s.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&items).Error
	return items, err
}
