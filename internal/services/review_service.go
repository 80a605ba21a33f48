package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/apperr"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/utils"
)

// ReviewService inserts reviews and maintains the derived rating columns
// on products.
type ReviewService struct {
	db *gorm.DB
}

// NewReviewService constructs a ReviewService.
func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// AddReview records a rating for a purchased product, one per
// (user, product), then recomputes the product's average rating and
// review count. The recompute scans every review for the product instead
// of keeping a running sum, so concurrent partial updates cannot drift it.
func (s *ReviewService) AddReview(ctx context.Context, userID, productID uuid.UUID, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, apperr.New(apperr.Validation, "rating must be between 1 and 5")
	}

	var product models.Product
	err := s.db.WithContext(ctx).First(&product, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "product not found")
	}
	if err != nil {
		return nil, err
	}

	var purchases int64
	if err := s.db.WithContext(ctx).Model(&models.PurchasedItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&purchases).Error; err != nil {
		return nil, err
	}
	if purchases == 0 {
		return nil, apperr.New(apperr.Authorization, "must have purchased this product to review it")
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Review{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, apperr.New(apperr.Conflict, "you have already reviewed this product")
	}

	review := models.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Comment:   comment,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return recomputeRating(tx, productID)
	})
	if err != nil {
		return nil, err
	}

	return &review, nil
}

// recomputeRating rewrites the product's derived rating columns from a
// full scan of its reviews. The mean is rounded half away from zero to
// one decimal.
func recomputeRating(tx *gorm.DB, productID uuid.UUID) error {
	var ratings []int
	if err := tx.Model(&models.Review{}).
		Where("product_id = ?", productID).
		Pluck("rating", &ratings).Error; err != nil {
		return err
	}

	var average float64
	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r
		}
		average = math.Round(float64(sum)/float64(len(ratings))*10) / 10
	}

	return tx.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"rating":       average,
			"review_count": len(ratings),
			"updated_at":   time.Now(),
		}).Error
}

// ListReviews returns a product's reviews, newest first.
func (s *ReviewService) ListReviews(ctx context.Context, productID uuid.UUID, pg utils.Pagination) ([]models.Review, utils.Meta, error) {
	query := s.db.WithContext(ctx).Model(&models.Review{}).Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, utils.Meta{}, err
	}

	var reviews []models.Review
	if err := query.
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&reviews).Error; err != nil {
		return nil, utils.Meta{}, err
	}

	return reviews, pg.BuildMeta(total), nil
}
