package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/bazaar/internal/apperr"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/utils"
)

func TestAddReview_RequiresPurchase(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	user := createUser(t, db, "9001234567")
	shop := createShop(t, db, createUser(t, db, "9007654321"))
	product := createProduct(t, db, shop)

	_, err := svc.AddReview(context.Background(), user.ID, product.ID, 5, "great")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Authorization))
}

func TestAddReview_OnePerUserProduct(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)
	orders := NewOrderService(db, zap.NewNop())
	ctx := context.Background()

	user := createUser(t, db, "9001234567")
	shop := createShop(t, db, createUser(t, db, "9007654321"))
	product := createProduct(t, db, shop)

	_, err := orders.PlaceOrder(ctx, user.ID, PlaceOrderInput{
		Items:           []OrderLineInput{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: "42 Main St",
		PaymentMethod:   "card",
	})
	require.NoError(t, err)

	_, err = svc.AddReview(ctx, user.ID, product.ID, 4, "good")
	require.NoError(t, err)

	_, err = svc.AddReview(ctx, user.ID, product.ID, 5, "changed my mind")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Conflict))
}

func TestAddReview_RecomputesRating(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)
	orders := NewOrderService(db, zap.NewNop())
	ctx := context.Background()

	shop := createShop(t, db, createUser(t, db, "9007654321"))
	product := createProduct(t, db, shop)

	phones := []string{"9000000001", "9000000002", "9000000003", "9000000004"}
	ratings := []int{5, 5, 4, 3}

	for i, phone := range phones {
		reviewer := createUser(t, db, phone)
		_, err := orders.PlaceOrder(ctx, reviewer.ID, PlaceOrderInput{
			Items:           []OrderLineInput{{ProductID: product.ID, Quantity: 1}},
			ShippingAddress: "42 Main St",
			PaymentMethod:   "card",
		})
		require.NoError(t, err)

		_, err = svc.AddReview(ctx, reviewer.ID, product.ID, ratings[i], "")
		require.NoError(t, err)
	}

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	// mean of 5,5,4,3 is 4.25, rounded half away from zero to one decimal.
	assert.InDelta(t, 4.3, reloaded.Rating, 0.001)
	assert.Equal(t, 4, reloaded.ReviewCount)
}

func TestAddReview_BoundsChecked(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	user := createUser(t, db, "9001234567")
	shop := createShop(t, db, createUser(t, db, "9007654321"))
	product := createProduct(t, db, shop)

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.AddReview(context.Background(), user.ID, product.ID, rating, "")
		assert.True(t, apperr.Is(err, apperr.Validation), "rating %d", rating)
	}
}

func TestListReviews_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)
	orders := NewOrderService(db, zap.NewNop())
	ctx := context.Background()

	shop := createShop(t, db, createUser(t, db, "9007654321"))
	product := createProduct(t, db, shop)

	for _, phone := range []string{"9000000001", "9000000002"} {
		reviewer := createUser(t, db, phone)
		_, err := orders.PlaceOrder(ctx, reviewer.ID, PlaceOrderInput{
			Items:           []OrderLineInput{{ProductID: product.ID, Quantity: 1}},
			ShippingAddress: "42 Main St",
			PaymentMethod:   "card",
		})
		require.NoError(t, err)
		_, err = svc.AddReview(ctx, reviewer.ID, product.ID, 4, "")
		require.NoError(t, err)
	}

	reviews, meta, err := svc.ListReviews(ctx, product.ID, utils.Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
	assert.Equal(t, int64(2), meta.Total)
}
