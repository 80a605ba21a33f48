package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/bazaar/internal/apperr"
	"github.com/example/bazaar/internal/models"
)

func TestAddItem_MergesSameVariantKey(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()

	user := createUser(t, db, "9001234567")
	shop := createShop(t, db, createUser(t, db, "9007654321"))
	product := createProduct(t, db, shop)

	line, err := svc.AddItem(ctx, user.ID, product.ID, 2, "M", "black")
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)

	merged, err := svc.AddItem(ctx, user.ID, product.ID, 3, "M", "black")
	require.NoError(t, err)
	assert.Equal(t, line.ID, merged.ID)
	assert.Equal(t, 5, merged.Quantity)

	var count int64
	require.NoError(t, db.Model(&models.CartLine{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAddItem_DifferentVariantKeysStaySeparate(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()

	user := createUser(t, db, "9001234567")
	shop := createShop(t, db, createUser(t, db, "9007654321"))
	product := createProduct(t, db, shop)

	_, err := svc.AddItem(ctx, user.ID, product.ID, 1, "M", "black")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, user.ID, product.ID, 1, "L", "black")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, user.ID, product.ID, 1, "", "")
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.CartLine{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestAddItem_UnknownOrInactiveProduct(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()

	user := createUser(t, db, "9001234567")
	shop := createShop(t, db, createUser(t, db, "9007654321"))
	hidden := createProduct(t, db, shop, inactive())

	_, err := svc.AddItem(ctx, user.ID, uuid.New(), 1, "", "")
	assert.True(t, apperr.Is(err, apperr.NotFound))

	_, err = svc.AddItem(ctx, user.ID, hidden.ID, 1, "", "")
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestGetCart_Totals(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()

	user := createUser(t, db, "9001234567")
	shop := createShop(t, db, createUser(t, db, "9007654321"))

	original := 250.0
	discounted := createProduct(t, db, shop, withPrice(200))
	require.NoError(t, db.Model(discounted).Update("original_price", original).Error)
	plain := createProduct(t, db, shop, withPrice(150))

	_, err := svc.AddItem(ctx, user.ID, discounted.ID, 2, "", "")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, user.ID, plain.ID, 1, "", "")
	require.NoError(t, err)

	summary, err := svc.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, summary.Items, 2)
	assert.InDelta(t, 550, summary.Subtotal, 0.001)
	assert.InDelta(t, 650, summary.OriginalTotal, 0.001)
	assert.InDelta(t, 100, summary.Savings, 0.001)
	assert.InDelta(t, float64(shippingFee), summary.Shipping, 0.001)
	assert.InDelta(t, 550+float64(shippingFee), summary.Total, 0.001)
}

func TestGetCart_FreeShippingAboveThreshold(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()

	user := createUser(t, db, "9001234567")
	shop := createShop(t, db, createUser(t, db, "9007654321"))
	product := createProduct(t, db, shop, withPrice(500))

	_, err := svc.AddItem(ctx, user.ID, product.ID, 2, "", "")
	require.NoError(t, err)

	summary, err := svc.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1000, summary.Subtotal, 0.001)
	assert.Zero(t, summary.Shipping)
	assert.InDelta(t, 1000, summary.Total, 0.001)
}

func TestGetCart_EmptyHasNoShipping(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)

	user := createUser(t, db, "9001234567")

	summary, err := svc.GetCart(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
	assert.Zero(t, summary.Shipping)
	assert.Zero(t, summary.Total)
}

func TestUpdateQuantity(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()

	user := createUser(t, db, "9001234567")
	shop := createShop(t, db, createUser(t, db, "9007654321"))
	product := createProduct(t, db, shop)

	line, err := svc.AddItem(ctx, user.ID, product.ID, 1, "", "")
	require.NoError(t, err)

	updated, err := svc.UpdateQuantity(ctx, user.ID, line.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Quantity)

	_, err = svc.UpdateQuantity(ctx, user.ID, line.ID, 0)
	assert.True(t, apperr.Is(err, apperr.Validation))

	_, err = svc.UpdateQuantity(ctx, user.ID, uuid.New(), 2)
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestRemoveItem(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	ctx := context.Background()

	user := createUser(t, db, "9001234567")
	other := createUser(t, db, "9009999999")
	shop := createShop(t, db, createUser(t, db, "9007654321"))
	product := createProduct(t, db, shop)

	line, err := svc.AddItem(ctx, user.ID, product.ID, 1, "", "")
	require.NoError(t, err)

	// Another user cannot remove someone else's line.
	err = svc.RemoveItem(ctx, other.ID, line.ID)
	assert.True(t, apperr.Is(err, apperr.NotFound))

	require.NoError(t, svc.RemoveItem(ctx, user.ID, line.ID))
	err = svc.RemoveItem(ctx, user.ID, line.ID)
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestClearCart_EmptyIsNoOp(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)

	user := createUser(t, db, "9001234567")
	require.NoError(t, svc.ClearCart(context.Background(), user.ID))
}
