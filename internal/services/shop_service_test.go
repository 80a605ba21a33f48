package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/bazaar/internal/apperr"
	"github.com/example/bazaar/internal/models"
)

func TestShopRegister_PromotesToMerchant(t *testing.T) {
	db := newTestDB(t)
	svc := NewShopService(db)
	ctx := context.Background()

	owner := createUser(t, db, "9001234567")

	shop, err := svc.Register(ctx, owner.ID, "Corner Store", "everything you need", "Tashkent")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, shop.OwnerID)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", owner.ID).Error)
	assert.Equal(t, models.RoleMerchant, reloaded.Role)
}

func TestShopRegister_SecondShopRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewShopService(db)
	ctx := context.Background()

	owner := createUser(t, db, "9001234567")

	_, err := svc.Register(ctx, owner.ID, "First", "", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, owner.ID, "Second", "", "")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Conflict))
}

func TestShopRegister_AdminKeepsRole(t *testing.T) {
	db := newTestDB(t)
	svc := NewShopService(db)
	ctx := context.Background()

	admin := createUser(t, db, "9001234567")
	require.NoError(t, db.Model(admin).Update("role", models.RoleAdmin).Error)

	_, err := svc.Register(ctx, admin.ID, "Admin Shop", "", "")
	require.NoError(t, err)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", admin.ID).Error)
	assert.Equal(t, models.RoleAdmin, reloaded.Role)
}

func TestGetByOwner(t *testing.T) {
	db := newTestDB(t)
	svc := NewShopService(db)
	ctx := context.Background()

	owner := createUser(t, db, "9001234567")
	stranger := createUser(t, db, "9009999999")

	_, err := svc.Register(ctx, owner.ID, "Corner Store", "", "")
	require.NoError(t, err)

	shop, err := svc.GetByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Corner Store", shop.Name)

	_, err = svc.GetByOwner(ctx, stranger.ID)
	assert.True(t, apperr.Is(err, apperr.NotFound))
}
