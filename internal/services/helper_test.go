package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/bazaar/internal/database"
	"github.com/example/bazaar/internal/models"
)

// newTestDB opens an isolated in-memory database and runs migrations.
// The DSN is derived from the test name so parallel tests never share state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, phone string) *models.User {
	t.Helper()

	user := &models.User{Phone: phone, Role: models.RoleUser, IsVerified: true}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createShop(t *testing.T, db *gorm.DB, owner *models.User) *models.Shop {
	t.Helper()

	shop := &models.Shop{OwnerID: owner.ID, Name: "Test Shop"}
	require.NoError(t, db.Create(shop).Error)
	return shop
}

type productOverride func(*models.Product)

func withPrice(price float64) productOverride {
	return func(p *models.Product) { p.Price = price }
}

func withCategory(category string) productOverride {
	return func(p *models.Product) { p.Category = category }
}

func withBrand(brand string) productOverride {
	return func(p *models.Product) { p.Brand = brand }
}

func withName(name string) productOverride {
	return func(p *models.Product) { p.Name = name }
}

func inactive() productOverride {
	return func(p *models.Product) { p.IsActive = false }
}

func createProduct(t *testing.T, db *gorm.DB, shop *models.Shop, overrides ...productOverride) *models.Product {
	t.Helper()

	product := &models.Product{
		ShopID:      shop.ID,
		Name:        "Test Product",
		Price:       100,
		Category:    "Men's Clothing",
		Brand:       "Acme",
		Images:      []string{"https://cdn.example.com/p.jpg"},
		VariantType: models.VariantNone,
		Stock:       10,
		IsActive:    true,
	}
	for _, o := range overrides {
		o(product)
	}
	wantActive := product.IsActive
	require.NoError(t, db.Create(product).Error)

	// The column default forces is_active true on insert for a zero value,
	// and Create refills the struct from the inserted row.
	if !wantActive {
		product.IsActive = false
		require.NoError(t, db.Model(product).Update("is_active", false).Error)
	}
	return product
}
