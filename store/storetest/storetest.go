// Package storetest opens throwaway in-memory databases and seeds fixtures.
package storetest

import (
	"context"
	"testing"
	"time"

	"food-ordering-api/config"
	"food-ordering-api/models"
	"food-ordering-api/store"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open returns a migrated Store on a private in-memory sqlite database.
func Open(t testing.TB) *store.Store {
	t.Helper()
	s, _ := OpenWithDB(t)
	return s
}

// OpenWithDB also returns the underlying handle for tests that need to
// reach around the Store.
func OpenWithDB(t testing.TB) (*store.Store, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), config.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a new database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, store.AutoMigrate(db))
	return store.New(db), db
}

// Customer inserts an active customer. The hash is not a real bcrypt hash.
func Customer(t testing.TB, s *store.Store, username string) *models.Customer {
	t.Helper()
	c := &models.Customer{
		Username:     username,
		Name:         username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		PhoneNumber:  "555-0100",
		IsActive:     true,
		TimeJoined:   time.Now().UTC(),
	}
	require.NoError(t, s.CreateCustomer(context.Background(), c))
	return c
}

// Shop inserts a staff shop account.
func Shop(t testing.TB, s *store.Store, username string) *models.Shop {
	t.Helper()
	sh := &models.Shop{
		Username:     username,
		Name:         username + " kitchen",
		Email:        username + "@shop.example.com",
		PasswordHash: "x",
		IsStaff:      true,
	}
	require.NoError(t, s.CreateShop(context.Background(), sh))
	return sh
}

func Category(t testing.TB, s *store.Store, name string) *models.Category {
	t.Helper()
	c := &models.Category{CategoryName: name}
	require.NoError(t, s.CreateCategory(context.Background(), c))
	return c
}

// Food inserts an active food item for shop in category.
func Food(t testing.TB, s *store.Store, shop *models.Shop, cat *models.Category, name string, price float64) *models.FoodItem {
	t.Helper()
	item := &models.FoodItem{
		Name:        name,
		Description: name + " of the house",
		Price:       price,
		IsActive:    true,
		CategoryID:  cat.ID,
		ShopID:      shop.ID,
	}
	require.NoError(t, s.CreateFoodItem(context.Background(), item))
	return item
}
