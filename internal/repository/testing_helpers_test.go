package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/mercato-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func createTestItem(t *testing.T, db *gorm.DB, name string, stock int) *models.Item {
	t.Helper()
	item := &models.Item{
		Name:        name,
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(9.5)),
		Stock:       stock,
		Status:      models.ItemStatusAvailable,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("create item failed: %v", err)
	}
	return item
}
