package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/trade"
	"github.com/repairdesk/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a private in-memory SQLite database with every model migrated.
// One connection keeps the in-memory database alive and serializes transactions.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

// fixture is the master data most repository tests need
type fixture struct {
	tenantID   uuid.UUID
	branch     *models.BranchModel
	supplier   *models.SupplierModel
	item       *models.ItemModel
	otherItem  *models.ItemModel
	paymentMID uuid.UUID
}

func seedFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()

	tenantID := uuid.New()
	legacyID := uuid.New()
	f := fixture{
		tenantID:  tenantID,
		branch:    models.NewBranchModel(tenantID, "DT01", "Downtown"),
		supplier:  models.NewSupplierModel(tenantID, "SUP-1", "Parts Co"),
		item:      models.NewItemModel(tenantID, "SCR-IP13", "iPhone 13 screen", &legacyID),
		otherItem: models.NewItemModel(tenantID, "BAT-S21", "Galaxy S21 battery", nil),
	}
	pm := models.NewPaymentMethodModel(tenantID, "Bank transfer")
	f.paymentMID = pm.ID

	for _, row := range []any{f.branch, f.supplier, f.item, f.otherItem, pm} {
		require.NoError(t, db.Create(row).Error)
	}
	return f
}

// createOrder persists a PENDING order with one line of 10 @ 5.00 and 10% tax
func createOrder(t *testing.T, db *gorm.DB, f fixture, number string) *trade.PurchaseOrder {
	t.Helper()

	order, err := trade.NewPurchaseOrder(f.tenantID, number, f.supplier.ID, f.branch.ID, []trade.LineSpec{{
		ItemID:    f.item.ID,
		Quantity:  decimal.NewFromInt(10),
		UnitPrice: decimal.NewFromInt(5),
		TaxRate:   decimal.NewFromInt(10),
	}})
	require.NoError(t, err)
	require.NoError(t, NewGormPurchaseOrderRepository(db).Create(context.Background(), order))
	return order
}
