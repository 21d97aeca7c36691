package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/inventory"
	"github.com/repairdesk/backend/internal/domain/shared"
	"github.com/repairdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBranchStockRepository implements inventory.BranchStockRepository using GORM
type GormBranchStockRepository struct {
	db *gorm.DB
}

// NewGormBranchStockRepository creates a new GormBranchStockRepository
func NewGormBranchStockRepository(db *gorm.DB) *GormBranchStockRepository {
	return &GormBranchStockRepository{db: db}
}

// FindByBranchAndItem finds the stock row for (branch, item)
func (r *GormBranchStockRepository) FindByBranchAndItem(ctx context.Context, tenantID, branchID, itemID uuid.UUID) (*inventory.BranchStock, error) {
	var model models.BranchStockModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND branch_id = ? AND item_id = ?", tenantID, branchID, itemID).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// GetOrCreateForUpdate inserts a zero row if none exists, then reads it with FOR UPDATE.
// Two transactions racing on a missing row both end up locking the same single row.
func (r *GormBranchStockRepository) GetOrCreateForUpdate(ctx context.Context, tenantID, branchID, itemID uuid.UUID) (*inventory.BranchStock, error) {
	seed, err := inventory.NewBranchStock(tenantID, branchID, itemID)
	if err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "branch_id"}, {Name: "item_id"}},
		DoNothing: true,
	}).Create(models.BranchStockModelFromDomain(seed)).Error; err != nil {
		return nil, err
	}

	var model models.BranchStockModel
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND branch_id = ? AND item_id = ?", tenantID, branchID, itemID).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// SaveWithLock writes the row only if the stored version is the one it was read at
func (r *GormBranchStockRepository) SaveWithLock(ctx context.Context, stock *inventory.BranchStock) error {
	result := r.db.WithContext(ctx).
		Model(&models.BranchStockModel{}).
		Where("id = ? AND version = ?", stock.ID, stock.Version-1).
		Updates(map[string]any{
			"quantity":            stock.Quantity,
			"last_purchase_price": stock.LastPurchasePrice,
			"last_purchase_date":  stock.LastPurchaseDate,
			"default_supplier_id": stock.DefaultSupplierID,
			"version":             stock.Version,
			"updated_at":          stock.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindByBranch lists the stock rows of a branch
func (r *GormBranchStockRepository) FindByBranch(ctx context.Context, tenantID, branchID uuid.UUID) ([]inventory.BranchStock, error) {
	var rows []models.BranchStockModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND branch_id = ?", tenantID, branchID).
		Order("item_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	stocks := make([]inventory.BranchStock, len(rows))
	for i := range rows {
		stocks[i] = *rows[i].ToDomain()
	}
	return stocks, nil
}

// Ensure interface compliance
var _ inventory.BranchStockRepository = (*GormBranchStockRepository)(nil)
