package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/masterdata"
	"github.com/repairdesk/backend/internal/domain/shared"
	"github.com/repairdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDirectory implements masterdata.Directory over the shared master data tables
type GormDirectory struct {
	db *gorm.DB
}

// NewGormDirectory creates a new GormDirectory
func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

// GetBranch finds a branch within a tenant
func (r *GormDirectory) GetBranch(ctx context.Context, tenantID, id uuid.UUID) (*masterdata.Branch, error) {
	var model models.BranchModel
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// GetSupplier finds a supplier within a tenant
func (r *GormDirectory) GetSupplier(ctx context.Context, tenantID, id uuid.UUID) (*masterdata.Supplier, error) {
	var model models.SupplierModel
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// ResolveItem looks an item up by catalog ID or by the legacy inventory ID it was migrated from
func (r *GormDirectory) ResolveItem(ctx context.Context, tenantID uuid.UUID, ref masterdata.ItemRef) (*masterdata.Item, error) {
	if ref.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Item reference is required")
	}

	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	switch ref.Kind() {
	case masterdata.ItemRefLegacyInventory:
		query = query.Where("legacy_inventory_id = ?", ref.ID())
	default:
		query = query.Where("id = ?", ref.ID())
	}

	var model models.ItemModel
	if err := query.First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// GetPaymentMethod finds a payment method within a tenant
func (r *GormDirectory) GetPaymentMethod(ctx context.Context, tenantID, id uuid.UUID) (*masterdata.PaymentMethod, error) {
	var model models.PaymentMethodModel
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// Ensure interface compliance
var _ masterdata.Directory = (*GormDirectory)(nil)
