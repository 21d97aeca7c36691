package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/masterdata"
)

// BranchModel is the persistence model for a shop branch
type BranchModel struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_branch_tenant_code,priority:1"`
	Code     string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_branch_tenant_code,priority:2"`
	Name     string    `gorm:"type:varchar(200);not null"`
	IsActive bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (BranchModel) TableName() string {
	return "branches"
}

// ToDomain converts the persistence model to a domain Branch
func (m *BranchModel) ToDomain() *masterdata.Branch {
	return &masterdata.Branch{
		ID:       m.ID,
		TenantID: m.TenantID,
		Code:     m.Code,
		Name:     m.Name,
		IsActive: m.IsActive,
	}
}

// SupplierModel is the persistence model for a supplier
type SupplierModel struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_supplier_tenant_code,priority:1"`
	Code     string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_supplier_tenant_code,priority:2"`
	Name     string    `gorm:"type:varchar(200);not null"`
	IsActive bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier
func (m *SupplierModel) ToDomain() *masterdata.Supplier {
	return &masterdata.Supplier{
		ID:       m.ID,
		TenantID: m.TenantID,
		Code:     m.Code,
		Name:     m.Name,
		IsActive: m.IsActive,
	}
}

// ItemModel is the persistence model for a stockable item.
// LegacyInventoryID links rows migrated from the old per-shop inventory table.
type ItemModel struct {
	BaseModel
	TenantID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_item_tenant_sku,priority:1"`
	SKU               string     `gorm:"column:sku;type:varchar(100);not null;uniqueIndex:idx_item_tenant_sku,priority:2"`
	Name              string     `gorm:"type:varchar(200);not null"`
	LegacyInventoryID *uuid.UUID `gorm:"type:uuid;index"`
	IsActive          bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// ToDomain converts the persistence model to a domain Item
func (m *ItemModel) ToDomain() *masterdata.Item {
	return &masterdata.Item{
		ID:                m.ID,
		TenantID:          m.TenantID,
		SKU:               m.SKU,
		Name:              m.Name,
		LegacyInventoryID: m.LegacyInventoryID,
		IsActive:          m.IsActive,
	}
}

// PaymentMethodModel is the persistence model for a payment method
type PaymentMethodModel struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string    `gorm:"type:varchar(100);not null"`
	IsActive bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (PaymentMethodModel) TableName() string {
	return "payment_methods"
}

// ToDomain converts the persistence model to a domain PaymentMethod
func (m *PaymentMethodModel) ToDomain() *masterdata.PaymentMethod {
	return &masterdata.PaymentMethod{
		ID:       m.ID,
		TenantID: m.TenantID,
		Name:     m.Name,
		IsActive: m.IsActive,
	}
}

// newBaseModel is used by test fixtures and seeders
func newBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// NewBranchModel builds an active branch row
func NewBranchModel(tenantID uuid.UUID, code, name string) *BranchModel {
	return &BranchModel{BaseModel: newBaseModel(), TenantID: tenantID, Code: code, Name: name, IsActive: true}
}

// NewSupplierModel builds an active supplier row
func NewSupplierModel(tenantID uuid.UUID, code, name string) *SupplierModel {
	return &SupplierModel{BaseModel: newBaseModel(), TenantID: tenantID, Code: code, Name: name, IsActive: true}
}

// NewItemModel builds an active item row
func NewItemModel(tenantID uuid.UUID, sku, name string, legacyID *uuid.UUID) *ItemModel {
	return &ItemModel{BaseModel: newBaseModel(), TenantID: tenantID, SKU: sku, Name: name, LegacyInventoryID: legacyID, IsActive: true}
}

// NewPaymentMethodModel builds an active payment method row
func NewPaymentMethodModel(tenantID uuid.UUID, name string) *PaymentMethodModel {
	return &PaymentMethodModel{BaseModel: newBaseModel(), TenantID: tenantID, Name: name, IsActive: true}
}
