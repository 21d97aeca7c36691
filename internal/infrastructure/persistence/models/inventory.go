package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// BranchStockModel is the persistence model for the BranchStock aggregate
type BranchStockModel struct {
	AggregateModel
	TenantID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_branch_stock_branch_item,priority:1"`
	BranchID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_branch_stock_branch_item,priority:2"`
	ItemID            uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_branch_stock_branch_item,priority:3"`
	Quantity          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastPurchasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastPurchaseDate  *time.Time
	DefaultSupplierID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (BranchStockModel) TableName() string {
	return "branch_stocks"
}

// ToDomain converts the persistence model to a domain BranchStock
func (m *BranchStockModel) ToDomain() *inventory.BranchStock {
	return &inventory.BranchStock{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		TenantID:          m.TenantID,
		BranchID:          m.BranchID,
		ItemID:            m.ItemID,
		Quantity:          m.Quantity,
		LastPurchasePrice: m.LastPurchasePrice,
		LastPurchaseDate:  m.LastPurchaseDate,
		DefaultSupplierID: m.DefaultSupplierID,
	}
}

// BranchStockModelFromDomain creates a persistence model from a domain BranchStock
func BranchStockModelFromDomain(s *inventory.BranchStock) *BranchStockModel {
	m := &BranchStockModel{
		TenantID:          s.TenantID,
		BranchID:          s.BranchID,
		ItemID:            s.ItemID,
		Quantity:          s.Quantity,
		LastPurchasePrice: s.LastPurchasePrice,
		LastPurchaseDate:  s.LastPurchaseDate,
		DefaultSupplierID: s.DefaultSupplierID,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}

// StockMovementModel is the persistence model for the append-only movement log
type StockMovementModel struct {
	ID               uuid.UUID               `gorm:"type:uuid;primary_key"`
	TenantID         uuid.UUID               `gorm:"type:uuid;not null;index:idx_stock_movement_tenant_created,priority:1"`
	BranchStockID    uuid.UUID               `gorm:"type:uuid;not null;index"`
	BranchID         uuid.UUID               `gorm:"type:uuid;not null;index"`
	ItemID           uuid.UUID               `gorm:"type:uuid;not null;index"`
	MovementType     inventory.MovementType  `gorm:"type:varchar(20);not null"`
	Quantity         decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	PreviousQuantity decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	NewQuantity      decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	ReferenceType    inventory.ReferenceType `gorm:"type:varchar(30);not null;index:idx_stock_movement_reference,priority:1"`
	ReferenceID      *uuid.UUID              `gorm:"type:uuid;index:idx_stock_movement_reference,priority:2"`
	ActorID          *uuid.UUID              `gorm:"type:uuid"`
	Notes            string                  `gorm:"type:varchar(500)"`
	CreatedAt        time.Time               `gorm:"not null;index:idx_stock_movement_tenant_created,priority:2"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement
func (m *StockMovementModel) ToDomain() *inventory.StockMovement {
	return &inventory.StockMovement{
		ID:               m.ID,
		TenantID:         m.TenantID,
		BranchStockID:    m.BranchStockID,
		BranchID:         m.BranchID,
		ItemID:           m.ItemID,
		MovementType:     m.MovementType,
		Quantity:         m.Quantity,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		ReferenceType:    m.ReferenceType,
		ReferenceID:      m.ReferenceID,
		ActorID:          m.ActorID,
		Notes:            m.Notes,
		CreatedAt:        m.CreatedAt,
	}
}

// StockMovementModelFromDomain creates a persistence model from a domain StockMovement
func StockMovementModelFromDomain(s *inventory.StockMovement) *StockMovementModel {
	return &StockMovementModel{
		ID:               s.ID,
		TenantID:         s.TenantID,
		BranchStockID:    s.BranchStockID,
		BranchID:         s.BranchID,
		ItemID:           s.ItemID,
		MovementType:     s.MovementType,
		Quantity:         s.Quantity,
		PreviousQuantity: s.PreviousQuantity,
		NewQuantity:      s.NewQuantity,
		ReferenceType:    s.ReferenceType,
		ReferenceID:      s.ReferenceID,
		ActorID:          s.ActorID,
		Notes:            s.Notes,
		CreatedAt:        s.CreatedAt,
	}
}
