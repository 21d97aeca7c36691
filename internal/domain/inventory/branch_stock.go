package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BranchStock is the on-hand quantity of one item at one branch.
// Quantity is a cache of the movement ledger: it must always equal the sum of the
// signed quantities of the StockMovements recorded against this row.
type BranchStock struct {
	shared.BaseAggregateRoot
	TenantID          uuid.UUID
	BranchID          uuid.UUID
	ItemID            uuid.UUID
	Quantity          decimal.Decimal
	LastPurchasePrice decimal.Decimal
	LastPurchaseDate  *time.Time
	DefaultSupplierID *uuid.UUID
}

// NewBranchStock creates an empty stock row for (branch, item)
func NewBranchStock(tenantID, branchID, itemID uuid.UUID) (*BranchStock, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Tenant ID cannot be empty")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Branch ID cannot be empty")
	}
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Item ID cannot be empty")
	}
	return &BranchStock{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TenantID:          tenantID,
		BranchID:          branchID,
		ItemID:            itemID,
		Quantity:          decimal.Zero,
		LastPurchasePrice: decimal.Zero,
	}, nil
}

// Apply changes the quantity by a signed amount and returns the before/after snapshots.
// The stock never goes negative.
func (s *BranchStock) Apply(movementType MovementType, signed decimal.Decimal) (previous, next decimal.Decimal, err error) {
	if !movementType.IsValid() {
		return decimal.Zero, decimal.Zero, shared.NewDomainError(shared.CodeInvalidInput, "Invalid movement type")
	}
	if signed.IsZero() {
		return decimal.Zero, decimal.Zero, shared.NewDomainError(shared.CodeInvalidInput, "Movement quantity cannot be zero")
	}
	if !movementType.AllowsSign(signed) {
		return decimal.Zero, decimal.Zero, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Movement type %s does not allow quantity %s", movementType, signed.String()))
	}

	previous = s.Quantity
	next = previous.Add(signed)
	if next.IsNegative() {
		return decimal.Zero, decimal.Zero, shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Insufficient stock: on hand %s, requested change %s", previous.String(), signed.String()))
	}

	s.Quantity = next
	s.IncrementVersion()
	return previous, next, nil
}

// RecordPurchase remembers the latest purchase price and supplier for reorder defaults
func (s *BranchStock) RecordPurchase(unitPrice decimal.Decimal, supplierID *uuid.UUID, at time.Time) {
	if unitPrice.IsNegative() {
		return
	}
	s.LastPurchasePrice = unitPrice
	s.LastPurchaseDate = &at
	if supplierID != nil && *supplierID != uuid.Nil {
		id := *supplierID
		s.DefaultSupplierID = &id
	}
}
