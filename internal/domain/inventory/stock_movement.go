package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MovementType classifies a stock change
type MovementType string

const (
	MovementTypePurchase    MovementType = "PURCHASE"
	MovementTypeReturn      MovementType = "RETURN"
	MovementTypeAdjustment  MovementType = "ADJUSTMENT"
	MovementTypeSale        MovementType = "SALE"
	MovementTypeTransferIn  MovementType = "TRANSFER_IN"
	MovementTypeTransferOut MovementType = "TRANSFER_OUT"
)

// IsValid checks if the movement type is known
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypePurchase, MovementTypeReturn, MovementTypeAdjustment,
		MovementTypeSale, MovementTypeTransferIn, MovementTypeTransferOut:
		return true
	}
	return false
}

// String returns the string representation
func (t MovementType) String() string {
	return string(t)
}

// AllowsSign reports whether a quantity with this sign is legal for the movement type.
// Inbound types must be positive, outbound types negative; adjustments go either way.
func (t MovementType) AllowsSign(q decimal.Decimal) bool {
	switch t {
	case MovementTypePurchase, MovementTypeTransferIn:
		return q.IsPositive()
	case MovementTypeReturn, MovementTypeSale, MovementTypeTransferOut:
		return q.IsNegative()
	case MovementTypeAdjustment:
		return !q.IsZero()
	}
	return false
}

// ReferenceType identifies the kind of document that caused a movement
type ReferenceType string

const (
	ReferenceTypePurchaseOrder  ReferenceType = "PURCHASE_ORDER"
	ReferenceTypePurchaseReturn ReferenceType = "PURCHASE_RETURN"
	ReferenceTypeManual         ReferenceType = "MANUAL"
)

// IsValid checks if the reference type is known
func (t ReferenceType) IsValid() bool {
	switch t {
	case ReferenceTypePurchaseOrder, ReferenceTypePurchaseReturn, ReferenceTypeManual:
		return true
	}
	return false
}

// StockMovement is one immutable ledger entry. Rows are only ever inserted.
type StockMovement struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	BranchStockID    uuid.UUID
	BranchID         uuid.UUID
	ItemID           uuid.UUID
	MovementType     MovementType
	Quantity         decimal.Decimal // signed
	PreviousQuantity decimal.Decimal
	NewQuantity      decimal.Decimal
	ReferenceType    ReferenceType
	ReferenceID      *uuid.UUID
	ActorID          *uuid.UUID
	Notes            string
	CreatedAt        time.Time
}

// NewStockMovement builds a ledger entry for a change already applied to stock
func NewStockMovement(
	stock *BranchStock,
	movementType MovementType,
	quantity, previous, next decimal.Decimal,
	referenceType ReferenceType,
	referenceID *uuid.UUID,
	actorID *uuid.UUID,
) (*StockMovement, error) {
	if stock == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Branch stock is required")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid movement type")
	}
	if !referenceType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid reference type")
	}
	if !previous.Add(quantity).Equal(next) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Movement snapshots do not add up")
	}

	return &StockMovement{
		ID:               uuid.New(),
		TenantID:         stock.TenantID,
		BranchStockID:    stock.ID,
		BranchID:         stock.BranchID,
		ItemID:           stock.ItemID,
		MovementType:     movementType,
		Quantity:         quantity,
		PreviousQuantity: previous,
		NewQuantity:      next,
		ReferenceType:    referenceType,
		ReferenceID:      referenceID,
		ActorID:          actorID,
		CreatedAt:        time.Now(),
	}, nil
}

// IsInbound reports whether the movement added stock
func (m *StockMovement) IsInbound() bool {
	return m.Quantity.IsPositive()
}
