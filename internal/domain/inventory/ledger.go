package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MovementRequest describes one stock change to post to the ledger
type MovementRequest struct {
	TenantID      uuid.UUID
	BranchID      uuid.UUID
	ItemID        uuid.UUID
	Quantity      decimal.Decimal // signed: negative for outbound movements
	MovementType  MovementType
	ReferenceType ReferenceType
	ReferenceID   *uuid.UUID
	ActorID       *uuid.UUID
	Notes         string

	// Purchase details, recorded on the stock row for PURCHASE movements
	UnitPrice  *decimal.Decimal
	SupplierID *uuid.UUID
	OccurredAt time.Time
}

// Validate checks the request before any row is touched
func (r MovementRequest) Validate() error {
	if r.TenantID == uuid.Nil || r.BranchID == uuid.Nil || r.ItemID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "Tenant, branch and item are required for a stock movement")
	}
	if !r.MovementType.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invalid movement type")
	}
	if !r.ReferenceType.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invalid reference type")
	}
	if !r.MovementType.AllowsSign(r.Quantity) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Movement quantity has the wrong sign for its type")
	}
	return nil
}

// Ledger posts stock movements. It is the only writer of BranchStock.Quantity.
//
// Apply must be called with repositories bound to the caller's transaction: the
// stock row is locked for the read-modify-write, saved with a version check, and
// the movement row is appended in the same unit of work.
type Ledger struct {
	stocks    BranchStockRepository
	movements StockMovementRepository
}

// NewLedger creates a ledger over the given repositories
func NewLedger(stocks BranchStockRepository, movements StockMovementRepository) *Ledger {
	return &Ledger{stocks: stocks, movements: movements}
}

// Apply posts one movement and returns the appended ledger entry
func (l *Ledger) Apply(ctx context.Context, req MovementRequest) (*StockMovement, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	stock, err := l.stocks.GetOrCreateForUpdate(ctx, req.TenantID, req.BranchID, req.ItemID)
	if err != nil {
		return nil, err
	}

	previous, next, err := stock.Apply(req.MovementType, req.Quantity)
	if err != nil {
		return nil, err
	}

	if req.MovementType == MovementTypePurchase && req.UnitPrice != nil {
		at := req.OccurredAt
		if at.IsZero() {
			at = time.Now()
		}
		stock.RecordPurchase(*req.UnitPrice, req.SupplierID, at)
	}

	if err := l.stocks.SaveWithLock(ctx, stock); err != nil {
		return nil, err
	}

	movement, err := NewStockMovement(stock, req.MovementType, req.Quantity, previous, next,
		req.ReferenceType, req.ReferenceID, req.ActorID)
	if err != nil {
		return nil, err
	}
	movement.Notes = req.Notes
	if !req.OccurredAt.IsZero() {
		movement.CreatedAt = req.OccurredAt
	}

	if err := l.movements.Create(ctx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}
