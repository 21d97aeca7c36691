package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BranchStockRepository defines the persistence contract for BranchStock
type BranchStockRepository interface {
	// FindByBranchAndItem returns the stock row, or shared.ErrNotFound
	FindByBranchAndItem(ctx context.Context, tenantID, branchID, itemID uuid.UUID) (*BranchStock, error)

	// GetOrCreateForUpdate returns the stock row locked for update, creating it
	// at quantity zero when it does not exist yet. Must run inside a transaction.
	GetOrCreateForUpdate(ctx context.Context, tenantID, branchID, itemID uuid.UUID) (*BranchStock, error)

	// SaveWithLock persists the row only if nobody else changed it since it was read.
	// The aggregate version must already be incremented; a stale version yields
	// shared.ErrConcurrencyConflict.
	SaveWithLock(ctx context.Context, stock *BranchStock) error

	// FindByBranch lists stock rows of a branch
	FindByBranch(ctx context.Context, tenantID, branchID uuid.UUID) ([]BranchStock, error)
}

// StockMovementRepository defines the persistence contract for the movement log.
// There is no Update or Delete: the log is append-only.
type StockMovementRepository interface {
	// Create appends a movement
	Create(ctx context.Context, movement *StockMovement) error

	// FindAll returns movements matching the filter ordered by creation time, plus the total count
	FindAll(ctx context.Context, tenantID uuid.UUID, filter MovementFilter) ([]StockMovement, int64, error)

	// FindByReference returns every movement caused by one document
	FindByReference(ctx context.Context, tenantID uuid.UUID, refType ReferenceType, refID uuid.UUID) ([]StockMovement, error)

	// SumByBranchStock replays the ledger for one stock row
	SumByBranchStock(ctx context.Context, tenantID, branchStockID uuid.UUID) (decimal.Decimal, int64, error)
}

// MovementFilter narrows a movement history query
type MovementFilter struct {
	BranchID      *uuid.UUID
	ItemID        *uuid.UUID
	MovementType  *MovementType
	ReferenceType *ReferenceType
	ReferenceID   *uuid.UUID
	From          *time.Time
	To            *time.Time
	Page          int
	PageSize      int
}
