package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// StockQuery selects one (branch, item) stock row. The item is given either by
// catalog ItemID or by legacy InventoryID.
type StockQuery struct {
	BranchID    uuid.UUID  `form:"-"`
	ItemID      *uuid.UUID `form:"-"`
	InventoryID *uuid.UUID `form:"-"`
}

// HasItem reports whether the query names an item
func (q StockQuery) HasItem() bool {
	return q.ItemID != nil || q.InventoryID != nil
}

// MovementListFilter represents filter options for the movement history
type MovementListFilter struct {
	BranchID      *uuid.UUID `form:"-"`
	ItemID        *uuid.UUID `form:"-"`
	InventoryID   *uuid.UUID `form:"-"`
	MovementType  string     `form:"movement_type"`
	ReferenceType string     `form:"reference_type"`
	ReferenceID   *uuid.UUID `form:"-"`
	StartDate     *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate       *time.Time `form:"end_date" time_format:"2006-01-02"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// AdjustStockRequest is a manual stock correction. Quantity is signed.
// @Description Request body for a manual stock adjustment
type AdjustStockRequest struct {
	BranchID    uuid.UUID       `json:"branch_id" binding:"required"`
	ItemID      *uuid.UUID      `json:"item_id,omitempty"`
	InventoryID *uuid.UUID      `json:"inventory_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Notes       string          `json:"notes" binding:"required,max=500"`
	ActorID     *uuid.UUID      `json:"-"`
}

// BranchStockResponse represents the on-hand quantity of an item at a branch.
// ID is empty when the item has never been stocked there.
// @Description Stock of one item at one branch
type BranchStockResponse struct {
	ID                *uuid.UUID      `json:"id,omitempty"`
	BranchID          uuid.UUID       `json:"branch_id"`
	ItemID            uuid.UUID       `json:"item_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	LastPurchasePrice decimal.Decimal `json:"last_purchase_price"`
	LastPurchaseDate  *time.Time      `json:"last_purchase_date,omitempty"`
	DefaultSupplierID *uuid.UUID      `json:"default_supplier_id,omitempty"`
	Version           int             `json:"version"`
	UpdatedAt         *time.Time      `json:"updated_at,omitempty"`
}

// StockMovementResponse represents one ledger entry
// @Description One entry of the stock movement ledger
type StockMovementResponse struct {
	ID               uuid.UUID       `json:"id"`
	BranchStockID    uuid.UUID       `json:"branch_stock_id"`
	BranchID         uuid.UUID       `json:"branch_id"`
	ItemID           uuid.UUID       `json:"item_id"`
	MovementType     string          `json:"movement_type"`
	Quantity         decimal.Decimal `json:"quantity"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	NewQuantity      decimal.Decimal `json:"new_quantity"`
	ReferenceType    string          `json:"reference_type"`
	ReferenceID      *uuid.UUID      `json:"reference_id,omitempty"`
	ActorID          *uuid.UUID      `json:"actor_id,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// LedgerVerificationResponse compares a stock row with the replay of its movements
// @Description Result of replaying one stock row's movements
type LedgerVerificationResponse struct {
	BranchStockID  uuid.UUID       `json:"branch_stock_id"`
	BranchID       uuid.UUID       `json:"branch_id"`
	ItemID         uuid.UUID       `json:"item_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	LedgerQuantity decimal.Decimal `json:"ledger_quantity"`
	MovementCount  int64           `json:"movement_count"`
	Discrepancy    decimal.Decimal `json:"discrepancy"`
	Consistent     bool            `json:"consistent"`
}

// BranchVerificationResponse is the ledger check of every stock row of a branch
type BranchVerificationResponse struct {
	BranchID     uuid.UUID                    `json:"branch_id"`
	Checked      int                          `json:"checked"`
	Inconsistent int                          `json:"inconsistent"`
	Rows         []LedgerVerificationResponse `json:"rows"`
}

// ToBranchStockResponse converts a domain BranchStock to a response
func ToBranchStockResponse(s *inventory.BranchStock) BranchStockResponse {
	id := s.ID
	updatedAt := s.UpdatedAt
	return BranchStockResponse{
		ID:                &id,
		BranchID:          s.BranchID,
		ItemID:            s.ItemID,
		Quantity:          s.Quantity,
		LastPurchasePrice: s.LastPurchasePrice,
		LastPurchaseDate:  s.LastPurchaseDate,
		DefaultSupplierID: s.DefaultSupplierID,
		Version:           s.Version,
		UpdatedAt:         &updatedAt,
	}
}

// ToStockMovementResponse converts a domain StockMovement to a response
func ToStockMovementResponse(m *inventory.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:               m.ID,
		BranchStockID:    m.BranchStockID,
		BranchID:         m.BranchID,
		ItemID:           m.ItemID,
		MovementType:     string(m.MovementType),
		Quantity:         m.Quantity,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		ReferenceType:    string(m.ReferenceType),
		ReferenceID:      m.ReferenceID,
		ActorID:          m.ActorID,
		Notes:            m.Notes,
		CreatedAt:        m.CreatedAt,
	}
}

// ToStockMovementResponses converts a slice of movements
func ToStockMovementResponses(movements []inventory.StockMovement) []StockMovementResponse {
	responses := make([]StockMovementResponse, len(movements))
	for i := range movements {
		responses[i] = ToStockMovementResponse(&movements[i])
	}
	return responses
}
