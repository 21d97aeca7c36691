package inventory

import (
	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypeBranchStock = "BranchStock"

	EventTypeStockMoved = "StockMoved"
)

// StockMovedEvent is published after a movement has been committed
type StockMovedEvent struct {
	shared.BaseDomainEvent
	MovementID       uuid.UUID       `json:"movement_id"`
	BranchID         uuid.UUID       `json:"branch_id"`
	ItemID           uuid.UUID       `json:"item_id"`
	MovementType     MovementType    `json:"movement_type"`
	Quantity         decimal.Decimal `json:"quantity"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	NewQuantity      decimal.Decimal `json:"new_quantity"`
	ReferenceType    ReferenceType   `json:"reference_type"`
	ReferenceID      *uuid.UUID      `json:"reference_id,omitempty"`
}

// NewStockMovedEvent creates the event for a committed movement
func NewStockMovedEvent(m *StockMovement) *StockMovedEvent {
	return &StockMovedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStockMoved, AggregateTypeBranchStock, m.BranchStockID, m.TenantID),
		MovementID:       m.ID,
		BranchID:         m.BranchID,
		ItemID:           m.ItemID,
		MovementType:     m.MovementType,
		Quantity:         m.Quantity,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		ReferenceType:    m.ReferenceType,
		ReferenceID:      m.ReferenceID,
	}
}
