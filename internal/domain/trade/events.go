package trade

import (
	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypePurchaseOrderCreated       = "PurchaseOrderCreated"
	EventTypePurchaseOrderReceived      = "PurchaseOrderReceived"
	EventTypePurchaseOrderStatusChanged = "PurchaseOrderStatusChanged"
	EventTypePurchaseOrderPaid          = "PurchaseOrderPaid"
	EventTypePurchaseReturnCreated      = "PurchaseReturnCreated"
	EventTypePurchaseReturnConfirmed    = "PurchaseReturnConfirmed"
	EventTypePurchaseReturnRejected     = "PurchaseReturnRejected"
	EventTypePurchaseReturnRefunded     = "PurchaseReturnRefunded"
)

// PurchaseOrderCreatedEvent is raised when a new purchase order is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	SupplierID  uuid.UUID       `json:"supplier_id"`
	BranchID    uuid.UUID       `json:"branch_id"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(order *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, order.ID, order.TenantID),
		OrderNumber:     order.OrderNumber,
		SupplierID:      order.SupplierID,
		BranchID:        order.BranchID,
		GrandTotal:      order.GrandTotal,
	}
}

// PurchaseOrderReceivedEvent is raised for every successful receive call
type PurchaseOrderReceivedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string              `json:"order_number"`
	BranchID    uuid.UUID           `json:"branch_id"`
	Lines       []ReceivedLine      `json:"lines"`
	Status      PurchaseOrderStatus `json:"status"`
}

// NewPurchaseOrderReceivedEvent creates a new PurchaseOrderReceivedEvent
func NewPurchaseOrderReceivedEvent(order *PurchaseOrder, lines []ReceivedLine) *PurchaseOrderReceivedEvent {
	return &PurchaseOrderReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderReceived, AggregateTypePurchaseOrder, order.ID, order.TenantID),
		OrderNumber:     order.OrderNumber,
		BranchID:        order.BranchID,
		Lines:           lines,
		Status:          order.Status,
	}
}

// PurchaseOrderStatusChangedEvent is raised on every status transition
type PurchaseOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string              `json:"order_number"`
	From        PurchaseOrderStatus `json:"from"`
	To          PurchaseOrderStatus `json:"to"`
}

// NewPurchaseOrderStatusChangedEvent creates a new PurchaseOrderStatusChangedEvent
func NewPurchaseOrderStatusChangedEvent(order *PurchaseOrder, from, to PurchaseOrderStatus) *PurchaseOrderStatusChangedEvent {
	return &PurchaseOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderStatusChanged, AggregateTypePurchaseOrder, order.ID, order.TenantID),
		OrderNumber:     order.OrderNumber,
		From:            from,
		To:              to,
	}
}

// PurchaseOrderPaidEvent is raised when a payment is recorded
type PurchaseOrderPaidEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	Amount      decimal.Decimal `json:"amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
}

// NewPurchaseOrderPaidEvent creates a new PurchaseOrderPaidEvent
func NewPurchaseOrderPaidEvent(order *PurchaseOrder, amount decimal.Decimal) *PurchaseOrderPaidEvent {
	return &PurchaseOrderPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderPaid, AggregateTypePurchaseOrder, order.ID, order.TenantID),
		OrderNumber:     order.OrderNumber,
		Amount:          amount,
		PaidAmount:      order.PaidAmount,
	}
}

// PurchaseReturnEvent carries the common return fields
type PurchaseReturnEvent struct {
	shared.BaseDomainEvent
	ReturnNumber string          `json:"return_number"`
	OrderID      uuid.UUID       `json:"order_id"`
	LineID       uuid.UUID       `json:"line_id"`
	ReturnType   ReturnType      `json:"return_type"`
	Quantity     decimal.Decimal `json:"quantity"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
}

func newPurchaseReturnEvent(eventType string, r *PurchaseReturn) PurchaseReturnEvent {
	return PurchaseReturnEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypePurchaseReturn, r.ID, r.TenantID),
		ReturnNumber:    r.ReturnNumber,
		OrderID:         r.OrderID,
		LineID:          r.LineID,
		ReturnType:      r.ReturnType,
		Quantity:        r.ReturnQuantity,
		RefundAmount:    r.RefundAmount,
	}
}

// NewPurchaseReturnCreatedEvent is raised when a return request is filed
func NewPurchaseReturnCreatedEvent(r *PurchaseReturn) *PurchaseReturnEvent {
	e := newPurchaseReturnEvent(EventTypePurchaseReturnCreated, r)
	return &e
}

// PurchaseReturnConfirmedEvent is raised when a return is confirmed and stock reversed
type PurchaseReturnConfirmedEvent struct {
	PurchaseReturnEvent
	ReplacementOrderID *uuid.UUID `json:"replacement_order_id,omitempty"`
}

// NewPurchaseReturnConfirmedEvent creates a new PurchaseReturnConfirmedEvent
func NewPurchaseReturnConfirmedEvent(r *PurchaseReturn) *PurchaseReturnConfirmedEvent {
	return &PurchaseReturnConfirmedEvent{
		PurchaseReturnEvent: newPurchaseReturnEvent(EventTypePurchaseReturnConfirmed, r),
		ReplacementOrderID:  r.ReplacementOrderID,
	}
}

// PurchaseReturnRejectedEvent is raised when a return is rejected
type PurchaseReturnRejectedEvent struct {
	PurchaseReturnEvent
	Reason string `json:"reason"`
}

// NewPurchaseReturnRejectedEvent creates a new PurchaseReturnRejectedEvent
func NewPurchaseReturnRejectedEvent(r *PurchaseReturn, reason string) *PurchaseReturnRejectedEvent {
	return &PurchaseReturnRejectedEvent{
		PurchaseReturnEvent: newPurchaseReturnEvent(EventTypePurchaseReturnRejected, r),
		Reason:              reason,
	}
}

// NewPurchaseReturnRefundedEvent is raised once the refund has been booked
func NewPurchaseReturnRefundedEvent(r *PurchaseReturn) *PurchaseReturnEvent {
	e := newPurchaseReturnEvent(EventTypePurchaseReturnRefunded, r)
	return &e
}
