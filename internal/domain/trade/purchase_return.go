package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypePurchaseReturn is the aggregate type name used in events
const AggregateTypePurchaseReturn = "PurchaseReturn"

// ReturnStatus represents the status of a purchase return
type ReturnStatus string

const (
	ReturnStatusPending   ReturnStatus = "PENDING"
	ReturnStatusConfirmed ReturnStatus = "CONFIRMED"
	ReturnStatusRejected  ReturnStatus = "REJECTED"
)

// IsValid checks if the status is known
func (s ReturnStatus) IsValid() bool {
	switch s {
	case ReturnStatusPending, ReturnStatusConfirmed, ReturnStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s ReturnStatus) String() string {
	return string(s)
}

// CanTransitionTo allows only PENDING -> CONFIRMED and PENDING -> REJECTED
func (s ReturnStatus) CanTransitionTo(target ReturnStatus) bool {
	return s == ReturnStatusPending && (target == ReturnStatusConfirmed || target == ReturnStatusRejected)
}

// ReturnType decides what the supplier owes for returned goods
type ReturnType string

const (
	ReturnTypeRefund      ReturnType = "REFUND"
	ReturnTypeReplacement ReturnType = "REPLACEMENT"
)

// IsValid checks if the return type is known
func (t ReturnType) IsValid() bool {
	return t == ReturnTypeRefund || t == ReturnTypeReplacement
}

// ReturnReason says why goods are sent back
type ReturnReason string

const (
	ReturnReasonDefective      ReturnReason = "DEFECTIVE"
	ReturnReasonWrongItem      ReturnReason = "WRONG_ITEM"
	ReturnReasonDamaged        ReturnReason = "DAMAGED"
	ReturnReasonExcessQuantity ReturnReason = "EXCESS_QUANTITY"
	ReturnReasonQualityIssue   ReturnReason = "QUALITY_ISSUE"
	ReturnReasonOther          ReturnReason = "OTHER"
)

// IsValid checks if the reason is known
func (r ReturnReason) IsValid() bool {
	switch r {
	case ReturnReasonDefective, ReturnReasonWrongItem, ReturnReasonDamaged,
		ReturnReasonExcessQuantity, ReturnReasonQualityIssue, ReturnReasonOther:
		return true
	}
	return false
}

// PurchaseReturn is a request to send back part of one received order line
type PurchaseReturn struct {
	shared.TenantAggregateRoot
	ReturnNumber       string
	OrderID            uuid.UUID
	LineID             uuid.UUID
	BranchID           uuid.UUID
	SupplierID         uuid.UUID
	ItemID             uuid.UUID
	ReturnQuantity     decimal.Decimal
	UnitPrice          decimal.Decimal
	RefundAmount       decimal.Decimal // fixed at creation
	Reason             ReturnReason
	ReturnType         ReturnType
	Status             ReturnStatus
	StockReversed      bool
	RefundProcessed    bool
	ReplacementOrderID *uuid.UUID
	Notes              string
	ConfirmedBy        *uuid.UUID
	ConfirmedAt        *time.Time
	RejectedAt         *time.Time
	RefundedAt         *time.Time
}

// ReturnRequest is the input for NewPurchaseReturn
type ReturnRequest struct {
	LineID   uuid.UUID
	Quantity decimal.Decimal
	Reason   ReturnReason
	Type     ReturnType
	Notes    string
}

// NewPurchaseReturn validates a return against its order and creates it as PENDING.
// alreadyReturned is the quantity held by earlier, non-rejected returns of the same line.
func NewPurchaseReturn(order *PurchaseOrder, req ReturnRequest, alreadyReturned decimal.Decimal, returnNumber string) (*PurchaseReturn, error) {
	if order == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Purchase order is required")
	}
	if !req.Reason.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Invalid return reason: %s", req.Reason))
	}
	if !req.Type.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Invalid return type: %s", req.Type))
	}
	if strings.TrimSpace(returnNumber) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Return number cannot be empty")
	}

	line := order.GetLine(req.LineID)
	if line == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound,
			fmt.Sprintf("Line %s not found in purchase order %s", req.LineID, order.OrderNumber))
	}
	if !line.ReceivedQuantity.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Nothing has been received on this line yet")
	}
	if !order.Status.AllowsReturns() {
		return nil, shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot return goods of purchase order %s in %s status", order.OrderNumber, order.Status))
	}
	if !req.Quantity.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Return quantity must be positive")
	}

	available := line.ReceivedQuantity.Sub(alreadyReturned)
	if req.Quantity.GreaterThan(available) {
		return nil, shared.NewDomainError(shared.CodeQuantityExceeded,
			fmt.Sprintf("Return quantity %s exceeds available %s", req.Quantity.String(), available.String()))
	}

	refund := line.UnitPrice.Mul(req.Quantity)
	if req.Type == ReturnTypeRefund && refund.GreaterThan(order.PaidAmount) {
		return nil, shared.NewDomainError(shared.CodeInsufficientPaid,
			fmt.Sprintf("Refund %s exceeds paid amount %s", refund.String(), order.PaidAmount.String()))
	}

	ret := &PurchaseReturn{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(order.TenantID),
		ReturnNumber:        returnNumber,
		OrderID:             order.ID,
		LineID:              line.ID,
		BranchID:            order.BranchID,
		SupplierID:          order.SupplierID,
		ItemID:              line.ItemID,
		ReturnQuantity:      req.Quantity,
		UnitPrice:           line.UnitPrice,
		RefundAmount:        refund,
		Reason:              req.Reason,
		ReturnType:          req.Type,
		Status:              ReturnStatusPending,
		Notes:               strings.TrimSpace(req.Notes),
	}
	ret.AddDomainEvent(NewPurchaseReturnCreatedEvent(ret))
	return ret, nil
}

// ensurePending maps a finished return to the right error: repeating the same
// decision is AlreadyProcessed, taking the opposite one is InvalidState.
func (r *PurchaseReturn) ensurePending(target ReturnStatus) error {
	if r.Status == ReturnStatusPending {
		return nil
	}
	if r.Status == target {
		return shared.NewDomainError(shared.CodeAlreadyProcessed,
			fmt.Sprintf("Return %s is already %s", r.ReturnNumber, r.Status))
	}
	return shared.NewDomainError(shared.CodeInvalidState,
		fmt.Sprintf("Return %s is %s and cannot become %s", r.ReturnNumber, r.Status, target))
}

// Confirm marks the return as confirmed after stock has been reversed.
// replacementOrderID must be set for REPLACEMENT returns.
func (r *PurchaseReturn) Confirm(actorID *uuid.UUID, replacementOrderID *uuid.UUID) error {
	if err := r.ensurePending(ReturnStatusConfirmed); err != nil {
		return err
	}
	if r.ReturnType == ReturnTypeReplacement && (replacementOrderID == nil || *replacementOrderID == uuid.Nil) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Replacement return needs a replacement order")
	}

	now := time.Now()
	r.Status = ReturnStatusConfirmed
	r.StockReversed = true
	r.ConfirmedAt = &now
	if actorID != nil {
		id := *actorID
		r.ConfirmedBy = &id
	}
	if replacementOrderID != nil {
		id := *replacementOrderID
		r.ReplacementOrderID = &id
	}
	r.IncrementVersion()
	r.AddDomainEvent(NewPurchaseReturnConfirmedEvent(r))
	return nil
}

// Reject closes the return without any stock or money effect
func (r *PurchaseReturn) Reject(reason string) error {
	if err := r.ensurePending(ReturnStatusRejected); err != nil {
		return err
	}
	now := time.Now()
	r.Status = ReturnStatusRejected
	r.RejectedAt = &now
	note := "Rejected"
	if reason = strings.TrimSpace(reason); reason != "" {
		note = "Rejected: " + reason
	}
	if r.Notes == "" {
		r.Notes = note
	} else {
		r.Notes = r.Notes + "\n" + note
	}
	r.IncrementVersion()
	r.AddDomainEvent(NewPurchaseReturnRejectedEvent(r, reason))
	return nil
}

// EnsureRefundable checks every refund precondition without changing anything
func (r *PurchaseReturn) EnsureRefundable() error {
	if r.ReturnType != ReturnTypeRefund {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Return %s is a %s return and is not refundable", r.ReturnNumber, r.ReturnType))
	}
	if r.RefundProcessed {
		return shared.NewDomainError(shared.CodeAlreadyProcessed,
			fmt.Sprintf("Refund for return %s has already been processed", r.ReturnNumber))
	}
	if r.Status != ReturnStatusConfirmed {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Return %s must be confirmed before refunding, current status %s", r.ReturnNumber, r.Status))
	}
	return nil
}

// MarkRefunded flips RefundProcessed exactly once
func (r *PurchaseReturn) MarkRefunded() error {
	if err := r.EnsureRefundable(); err != nil {
		return err
	}
	now := time.Now()
	r.RefundProcessed = true
	r.RefundedAt = &now
	r.IncrementVersion()
	r.AddDomainEvent(NewPurchaseReturnRefundedEvent(r))
	return nil
}
