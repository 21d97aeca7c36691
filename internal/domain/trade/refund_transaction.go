package trade

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RefundTransaction is money actually returned by the supplier for a REFUND return. Immutable.
type RefundTransaction struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	ReturnID        uuid.UUID
	OrderID         uuid.UUID
	Amount          decimal.Decimal
	RefundDate      time.Time
	PaymentMethodID *uuid.UUID
	ReferenceNumber string
	Notes           string
	ProcessedBy     *uuid.UUID
	CreatedAt       time.Time
}

// PaymentDetails are the optional bookkeeping fields of a payment or refund
type PaymentDetails struct {
	PaymentMethodID *uuid.UUID
	ReferenceNumber string
	Notes           string
	Date            *time.Time
}

// NewRefundTransaction records the refund for a return, for the amount fixed at return creation
func NewRefundTransaction(ret *PurchaseReturn, actorID *uuid.UUID, details PaymentDetails) (*RefundTransaction, error) {
	if ret == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Return is required")
	}
	if !ret.RefundAmount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Return has nothing to refund")
	}
	now := time.Now()
	date := now
	if details.Date != nil {
		date = *details.Date
	}
	return &RefundTransaction{
		ID:              uuid.New(),
		TenantID:        ret.TenantID,
		ReturnID:        ret.ID,
		OrderID:         ret.OrderID,
		Amount:          ret.RefundAmount,
		RefundDate:      date,
		PaymentMethodID: details.PaymentMethodID,
		ReferenceNumber: strings.TrimSpace(details.ReferenceNumber),
		Notes:           details.Notes,
		ProcessedBy:     actorID,
		CreatedAt:       now,
	}, nil
}

// PurchasePayment is money paid to a supplier against an order. Append-only.
type PurchasePayment struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	OrderID         uuid.UUID
	Amount          decimal.Decimal
	PaymentDate     time.Time
	PaymentMethodID *uuid.UUID
	ReferenceNumber string
	Notes           string
	RecordedBy      *uuid.UUID
	CreatedAt       time.Time
}

// NewPurchasePayment creates a payment row for an order
func NewPurchasePayment(order *PurchaseOrder, amount decimal.Decimal, actorID *uuid.UUID, details PaymentDetails) (*PurchasePayment, error) {
	if order == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Purchase order is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Payment amount must be positive")
	}
	now := time.Now()
	date := now
	if details.Date != nil {
		date = *details.Date
	}
	return &PurchasePayment{
		ID:              uuid.New(),
		TenantID:        order.TenantID,
		OrderID:         order.ID,
		Amount:          amount,
		PaymentDate:     date,
		PaymentMethodID: details.PaymentMethodID,
		ReferenceNumber: strings.TrimSpace(details.ReferenceNumber),
		Notes:           details.Notes,
		RecordedBy:      actorID,
		CreatedAt:       now,
	}, nil
}
