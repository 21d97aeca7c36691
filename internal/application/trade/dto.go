package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// ============================================================================
// Purchase Order DTOs
// ============================================================================

// OrderLineInput is one requested order line. The item is referenced either by
// catalog ItemID or, for older clients, by the legacy InventoryID; exactly one is required.
// @Description Purchase order line for creation or replacement
type OrderLineInput struct {
	ItemID      *uuid.UUID      `json:"item_id,omitempty"`
	InventoryID *uuid.UUID      `json:"inventory_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity" binding:"decimal_gt0"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"decimal_gte0"`
	TaxRate     decimal.Decimal `json:"tax_rate" binding:"decimal_gte0"`
}

// CreatePurchaseOrderRequest represents a request to create a purchase order
// @Description Request body for creating a purchase order
type CreatePurchaseOrderRequest struct {
	SupplierID           uuid.UUID        `json:"supplier_id" binding:"required"`
	BranchID             uuid.UUID        `json:"branch_id" binding:"required"`
	ExpectedDeliveryDate *time.Time       `json:"expected_delivery_date,omitempty"`
	SupplierInvoiceRef   string           `json:"supplier_invoice_ref,omitempty" binding:"max=100"`
	Notes                string           `json:"notes,omitempty" binding:"max=2000"`
	Lines                []OrderLineInput `json:"lines" binding:"required,min=1,dive"`
	CreatedBy            *uuid.UUID       `json:"-"`
}

// UpdatePurchaseOrderRequest is a partial update. A nil Lines keeps the current lines;
// a non-nil Lines replaces them all.
// @Description Request body for updating a purchase order
type UpdatePurchaseOrderRequest struct {
	ExpectedDeliveryDate *time.Time       `json:"expected_delivery_date,omitempty"`
	SupplierInvoiceRef   *string          `json:"supplier_invoice_ref,omitempty" binding:"omitempty,max=100"`
	Notes                *string          `json:"notes,omitempty" binding:"omitempty,max=2000"`
	Lines                []OrderLineInput `json:"lines,omitempty" binding:"omitempty,min=1,dive"`
}

// ReceiveItemInput is one (line, delta) pair of a receive request
type ReceiveItemInput struct {
	LineID   uuid.UUID       `json:"line_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"decimal_gt0"`
}

// ReceivePurchaseOrderRequest represents a request to receive goods
// @Description Request body for receiving goods against purchase order lines
type ReceivePurchaseOrderRequest struct {
	Items        []ReceiveItemInput `json:"items" binding:"required,min=1,dive"`
	DeliveryDate *time.Time         `json:"delivery_date,omitempty"`
	ActorID      *uuid.UUID         `json:"-"`
}

// UpdateStatusRequest represents an administrative status change
// @Description Request body for changing a purchase order status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING PARTIALLY_RECEIVED RECEIVED COMPLETED CANCELLED"`
}

// CancelPurchaseOrderRequest represents a request to cancel a purchase order
// @Description Request body for cancelling a purchase order
type CancelPurchaseOrderRequest struct {
	Reason string `json:"reason,omitempty" binding:"max=500"`
}

// RecordPaymentRequest represents money paid to the supplier against an order
// @Description Request body for recording a supplier payment
type RecordPaymentRequest struct {
	Amount          decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	PaymentMethodID *uuid.UUID      `json:"payment_method_id,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty" binding:"max=100"`
	Notes           string          `json:"notes,omitempty" binding:"max=500"`
	PaymentDate     *time.Time      `json:"payment_date,omitempty"`
	ActorID         *uuid.UUID      `json:"-"`
}

// PurchaseOrderListFilter represents filter options for purchase order list
type PurchaseOrderListFilter struct {
	Search     string     `form:"search"`
	SupplierID *uuid.UUID `form:"-"`
	BranchID   *uuid.UUID `form:"-"`
	Status     string     `form:"status"`
	Statuses   []string   `form:"statuses"`
	StartDate  *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate    *time.Time `form:"end_date" time_format:"2006-01-02"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PurchaseOrderLineResponse represents an order line in API responses
type PurchaseOrderLineResponse struct {
	ID                 uuid.UUID       `json:"id"`
	ItemID             uuid.UUID       `json:"item_id"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	TaxRate            decimal.Decimal `json:"tax_rate"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	LineTotal          decimal.Decimal `json:"line_total"`
	ReceivedQuantity   decimal.Decimal `json:"received_quantity"`
	ReturnedQuantity   decimal.Decimal `json:"returned_quantity"`
	RemainingQuantity  decimal.Decimal `json:"remaining_quantity"`
	ReturnableQuantity decimal.Decimal `json:"returnable_quantity"`
}

// PurchaseOrderResponse represents a purchase order in API responses
// @Description Purchase order with lines and money totals
type PurchaseOrderResponse struct {
	ID                   uuid.UUID                   `json:"id"`
	TenantID             uuid.UUID                   `json:"tenant_id"`
	OrderNumber          string                      `json:"order_number"`
	SupplierID           uuid.UUID                   `json:"supplier_id"`
	BranchID             uuid.UUID                   `json:"branch_id"`
	OrderDate            time.Time                   `json:"order_date"`
	ExpectedDeliveryDate *time.Time                  `json:"expected_delivery_date,omitempty"`
	DeliveryDate         *time.Time                  `json:"delivery_date,omitempty"`
	SupplierInvoiceRef   string                      `json:"supplier_invoice_ref,omitempty"`
	Notes                string                      `json:"notes,omitempty"`
	Lines                []PurchaseOrderLineResponse `json:"lines"`
	TotalAmount          decimal.Decimal             `json:"total_amount"`
	TaxAmount            decimal.Decimal             `json:"tax_amount"`
	GrandTotal           decimal.Decimal             `json:"grand_total"`
	PaidAmount           decimal.Decimal             `json:"paid_amount"`
	OutstandingAmount    decimal.Decimal             `json:"outstanding_amount"`
	Status               string                      `json:"status"`
	SourceReturnID       *uuid.UUID                  `json:"source_return_id,omitempty"`
	CancelledAt          *time.Time                  `json:"cancelled_at,omitempty"`
	CompletedAt          *time.Time                  `json:"completed_at,omitempty"`
	CreatedBy            *uuid.UUID                  `json:"created_by,omitempty"`
	CreatedAt            time.Time                   `json:"created_at"`
	UpdatedAt            time.Time                   `json:"updated_at"`
	Version              int                         `json:"version"`
}

// PurchaseOrderListItemResponse represents a purchase order in list responses
type PurchaseOrderListItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	OrderNumber  string          `json:"order_number"`
	SupplierID   uuid.UUID       `json:"supplier_id"`
	BranchID     uuid.UUID       `json:"branch_id"`
	OrderDate    time.Time       `json:"order_date"`
	LineCount    int             `json:"line_count"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	Status       string          `json:"status"`
	DeliveryDate *time.Time      `json:"delivery_date,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ReceivedLineResponse describes what one receive pair applied
type ReceivedLineResponse struct {
	LineID     uuid.UUID       `json:"line_id"`
	ItemID     uuid.UUID       `json:"item_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	MovementID uuid.UUID       `json:"movement_id"`
	StockAfter decimal.Decimal `json:"stock_after"`
}

// ReceiveResultResponse is the result of a receive call
// @Description Outcome of a receive with one entry per received line
type ReceiveResultResponse struct {
	Order           PurchaseOrderResponse  `json:"order"`
	ReceivedLines   []ReceivedLineResponse `json:"received_lines"`
	IsFullyReceived bool                   `json:"is_fully_received"`
}

// PaymentResponse represents a supplier payment
type PaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	OrderID         uuid.UUID       `json:"order_id"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentDate     time.Time       `json:"payment_date"`
	PaymentMethodID *uuid.UUID      `json:"payment_method_id,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	RecordedBy      *uuid.UUID      `json:"recorded_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// RecordPaymentResponse is the payment plus the order it was applied to
type RecordPaymentResponse struct {
	Payment PaymentResponse       `json:"payment"`
	Order   PurchaseOrderResponse `json:"order"`
}

// StatusCount is the count and value of orders in one status
type StatusCount struct {
	Status     string          `json:"status"`
	Count      int64           `json:"count"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// PurchaseOrderStatusSummary represents order counts per status
type PurchaseOrderStatusSummary struct {
	Statuses []StatusCount `json:"statuses"`
	Total    int64         `json:"total"`
}

// SupplierOutstandingResponse is what is still owed to one supplier
type SupplierOutstandingResponse struct {
	SupplierID  uuid.UUID       `json:"supplier_id"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// SupplierSummaryResponse is the purchase totals of one supplier
type SupplierSummaryResponse struct {
	SupplierID  uuid.UUID       `json:"supplier_id"`
	OrderCount  int64           `json:"order_count"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// ToPurchaseOrderLineResponse converts a domain line to a response
func ToPurchaseOrderLineResponse(line *trade.PurchaseOrderLine) PurchaseOrderLineResponse {
	return PurchaseOrderLineResponse{
		ID:                 line.ID,
		ItemID:             line.ItemID,
		Quantity:           line.Quantity,
		UnitPrice:          line.UnitPrice,
		TaxRate:            line.TaxRate,
		TaxAmount:          line.TaxAmount,
		LineTotal:          line.LineTotal,
		ReceivedQuantity:   line.ReceivedQuantity,
		ReturnedQuantity:   line.ReturnedQuantity,
		RemainingQuantity:  line.RemainingQuantity(),
		ReturnableQuantity: line.ReturnableQuantity(),
	}
}

// ToPurchaseOrderResponse converts a domain order to a response
func ToPurchaseOrderResponse(order *trade.PurchaseOrder) PurchaseOrderResponse {
	lines := make([]PurchaseOrderLineResponse, len(order.Lines))
	for i := range order.Lines {
		lines[i] = ToPurchaseOrderLineResponse(&order.Lines[i])
	}
	return PurchaseOrderResponse{
		ID:                   order.ID,
		TenantID:             order.TenantID,
		OrderNumber:          order.OrderNumber,
		SupplierID:           order.SupplierID,
		BranchID:             order.BranchID,
		OrderDate:            order.OrderDate,
		ExpectedDeliveryDate: order.ExpectedDeliveryDate,
		DeliveryDate:         order.DeliveryDate,
		SupplierInvoiceRef:   order.SupplierInvoiceRef,
		Notes:                order.Notes,
		Lines:                lines,
		TotalAmount:          order.TotalAmount,
		TaxAmount:            order.TaxAmount,
		GrandTotal:           order.GrandTotal,
		PaidAmount:           order.PaidAmount,
		OutstandingAmount:    order.OutstandingAmount(),
		Status:               string(order.Status),
		SourceReturnID:       order.SourceReturnID,
		CancelledAt:          order.CancelledAt,
		CompletedAt:          order.CompletedAt,
		CreatedBy:            order.CreatedBy,
		CreatedAt:            order.CreatedAt,
		UpdatedAt:            order.UpdatedAt,
		Version:              order.Version,
	}
}

// ToPurchaseOrderListItemResponses converts domain orders to list responses
func ToPurchaseOrderListItemResponses(orders []trade.PurchaseOrder) []PurchaseOrderListItemResponse {
	responses := make([]PurchaseOrderListItemResponse, len(orders))
	for i := range orders {
		o := &orders[i]
		responses[i] = PurchaseOrderListItemResponse{
			ID:           o.ID,
			OrderNumber:  o.OrderNumber,
			SupplierID:   o.SupplierID,
			BranchID:     o.BranchID,
			OrderDate:    o.OrderDate,
			LineCount:    len(o.Lines),
			GrandTotal:   o.GrandTotal,
			PaidAmount:   o.PaidAmount,
			Status:       string(o.Status),
			DeliveryDate: o.DeliveryDate,
			CreatedAt:    o.CreatedAt,
		}
	}
	return responses
}

// ToPaymentResponse converts a domain payment to a response
func ToPaymentResponse(p *trade.PurchasePayment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		OrderID:         p.OrderID,
		Amount:          p.Amount,
		PaymentDate:     p.PaymentDate,
		PaymentMethodID: p.PaymentMethodID,
		ReferenceNumber: p.ReferenceNumber,
		Notes:           p.Notes,
		RecordedBy:      p.RecordedBy,
		CreatedAt:       p.CreatedAt,
	}
}

// ============================================================================
// Purchase Return DTOs
// ============================================================================

// CreatePurchaseReturnRequest represents a request to send back part of a received line
// @Description Request body for creating a purchase return
type CreatePurchaseReturnRequest struct {
	LineID     uuid.UUID       `json:"line_id" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity" binding:"decimal_gt0"`
	Reason     string          `json:"reason" binding:"required,oneof=DEFECTIVE WRONG_ITEM DAMAGED EXCESS_QUANTITY QUALITY_ISSUE OTHER"`
	ReturnType string          `json:"return_type" binding:"required,oneof=REFUND REPLACEMENT"`
	Notes      string          `json:"notes,omitempty" binding:"max=2000"`
	CreatedBy  *uuid.UUID      `json:"-"`
}

// RejectPurchaseReturnRequest represents a request to reject a return
type RejectPurchaseReturnRequest struct {
	Reason string `json:"reason,omitempty" binding:"max=500"`
}

// ProcessRefundRequest represents the bookkeeping details of a refund
// @Description Request body for refunding a confirmed purchase return
type ProcessRefundRequest struct {
	PaymentMethodID *uuid.UUID `json:"payment_method_id,omitempty"`
	ReferenceNumber string     `json:"reference_number,omitempty" binding:"max=100"`
	Notes           string     `json:"notes,omitempty" binding:"max=500"`
	RefundDate      *time.Time `json:"refund_date,omitempty"`
	ActorID         *uuid.UUID `json:"-"`
}

// PurchaseReturnListFilter represents filter options for purchase return list
type PurchaseReturnListFilter struct {
	Search     string     `form:"search"`
	OrderID    *uuid.UUID `form:"-"`
	SupplierID *uuid.UUID `form:"-"`
	BranchID   *uuid.UUID `form:"-"`
	Status     string     `form:"status"`
	ReturnType string     `form:"return_type"`
	StartDate  *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate    *time.Time `form:"end_date" time_format:"2006-01-02"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PurchaseReturnResponse represents a purchase return in API responses
// @Description Purchase return with lines and refund state
type PurchaseReturnResponse struct {
	ID                 uuid.UUID       `json:"id"`
	TenantID           uuid.UUID       `json:"tenant_id"`
	ReturnNumber       string          `json:"return_number"`
	OrderID            uuid.UUID       `json:"order_id"`
	LineID             uuid.UUID       `json:"line_id"`
	BranchID           uuid.UUID       `json:"branch_id"`
	SupplierID         uuid.UUID       `json:"supplier_id"`
	ItemID             uuid.UUID       `json:"item_id"`
	ReturnQuantity     decimal.Decimal `json:"return_quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	RefundAmount       decimal.Decimal `json:"refund_amount"`
	Reason             string          `json:"reason"`
	ReturnType         string          `json:"return_type"`
	Status             string          `json:"status"`
	StockReversed      bool            `json:"stock_reversed"`
	RefundProcessed    bool            `json:"refund_processed"`
	ReplacementOrderID *uuid.UUID      `json:"replacement_order_id,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	ConfirmedBy        *uuid.UUID      `json:"confirmed_by,omitempty"`
	ConfirmedAt        *time.Time      `json:"confirmed_at,omitempty"`
	RejectedAt         *time.Time      `json:"rejected_at,omitempty"`
	RefundedAt         *time.Time      `json:"refunded_at,omitempty"`
	CreatedBy          *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Version            int             `json:"version"`
}

// RefundTransactionResponse represents a booked refund
type RefundTransactionResponse struct {
	ID              uuid.UUID       `json:"id"`
	ReturnID        uuid.UUID       `json:"return_id"`
	OrderID         uuid.UUID       `json:"order_id"`
	Amount          decimal.Decimal `json:"amount"`
	RefundDate      time.Time       `json:"refund_date"`
	PaymentMethodID *uuid.UUID      `json:"payment_method_id,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	ProcessedBy     *uuid.UUID      `json:"processed_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ConfirmReturnResponse is the confirmed return plus the replacement order, if one was raised
type ConfirmReturnResponse struct {
	Return           PurchaseReturnResponse `json:"return"`
	ReplacementOrder *PurchaseOrderResponse `json:"replacement_order,omitempty"`
}

// ProcessRefundResponse is the refunded return plus its refund transaction
type ProcessRefundResponse struct {
	Return            PurchaseReturnResponse    `json:"return"`
	RefundTransaction RefundTransactionResponse `json:"refund_transaction"`
}

// ToPurchaseReturnResponse converts a domain return to a response
func ToPurchaseReturnResponse(r *trade.PurchaseReturn) PurchaseReturnResponse {
	return PurchaseReturnResponse{
		ID:                 r.ID,
		TenantID:           r.TenantID,
		ReturnNumber:       r.ReturnNumber,
		OrderID:            r.OrderID,
		LineID:             r.LineID,
		BranchID:           r.BranchID,
		SupplierID:         r.SupplierID,
		ItemID:             r.ItemID,
		ReturnQuantity:     r.ReturnQuantity,
		UnitPrice:          r.UnitPrice,
		RefundAmount:       r.RefundAmount,
		Reason:             string(r.Reason),
		ReturnType:         string(r.ReturnType),
		Status:             string(r.Status),
		StockReversed:      r.StockReversed,
		RefundProcessed:    r.RefundProcessed,
		ReplacementOrderID: r.ReplacementOrderID,
		Notes:              r.Notes,
		ConfirmedBy:        r.ConfirmedBy,
		ConfirmedAt:        r.ConfirmedAt,
		RejectedAt:         r.RejectedAt,
		RefundedAt:         r.RefundedAt,
		CreatedBy:          r.CreatedBy,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
		Version:            r.Version,
	}
}

// ToPurchaseReturnResponses converts domain returns to responses
func ToPurchaseReturnResponses(returns []trade.PurchaseReturn) []PurchaseReturnResponse {
	responses := make([]PurchaseReturnResponse, len(returns))
	for i := range returns {
		responses[i] = ToPurchaseReturnResponse(&returns[i])
	}
	return responses
}

// ToRefundTransactionResponse converts a domain refund to a response
func ToRefundTransactionResponse(r *trade.RefundTransaction) RefundTransactionResponse {
	return RefundTransactionResponse{
		ID:              r.ID,
		ReturnID:        r.ReturnID,
		OrderID:         r.OrderID,
		Amount:          r.Amount,
		RefundDate:      r.RefundDate,
		PaymentMethodID: r.PaymentMethodID,
		ReferenceNumber: r.ReferenceNumber,
		Notes:           r.Notes,
		ProcessedBy:     r.ProcessedBy,
		CreatedAt:       r.CreatedAt,
	}
}
