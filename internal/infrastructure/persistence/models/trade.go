package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root
type PurchaseOrderModel struct {
	TenantAggregateModel
	OrderNumber          string                    `gorm:"type:varchar(50);not null;index"`
	SupplierID           uuid.UUID                 `gorm:"type:uuid;not null;index"`
	BranchID             uuid.UUID                 `gorm:"type:uuid;not null;index"`
	OrderDate            time.Time                 `gorm:"not null"`
	ExpectedDeliveryDate *time.Time                `gorm:"type:date"`
	DeliveryDate         *time.Time                `gorm:"type:date"`
	SupplierInvoiceRef   string                    `gorm:"type:varchar(100)"`
	Notes                string                    `gorm:"type:text"`
	Lines                []PurchaseOrderLineModel  `gorm:"foreignKey:OrderID;references:ID"`
	TotalAmount          decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount            decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTotal           decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	PaidAmount           decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	Status               trade.PurchaseOrderStatus `gorm:"type:varchar(30);not null;default:'PENDING';index"`
	SourceReturnID       *uuid.UUID                `gorm:"type:uuid"`
	CancelledAt          *time.Time
	CompletedAt          *time.Time
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder
func (m *PurchaseOrderModel) ToDomain() *trade.PurchaseOrder {
	order := &trade.PurchaseOrder{
		TenantAggregateRoot:  m.ToDomainTenantAggregateRoot(),
		OrderNumber:          m.OrderNumber,
		SupplierID:           m.SupplierID,
		BranchID:             m.BranchID,
		OrderDate:            m.OrderDate,
		ExpectedDeliveryDate: m.ExpectedDeliveryDate,
		DeliveryDate:         m.DeliveryDate,
		SupplierInvoiceRef:   m.SupplierInvoiceRef,
		Notes:                m.Notes,
		TotalAmount:          m.TotalAmount,
		TaxAmount:            m.TaxAmount,
		GrandTotal:           m.GrandTotal,
		PaidAmount:           m.PaidAmount,
		Status:               m.Status,
		SourceReturnID:       m.SourceReturnID,
		CancelledAt:          m.CancelledAt,
		CompletedAt:          m.CompletedAt,
		Lines:                make([]trade.PurchaseOrderLine, len(m.Lines)),
	}
	for i := range m.Lines {
		order.Lines[i] = *m.Lines[i].ToDomain()
	}
	return order
}

// PurchaseOrderModelFromDomain creates a persistence model from a domain PurchaseOrder
func PurchaseOrderModelFromDomain(o *trade.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{
		OrderNumber:          o.OrderNumber,
		SupplierID:           o.SupplierID,
		BranchID:             o.BranchID,
		OrderDate:            o.OrderDate,
		ExpectedDeliveryDate: o.ExpectedDeliveryDate,
		DeliveryDate:         o.DeliveryDate,
		SupplierInvoiceRef:   o.SupplierInvoiceRef,
		Notes:                o.Notes,
		TotalAmount:          o.TotalAmount,
		TaxAmount:            o.TaxAmount,
		GrandTotal:           o.GrandTotal,
		PaidAmount:           o.PaidAmount,
		Status:               o.Status,
		SourceReturnID:       o.SourceReturnID,
		CancelledAt:          o.CancelledAt,
		CompletedAt:          o.CompletedAt,
		Lines:                make([]PurchaseOrderLineModel, len(o.Lines)),
	}
	m.FromDomainTenantAggregateRoot(o.TenantAggregateRoot)
	for i := range o.Lines {
		m.Lines[i] = *PurchaseOrderLineModelFromDomain(&o.Lines[i])
	}
	return m
}

// PurchaseOrderLineModel is the persistence model for a PurchaseOrderLine
type PurchaseOrderLineModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxRate          decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	TaxAmount        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LineTotal        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReceivedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReturnedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderLineModel) TableName() string {
	return "purchase_order_lines"
}

// ToDomain converts the persistence model to a domain PurchaseOrderLine
func (m *PurchaseOrderLineModel) ToDomain() *trade.PurchaseOrderLine {
	return &trade.PurchaseOrderLine{
		ID:               m.ID,
		OrderID:          m.OrderID,
		ItemID:           m.ItemID,
		Quantity:         m.Quantity,
		UnitPrice:        m.UnitPrice,
		TaxRate:          m.TaxRate,
		TaxAmount:        m.TaxAmount,
		LineTotal:        m.LineTotal,
		ReceivedQuantity: m.ReceivedQuantity,
		ReturnedQuantity: m.ReturnedQuantity,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// PurchaseOrderLineModelFromDomain creates a persistence model from a domain PurchaseOrderLine
func PurchaseOrderLineModelFromDomain(l *trade.PurchaseOrderLine) *PurchaseOrderLineModel {
	return &PurchaseOrderLineModel{
		ID:               l.ID,
		OrderID:          l.OrderID,
		ItemID:           l.ItemID,
		Quantity:         l.Quantity,
		UnitPrice:        l.UnitPrice,
		TaxRate:          l.TaxRate,
		TaxAmount:        l.TaxAmount,
		LineTotal:        l.LineTotal,
		ReceivedQuantity: l.ReceivedQuantity,
		ReturnedQuantity: l.ReturnedQuantity,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

// PurchasePaymentModel is the persistence model for a supplier payment
type PurchasePaymentModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_purchase_payment_order,priority:1"`
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_purchase_payment_order,priority:2"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaymentDate     time.Time       `gorm:"not null"`
	PaymentMethodID *uuid.UUID      `gorm:"type:uuid"`
	ReferenceNumber string          `gorm:"type:varchar(100)"`
	Notes           string          `gorm:"type:varchar(500)"`
	RecordedBy      *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchasePaymentModel) TableName() string {
	return "purchase_payments"
}

// ToDomain converts the persistence model to a domain PurchasePayment
func (m *PurchasePaymentModel) ToDomain() *trade.PurchasePayment {
	return &trade.PurchasePayment{
		ID:              m.ID,
		TenantID:        m.TenantID,
		OrderID:         m.OrderID,
		Amount:          m.Amount,
		PaymentDate:     m.PaymentDate,
		PaymentMethodID: m.PaymentMethodID,
		ReferenceNumber: m.ReferenceNumber,
		Notes:           m.Notes,
		RecordedBy:      m.RecordedBy,
		CreatedAt:       m.CreatedAt,
	}
}

// PurchasePaymentModelFromDomain creates a persistence model from a domain PurchasePayment
func PurchasePaymentModelFromDomain(p *trade.PurchasePayment) *PurchasePaymentModel {
	return &PurchasePaymentModel{
		ID:              p.ID,
		TenantID:        p.TenantID,
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

// PurchaseReturnModel is the persistence model for the PurchaseReturn aggregate root
type PurchaseReturnModel struct {
	TenantAggregateModel
	ReturnNumber       string             `gorm:"type:varchar(50);not null;index"`
	OrderID            uuid.UUID          `gorm:"type:uuid;not null;index"`
	LineID             uuid.UUID          `gorm:"type:uuid;not null;index"`
	BranchID           uuid.UUID          `gorm:"type:uuid;not null"`
	SupplierID         uuid.UUID          `gorm:"type:uuid;not null;index"`
	ItemID             uuid.UUID          `gorm:"type:uuid;not null"`
	ReturnQuantity     decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	UnitPrice          decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	RefundAmount       decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	Reason             trade.ReturnReason `gorm:"type:varchar(30);not null"`
	ReturnType         trade.ReturnType   `gorm:"type:varchar(20);not null"`
	Status             trade.ReturnStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	StockReversed      bool               `gorm:"not null;default:false"`
	RefundProcessed    bool               `gorm:"not null;default:false"`
	ReplacementOrderID *uuid.UUID         `gorm:"type:uuid"`
	Notes              string             `gorm:"type:text"`
	ConfirmedBy        *uuid.UUID         `gorm:"type:uuid"`
	ConfirmedAt        *time.Time
	RejectedAt         *time.Time
	RefundedAt         *time.Time
}

// TableName returns the table name for GORM
func (PurchaseReturnModel) TableName() string {
	return "purchase_returns"
}

// ToDomain converts the persistence model to a domain PurchaseReturn
func (m *PurchaseReturnModel) ToDomain() *trade.PurchaseReturn {
	return &trade.PurchaseReturn{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		ReturnNumber:        m.ReturnNumber,
		OrderID:             m.OrderID,
		LineID:              m.LineID,
		BranchID:            m.BranchID,
		SupplierID:          m.SupplierID,
		ItemID:              m.ItemID,
		ReturnQuantity:      m.ReturnQuantity,
		UnitPrice:           m.UnitPrice,
		RefundAmount:        m.RefundAmount,
		Reason:              m.Reason,
		ReturnType:          m.ReturnType,
		Status:              m.Status,
		StockReversed:       m.StockReversed,
		RefundProcessed:     m.RefundProcessed,
		ReplacementOrderID:  m.ReplacementOrderID,
		Notes:               m.Notes,
		ConfirmedBy:         m.ConfirmedBy,
		ConfirmedAt:         m.ConfirmedAt,
		RejectedAt:          m.RejectedAt,
		RefundedAt:          m.RefundedAt,
	}
}

// PurchaseReturnModelFromDomain creates a persistence model from a domain PurchaseReturn
func PurchaseReturnModelFromDomain(r *trade.PurchaseReturn) *PurchaseReturnModel {
	m := &PurchaseReturnModel{
		ReturnNumber:       r.ReturnNumber,
		OrderID:            r.OrderID,
		LineID:             r.LineID,
		BranchID:           r.BranchID,
		SupplierID:         r.SupplierID,
		ItemID:             r.ItemID,
		ReturnQuantity:     r.ReturnQuantity,
		UnitPrice:          r.UnitPrice,
		RefundAmount:       r.RefundAmount,
		Reason:             r.Reason,
		ReturnType:         r.ReturnType,
		Status:             r.Status,
		StockReversed:      r.StockReversed,
		RefundProcessed:    r.RefundProcessed,
		ReplacementOrderID: r.ReplacementOrderID,
		Notes:              r.Notes,
		ConfirmedBy:        r.ConfirmedBy,
		ConfirmedAt:        r.ConfirmedAt,
		RejectedAt:         r.RejectedAt,
		RefundedAt:         r.RefundedAt,
	}
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	return m
}

// RefundTransactionModel is the persistence model for a RefundTransaction
type RefundTransactionModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ReturnID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RefundDate      time.Time       `gorm:"not null"`
	PaymentMethodID *uuid.UUID      `gorm:"type:uuid"`
	ReferenceNumber string          `gorm:"type:varchar(100)"`
	Notes           string          `gorm:"type:varchar(500)"`
	ProcessedBy     *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RefundTransactionModel) TableName() string {
	return "refund_transactions"
}

// ToDomain converts the persistence model to a domain RefundTransaction
func (m *RefundTransactionModel) ToDomain() *trade.RefundTransaction {
	return &trade.RefundTransaction{
		ID:              m.ID,
		TenantID:        m.TenantID,
		ReturnID:        m.ReturnID,
		OrderID:         m.OrderID,
		Amount:          m.Amount,
		RefundDate:      m.RefundDate,
		PaymentMethodID: m.PaymentMethodID,
		ReferenceNumber: m.ReferenceNumber,
		Notes:           m.Notes,
		ProcessedBy:     m.ProcessedBy,
		CreatedAt:       m.CreatedAt,
	}
}

// RefundTransactionModelFromDomain creates a persistence model from a domain RefundTransaction
func RefundTransactionModelFromDomain(r *trade.RefundTransaction) *RefundTransactionModel {
	return &RefundTransactionModel{
		ID:              r.ID,
		TenantID:        r.TenantID,
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
