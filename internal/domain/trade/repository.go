package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByIDForTenant finds an order with its lines
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)

	// FindByIDForUpdate finds an order and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)

	// FindByLineIDForUpdate finds the order owning a line, locked for update
	FindByLineIDForUpdate(ctx context.Context, tenantID, lineID uuid.UUID) (*PurchaseOrder, error)

	// FindAllForTenant lists orders matching the filter
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PurchaseOrder, error)

	// CountForTenant counts orders matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// Create inserts a new order with its lines
	Create(ctx context.Context, order *PurchaseOrder) error

	// SaveWithLock updates an existing order and its lines if the stored version
	// is one behind the aggregate; otherwise returns shared.ErrConcurrencyConflict
	SaveWithLock(ctx context.Context, order *PurchaseOrder) error

	// DeleteForTenant removes an order and its lines
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// ExistsByOrderNumber checks the order number uniqueness
	ExistsByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (bool, error)

	// StatusSummary counts orders and sums grand totals per status
	StatusSummary(ctx context.Context, tenantID uuid.UUID) ([]StatusSummary, error)

	// SupplierBalances aggregates non-cancelled orders per supplier.
	// A nil supplierID returns every supplier of the tenant.
	SupplierBalances(ctx context.Context, tenantID uuid.UUID, supplierID *uuid.UUID) ([]SupplierBalance, error)
}

// StatusSummary is the count and value of orders in one status
type StatusSummary struct {
	Status     PurchaseOrderStatus
	Count      int64
	GrandTotal decimal.Decimal
}

// SupplierBalance is what the shop has ordered from, paid to and still owes a supplier
type SupplierBalance struct {
	SupplierID  uuid.UUID
	OrderCount  int64
	GrandTotal  decimal.Decimal
	PaidAmount  decimal.Decimal
	Outstanding decimal.Decimal
}

// PurchaseReturnRepository defines the interface for purchase return persistence
type PurchaseReturnRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseReturn, error)

	// FindByIDForUpdate finds a return and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseReturn, error)

	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PurchaseReturn, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// SumActiveQuantityByLine sums ReturnQuantity of every non-rejected return of a line
	SumActiveQuantityByLine(ctx context.Context, tenantID, lineID uuid.UUID) (decimal.Decimal, error)

	Create(ctx context.Context, ret *PurchaseReturn) error
	SaveWithLock(ctx context.Context, ret *PurchaseReturn) error
}

// RefundTransactionRepository persists refunds. Append-only.
type RefundTransactionRepository interface {
	Create(ctx context.Context, refund *RefundTransaction) error
	FindByReturn(ctx context.Context, tenantID, returnID uuid.UUID) ([]RefundTransaction, error)
}

// PurchasePaymentRepository persists supplier payments. Append-only.
type PurchasePaymentRepository interface {
	Create(ctx context.Context, payment *PurchasePayment) error
	FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]PurchasePayment, error)
	CountByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (int64, error)
}
