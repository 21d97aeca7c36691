package telemetry

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// LedgerMetrics records purchase and stock activity.
// All Record methods are safe to call on a nil *LedgerMetrics, so services can
// run without a meter configured.
type LedgerMetrics struct {
	logger *zap.Logger

	ordersCreated       *Counter
	orderValue          *Histogram
	goodsReceived       *Histogram
	stockMovements      *Counter
	paymentsRecorded    *Counter
	paymentValue        *Histogram
	returnsTotal        *Counter
	refundValue         *Histogram
	concurrencyConflict *Counter
}

// LedgerMetricsConfig holds configuration for ledger metrics.
type LedgerMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

var amountBoundaries = []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 50000}

// NewLedgerMetrics creates the ledger instruments on the given meter.
func NewLedgerMetrics(cfg LedgerMetricsConfig) (*LedgerMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lm := &LedgerMetrics{logger: logger}
	var err error

	if lm.ordersCreated, err = NewCounter(cfg.Meter,
		"ledger_purchase_orders_created_total", "Total number of purchase orders created", "{orders}"); err != nil {
		return nil, err
	}
	if lm.orderValue, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "ledger_purchase_order_value",
		Description: "Grand total of created purchase orders",
		Unit:        "{currency}",
		Boundaries:  amountBoundaries,
	}); err != nil {
		return nil, err
	}
	if lm.goodsReceived, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "ledger_goods_received_quantity",
		Description: "Quantity received per receive call",
		Unit:        "{units}",
	}); err != nil {
		return nil, err
	}
	if lm.stockMovements, err = NewCounter(cfg.Meter,
		"ledger_stock_movements_total", "Total number of stock movements posted", "{movements}"); err != nil {
		return nil, err
	}
	if lm.paymentsRecorded, err = NewCounter(cfg.Meter,
		"ledger_supplier_payments_total", "Total number of supplier payments recorded", "{payments}"); err != nil {
		return nil, err
	}
	if lm.paymentValue, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "ledger_supplier_payment_value",
		Description: "Amount of supplier payments",
		Unit:        "{currency}",
		Boundaries:  amountBoundaries,
	}); err != nil {
		return nil, err
	}
	if lm.returnsTotal, err = NewCounter(cfg.Meter,
		"ledger_purchase_returns_total", "Purchase returns by type and outcome", "{returns}"); err != nil {
		return nil, err
	}
	if lm.refundValue, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "ledger_refund_value",
		Description: "Amount of processed supplier refunds",
		Unit:        "{currency}",
		Boundaries:  amountBoundaries,
	}); err != nil {
		return nil, err
	}
	if lm.concurrencyConflict, err = NewCounter(cfg.Meter,
		"ledger_concurrency_conflicts_total", "Writes rejected by the optimistic version check", "{conflicts}"); err != nil {
		return nil, err
	}

	return lm, nil
}

// RecordPurchaseOrderCreated counts a new order and its value
func (lm *LedgerMetrics) RecordPurchaseOrderCreated(ctx context.Context, tenantID uuid.UUID, grandTotal decimal.Decimal) {
	if lm == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrTenantID.String(tenantID.String())}
	lm.ordersCreated.Inc(ctx, attrs...)
	lm.orderValue.Record(ctx, grandTotal.InexactFloat64(), attrs...)
}

// RecordGoodsReceived records the total quantity of one receive call
func (lm *LedgerMetrics) RecordGoodsReceived(ctx context.Context, tenantID uuid.UUID, quantity decimal.Decimal) {
	if lm == nil {
		return
	}
	lm.goodsReceived.Record(ctx, quantity.InexactFloat64(), AttrTenantID.String(tenantID.String()))
}

// RecordStockMovement counts a posted movement by type
func (lm *LedgerMetrics) RecordStockMovement(ctx context.Context, tenantID uuid.UUID, movementType string) {
	if lm == nil {
		return
	}
	lm.stockMovements.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrMovementType.String(movementType),
	)
}

// RecordPayment counts a supplier payment and its amount
func (lm *LedgerMetrics) RecordPayment(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal) {
	if lm == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrTenantID.String(tenantID.String())}
	lm.paymentsRecorded.Inc(ctx, attrs...)
	lm.paymentValue.Record(ctx, amount.InexactFloat64(), attrs...)
}

// RecordReturn counts a return reaching the given status
func (lm *LedgerMetrics) RecordReturn(ctx context.Context, tenantID uuid.UUID, returnType, status string) {
	if lm == nil {
		return
	}
	lm.returnsTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrReturnType.String(returnType),
		AttrReturnStatus.String(status),
	)
}

// RecordRefund records a processed refund amount
func (lm *LedgerMetrics) RecordRefund(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal) {
	if lm == nil {
		return
	}
	lm.refundValue.Record(ctx, amount.InexactFloat64(), AttrTenantID.String(tenantID.String()))
}

// RecordConcurrencyConflict counts a write that lost the version race
func (lm *LedgerMetrics) RecordConcurrencyConflict(ctx context.Context, operation string) {
	if lm == nil {
		return
	}
	lm.concurrencyConflict.Inc(ctx, AttrOperation.String(operation))
	lm.logger.Debug("concurrency conflict", zap.String("operation", operation))
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewLedgerMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

