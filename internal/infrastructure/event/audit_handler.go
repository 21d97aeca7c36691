package event

import (
	"context"

	"github.com/repairdesk/backend/internal/domain/inventory"
	"github.com/repairdesk/backend/internal/domain/shared"
	"github.com/repairdesk/backend/internal/domain/trade"
	"github.com/repairdesk/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LedgerEventTypes lists every event the purchase ledger publishes
func LedgerEventTypes() []string {
	return []string{
		trade.EventTypePurchaseOrderCreated,
		trade.EventTypePurchaseOrderReceived,
		trade.EventTypePurchaseOrderStatusChanged,
		trade.EventTypePurchaseOrderPaid,
		trade.EventTypePurchaseReturnCreated,
		trade.EventTypePurchaseReturnConfirmed,
		trade.EventTypePurchaseReturnRejected,
		trade.EventTypePurchaseReturnRefunded,
		inventory.EventTypeStockMoved,
	}
}

// LedgerAuditHandler writes one structured log line per committed ledger event.
// It writes to its own logger, never the request logger, and copies the
// request and user IDs from the context.
type LedgerAuditHandler struct {
	logger *zap.Logger
}

// NewLedgerAuditHandler creates the handler. The logger is usually named "audit".
func NewLedgerAuditHandler(log *zap.Logger) *LedgerAuditHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &LedgerAuditHandler{logger: log}
}

// EventTypes implements shared.EventHandler
func (h *LedgerAuditHandler) EventTypes() []string {
	return LedgerEventTypes()
}

// Handle implements shared.EventHandler
func (h *LedgerAuditHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", evt.EventType()),
		zap.String("event_id", evt.EventID().String()),
		zap.String("tenant_id", evt.TenantID().String()),
		zap.String("aggregate_type", evt.AggregateType()),
		zap.String("aggregate_id", evt.AggregateID().String()),
		zap.Time("occurred_at", evt.OccurredAt()),
		zap.Any("payload", evt),
	}
	if id := logger.RequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := logger.UserID(ctx); id != "" {
		fields = append(fields, zap.String("user_id", id))
	}
	h.logger.Info("Ledger event", fields...)
	return nil
}

var _ shared.EventHandler = (*LedgerAuditHandler)(nil)
