package trade

import (
	"context"
	"errors"

	"github.com/repairdesk/backend/internal/domain/shared"
	"github.com/repairdesk/backend/internal/infrastructure/logger"
	"github.com/repairdesk/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// serviceBase carries the collaborators every trade service shares
type serviceBase struct {
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
	metrics        *telemetry.LedgerMetrics
}

func newServiceBase(logger *zap.Logger) serviceBase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return serviceBase{logger: logger}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (b *serviceBase) SetEventPublisher(publisher shared.EventPublisher) {
	b.eventPublisher = publisher
}

// SetMetrics sets the ledger metrics collector
func (b *serviceBase) SetMetrics(metrics *telemetry.LedgerMetrics) {
	b.metrics = metrics
}

// publish hands committed events to the publisher. A failure is logged and
// never undoes the committed change.
func (b *serviceBase) publish(ctx context.Context, events []shared.DomainEvent) {
	if b.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := b.eventPublisher.Publish(ctx, events...); err != nil {
		logger.For(ctx, b.logger).Warn("failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}

// fail converts err into a DomainError. Errors that are not domain errors are
// logged and reported as INTERNAL.
func (b *serviceBase) fail(ctx context.Context, operation string, err error) error {
	if err == nil {
		return nil
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		if de.Code == shared.CodeConcurrencyConflict {
			b.metrics.RecordConcurrencyConflict(ctx, operation)
		}
		return de
	}
	logger.For(ctx, b.logger).Error("unexpected failure",
		zap.String("operation", operation),
		zap.Error(err),
	)
	return shared.NewInternalError("Failed to "+operation, err)
}
