package persistence

import (
	"context"

	appinv "github.com/repairdesk/backend/internal/application/inventory"
	apptrade "github.com/repairdesk/backend/internal/application/trade"
	"github.com/repairdesk/backend/internal/domain/inventory"
	"github.com/repairdesk/backend/internal/domain/masterdata"
	"github.com/repairdesk/backend/internal/domain/trade"
	"github.com/repairdesk/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apptrade.TransactionalRepositories) error) error {
	return runInTransaction(ctx, s.db, "trade", func(repos *gormTransactionalRepositories) error {
		return fn(repos)
	})
}

// runInTransaction wraps one database transaction in a "ledger.tx" span
func runInTransaction(ctx context.Context, db *gorm.DB, scope string, fn func(*gormTransactionalRepositories) error) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "ledger.tx", attribute.String("ledger.scope", scope))
	defer func() { telemetry.EndSpan(span, err) }()

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) PurchaseOrders() trade.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) PurchaseReturns() trade.PurchaseReturnRepository {
	return NewGormPurchaseReturnRepository(r.tx)
}

func (r *gormTransactionalRepositories) Payments() trade.PurchasePaymentRepository {
	return NewGormPurchasePaymentRepository(r.tx)
}

func (r *gormTransactionalRepositories) Refunds() trade.RefundTransactionRepository {
	return NewGormRefundTransactionRepository(r.tx)
}

func (r *gormTransactionalRepositories) Sequences() trade.DocumentSequence {
	return NewGormDocumentSequence(r.tx)
}

func (r *gormTransactionalRepositories) BranchStocks() inventory.BranchStockRepository {
	return NewGormBranchStockRepository(r.tx)
}

func (r *gormTransactionalRepositories) StockMovements() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

func (r *gormTransactionalRepositories) Directory() masterdata.Directory {
	return NewGormDirectory(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ apptrade.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ apptrade.TransactionalRepositories = (*gormTransactionalRepositories)(nil)

// GormStockTransactionScope implements the stock ledger's TransactionScope
type GormStockTransactionScope struct {
	db *gorm.DB
}

// NewGormStockTransactionScope creates a new GormStockTransactionScope.
func NewGormStockTransactionScope(db *gorm.DB) *GormStockTransactionScope {
	return &GormStockTransactionScope{db: db}
}

// Execute runs fn inside one database transaction
func (s *GormStockTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return runInTransaction(ctx, s.db, "stock", func(repos *gormTransactionalRepositories) error {
		return fn(repos)
	})
}

var _ appinv.TransactionScope = (*GormStockTransactionScope)(nil)
var _ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
