package trade

import (
	"context"

	"github.com/repairdesk/backend/internal/domain/inventory"
	"github.com/repairdesk/backend/internal/domain/masterdata"
	"github.com/repairdesk/backend/internal/domain/trade"
)

// TransactionScope provides transactional access to the purchase and stock repositories.
// Everything done through the repositories handed to fn is committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back; otherwise it is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to repositories bound to one transaction.
//
// Orders and returns are read with row locks (FindBy...ForUpdate) and saved with a version
// check. BranchStock rows are only ever written through inventory.Ledger built from
// BranchStocks and StockMovements.
type TransactionalRepositories interface {
	PurchaseOrders() trade.PurchaseOrderRepository
	PurchaseReturns() trade.PurchaseReturnRepository
	Payments() trade.PurchasePaymentRepository
	Refunds() trade.RefundTransactionRepository
	Sequences() trade.DocumentSequence
	BranchStocks() inventory.BranchStockRepository
	StockMovements() inventory.StockMovementRepository
	// Directory reads master data on the same connection as the transaction
	Directory() masterdata.Directory
}

// NoOpTransactionScope hands the same repositories to every call without opening a transaction.
// It is meant for unit tests and for callers that already run inside a transaction.
type NoOpTransactionScope struct {
	orders    trade.PurchaseOrderRepository
	returns   trade.PurchaseReturnRepository
	payments  trade.PurchasePaymentRepository
	refunds   trade.RefundTransactionRepository
	sequences trade.DocumentSequence
	stocks    inventory.BranchStockRepository
	movements inventory.StockMovementRepository
	directory masterdata.Directory
}

// NoOpRepositories lists the repositories a NoOpTransactionScope hands out
type NoOpRepositories struct {
	PurchaseOrders  trade.PurchaseOrderRepository
	PurchaseReturns trade.PurchaseReturnRepository
	Payments        trade.PurchasePaymentRepository
	Refunds         trade.RefundTransactionRepository
	Sequences       trade.DocumentSequence
	BranchStocks    inventory.BranchStockRepository
	StockMovements  inventory.StockMovementRepository
	Directory       masterdata.Directory
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(repos NoOpRepositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orders:    repos.PurchaseOrders,
		returns:   repos.PurchaseReturns,
		payments:  repos.Payments,
		refunds:   repos.Refunds,
		sequences: repos.Sequences,
		stocks:    repos.BranchStocks,
		movements: repos.StockMovements,
		directory: repos.Directory,
	}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) PurchaseOrders() trade.PurchaseOrderRepository     { return s.orders }
func (s *NoOpTransactionScope) PurchaseReturns() trade.PurchaseReturnRepository   { return s.returns }
func (s *NoOpTransactionScope) Payments() trade.PurchasePaymentRepository         { return s.payments }
func (s *NoOpTransactionScope) Refunds() trade.RefundTransactionRepository        { return s.refunds }
func (s *NoOpTransactionScope) Sequences() trade.DocumentSequence                 { return s.sequences }
func (s *NoOpTransactionScope) BranchStocks() inventory.BranchStockRepository     { return s.stocks }
func (s *NoOpTransactionScope) StockMovements() inventory.StockMovementRepository { return s.movements }
func (s *NoOpTransactionScope) Directory() masterdata.Directory                   { return s.directory }

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
