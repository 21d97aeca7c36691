package inventory

import (
	"context"

	"github.com/repairdesk/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to the stock repositories.
// All repository operations inside Execute are committed or rolled back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the stock repositories bound to one transaction.
//
// BranchStock quantities are only changed through inventory.Ledger, which needs
// both repositories from the same transaction.
type TransactionalRepositories interface {
	BranchStocks() inventory.BranchStockRepository
	StockMovements() inventory.StockMovementRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing.
type NoOpTransactionScope struct {
	stocks    inventory.BranchStockRepository
	movements inventory.StockMovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(stocks inventory.BranchStockRepository, movements inventory.StockMovementRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{stocks: stocks, movements: movements}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) BranchStocks() inventory.BranchStockRepository {
	return s.stocks
}

func (s *NoOpTransactionScope) StockMovements() inventory.StockMovementRepository {
	return s.movements
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
