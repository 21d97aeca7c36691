package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/inventory"
	"github.com/repairdesk/backend/internal/domain/masterdata"
	"github.com/repairdesk/backend/internal/domain/shared"
	"github.com/repairdesk/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockPurchaseOrderRepository is a mock implementation of PurchaseOrderRepository
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByLineIDForUpdate(ctx context.Context, tenantID, lineID uuid.UUID) (*trade.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]trade.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Create(ctx context.Context, order *trade.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *trade.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) ExistsByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (bool, error) {
	args := m.Called(ctx, tenantID, orderNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockPurchaseOrderRepository) StatusSummary(ctx context.Context, tenantID uuid.UUID) ([]trade.StatusSummary, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.StatusSummary), args.Error(1)
}

func (m *MockPurchaseOrderRepository) SupplierBalances(ctx context.Context, tenantID uuid.UUID, supplierID *uuid.UUID) ([]trade.SupplierBalance, error) {
	args := m.Called(ctx, tenantID, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.SupplierBalance), args.Error(1)
}

// MockPurchaseReturnRepository is a mock implementation of PurchaseReturnRepository
type MockPurchaseReturnRepository struct {
	mock.Mock
}

func (m *MockPurchaseReturnRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.PurchaseReturn, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseReturn), args.Error(1)
}

func (m *MockPurchaseReturnRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*trade.PurchaseReturn, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseReturn), args.Error(1)
}

func (m *MockPurchaseReturnRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]trade.PurchaseReturn, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.PurchaseReturn), args.Error(1)
}

func (m *MockPurchaseReturnRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchaseReturnRepository) SumActiveQuantityByLine(ctx context.Context, tenantID, lineID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, lineID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPurchaseReturnRepository) Create(ctx context.Context, ret *trade.PurchaseReturn) error {
	args := m.Called(ctx, ret)
	return args.Error(0)
}

func (m *MockPurchaseReturnRepository) SaveWithLock(ctx context.Context, ret *trade.PurchaseReturn) error {
	args := m.Called(ctx, ret)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of PurchasePaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *trade.PurchasePayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]trade.PurchasePayment, error) {
	args := m.Called(ctx, tenantID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.PurchasePayment), args.Error(1)
}

func (m *MockPaymentRepository) CountByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, orderID)
	return args.Get(0).(int64), args.Error(1)
}

// MockRefundRepository is a mock implementation of RefundTransactionRepository
type MockRefundRepository struct {
	mock.Mock
}

func (m *MockRefundRepository) Create(ctx context.Context, refund *trade.RefundTransaction) error {
	args := m.Called(ctx, refund)
	return args.Error(0)
}

func (m *MockRefundRepository) FindByReturn(ctx context.Context, tenantID, returnID uuid.UUID) ([]trade.RefundTransaction, error) {
	args := m.Called(ctx, tenantID, returnID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.RefundTransaction), args.Error(1)
}

// MockDocumentSequence is a mock implementation of DocumentSequence
type MockDocumentSequence struct {
	mock.Mock
}

func (m *MockDocumentSequence) Next(ctx context.Context, tenantID, branchID uuid.UUID, prefix string) (int64, error) {
	args := m.Called(ctx, tenantID, branchID, prefix)
	return args.Get(0).(int64), args.Error(1)
}

// MockBranchStockRepository is a mock implementation of BranchStockRepository
type MockBranchStockRepository struct {
	mock.Mock
}

func (m *MockBranchStockRepository) FindByBranchAndItem(ctx context.Context, tenantID, branchID, itemID uuid.UUID) (*inventory.BranchStock, error) {
	args := m.Called(ctx, tenantID, branchID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.BranchStock), args.Error(1)
}

func (m *MockBranchStockRepository) GetOrCreateForUpdate(ctx context.Context, tenantID, branchID, itemID uuid.UUID) (*inventory.BranchStock, error) {
	args := m.Called(ctx, tenantID, branchID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.BranchStock), args.Error(1)
}

func (m *MockBranchStockRepository) SaveWithLock(ctx context.Context, stock *inventory.BranchStock) error {
	args := m.Called(ctx, stock)
	return args.Error(0)
}

func (m *MockBranchStockRepository) FindByBranch(ctx context.Context, tenantID, branchID uuid.UUID) ([]inventory.BranchStock, error) {
	args := m.Called(ctx, tenantID, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.BranchStock), args.Error(1)
}

// MockStockMovementRepository is a mock implementation of StockMovementRepository
type MockStockMovementRepository struct {
	mock.Mock
}

func (m *MockStockMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockStockMovementRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter inventory.MovementFilter) ([]inventory.StockMovement, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]inventory.StockMovement), args.Get(1).(int64), args.Error(2)
}

func (m *MockStockMovementRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, refType inventory.ReferenceType, refID uuid.UUID) ([]inventory.StockMovement, error) {
	args := m.Called(ctx, tenantID, refType, refID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockMovement), args.Error(1)
}

func (m *MockStockMovementRepository) SumByBranchStock(ctx context.Context, tenantID, branchStockID uuid.UUID) (decimal.Decimal, int64, error) {
	args := m.Called(ctx, tenantID, branchStockID)
	return args.Get(0).(decimal.Decimal), args.Get(1).(int64), args.Error(2)
}

// MockDirectory is a mock implementation of masterdata.Directory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) GetBranch(ctx context.Context, tenantID, id uuid.UUID) (*masterdata.Branch, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*masterdata.Branch), args.Error(1)
}

func (m *MockDirectory) GetSupplier(ctx context.Context, tenantID, id uuid.UUID) (*masterdata.Supplier, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*masterdata.Supplier), args.Error(1)
}

func (m *MockDirectory) ResolveItem(ctx context.Context, tenantID uuid.UUID, ref masterdata.ItemRef) (*masterdata.Item, error) {
	args := m.Called(ctx, tenantID, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*masterdata.Item), args.Error(1)
}

func (m *MockDirectory) GetPaymentMethod(ctx context.Context, tenantID, id uuid.UUID) (*masterdata.PaymentMethod, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*masterdata.PaymentMethod), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// testRepos bundles one set of mocks behind a NoOpTransactionScope
type testRepos struct {
	orders    *MockPurchaseOrderRepository
	returns   *MockPurchaseReturnRepository
	payments  *MockPaymentRepository
	refunds   *MockRefundRepository
	sequences *MockDocumentSequence
	stocks    *MockBranchStockRepository
	movements *MockStockMovementRepository
	directory *MockDirectory
}

func newTestRepos() *testRepos {
	return &testRepos{
		orders:    new(MockPurchaseOrderRepository),
		returns:   new(MockPurchaseReturnRepository),
		payments:  new(MockPaymentRepository),
		refunds:   new(MockRefundRepository),
		sequences: new(MockDocumentSequence),
		stocks:    new(MockBranchStockRepository),
		movements: new(MockStockMovementRepository),
		directory: new(MockDirectory),
	}
}

func (r *testRepos) scope() *NoOpTransactionScope {
	return NewNoOpTransactionScope(NoOpRepositories{
		PurchaseOrders:  r.orders,
		PurchaseReturns: r.returns,
		Payments:        r.payments,
		Refunds:         r.refunds,
		Sequences:       r.sequences,
		BranchStocks:    r.stocks,
		StockMovements:  r.movements,
		Directory:       r.directory,
	})
}

func (r *testRepos) assertExpectations(t mock.TestingT) {
	r.orders.AssertExpectations(t)
	r.returns.AssertExpectations(t)
	r.payments.AssertExpectations(t)
	r.refunds.AssertExpectations(t)
	r.sequences.AssertExpectations(t)
	r.stocks.AssertExpectations(t)
	r.movements.AssertExpectations(t)
	r.directory.AssertExpectations(t)
}
