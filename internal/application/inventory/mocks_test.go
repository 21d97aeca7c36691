package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/inventory"
	"github.com/repairdesk/backend/internal/domain/masterdata"
	"github.com/repairdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

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
