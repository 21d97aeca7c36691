package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStockRepo struct {
	mock.Mock
}

func (m *mockStockRepo) FindByBranchAndItem(ctx context.Context, tenantID, branchID, itemID uuid.UUID) (*BranchStock, error) {
	args := m.Called(ctx, tenantID, branchID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BranchStock), args.Error(1)
}

func (m *mockStockRepo) GetOrCreateForUpdate(ctx context.Context, tenantID, branchID, itemID uuid.UUID) (*BranchStock, error) {
	args := m.Called(ctx, tenantID, branchID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BranchStock), args.Error(1)
}

func (m *mockStockRepo) SaveWithLock(ctx context.Context, stock *BranchStock) error {
	args := m.Called(ctx, stock)
	return args.Error(0)
}

func (m *mockStockRepo) FindByBranch(ctx context.Context, tenantID, branchID uuid.UUID) ([]BranchStock, error) {
	args := m.Called(ctx, tenantID, branchID)
	return args.Get(0).([]BranchStock), args.Error(1)
}

type mockMovementRepo struct {
	mock.Mock
}

func (m *mockMovementRepo) Create(ctx context.Context, movement *StockMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *mockMovementRepo) FindAll(ctx context.Context, tenantID uuid.UUID, filter MovementFilter) ([]StockMovement, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]StockMovement), args.Get(1).(int64), args.Error(2)
}

func (m *mockMovementRepo) FindByReference(ctx context.Context, tenantID uuid.UUID, refType ReferenceType, refID uuid.UUID) ([]StockMovement, error) {
	args := m.Called(ctx, tenantID, refType, refID)
	return args.Get(0).([]StockMovement), args.Error(1)
}

func (m *mockMovementRepo) SumByBranchStock(ctx context.Context, tenantID, branchStockID uuid.UUID) (decimal.Decimal, int64, error) {
	args := m.Called(ctx, tenantID, branchStockID)
	return args.Get(0).(decimal.Decimal), args.Get(1).(int64), args.Error(2)
}

func TestLedger_Apply(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()
	supplierID := uuid.New()

	t.Run("creates stock row and appends movement", func(t *testing.T) {
		stocks := new(mockStockRepo)
		movements := new(mockMovementRepo)
		ledger := NewLedger(stocks, movements)

		stock := newTestStock(t)
		price := decimal.NewFromInt(5)
		stocks.On("GetOrCreateForUpdate", ctx, stock.TenantID, stock.BranchID, stock.ItemID).Return(stock, nil)
		stocks.On("SaveWithLock", ctx, stock).Return(nil)
		movements.On("Create", ctx, mock.AnythingOfType("*inventory.StockMovement")).Return(nil)

		m, err := ledger.Apply(ctx, MovementRequest{
			TenantID:      stock.TenantID,
			BranchID:      stock.BranchID,
			ItemID:        stock.ItemID,
			Quantity:      decimal.NewFromInt(4),
			MovementType:  MovementTypePurchase,
			ReferenceType: ReferenceTypePurchaseOrder,
			ReferenceID:   &orderID,
			UnitPrice:     &price,
			SupplierID:    &supplierID,
		})

		require.NoError(t, err)
		assert.True(t, m.PreviousQuantity.IsZero())
		assert.True(t, m.NewQuantity.Equal(decimal.NewFromInt(4)))
		assert.Equal(t, &orderID, m.ReferenceID)
		assert.True(t, stock.LastPurchasePrice.Equal(price))
		assert.Equal(t, supplierID, *stock.DefaultSupplierID)
		stocks.AssertExpectations(t)
		movements.AssertExpectations(t)
	})

	t.Run("negative result writes nothing", func(t *testing.T) {
		stocks := new(mockStockRepo)
		movements := new(mockMovementRepo)
		ledger := NewLedger(stocks, movements)

		stock := newTestStock(t)
		stocks.On("GetOrCreateForUpdate", ctx, stock.TenantID, stock.BranchID, stock.ItemID).Return(stock, nil)

		_, err := ledger.Apply(ctx, MovementRequest{
			TenantID:      stock.TenantID,
			BranchID:      stock.BranchID,
			ItemID:        stock.ItemID,
			Quantity:      decimal.NewFromInt(-1),
			MovementType:  MovementTypeReturn,
			ReferenceType: ReferenceTypePurchaseReturn,
		})

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		stocks.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		movements.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("version conflict aborts before movement", func(t *testing.T) {
		stocks := new(mockStockRepo)
		movements := new(mockMovementRepo)
		ledger := NewLedger(stocks, movements)

		stock := newTestStock(t)
		stocks.On("GetOrCreateForUpdate", ctx, stock.TenantID, stock.BranchID, stock.ItemID).Return(stock, nil)
		stocks.On("SaveWithLock", ctx, stock).Return(shared.ErrConcurrencyConflict)

		_, err := ledger.Apply(ctx, MovementRequest{
			TenantID:      stock.TenantID,
			BranchID:      stock.BranchID,
			ItemID:        stock.ItemID,
			Quantity:      decimal.NewFromInt(1),
			MovementType:  MovementTypePurchase,
			ReferenceType: ReferenceTypeManual,
		})

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		movements.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("invalid request never reaches repositories", func(t *testing.T) {
		stocks := new(mockStockRepo)
		movements := new(mockMovementRepo)
		ledger := NewLedger(stocks, movements)

		_, err := ledger.Apply(ctx, MovementRequest{
			TenantID:      uuid.New(),
			BranchID:      uuid.New(),
			ItemID:        uuid.New(),
			Quantity:      decimal.NewFromInt(1),
			MovementType:  MovementTypeSale,
			ReferenceType: ReferenceTypeManual,
		})

		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		stocks.AssertNotCalled(t, "GetOrCreateForUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestLedger_ReplayMatchesCache(t *testing.T) {
	ctx := context.Background()
	stocks := new(mockStockRepo)
	movements := new(mockMovementRepo)
	ledger := NewLedger(stocks, movements)

	stock := newTestStock(t)
	var recorded []*StockMovement
	stocks.On("GetOrCreateForUpdate", ctx, stock.TenantID, stock.BranchID, stock.ItemID).Return(stock, nil)
	stocks.On("SaveWithLock", ctx, stock).Return(nil)
	movements.On("Create", ctx, mock.AnythingOfType("*inventory.StockMovement")).
		Run(func(args mock.Arguments) {
			recorded = append(recorded, args.Get(1).(*StockMovement))
		}).Return(nil)

	steps := []struct {
		qty int64
		typ MovementType
		ref ReferenceType
	}{
		{10, MovementTypePurchase, ReferenceTypePurchaseOrder},
		{-3, MovementTypeReturn, ReferenceTypePurchaseReturn},
		{2, MovementTypeAdjustment, ReferenceTypeManual},
		{-4, MovementTypeSale, ReferenceTypeManual},
	}
	for _, s := range steps {
		_, err := ledger.Apply(ctx, MovementRequest{
			TenantID:      stock.TenantID,
			BranchID:      stock.BranchID,
			ItemID:        stock.ItemID,
			Quantity:      decimal.NewFromInt(s.qty),
			MovementType:  s.typ,
			ReferenceType: s.ref,
		})
		require.NoError(t, err)
	}

	sum := decimal.Zero
	for i, m := range recorded {
		sum = sum.Add(m.Quantity)
		assert.True(t, m.NewQuantity.Equal(sum), "movement %d snapshot", i)
	}
	assert.True(t, stock.Quantity.Equal(sum))
	assert.True(t, stock.Quantity.Equal(decimal.NewFromInt(5)))
}
