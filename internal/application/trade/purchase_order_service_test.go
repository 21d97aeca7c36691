package trade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/inventory"
	"github.com/repairdesk/backend/internal/domain/masterdata"
	"github.com/repairdesk/backend/internal/domain/shared"
	"github.com/repairdesk/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	testTenantID   = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testSupplierID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	testBranchID   = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	testItemA      = uuid.MustParse("44444444-4444-4444-4444-444444444444")
	testItemB      = uuid.MustParse("55555555-5555-5555-5555-555555555555")
	testLegacyB    = uuid.MustParse("66666666-6666-6666-6666-666666666666")
	testActorID    = uuid.MustParse("77777777-7777-7777-7777-777777777777")
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func activeSupplier() *masterdata.Supplier {
	return &masterdata.Supplier{ID: testSupplierID, TenantID: testTenantID, Code: "SUP-1", Name: "Parts Co", IsActive: true}
}

func activeBranch() *masterdata.Branch {
	return &masterdata.Branch{ID: testBranchID, TenantID: testTenantID, Code: "dt01", Name: "Downtown", IsActive: true}
}

// newTestOrder creates a pending order with one line of item A: qty 10 at 5.00
func newTestOrder(t *testing.T) *trade.PurchaseOrder {
	t.Helper()
	order, err := trade.NewPurchaseOrder(testTenantID, "PO-DT01-00001", testSupplierID, testBranchID, []trade.LineSpec{
		{ItemID: testItemA, Quantity: dec("10"), UnitPrice: dec("5"), TaxRate: decimal.Zero},
	})
	require.NoError(t, err)
	order.ClearDomainEvents()
	return order
}

func newOrderService(repos *testRepos) *PurchaseOrderService {
	return NewPurchaseOrderService(repos.scope(), repos.orders, repos.directory, zap.NewNop())
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %T: %v", err, err)
	assert.Equal(t, code, de.Code)
}

func TestPurchaseOrderService_Create(t *testing.T) {
	t.Run("computes totals and numbers the order per branch", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)
		ctx := context.Background()

		repos.directory.On("GetSupplier", mock.Anything, testTenantID, testSupplierID).Return(activeSupplier(), nil)
		repos.directory.On("GetBranch", mock.Anything, testTenantID, testBranchID).Return(activeBranch(), nil)
		repos.directory.On("ResolveItem", mock.Anything, testTenantID, masterdata.ItemRefByID(testItemA)).
			Return(&masterdata.Item{ID: testItemA, TenantID: testTenantID, SKU: "A", IsActive: true}, nil)
		repos.directory.On("ResolveItem", mock.Anything, testTenantID, masterdata.ItemRefByLegacyInventory(testLegacyB)).
			Return(&masterdata.Item{ID: testItemB, TenantID: testTenantID, SKU: "B", IsActive: true}, nil)
		repos.sequences.On("Next", mock.Anything, testTenantID, testBranchID, trade.PrefixPurchaseOrder).Return(int64(42), nil)
		repos.orders.On("Create", mock.Anything, mock.AnythingOfType("*trade.PurchaseOrder")).Return(nil)

		itemA := testItemA
		legacyB := testLegacyB
		result, err := service.Create(ctx, testTenantID, CreatePurchaseOrderRequest{
			SupplierID:         testSupplierID,
			BranchID:           testBranchID,
			SupplierInvoiceRef: "  INV-9 ",
			Lines: []OrderLineInput{
				{ItemID: &itemA, Quantity: dec("10"), UnitPrice: dec("5"), TaxRate: dec("10")},
				{InventoryID: &legacyB, Quantity: dec("2"), UnitPrice: dec("100"), TaxRate: decimal.Zero},
			},
			CreatedBy: &testActorID,
		})

		require.NoError(t, err)
		assert.Equal(t, "PO-DT01-00042", result.OrderNumber)
		assert.True(t, dec("250").Equal(result.TotalAmount))
		assert.True(t, dec("5").Equal(result.TaxAmount))
		assert.True(t, dec("255").Equal(result.GrandTotal))
		assert.Equal(t, string(trade.PurchaseOrderStatusPending), result.Status)
		assert.Equal(t, "INV-9", result.SupplierInvoiceRef)
		require.Len(t, result.Lines, 2)
		assert.Equal(t, testItemB, result.Lines[1].ItemID)
		assert.True(t, result.Lines[0].ReceivedQuantity.IsZero())
		assert.Equal(t, &testActorID, result.CreatedBy)
		repos.assertExpectations(t)
	})

	t.Run("rejects an inactive supplier before touching storage", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)

		supplier := activeSupplier()
		supplier.IsActive = false
		repos.directory.On("GetSupplier", mock.Anything, testTenantID, testSupplierID).Return(supplier, nil)

		itemA := testItemA
		result, err := service.Create(context.Background(), testTenantID, CreatePurchaseOrderRequest{
			SupplierID: testSupplierID,
			BranchID:   testBranchID,
			Lines:      []OrderLineInput{{ItemID: &itemA, Quantity: dec("1"), UnitPrice: dec("1")}},
		})

		assert.Nil(t, result)
		assertCode(t, err, shared.CodeSupplierInactive)
		repos.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		repos.sequences.AssertNotCalled(t, "Next", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("supplier of another tenant is not found", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)

		repos.directory.On("GetSupplier", mock.Anything, testTenantID, testSupplierID).Return(nil, shared.ErrNotFound)

		itemA := testItemA
		_, err := service.Create(context.Background(), testTenantID, CreatePurchaseOrderRequest{
			SupplierID: testSupplierID,
			BranchID:   testBranchID,
			Lines:      []OrderLineInput{{ItemID: &itemA, Quantity: dec("1"), UnitPrice: dec("1")}},
		})

		assertCode(t, err, shared.CodeNotFound)
	})

	t.Run("a line naming both item keys is invalid", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)

		repos.directory.On("GetSupplier", mock.Anything, testTenantID, testSupplierID).Return(activeSupplier(), nil)
		repos.directory.On("GetBranch", mock.Anything, testTenantID, testBranchID).Return(activeBranch(), nil)

		itemA := testItemA
		legacyB := testLegacyB
		_, err := service.Create(context.Background(), testTenantID, CreatePurchaseOrderRequest{
			SupplierID: testSupplierID,
			BranchID:   testBranchID,
			Lines:      []OrderLineInput{{ItemID: &itemA, InventoryID: &legacyB, Quantity: dec("1"), UnitPrice: dec("1")}},
		})

		assertCode(t, err, shared.CodeInvalidInput)
	})

	t.Run("storage failure surfaces as internal", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)

		repos.directory.On("GetSupplier", mock.Anything, testTenantID, testSupplierID).Return(activeSupplier(), nil)
		repos.directory.On("GetBranch", mock.Anything, testTenantID, testBranchID).Return(activeBranch(), nil)
		repos.directory.On("ResolveItem", mock.Anything, testTenantID, masterdata.ItemRefByID(testItemA)).
			Return(&masterdata.Item{ID: testItemA, TenantID: testTenantID, SKU: "A", IsActive: true}, nil)
		repos.sequences.On("Next", mock.Anything, testTenantID, testBranchID, trade.PrefixPurchaseOrder).
			Return(int64(0), errors.New("connection reset"))

		itemA := testItemA
		_, err := service.Create(context.Background(), testTenantID, CreatePurchaseOrderRequest{
			SupplierID: testSupplierID,
			BranchID:   testBranchID,
			Lines:      []OrderLineInput{{ItemID: &itemA, Quantity: dec("1"), UnitPrice: dec("1")}},
		})

		assertCode(t, err, shared.CodeInternal)
	})
}

// expectLedgerPosting wires the stock mocks so that ledger postings land on stock
func expectLedgerPosting(repos *testRepos, stock *inventory.BranchStock, itemID uuid.UUID) {
	repos.stocks.On("GetOrCreateForUpdate", mock.Anything, testTenantID, testBranchID, itemID).Return(stock, nil)
	repos.stocks.On("SaveWithLock", mock.Anything, stock).Return(nil)
	repos.movements.On("Create", mock.Anything, mock.AnythingOfType("*inventory.StockMovement")).Return(nil)
}

func TestPurchaseOrderService_Receive(t *testing.T) {
	t.Run("partial then full receive", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)
		ctx := context.Background()

		order := newTestOrder(t)
		lineID := order.Lines[0].ID
		stock, err := inventory.NewBranchStock(testTenantID, testBranchID, testItemA)
		require.NoError(t, err)

		repos.orders.On("FindByIDForUpdate", mock.Anything, testTenantID, order.ID).Return(order, nil)
		repos.orders.On("SaveWithLock", mock.Anything, order).Return(nil)
		expectLedgerPosting(repos, stock, testItemA)

		result, err := service.Receive(ctx, testTenantID, order.ID, ReceivePurchaseOrderRequest{
			Items:   []ReceiveItemInput{{LineID: lineID, Quantity: dec("4")}},
			ActorID: &testActorID,
		})
		require.NoError(t, err)
		assert.Equal(t, string(trade.PurchaseOrderStatusPartiallyReceived), result.Order.Status)
		assert.True(t, dec("4").Equal(result.Order.Lines[0].ReceivedQuantity))
		assert.False(t, result.IsFullyReceived)
		require.Len(t, result.ReceivedLines, 1)
		assert.True(t, dec("4").Equal(result.ReceivedLines[0].StockAfter))
		assert.True(t, dec("4").Equal(stock.Quantity))
		assert.True(t, dec("5").Equal(stock.LastPurchasePrice))
		require.NotNil(t, stock.DefaultSupplierID)
		assert.Equal(t, testSupplierID, *stock.DefaultSupplierID)

		movement := repos.movements.Calls[0].Arguments.Get(1).(*inventory.StockMovement)
		assert.Equal(t, inventory.MovementTypePurchase, movement.MovementType)
		assert.Equal(t, inventory.ReferenceTypePurchaseOrder, movement.ReferenceType)
		assert.Equal(t, order.ID, *movement.ReferenceID)
		assert.True(t, movement.PreviousQuantity.IsZero())
		assert.True(t, dec("4").Equal(movement.NewQuantity))

		result, err = service.Receive(ctx, testTenantID, order.ID, ReceivePurchaseOrderRequest{
			Items: []ReceiveItemInput{{LineID: lineID, Quantity: dec("6")}},
		})
		require.NoError(t, err)
		assert.Equal(t, string(trade.PurchaseOrderStatusReceived), result.Order.Status)
		assert.True(t, result.IsFullyReceived)
		assert.NotNil(t, result.Order.DeliveryDate)
		assert.True(t, dec("10").Equal(stock.Quantity))
		repos.movements.AssertNumberOfCalls(t, "Create", 2)
	})

	t.Run("over-receive leaves order and stock untouched", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)

		order := newTestOrder(t)
		order.Lines[0].ReceivedQuantity = dec("4")
		order.Status = trade.PurchaseOrderStatusPartiallyReceived
		version := order.Version

		repos.orders.On("FindByIDForUpdate", mock.Anything, testTenantID, order.ID).Return(order, nil)

		result, err := service.Receive(context.Background(), testTenantID, order.ID, ReceivePurchaseOrderRequest{
			Items: []ReceiveItemInput{{LineID: order.Lines[0].ID, Quantity: dec("7")}},
		})

		assert.Nil(t, result)
		assertCode(t, err, shared.CodeQuantityExceeded)
		assert.True(t, dec("4").Equal(order.Lines[0].ReceivedQuantity))
		assert.Equal(t, version, order.Version)
		repos.stocks.AssertNotCalled(t, "GetOrCreateForUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		repos.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("unknown line is not found", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)

		order := newTestOrder(t)
		repos.orders.On("FindByIDForUpdate", mock.Anything, testTenantID, order.ID).Return(order, nil)

		_, err := service.Receive(context.Background(), testTenantID, order.ID, ReceivePurchaseOrderRequest{
			Items: []ReceiveItemInput{{LineID: uuid.New(), Quantity: dec("1")}},
		})

		assertCode(t, err, shared.CodeNotFound)
	})

	t.Run("cancelled order cannot receive", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)

		order := newTestOrder(t)
		require.NoError(t, order.Cancel("supplier out of business"))
		repos.orders.On("FindByIDForUpdate", mock.Anything, testTenantID, order.ID).Return(order, nil)

		_, err := service.Receive(context.Background(), testTenantID, order.ID, ReceivePurchaseOrderRequest{
			Items: []ReceiveItemInput{{LineID: order.Lines[0].ID, Quantity: dec("1")}},
		})

		assertCode(t, err, shared.CodeInvalidState)
	})

	t.Run("stock version conflict aborts before the order is saved", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)

		order := newTestOrder(t)
		stock, err := inventory.NewBranchStock(testTenantID, testBranchID, testItemA)
		require.NoError(t, err)

		repos.orders.On("FindByIDForUpdate", mock.Anything, testTenantID, order.ID).Return(order, nil)
		repos.stocks.On("GetOrCreateForUpdate", mock.Anything, testTenantID, testBranchID, testItemA).Return(stock, nil)
		repos.stocks.On("SaveWithLock", mock.Anything, stock).Return(shared.ErrConcurrencyConflict)

		_, err = service.Receive(context.Background(), testTenantID, order.ID, ReceivePurchaseOrderRequest{
			Items: []ReceiveItemInput{{LineID: order.Lines[0].ID, Quantity: dec("3")}},
		})

		assertCode(t, err, shared.CodeConcurrencyConflict)
		repos.movements.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		repos.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("publishes order and stock events after commit", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)
		publisher := new(MockEventPublisher)
		service.SetEventPublisher(publisher)

		order := newTestOrder(t)
		stock, err := inventory.NewBranchStock(testTenantID, testBranchID, testItemA)
		require.NoError(t, err)

		repos.orders.On("FindByIDForUpdate", mock.Anything, testTenantID, order.ID).Return(order, nil)
		repos.orders.On("SaveWithLock", mock.Anything, order).Return(nil)
		expectLedgerPosting(repos, stock, testItemA)

		var published []shared.DomainEvent
		publisher.On("Publish", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				published = args.Get(1).([]shared.DomainEvent)
			}).
			Return(errors.New("bus closed"))

		_, err = service.Receive(context.Background(), testTenantID, order.ID, ReceivePurchaseOrderRequest{
			Items: []ReceiveItemInput{{LineID: order.Lines[0].ID, Quantity: dec("2")}},
		})

		require.NoError(t, err, "a publish failure must not fail a committed receive")
		types := make([]string, len(published))
		for i, e := range published {
			types[i] = e.EventType()
		}
		assert.Contains(t, types, trade.EventTypePurchaseOrderReceived)
		assert.Contains(t, types, inventory.EventTypeStockMoved)
		assert.Empty(t, order.GetDomainEvents())
	})
}

func TestPurchaseOrderService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name     string
		from     trade.PurchaseOrderStatus
		target   string
		wantCode string
	}{
		{"received to completed", trade.PurchaseOrderStatusReceived, "COMPLETED", ""},
		{"lowercase target accepted", trade.PurchaseOrderStatusReceived, "completed", ""},
		{"received back to pending refused", trade.PurchaseOrderStatusReceived, "PENDING", shared.CodeInvalidState},
		{"pending straight to completed refused", trade.PurchaseOrderStatusPending, "COMPLETED", shared.CodeInvalidState},
		{"pending to received without goods refused", trade.PurchaseOrderStatusPending, "RECEIVED", shared.CodeInvalidState},
		{"pending to partially received without goods refused", trade.PurchaseOrderStatusPending, "PARTIALLY_RECEIVED", shared.CodeInvalidState},
		{"completed is terminal", trade.PurchaseOrderStatusCompleted, "CANCELLED", shared.CodeInvalidState},
		{"unknown status", trade.PurchaseOrderStatusPending, "SHIPPED", shared.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos := newTestRepos()
			service := newOrderService(repos)

			order := newTestOrder(t)
			order.Status = tt.from
			repos.orders.On("FindByIDForUpdate", mock.Anything, testTenantID, order.ID).Return(order, nil)
			repos.orders.On("SaveWithLock", mock.Anything, order).Return(nil).Maybe()

			result, err := service.UpdateStatus(context.Background(), testTenantID, order.ID, UpdateStatusRequest{Status: tt.target})

			if tt.wantCode != "" {
				assertCode(t, err, tt.wantCode)
				repos.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, string(trade.PurchaseOrderStatusCompleted), result.Status)
			assert.NotNil(t, result.CompletedAt)
		})
	}
}

func TestPurchaseOrderService_Update(t *testing.T) {
	t.Run("header patch keeps lines", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)

		order := newTestOrder(t)
		repos.orders.On("FindByIDForUpdate", mock.Anything, testTenantID, order.ID).Return(order, nil)
		repos.orders.On("SaveWithLock", mock.Anything, order).Return(nil)

		notes := "call before delivery"
		expected := time.Now().Add(72 * time.Hour)
		result, err := service.Update(context.Background(), testTenantID, order.ID, UpdatePurchaseOrderRequest{
			Notes:                &notes,
			ExpectedDeliveryDate: &expected,
		})

		require.NoError(t, err)
		assert.Equal(t, notes, result.Notes)
		require.NotNil(t, result.ExpectedDeliveryDate)
		assert.Len(t, result.Lines, 1)
		assert.Equal(t, 2, result.Version)
	})

	t.Run("line replacement refused after receiving", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)

		order := newTestOrder(t)
		order.Lines[0].ReceivedQuantity = dec("1")
		order.Status = trade.PurchaseOrderStatusPartiallyReceived

		repos.directory.On("ResolveItem", mock.Anything, testTenantID, masterdata.ItemRefByID(testItemB)).
			Return(&masterdata.Item{ID: testItemB, TenantID: testTenantID, SKU: "B", IsActive: true}, nil)
		repos.orders.On("FindByIDForUpdate", mock.Anything, testTenantID, order.ID).Return(order, nil)

		itemB := testItemB
		_, err := service.Update(context.Background(), testTenantID, order.ID, UpdatePurchaseOrderRequest{
			Lines: []OrderLineInput{{ItemID: &itemB, Quantity: dec("3"), UnitPrice: dec("8")}},
		})

		assertCode(t, err, shared.CodeInvalidState)
		assert.Equal(t, testItemA, order.Lines[0].ItemID)
		repos.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestPurchaseOrderService_Delete(t *testing.T) {
	t.Run("deletes an untouched order", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)

		order := newTestOrder(t)
		repos.orders.On("FindByIDForUpdate", mock.Anything, testTenantID, order.ID).Return(order, nil)
		repos.payments.On("CountByOrder", mock.Anything, testTenantID, order.ID).Return(int64(0), nil)
		repos.orders.On("DeleteForTenant", mock.Anything, testTenantID, order.ID).Return(nil)

		require.NoError(t, service.Delete(context.Background(), testTenantID, order.ID))
		repos.assertExpectations(t)
	})

	t.Run("refuses when payments exist", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)

		order := newTestOrder(t)
		repos.orders.On("FindByIDForUpdate", mock.Anything, testTenantID, order.ID).Return(order, nil)
		repos.payments.On("CountByOrder", mock.Anything, testTenantID, order.ID).Return(int64(1), nil)

		err := service.Delete(context.Background(), testTenantID, order.ID)

		assertCode(t, err, shared.CodeInvalidState)
		repos.orders.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("refuses when goods were received", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)

		order := newTestOrder(t)
		order.Lines[0].ReceivedQuantity = dec("2")
		repos.orders.On("FindByIDForUpdate", mock.Anything, testTenantID, order.ID).Return(order, nil)
		repos.payments.On("CountByOrder", mock.Anything, testTenantID, order.ID).Return(int64(0), nil)

		assertCode(t, service.Delete(context.Background(), testTenantID, order.ID), shared.CodeInvalidState)
	})
}

func TestPurchaseOrderService_RecordPayment(t *testing.T) {
	t.Run("records payment and raises paid amount", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)

		order := newTestOrder(t)
		methodID := uuid.New()
		repos.directory.On("GetPaymentMethod", mock.Anything, testTenantID, methodID).
			Return(&masterdata.PaymentMethod{ID: methodID, TenantID: testTenantID, Name: "Bank transfer", IsActive: true}, nil)
		repos.orders.On("FindByIDForUpdate", mock.Anything, testTenantID, order.ID).Return(order, nil)
		repos.payments.On("Create", mock.Anything, mock.AnythingOfType("*trade.PurchasePayment")).Return(nil)
		repos.orders.On("SaveWithLock", mock.Anything, order).Return(nil)

		result, err := service.RecordPayment(context.Background(), testTenantID, order.ID, RecordPaymentRequest{
			Amount:          dec("20"),
			PaymentMethodID: &methodID,
			ReferenceNumber: "TRX-7",
			ActorID:         &testActorID,
		})

		require.NoError(t, err)
		assert.True(t, dec("20").Equal(result.Order.PaidAmount))
		assert.True(t, dec("30").Equal(result.Order.OutstandingAmount))
		assert.Equal(t, "TRX-7", result.Payment.ReferenceNumber)
		assert.Equal(t, &methodID, result.Payment.PaymentMethodID)
		repos.assertExpectations(t)
	})

	t.Run("payment beyond grand total is refused", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)

		order := newTestOrder(t)
		repos.orders.On("FindByIDForUpdate", mock.Anything, testTenantID, order.ID).Return(order, nil)

		_, err := service.RecordPayment(context.Background(), testTenantID, order.ID, RecordPaymentRequest{Amount: dec("50.01")})

		assertCode(t, err, shared.CodePaymentExceeded)
		repos.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown payment method", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)

		methodID := uuid.New()
		repos.directory.On("GetPaymentMethod", mock.Anything, testTenantID, methodID).Return(nil, shared.ErrNotFound)

		_, err := service.RecordPayment(context.Background(), testTenantID, uuid.New(), RecordPaymentRequest{
			Amount:          dec("1"),
			PaymentMethodID: &methodID,
		})

		assertCode(t, err, shared.CodeNotFound)
	})

	t.Run("zero amount is invalid", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)

		_, err := service.RecordPayment(context.Background(), testTenantID, uuid.New(), RecordPaymentRequest{Amount: decimal.Zero})

		assertCode(t, err, shared.CodeInvalidInput)
	})
}

func TestPurchaseOrderService_List(t *testing.T) {
	t.Run("passes filters through", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)

		order := newTestOrder(t)
		matchFilter := mock.MatchedBy(func(f shared.Filter) bool {
			return f.Filters["status"] == "PENDING" &&
				f.Filters["supplier_id"] == testSupplierID &&
				f.Page == 1 && f.PageSize == 20 && f.OrderBy == "created_at"
		})
		repos.orders.On("FindAllForTenant", mock.Anything, testTenantID, matchFilter).Return([]trade.PurchaseOrder{*order}, nil)
		repos.orders.On("CountForTenant", mock.Anything, testTenantID, matchFilter).Return(int64(1), nil)

		supplierID := testSupplierID
		page, err := service.List(context.Background(), testTenantID, PurchaseOrderListFilter{
			SupplierID: &supplierID,
			Status:     "pending",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		require.Len(t, page.Items, 1)
		assert.Equal(t, order.OrderNumber, page.Items[0].OrderNumber)
		assert.Equal(t, 1, page.Items[0].LineCount)
		repos.assertExpectations(t)
	})

	t.Run("unknown status is invalid", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)

		_, err := service.List(context.Background(), testTenantID, PurchaseOrderListFilter{Status: "SHIPPED"})

		assertCode(t, err, shared.CodeInvalidInput)
	})
}

func TestPurchaseOrderService_Summaries(t *testing.T) {
	t.Run("status summary lists every status", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)

		repos.orders.On("StatusSummary", mock.Anything, testTenantID).Return([]trade.StatusSummary{
			{Status: trade.PurchaseOrderStatusPending, Count: 2, GrandTotal: dec("110")},
			{Status: trade.PurchaseOrderStatusReceived, Count: 1, GrandTotal: dec("40")},
		}, nil)

		summary, err := service.StatusSummary(context.Background(), testTenantID)

		require.NoError(t, err)
		assert.Equal(t, int64(3), summary.Total)
		require.Len(t, summary.Statuses, len(trade.AllPurchaseOrderStatuses()))
		for _, s := range summary.Statuses {
			switch s.Status {
			case "PENDING":
				assert.Equal(t, int64(2), s.Count)
			case "RECEIVED":
				assert.True(t, dec("40").Equal(s.GrandTotal))
			default:
				assert.Zero(t, s.Count)
			}
		}
	})

	t.Run("supplier outstanding", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)

		supplierID := testSupplierID
		repos.directory.On("GetSupplier", mock.Anything, testTenantID, testSupplierID).Return(activeSupplier(), nil)
		repos.orders.On("SupplierBalances", mock.Anything, testTenantID, &supplierID).Return([]trade.SupplierBalance{
			{SupplierID: testSupplierID, OrderCount: 2, GrandTotal: dec("110"), PaidAmount: dec("20"), Outstanding: dec("90")},
		}, nil)

		result, err := service.SupplierOutstanding(context.Background(), testTenantID, testSupplierID)

		require.NoError(t, err)
		assert.True(t, dec("90").Equal(result.Outstanding))
	})

	t.Run("supplier without orders owes nothing", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)

		supplierID := testSupplierID
		repos.directory.On("GetSupplier", mock.Anything, testTenantID, testSupplierID).Return(activeSupplier(), nil)
		repos.orders.On("SupplierBalances", mock.Anything, testTenantID, &supplierID).Return([]trade.SupplierBalance{}, nil)

		result, err := service.SupplierOutstanding(context.Background(), testTenantID, testSupplierID)

		require.NoError(t, err)
		assert.True(t, result.Outstanding.IsZero())
	})

	t.Run("supplier summary for all suppliers", func(t *testing.T) {
		repos := newTestRepos()
		service := newOrderService(repos)

		repos.orders.On("SupplierBalances", mock.Anything, testTenantID, (*uuid.UUID)(nil)).Return([]trade.SupplierBalance{
			{SupplierID: testSupplierID, OrderCount: 3, GrandTotal: dec("300"), PaidAmount: dec("300"), Outstanding: decimal.Zero},
		}, nil)

		result, err := service.SupplierSummary(context.Background(), testTenantID, nil)

		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, int64(3), result[0].OrderCount)
		assert.True(t, result[0].Outstanding.IsZero())
	})
}
