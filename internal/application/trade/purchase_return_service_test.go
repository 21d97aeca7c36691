package trade

import (
	"context"
	"testing"

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

func newReturnService(repos *testRepos) *PurchaseReturnService {
	return NewPurchaseReturnService(repos.scope(), repos.returns, repos.directory, zap.NewNop())
}

// receivedOrder is newTestOrder fully received, with paid already paid
func receivedOrder(t *testing.T, paid string) *trade.PurchaseOrder {
	t.Helper()
	order := newTestOrder(t)
	order.Lines[0].ReceivedQuantity = order.Lines[0].Quantity
	order.Status = trade.PurchaseOrderStatusReceived
	order.PaidAmount = dec(paid)
	return order
}

func pendingReturn(t *testing.T, order *trade.PurchaseOrder, qty string, returnType trade.ReturnType) *trade.PurchaseReturn {
	t.Helper()
	ret, err := trade.NewPurchaseReturn(order, trade.ReturnRequest{
		LineID:   order.Lines[0].ID,
		Quantity: dec(qty),
		Reason:   trade.ReturnReasonDefective,
		Type:     returnType,
	}, decimal.Zero, "PR-DT01-00001")
	require.NoError(t, err)
	ret.ClearDomainEvents()
	return ret
}

func confirmedRefundReturn(t *testing.T, order *trade.PurchaseOrder, qty string) *trade.PurchaseReturn {
	t.Helper()
	ret := pendingReturn(t, order, qty, trade.ReturnTypeRefund)
	require.NoError(t, ret.Confirm(&testActorID, nil))
	require.NoError(t, order.RecordReturn(ret.LineID, ret.ReturnQuantity))
	ret.ClearDomainEvents()
	return ret
}

func TestPurchaseReturnService_Create(t *testing.T) {
	t.Run("creates a pending return with a branch number", func(t *testing.T) {
		repos := newTestRepos()
		service := newReturnService(repos)

		order := receivedOrder(t, "50")
		lineID := order.Lines[0].ID
		repos.orders.On("FindByLineIDForUpdate", mock.Anything, testTenantID, lineID).Return(order, nil)
		repos.returns.On("SumActiveQuantityByLine", mock.Anything, testTenantID, lineID).Return(dec("2"), nil)
		repos.directory.On("GetBranch", mock.Anything, testTenantID, testBranchID).Return(activeBranch(), nil)
		repos.sequences.On("Next", mock.Anything, testTenantID, testBranchID, trade.PrefixPurchaseReturn).Return(int64(7), nil)
		repos.returns.On("Create", mock.Anything, mock.AnythingOfType("*trade.PurchaseReturn")).Return(nil)

		result, err := service.Create(context.Background(), testTenantID, CreatePurchaseReturnRequest{
			LineID:     lineID,
			Quantity:   dec("3"),
			Reason:     "defective",
			ReturnType: "REFUND",
			CreatedBy:  &testActorID,
		})

		require.NoError(t, err)
		assert.Equal(t, "PR-DT01-00007", result.ReturnNumber)
		assert.Equal(t, string(trade.ReturnStatusPending), result.Status)
		assert.True(t, dec("15").Equal(result.RefundAmount))
		assert.Equal(t, order.ID, result.OrderID)
		assert.Equal(t, testItemA, result.ItemID)
		assert.False(t, result.StockReversed)
		repos.assertExpectations(t)
	})

	t.Run("refund larger than paid amount is refused", func(t *testing.T) {
		repos := newTestRepos()
		service := newReturnService(repos)

		order, err := trade.NewPurchaseOrder(testTenantID, "PO-DT01-00002", testSupplierID, testBranchID, []trade.LineSpec{
			{ItemID: testItemA, Quantity: dec("10"), UnitPrice: dec("50"), TaxRate: decimal.Zero},
		})
		require.NoError(t, err)
		order.Lines[0].ReceivedQuantity = dec("10")
		order.Status = trade.PurchaseOrderStatusReceived
		order.PaidAmount = dec("100")
		lineID := order.Lines[0].ID

		repos.orders.On("FindByLineIDForUpdate", mock.Anything, testTenantID, lineID).Return(order, nil)
		repos.returns.On("SumActiveQuantityByLine", mock.Anything, testTenantID, lineID).Return(decimal.Zero, nil)
		repos.directory.On("GetBranch", mock.Anything, testTenantID, testBranchID).Return(activeBranch(), nil)
		repos.sequences.On("Next", mock.Anything, testTenantID, testBranchID, trade.PrefixPurchaseReturn).Return(int64(1), nil)

		_, err = service.Create(context.Background(), testTenantID, CreatePurchaseReturnRequest{
			LineID:     lineID,
			Quantity:   dec("3"),
			Reason:     string(trade.ReturnReasonDefective),
			ReturnType: string(trade.ReturnTypeRefund),
		})

		assertCode(t, err, shared.CodeInsufficientPaid)
		repos.returns.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("quantity beyond what is still returnable", func(t *testing.T) {
		repos := newTestRepos()
		service := newReturnService(repos)

		order := receivedOrder(t, "50")
		lineID := order.Lines[0].ID
		repos.orders.On("FindByLineIDForUpdate", mock.Anything, testTenantID, lineID).Return(order, nil)
		repos.returns.On("SumActiveQuantityByLine", mock.Anything, testTenantID, lineID).Return(dec("8"), nil)
		repos.directory.On("GetBranch", mock.Anything, testTenantID, testBranchID).Return(activeBranch(), nil)
		repos.sequences.On("Next", mock.Anything, testTenantID, testBranchID, trade.PrefixPurchaseReturn).Return(int64(1), nil)

		_, err := service.Create(context.Background(), testTenantID, CreatePurchaseReturnRequest{
			LineID:     lineID,
			Quantity:   dec("3"),
			Reason:     string(trade.ReturnReasonExcessQuantity),
			ReturnType: string(trade.ReturnTypeReplacement),
		})

		assertCode(t, err, shared.CodeQuantityExceeded)
	})

	t.Run("unknown line", func(t *testing.T) {
		repos := newTestRepos()
		service := newReturnService(repos)

		lineID := uuid.New()
		repos.orders.On("FindByLineIDForUpdate", mock.Anything, testTenantID, lineID).Return(nil, shared.ErrNotFound)

		_, err := service.Create(context.Background(), testTenantID, CreatePurchaseReturnRequest{
			LineID:     lineID,
			Quantity:   dec("1"),
			Reason:     string(trade.ReturnReasonOther),
			ReturnType: string(trade.ReturnTypeRefund),
		})

		assertCode(t, err, shared.CodeNotFound)
	})
}

func TestPurchaseReturnService_Confirm(t *testing.T) {
	t.Run("replacement return reverses stock and raises a new order", func(t *testing.T) {
		repos := newTestRepos()
		service := newReturnService(repos)

		order := receivedOrder(t, "0")
		ret := pendingReturn(t, order, "3", trade.ReturnTypeReplacement)
		stock, err := inventory.NewBranchStock(testTenantID, testBranchID, testItemA)
		require.NoError(t, err)
		stock.Quantity = dec("10")

		repos.returns.On("FindByIDForUpdate", mock.Anything, testTenantID, ret.ID).Return(ret, nil)
		repos.orders.On("FindByIDForUpdate", mock.Anything, testTenantID, order.ID).Return(order, nil)
		expectLedgerPosting(repos, stock, testItemA)
		repos.directory.On("GetBranch", mock.Anything, testTenantID, testBranchID).Return(activeBranch(), nil)
		repos.sequences.On("Next", mock.Anything, testTenantID, testBranchID, trade.PrefixPurchaseOrder).Return(int64(12), nil)
		repos.orders.On("Create", mock.Anything, mock.AnythingOfType("*trade.PurchaseOrder")).Return(nil)
		repos.orders.On("SaveWithLock", mock.Anything, order).Return(nil)
		repos.returns.On("SaveWithLock", mock.Anything, ret).Return(nil)

		result, err := service.Confirm(context.Background(), testTenantID, ret.ID, &testActorID)

		require.NoError(t, err)
		assert.True(t, dec("7").Equal(stock.Quantity))
		movement := repos.movements.Calls[0].Arguments.Get(1).(*inventory.StockMovement)
		assert.Equal(t, inventory.MovementTypeReturn, movement.MovementType)
		assert.True(t, dec("-3").Equal(movement.Quantity))
		assert.Equal(t, ret.ID, *movement.ReferenceID)

		require.NotNil(t, result.ReplacementOrder)
		assert.Equal(t, "PO-DT01-00012", result.ReplacementOrder.OrderNumber)
		assert.Equal(t, string(trade.PurchaseOrderStatusPending), result.ReplacementOrder.Status)
		require.Len(t, result.ReplacementOrder.Lines, 1)
		assert.True(t, dec("3").Equal(result.ReplacementOrder.Lines[0].Quantity))
		assert.True(t, dec("5").Equal(result.ReplacementOrder.Lines[0].UnitPrice))
		assert.Equal(t, &ret.ID, result.ReplacementOrder.SourceReturnID)

		assert.True(t, dec("3").Equal(order.Lines[0].ReturnedQuantity))
		assert.Equal(t, string(trade.ReturnStatusConfirmed), result.Return.Status)
		assert.True(t, result.Return.StockReversed)
		assert.Equal(t, &result.ReplacementOrder.ID, result.Return.ReplacementOrderID)
		assert.Equal(t, &testActorID, result.Return.ConfirmedBy)
		repos.assertExpectations(t)
	})

	t.Run("refund return creates no order", func(t *testing.T) {
		repos := newTestRepos()
		service := newReturnService(repos)

		order := receivedOrder(t, "50")
		ret := pendingReturn(t, order, "2", trade.ReturnTypeRefund)
		stock, err := inventory.NewBranchStock(testTenantID, testBranchID, testItemA)
		require.NoError(t, err)
		stock.Quantity = dec("10")

		repos.returns.On("FindByIDForUpdate", mock.Anything, testTenantID, ret.ID).Return(ret, nil)
		repos.orders.On("FindByIDForUpdate", mock.Anything, testTenantID, order.ID).Return(order, nil)
		expectLedgerPosting(repos, stock, testItemA)
		repos.orders.On("SaveWithLock", mock.Anything, order).Return(nil)
		repos.returns.On("SaveWithLock", mock.Anything, ret).Return(nil)

		result, err := service.Confirm(context.Background(), testTenantID, ret.ID, nil)

		require.NoError(t, err)
		assert.Nil(t, result.ReplacementOrder)
		assert.Nil(t, result.Return.ReplacementOrderID)
		assert.True(t, dec("8").Equal(stock.Quantity))
		repos.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("stock that would go negative aborts the confirm", func(t *testing.T) {
		repos := newTestRepos()
		service := newReturnService(repos)

		order := receivedOrder(t, "50")
		ret := pendingReturn(t, order, "3", trade.ReturnTypeRefund)
		stock, err := inventory.NewBranchStock(testTenantID, testBranchID, testItemA)
		require.NoError(t, err)
		stock.Quantity = dec("1")

		repos.returns.On("FindByIDForUpdate", mock.Anything, testTenantID, ret.ID).Return(ret, nil)
		repos.orders.On("FindByIDForUpdate", mock.Anything, testTenantID, order.ID).Return(order, nil)
		repos.stocks.On("GetOrCreateForUpdate", mock.Anything, testTenantID, testBranchID, testItemA).Return(stock, nil)

		_, err = service.Confirm(context.Background(), testTenantID, ret.ID, nil)

		assertCode(t, err, shared.CodeInsufficientStock)
		assert.True(t, dec("1").Equal(stock.Quantity))
		assert.Equal(t, trade.ReturnStatusPending, ret.Status)
		assert.True(t, order.Lines[0].ReturnedQuantity.IsZero())
		repos.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		repos.returns.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("finished returns are refused without side effects", func(t *testing.T) {
		tests := []struct {
			name     string
			finish   func(*trade.PurchaseReturn) error
			wantCode string
		}{
			{"already confirmed", func(r *trade.PurchaseReturn) error { return r.Confirm(nil, nil) }, shared.CodeAlreadyProcessed},
			{"already rejected", func(r *trade.PurchaseReturn) error { return r.Reject("wrong part") }, shared.CodeInvalidState},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repos := newTestRepos()
				service := newReturnService(repos)

				ret := pendingReturn(t, receivedOrder(t, "50"), "1", trade.ReturnTypeRefund)
				require.NoError(t, tt.finish(ret))
				repos.returns.On("FindByIDForUpdate", mock.Anything, testTenantID, ret.ID).Return(ret, nil)

				_, err := service.Confirm(context.Background(), testTenantID, ret.ID, nil)

				assertCode(t, err, tt.wantCode)
				repos.stocks.AssertNotCalled(t, "GetOrCreateForUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				repos.returns.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
			})
		}
	})
}

func TestPurchaseReturnService_Reject(t *testing.T) {
	t.Run("rejects and records the reason", func(t *testing.T) {
		repos := newTestRepos()
		service := newReturnService(repos)

		ret := pendingReturn(t, receivedOrder(t, "50"), "1", trade.ReturnTypeRefund)
		repos.returns.On("FindByIDForUpdate", mock.Anything, testTenantID, ret.ID).Return(ret, nil)
		repos.returns.On("SaveWithLock", mock.Anything, ret).Return(nil)

		result, err := service.Reject(context.Background(), testTenantID, ret.ID, RejectPurchaseReturnRequest{Reason: "supplier disputes damage"})

		require.NoError(t, err)
		assert.Equal(t, string(trade.ReturnStatusRejected), result.Status)
		assert.Contains(t, result.Notes, "Rejected: supplier disputes damage")
		assert.NotNil(t, result.RejectedAt)
	})

	t.Run("rejecting twice is already processed", func(t *testing.T) {
		repos := newTestRepos()
		service := newReturnService(repos)

		ret := pendingReturn(t, receivedOrder(t, "50"), "1", trade.ReturnTypeRefund)
		require.NoError(t, ret.Reject(""))
		repos.returns.On("FindByIDForUpdate", mock.Anything, testTenantID, ret.ID).Return(ret, nil)

		_, err := service.Reject(context.Background(), testTenantID, ret.ID, RejectPurchaseReturnRequest{})

		assertCode(t, err, shared.CodeAlreadyProcessed)
		repos.returns.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("confirmed return cannot be rejected", func(t *testing.T) {
		repos := newTestRepos()
		service := newReturnService(repos)

		ret := pendingReturn(t, receivedOrder(t, "50"), "1", trade.ReturnTypeRefund)
		require.NoError(t, ret.Confirm(nil, nil))
		repos.returns.On("FindByIDForUpdate", mock.Anything, testTenantID, ret.ID).Return(ret, nil)

		_, err := service.Reject(context.Background(), testTenantID, ret.ID, RejectPurchaseReturnRequest{})

		assertCode(t, err, shared.CodeInvalidState)
	})
}

func TestPurchaseReturnService_ProcessRefund(t *testing.T) {
	t.Run("books the refund once and lowers the paid amount", func(t *testing.T) {
		repos := newTestRepos()
		service := newReturnService(repos)

		order := receivedOrder(t, "50")
		ret := confirmedRefundReturn(t, order, "3")
		methodID := uuid.New()

		repos.directory.On("GetPaymentMethod", mock.Anything, testTenantID, methodID).
			Return(&masterdata.PaymentMethod{ID: methodID, TenantID: testTenantID, Name: "Cash", IsActive: true}, nil)
		repos.returns.On("FindByIDForUpdate", mock.Anything, testTenantID, ret.ID).Return(ret, nil)
		repos.orders.On("FindByIDForUpdate", mock.Anything, testTenantID, order.ID).Return(order, nil)
		repos.refunds.On("Create", mock.Anything, mock.AnythingOfType("*trade.RefundTransaction")).Return(nil)
		repos.orders.On("SaveWithLock", mock.Anything, order).Return(nil)
		repos.returns.On("SaveWithLock", mock.Anything, ret).Return(nil)

		result, err := service.ProcessRefund(context.Background(), testTenantID, ret.ID, ProcessRefundRequest{
			PaymentMethodID: &methodID,
			ReferenceNumber: "CN-100",
			ActorID:         &testActorID,
		})

		require.NoError(t, err)
		assert.True(t, dec("15").Equal(result.RefundTransaction.Amount))
		assert.Equal(t, "CN-100", result.RefundTransaction.ReferenceNumber)
		assert.True(t, result.Return.RefundProcessed)
		assert.NotNil(t, result.Return.RefundedAt)
		assert.True(t, dec("35").Equal(order.PaidAmount))
		repos.assertExpectations(t)

		// second attempt
		_, err = service.ProcessRefund(context.Background(), testTenantID, ret.ID, ProcessRefundRequest{})
		assertCode(t, err, shared.CodeAlreadyProcessed)
		repos.refunds.AssertNumberOfCalls(t, "Create", 1)
		assert.True(t, dec("35").Equal(order.PaidAmount))
	})

	t.Run("replacement return is not refundable", func(t *testing.T) {
		repos := newTestRepos()
		service := newReturnService(repos)

		ret := pendingReturn(t, receivedOrder(t, "50"), "1", trade.ReturnTypeReplacement)
		replacementID := uuid.New()
		require.NoError(t, ret.Confirm(nil, &replacementID))
		repos.returns.On("FindByIDForUpdate", mock.Anything, testTenantID, ret.ID).Return(ret, nil)

		_, err := service.ProcessRefund(context.Background(), testTenantID, ret.ID, ProcessRefundRequest{})

		assertCode(t, err, shared.CodeInvalidState)
	})

	t.Run("pending return must be confirmed first", func(t *testing.T) {
		repos := newTestRepos()
		service := newReturnService(repos)

		ret := pendingReturn(t, receivedOrder(t, "50"), "1", trade.ReturnTypeRefund)
		repos.returns.On("FindByIDForUpdate", mock.Anything, testTenantID, ret.ID).Return(ret, nil)

		_, err := service.ProcessRefund(context.Background(), testTenantID, ret.ID, ProcessRefundRequest{})

		assertCode(t, err, shared.CodeInvalidState)
		repos.orders.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("refund above what is still paid", func(t *testing.T) {
		repos := newTestRepos()
		service := newReturnService(repos)

		order := receivedOrder(t, "50")
		ret := confirmedRefundReturn(t, order, "3")
		order.PaidAmount = dec("10")

		repos.returns.On("FindByIDForUpdate", mock.Anything, testTenantID, ret.ID).Return(ret, nil)
		repos.orders.On("FindByIDForUpdate", mock.Anything, testTenantID, order.ID).Return(order, nil)

		_, err := service.ProcessRefund(context.Background(), testTenantID, ret.ID, ProcessRefundRequest{})

		assertCode(t, err, shared.CodeInsufficientPaid)
		assert.False(t, ret.RefundProcessed)
		repos.refunds.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("inactive payment method", func(t *testing.T) {
		repos := newTestRepos()
		service := newReturnService(repos)

		methodID := uuid.New()
		repos.directory.On("GetPaymentMethod", mock.Anything, testTenantID, methodID).
			Return(&masterdata.PaymentMethod{ID: methodID, TenantID: testTenantID, Name: "Cheque"}, nil)

		_, err := service.ProcessRefund(context.Background(), testTenantID, uuid.New(), ProcessRefundRequest{PaymentMethodID: &methodID})

		assertCode(t, err, shared.CodeInvalidState)
	})
}

func TestPurchaseReturnService_List(t *testing.T) {
	repos := newTestRepos()
	service := newReturnService(repos)

	ret := pendingReturn(t, receivedOrder(t, "50"), "1", trade.ReturnTypeRefund)
	matchFilter := mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["order_id"] == ret.OrderID && f.Filters["return_type"] == "REFUND"
	})
	repos.returns.On("FindAllForTenant", mock.Anything, testTenantID, matchFilter).Return([]trade.PurchaseReturn{*ret}, nil)
	repos.returns.On("CountForTenant", mock.Anything, testTenantID, matchFilter).Return(int64(1), nil)

	orderID := ret.OrderID
	page, err := service.List(context.Background(), testTenantID, PurchaseReturnListFilter{OrderID: &orderID, ReturnType: "refund"})

	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, ret.ReturnNumber, page.Items[0].ReturnNumber)

	_, err = service.List(context.Background(), testTenantID, PurchaseReturnListFilter{Status: "LOST"})
	assertCode(t, err, shared.CodeInvalidInput)
}
