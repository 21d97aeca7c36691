package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	appinv "github.com/repairdesk/backend/internal/application/inventory"
	apptrade "github.com/repairdesk/backend/internal/application/trade"
	"github.com/repairdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// receivedAndPaid creates an order, receives 4 of its 10 units and pays 20
func receivedAndPaid(t *testing.T, env *testEnv) apptrade.PurchaseOrderResponse {
	t.Helper()
	order := env.createOrder(t)
	base := "/api/v1/purchase-orders/" + order.ID.String()
	w, _ := env.do(t, http.MethodPost, base+"/receive", gin.H{
		"items": []gin.H{{"line_id": order.Lines[0].ID, "quantity": "4"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = env.do(t, http.MethodPost, base+"/payments", gin.H{"amount": "20"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return order
}

// createReturn posts a DEFECTIVE return and reports the status, the error code
// (empty on success) and the decoded return
func (e *testEnv) createReturn(t *testing.T, lineID any, quantity, returnType string) (int, string, apptrade.PurchaseReturnResponse) {
	t.Helper()
	w, resp := e.do(t, http.MethodPost, "/api/v1/purchase-returns", gin.H{
		"line_id":     lineID,
		"quantity":    quantity,
		"reason":      "DEFECTIVE",
		"return_type": returnType,
	})
	var ret apptrade.PurchaseReturnResponse
	code := ""
	if resp.Error != nil {
		code = resp.Error.Code
	} else {
		data(t, resp, &ret)
	}
	return w.Code, code, ret
}

func TestPurchaseReturnHandler_RefundFlow(t *testing.T) {
	env := newTestEnv(t)
	order := receivedAndPaid(t, env)

	status, _, ret := env.createReturn(t, order.Lines[0].ID, "2", "REFUND")
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "PENDING", ret.Status)
	assert.True(t, ret.RefundAmount.Equal(decimal.NewFromInt(10)))
	base := "/api/v1/purchase-returns/" + ret.ID.String()

	w, resp := env.do(t, http.MethodPost, base+"/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var confirmed apptrade.ConfirmReturnResponse
	data(t, resp, &confirmed)
	assert.True(t, confirmed.Return.StockReversed)
	assert.Nil(t, confirmed.ReplacementOrder)
	require.NotNil(t, confirmed.Return.ConfirmedBy)
	assert.Equal(t, env.userID, *confirmed.Return.ConfirmedBy)

	w, resp = env.do(t, http.MethodGet, "/api/v1/stock?branch_id="+env.branch.ID.String()+"&item_id="+env.item.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stock appinv.BranchStockResponse
	data(t, resp, &stock)
	assert.True(t, stock.Quantity.Equal(decimal.NewFromInt(2)), stock.Quantity.String())

	w, resp = env.do(t, http.MethodPost, base+"/refund", gin.H{"reference_number": "RF-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var refunded apptrade.ProcessRefundResponse
	data(t, resp, &refunded)
	assert.True(t, refunded.Return.RefundProcessed)
	assert.True(t, refunded.RefundTransaction.Amount.Equal(decimal.NewFromInt(10)))

	w, resp = env.do(t, http.MethodPost, base+"/refund", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.NotEmpty(t, resp.Error.Code)

	w, resp = env.do(t, http.MethodGet, "/api/v1/purchase-returns?order_id="+order.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), resp.Meta.Total)
}

func TestPurchaseReturnHandler_CreateRejected(t *testing.T) {
	env := newTestEnv(t)
	order := receivedAndPaid(t, env)

	status, code, _ := env.createReturn(t, order.Lines[0].ID, "5", "REPLACEMENT")
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, shared.CodeQuantityExceeded, code)

	status, code, _ = env.createReturn(t, order.Lines[0].ID, "3", "SWAP")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", code)

	unpaid := env.createOrder(t)
	w, _ := env.do(t, http.MethodPost, "/api/v1/purchase-orders/"+unpaid.ID.String()+"/receive", gin.H{
		"items": []gin.H{{"line_id": unpaid.Lines[0].ID, "quantity": "10"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	status, code, _ = env.createReturn(t, unpaid.Lines[0].ID, "1", "REFUND")
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, shared.CodeInsufficientPaid, code)
}

func TestPurchaseReturnHandler_Reject(t *testing.T) {
	env := newTestEnv(t)
	order := receivedAndPaid(t, env)
	status, _, ret := env.createReturn(t, order.Lines[0].ID, "1", "REPLACEMENT")
	require.Equal(t, http.StatusCreated, status)
	base := "/api/v1/purchase-returns/" + ret.ID.String()

	w, resp := env.do(t, http.MethodPost, base+"/reject", gin.H{"reason": "supplier disputes defect"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rejected apptrade.PurchaseReturnResponse
	data(t, resp, &rejected)
	assert.Equal(t, "REJECTED", rejected.Status)

	w, _ = env.do(t, http.MethodPost, base+"/confirm", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, _ = env.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
