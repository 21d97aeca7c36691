package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	tradeapp "github.com/repairdesk/backend/internal/application/trade"
)

// PurchaseOrderHandler handles purchase order endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orderService *tradeapp.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orderService *tradeapp.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orderService: orderService}
}

// Create handles POST /purchase-orders
// @ID           createPurchaseOrder
// @Summary      Create a purchase order
// @Description  Create a PENDING purchase order for a supplier and branch. Totals are computed from the lines.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.CreatePurchaseOrderRequest true "Purchase order creation request"
// @Success      201 {object} dto.Response{data=tradeapp.PurchaseOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req tradeapp.CreatePurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = actorID(p)

	order, err := h.orderService.Create(c.Request.Context(), p.TenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// GetByID handles GET /purchase-orders/:id
// @ID           getPurchaseOrder
// @Summary      Get purchase order by ID
// @Description  Retrieve a purchase order with its lines
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=tradeapp.PurchaseOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	orderID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), p.TenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// List handles GET /purchase-orders
// @ID           listPurchaseOrders
// @Summary      List purchase orders
// @Description  Page through purchase orders with optional filtering
// @Tags         purchase-orders
// @Produce      json
// @Param        search query string false "Search term (order number, invoice reference)"
// @Param        supplier_id query string false "Supplier ID" format(uuid)
// @Param        branch_id query string false "Branch ID" format(uuid)
// @Param        status query string false "Order status" Enums(PENDING, PARTIALLY_RECEIVED, RECEIVED, COMPLETED, CANCELLED)
// @Param        statuses query []string false "Multiple order statuses"
// @Param        start_date query string false "Order date from" format(date)
// @Param        end_date query string false "Order date to" format(date)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} dto.Response{data=[]tradeapp.PurchaseOrderListItemResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders [get]
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var filter tradeapp.PurchaseOrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.uuidQueries(c, map[string]**uuid.UUID{
		"supplier_id": &filter.SupplierID,
		"branch_id":   &filter.BranchID,
	}) {
		return
	}

	result, err := h.orderService.List(c.Request.Context(), p.TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update handles PUT /purchase-orders/:id
// @ID           updatePurchaseOrder
// @Summary      Update a purchase order
// @Description  Edit a purchase order. Lines can only be replaced while nothing has been received.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Param        request body tradeapp.UpdatePurchaseOrderRequest true "Purchase order update request"
// @Success      200 {object} dto.Response{data=tradeapp.PurchaseOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id} [put]
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	orderID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req tradeapp.UpdatePurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Update(c.Request.Context(), p.TenantID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// UpdateStatus handles PUT /purchase-orders/:id/status
// @ID           updatePurchaseOrderStatus
// @Summary      Change purchase order status
// @Description  Move a purchase order along its status table. A receiving status must agree with the received quantities.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Param        request body tradeapp.UpdateStatusRequest true "Target status"
// @Success      200 {object} dto.Response{data=tradeapp.PurchaseOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/status [put]
func (h *PurchaseOrderHandler) UpdateStatus(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	orderID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req tradeapp.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), p.TenantID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Receive handles POST /purchase-orders/:id/receive
// @ID           receivePurchaseOrder
// @Summary      Receive goods
// @Description  Receive quantities against purchase order lines. Each line adds stock at a weighted average cost and writes a movement.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Param        request body tradeapp.ReceivePurchaseOrderRequest true "Received items"
// @Param        Idempotency-Key header string false "Replays the stored response when the key was already used"
// @Success      200 {object} dto.Response{data=tradeapp.ReceiveResultResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/receive [post]
func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	orderID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req tradeapp.ReceivePurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.ActorID = actorID(p)

	result, err := h.orderService.Receive(c.Request.Context(), p.TenantID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Cancel handles POST /purchase-orders/:id/cancel. The body is optional.
// @ID           cancelPurchaseOrder
// @Summary      Cancel a purchase order
// @Description  Cancel a purchase order. Received stock is reversed and recorded payments must be refunded first.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Param        request body tradeapp.CancelPurchaseOrderRequest false "Cancellation reason"
// @Success      200 {object} dto.Response{data=tradeapp.PurchaseOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/cancel [post]
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	orderID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req tradeapp.CancelPurchaseOrderRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), p.TenantID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Delete handles DELETE /purchase-orders/:id
// @ID           deletePurchaseOrder
// @Summary      Delete a purchase order
// @Description  Delete a PENDING purchase order that has no receipts or payments
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id} [delete]
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	orderID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), p.TenantID, orderID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RecordPayment handles POST /purchase-orders/:id/payments
// @ID           recordPurchaseOrderPayment
// @Summary      Record a supplier payment
// @Description  Record a payment against a purchase order. The amount may not exceed the outstanding balance.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Param        request body tradeapp.RecordPaymentRequest true "Payment"
// @Param        Idempotency-Key header string false "Replays the stored response when the key was already used"
// @Success      201 {object} dto.Response{data=tradeapp.RecordPaymentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/payments [post]
func (h *PurchaseOrderHandler) RecordPayment(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	orderID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req tradeapp.RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.ActorID = actorID(p)

	result, err := h.orderService.RecordPayment(c.Request.Context(), p.TenantID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// ListPayments handles GET /purchase-orders/:id/payments
// @ID           listPurchaseOrderPayments
// @Summary      List payments
// @Description  List the payments recorded against a purchase order
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Purchase Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]tradeapp.PaymentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/payments [get]
func (h *PurchaseOrderHandler) ListPayments(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	orderID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	payments, err := h.orderService.ListPayments(c.Request.Context(), p.TenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payments)
}

// StatusSummary handles GET /purchase-orders/status-summary
// @ID           purchaseOrderStatusSummary
// @Summary      Purchase order status summary
// @Description  Count purchase orders per status
// @Tags         purchase-orders
// @Produce      json
// @Success      200 {object} dto.Response{data=tradeapp.PurchaseOrderStatusSummary}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/status-summary [get]
func (h *PurchaseOrderHandler) StatusSummary(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	summary, err := h.orderService.StatusSummary(c.Request.Context(), p.TenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// SupplierOutstanding handles GET /suppliers/:id/outstanding
// @ID           supplierOutstanding
// @Summary      Supplier outstanding balance
// @Description  Sum of unpaid grand totals over a supplier's open purchase orders
// @Tags         suppliers
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Success      200 {object} dto.Response{data=tradeapp.SupplierOutstandingResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /suppliers/{id}/outstanding [get]
func (h *PurchaseOrderHandler) SupplierOutstanding(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	supplierID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	outstanding, err := h.orderService.SupplierOutstanding(c.Request.Context(), p.TenantID, supplierID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, outstanding)
}

// SupplierSummary handles GET /suppliers/summary, optionally narrowed by supplier_id
// @ID           supplierSummary
// @Summary      Supplier purchase summary
// @Description  Order counts and money totals per supplier
// @Tags         suppliers
// @Produce      json
// @Param        supplier_id query string false "Supplier ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]tradeapp.SupplierSummaryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /suppliers/summary [get]
func (h *PurchaseOrderHandler) SupplierSummary(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	supplierID, err := optionalUUIDQuery(c, "supplier_id")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	summary, err := h.orderService.SupplierSummary(c.Request.Context(), p.TenantID, supplierID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}
