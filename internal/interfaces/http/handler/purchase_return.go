package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	tradeapp "github.com/repairdesk/backend/internal/application/trade"
)

// PurchaseReturnHandler handles purchase return and refund endpoints
type PurchaseReturnHandler struct {
	BaseHandler
	returnService *tradeapp.PurchaseReturnService
}

// NewPurchaseReturnHandler creates a new PurchaseReturnHandler
func NewPurchaseReturnHandler(returnService *tradeapp.PurchaseReturnService) *PurchaseReturnHandler {
	return &PurchaseReturnHandler{returnService: returnService}
}

// Create handles POST /purchase-returns
// @ID           createPurchaseReturn
// @Summary      Create a purchase return
// @Description  Create a PENDING return of received goods against a purchase order
// @Tags         purchase-returns
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.CreatePurchaseReturnRequest true "Purchase return creation request"
// @Success      201 {object} dto.Response{data=tradeapp.PurchaseReturnResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-returns [post]
func (h *PurchaseReturnHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req tradeapp.CreatePurchaseReturnRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = actorID(p)

	ret, err := h.returnService.Create(c.Request.Context(), p.TenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, ret)
}

// GetByID handles GET /purchase-returns/:id
// @ID           getPurchaseReturn
// @Summary      Get purchase return by ID
// @Description  Retrieve a purchase return with its lines
// @Tags         purchase-returns
// @Produce      json
// @Param        id path string true "Purchase Return ID" format(uuid)
// @Success      200 {object} dto.Response{data=tradeapp.PurchaseReturnResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-returns/{id} [get]
func (h *PurchaseReturnHandler) GetByID(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	returnID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	ret, err := h.returnService.GetByID(c.Request.Context(), p.TenantID, returnID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ret)
}

// List handles GET /purchase-returns
// @ID           listPurchaseReturns
// @Summary      List purchase returns
// @Description  Page through purchase returns with optional filtering
// @Tags         purchase-returns
// @Produce      json
// @Param        order_id query string false "Purchase Order ID" format(uuid)
// @Param        supplier_id query string false "Supplier ID" format(uuid)
// @Param        branch_id query string false "Branch ID" format(uuid)
// @Param        search query string false "Search term (return number)"
// @Param        status query string false "Return status" Enums(PENDING, CONFIRMED, REJECTED)
// @Param        return_type query string false "Return type" Enums(REFUND, REPLACEMENT)
// @Param        start_date query string false "Return date from" format(date)
// @Param        end_date query string false "Return date to" format(date)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]tradeapp.PurchaseReturnResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-returns [get]
func (h *PurchaseReturnHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var filter tradeapp.PurchaseReturnListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.uuidQueries(c, map[string]**uuid.UUID{
		"order_id":    &filter.OrderID,
		"supplier_id": &filter.SupplierID,
		"branch_id":   &filter.BranchID,
	}) {
		return
	}

	result, err := h.returnService.List(c.Request.Context(), p.TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Confirm handles POST /purchase-returns/:id/confirm
// @ID           confirmPurchaseReturn
// @Summary      Confirm a purchase return
// @Description  Confirm a return. Returned quantities leave stock and are booked on the order lines.
// @Tags         purchase-returns
// @Produce      json
// @Param        id path string true "Purchase Return ID" format(uuid)
// @Success      200 {object} dto.Response{data=tradeapp.ConfirmReturnResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-returns/{id}/confirm [post]
func (h *PurchaseReturnHandler) Confirm(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	returnID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.returnService.Confirm(c.Request.Context(), p.TenantID, returnID, actorID(p))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Reject handles POST /purchase-returns/:id/reject. The body is optional.
// @ID           rejectPurchaseReturn
// @Summary      Reject a purchase return
// @Description  Reject a PENDING return
// @Tags         purchase-returns
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase Return ID" format(uuid)
// @Param        request body tradeapp.RejectPurchaseReturnRequest false "Rejection reason"
// @Success      200 {object} dto.Response{data=tradeapp.PurchaseReturnResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-returns/{id}/reject [post]
func (h *PurchaseReturnHandler) Reject(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	returnID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req tradeapp.RejectPurchaseReturnRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	ret, err := h.returnService.Reject(c.Request.Context(), p.TenantID, returnID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ret)
}

// ProcessRefund handles POST /purchase-returns/:id/refund
// @ID           refundPurchaseReturn
// @Summary      Refund a purchase return
// @Description  Record the supplier refund for a confirmed return
// @Tags         purchase-returns
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase Return ID" format(uuid)
// @Param        request body tradeapp.ProcessRefundRequest false "Refund details"
// @Param        Idempotency-Key header string false "Replays the stored response when the key was already used"
// @Success      200 {object} dto.Response{data=tradeapp.ProcessRefundResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-returns/{id}/refund [post]
func (h *PurchaseReturnHandler) ProcessRefund(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	returnID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req tradeapp.ProcessRefundRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	req.ActorID = actorID(p)

	result, err := h.returnService.ProcessRefund(c.Request.Context(), p.TenantID, returnID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
