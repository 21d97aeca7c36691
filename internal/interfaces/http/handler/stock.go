package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	invapp "github.com/repairdesk/backend/internal/application/inventory"
)

// StockHandler exposes branch stock and its movement ledger
type StockHandler struct {
	BaseHandler
	ledgerService *invapp.StockLedgerService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(ledgerService *invapp.StockLedgerService) *StockHandler {
	return &StockHandler{ledgerService: ledgerService}
}

// stockQuery reads branch_id (required) and the optional item_id / inventory_id
func (h *StockHandler) stockQuery(c *gin.Context) (invapp.StockQuery, bool) {
	var query invapp.StockQuery
	branchID, err := optionalUUIDQuery(c, "branch_id")
	if err != nil {
		h.BadRequest(c, err.Error())
		return query, false
	}
	if branchID == nil {
		h.BadRequest(c, "branch_id is required")
		return query, false
	}
	query.BranchID = *branchID
	ok := h.uuidQueries(c, map[string]**uuid.UUID{
		"item_id":      &query.ItemID,
		"inventory_id": &query.InventoryID,
	})
	return query, ok
}

// Get handles GET /stock. With an item it returns that item's stock at the
// branch; without one it lists every stock row of the branch.
// @ID           getStock
// @Summary      Get branch stock
// @Description  Stock of one item at a branch, or every stock row of the branch when no item is given
// @Tags         stock
// @Produce      json
// @Param        branch_id query string true "Branch ID" format(uuid)
// @Param        item_id query string false "Item ID" format(uuid)
// @Param        inventory_id query string false "Inventory ID" format(uuid)
// @Success      200 {object} dto.Response{data=invapp.BranchStockResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /stock [get]
func (h *StockHandler) Get(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	query, ok := h.stockQuery(c)
	if !ok {
		return
	}

	if !query.HasItem() {
		stocks, err := h.ledgerService.ListBranchStock(c.Request.Context(), p.TenantID, query.BranchID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, stocks)
		return
	}

	stock, err := h.ledgerService.GetBranchStock(c.Request.Context(), p.TenantID, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// ListMovements handles GET /stock/movements
// @ID           listStockMovements
// @Summary      List stock movements
// @Description  Page through the stock movement ledger
// @Tags         stock
// @Produce      json
// @Param        branch_id query string false "Branch ID" format(uuid)
// @Param        item_id query string false "Item ID" format(uuid)
// @Param        inventory_id query string false "Inventory ID" format(uuid)
// @Param        reference_id query string false "Source document ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]invapp.StockMovementResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /stock/movements [get]
func (h *StockHandler) ListMovements(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var filter invapp.MovementListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.uuidQueries(c, map[string]**uuid.UUID{
		"branch_id":    &filter.BranchID,
		"item_id":      &filter.ItemID,
		"inventory_id": &filter.InventoryID,
		"reference_id": &filter.ReferenceID,
	}) {
		return
	}

	result, err := h.ledgerService.ListMovements(c.Request.Context(), p.TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Verify handles GET /stock/verify. With an item it replays one stock row;
// without one it replays the whole branch.
// @ID           verifyStockLedger
// @Summary      Verify the stock ledger
// @Description  Replay the movement log and compare it with the stored quantity, for one item or a whole branch
// @Tags         stock
// @Produce      json
// @Param        branch_id query string true "Branch ID" format(uuid)
// @Param        item_id query string false "Item ID" format(uuid)
// @Param        inventory_id query string false "Inventory ID" format(uuid)
// @Success      200 {object} dto.Response{data=invapp.LedgerVerificationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /stock/verify [get]
func (h *StockHandler) Verify(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	query, ok := h.stockQuery(c)
	if !ok {
		return
	}

	if !query.HasItem() {
		result, err := h.ledgerService.VerifyBranch(c.Request.Context(), p.TenantID, query.BranchID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, result)
		return
	}

	result, err := h.ledgerService.VerifyLedger(c.Request.Context(), p.TenantID, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Adjust handles POST /stock/adjustments
// @ID           adjustStock
// @Summary      Adjust stock
// @Description  Apply a signed manual adjustment to a branch stock row
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        request body invapp.AdjustStockRequest true "Adjustment"
// @Param        Idempotency-Key header string false "Replays the stored response when the key was already used"
// @Success      201 {object} dto.Response{data=invapp.StockMovementResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /stock/adjustments [post]
func (h *StockHandler) Adjust(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req invapp.AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.ActorID = actorID(p)

	movement, err := h.ledgerService.Adjust(c.Request.Context(), p.TenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, movement)
}
