package trade

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/inventory"
	"github.com/repairdesk/backend/internal/domain/masterdata"
	"github.com/repairdesk/backend/internal/domain/shared"
	"github.com/repairdesk/backend/internal/domain/trade"
	"github.com/repairdesk/backend/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PurchaseOrderService handles purchase order business operations
type PurchaseOrderService struct {
	serviceBase
	txScope   TransactionScope
	orderRepo trade.PurchaseOrderRepository
	directory masterdata.Directory
}

// NewPurchaseOrderService creates a new PurchaseOrderService.
// orderRepo serves the read-only queries; every write goes through txScope.
func NewPurchaseOrderService(
	txScope TransactionScope,
	orderRepo trade.PurchaseOrderRepository,
	directory masterdata.Directory,
	logger *zap.Logger,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		serviceBase: newServiceBase(logger),
		txScope:     txScope,
		orderRepo:   orderRepo,
		directory:   directory,
	}
}

// Create creates a new purchase order
func (s *PurchaseOrderService) Create(ctx context.Context, tenantID uuid.UUID, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	if len(req.Lines) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Order must have at least one line")
	}

	supplier, err := s.directory.GetSupplier(ctx, tenantID, req.SupplierID)
	if err != nil {
		return nil, s.fail(ctx, "load supplier", err)
	}
	if !supplier.IsActive {
		return nil, shared.NewDomainError(shared.CodeSupplierInactive,
			fmt.Sprintf("Supplier %s is inactive", supplier.Code))
	}

	branch, err := s.directory.GetBranch(ctx, tenantID, req.BranchID)
	if err != nil {
		return nil, s.fail(ctx, "load branch", err)
	}
	if !branch.IsActive {
		return nil, shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Branch %s is inactive", branch.Code))
	}

	specs, err := s.resolveLines(ctx, tenantID, req.Lines)
	if err != nil {
		return nil, err
	}

	var order *trade.PurchaseOrder
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		seq, err := repos.Sequences().Next(ctx, tenantID, branch.ID, trade.PrefixPurchaseOrder)
		if err != nil {
			return err
		}
		orderNumber := trade.FormatDocumentNumber(trade.PrefixPurchaseOrder, branch.Code, seq)

		order, err = trade.NewPurchaseOrder(tenantID, orderNumber, supplier.ID, branch.ID, specs)
		if err != nil {
			return err
		}
		if req.ExpectedDeliveryDate != nil {
			d := *req.ExpectedDeliveryDate
			order.ExpectedDeliveryDate = &d
		}
		order.SupplierInvoiceRef = strings.TrimSpace(req.SupplierInvoiceRef)
		order.Notes = req.Notes
		order.SetCreatedBy(req.CreatedBy)

		return repos.PurchaseOrders().Create(ctx, order)
	})
	if err != nil {
		return nil, s.fail(ctx, "create purchase order", err)
	}

	s.metrics.RecordPurchaseOrderCreated(ctx, tenantID, order.GrandTotal)
	s.publish(ctx, order.GetDomainEvents())
	order.ClearDomainEvents()

	logger.For(ctx, s.logger).Info("purchase order created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("grand_total", order.GrandTotal.String()),
	)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// resolveLines turns request lines into domain line specs, resolving every item
// reference to its canonical catalog item exactly once
func (s *PurchaseOrderService) resolveLines(ctx context.Context, tenantID uuid.UUID, lines []OrderLineInput) ([]trade.LineSpec, error) {
	specs := make([]trade.LineSpec, 0, len(lines))
	for i, line := range lines {
		ref, err := masterdata.NewItemRef(line.ItemID, line.InventoryID)
		if err != nil {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Line %d: %s", i+1, err.Error()))
		}
		item, err := s.directory.ResolveItem(ctx, tenantID, ref)
		if err != nil {
			return nil, s.fail(ctx, "resolve item", err)
		}
		if !item.IsActive {
			return nil, shared.NewDomainError(shared.CodeInvalidState,
				fmt.Sprintf("Line %d: item %s is inactive", i+1, item.SKU))
		}
		specs = append(specs, trade.LineSpec{
			ItemID:    item.ID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			TaxRate:   line.TaxRate,
		})
	}
	return specs, nil
}

// GetByID retrieves a purchase order by ID
func (s *PurchaseOrderService) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, s.fail(ctx, "load purchase order", err)
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// List retrieves a list of purchase orders with filtering and pagination
func (s *PurchaseOrderService) List(ctx context.Context, tenantID uuid.UUID, filter PurchaseOrderListFilter) (*shared.Paginated[PurchaseOrderListItemResponse], error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "created_at"
	}
	domainFilter.Normalize()

	if filter.SupplierID != nil {
		domainFilter.Filters["supplier_id"] = *filter.SupplierID
	}
	if filter.BranchID != nil {
		domainFilter.Filters["branch_id"] = *filter.BranchID
	}
	if filter.Status != "" {
		status := trade.PurchaseOrderStatus(strings.ToUpper(filter.Status))
		if !status.IsValid() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Invalid purchase order status: %s", filter.Status))
		}
		domainFilter.Filters["status"] = string(status)
	}
	if len(filter.Statuses) > 0 {
		domainFilter.Filters["statuses"] = filter.Statuses
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	orders, err := s.orderRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, s.fail(ctx, "list purchase orders", err)
	}
	total, err := s.orderRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, s.fail(ctx, "count purchase orders", err)
	}

	page := shared.NewPaginated(ToPurchaseOrderListItemResponses(orders), total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update applies a header patch and, optionally, replaces every line
func (s *PurchaseOrderService) Update(ctx context.Context, tenantID, orderID uuid.UUID, req UpdatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	patch := trade.OrderPatch{
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		SupplierInvoiceRef:   req.SupplierInvoiceRef,
		Notes:                req.Notes,
	}
	if req.Lines != nil {
		specs, err := s.resolveLines(ctx, tenantID, req.Lines)
		if err != nil {
			return nil, err
		}
		patch.Lines = specs
	}

	var order *trade.PurchaseOrder
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if err := order.Update(patch); err != nil {
			return err
		}
		return repos.PurchaseOrders().SaveWithLock(ctx, order)
	})
	if err != nil {
		return nil, s.fail(ctx, "update purchase order", err)
	}

	s.publish(ctx, order.GetDomainEvents())
	order.ClearDomainEvents()

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Receive records arrived goods and posts a PURCHASE stock movement per received pair.
// Order, lines, stock rows and movements change together or not at all.
func (s *PurchaseOrderService) Receive(ctx context.Context, tenantID, orderID uuid.UUID, req ReceivePurchaseOrderRequest) (*ReceiveResultResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Receive items cannot be empty")
	}
	items := make([]trade.ReceiveLine, len(req.Items))
	for i, item := range req.Items {
		items[i] = trade.ReceiveLine{LineID: item.LineID, Quantity: item.Quantity}
	}

	var (
		order     *trade.PurchaseOrder
		received  []trade.ReceivedLine
		movements []*inventory.StockMovement
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		received, err = order.Receive(items, req.DeliveryDate)
		if err != nil {
			return err
		}

		ledger := inventory.NewLedger(repos.BranchStocks(), repos.StockMovements())
		orderRef := order.ID
		supplierID := order.SupplierID
		movements = make([]*inventory.StockMovement, 0, len(received))
		for _, line := range received {
			price := line.UnitPrice
			movement, err := ledger.Apply(ctx, inventory.MovementRequest{
				TenantID:      tenantID,
				BranchID:      order.BranchID,
				ItemID:        line.ItemID,
				Quantity:      line.Quantity,
				MovementType:  inventory.MovementTypePurchase,
				ReferenceType: inventory.ReferenceTypePurchaseOrder,
				ReferenceID:   &orderRef,
				ActorID:       req.ActorID,
				Notes:         "Received on " + order.OrderNumber,
				UnitPrice:     &price,
				SupplierID:    &supplierID,
			})
			if err != nil {
				return err
			}
			movements = append(movements, movement)
		}

		return repos.PurchaseOrders().SaveWithLock(ctx, order)
	})
	if err != nil {
		return nil, s.fail(ctx, "receive purchase order", err)
	}

	totalQty := decimal.Zero
	events := order.GetDomainEvents()
	for _, m := range movements {
		totalQty = totalQty.Add(m.Quantity)
		s.metrics.RecordStockMovement(ctx, tenantID, string(m.MovementType))
		events = append(events, inventory.NewStockMovedEvent(m))
	}
	s.metrics.RecordGoodsReceived(ctx, tenantID, totalQty)
	s.publish(ctx, events)
	order.ClearDomainEvents()

	logger.For(ctx, s.logger).Info("purchase order received",
		zap.String("tenant_id", tenantID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Int("lines", len(received)),
		zap.String("status", string(order.Status)),
	)

	result := &ReceiveResultResponse{
		Order:           ToPurchaseOrderResponse(order),
		ReceivedLines:   make([]ReceivedLineResponse, len(received)),
		IsFullyReceived: order.Status == trade.PurchaseOrderStatusReceived,
	}
	for i, line := range received {
		result.ReceivedLines[i] = ReceivedLineResponse{
			LineID:     line.LineID,
			ItemID:     line.ItemID,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			MovementID: movements[i].ID,
			StockAfter: movements[i].NewQuantity,
		}
	}
	return result, nil
}

// UpdateStatus performs an administrative status change through the transition table
func (s *PurchaseOrderService) UpdateStatus(ctx context.Context, tenantID, orderID uuid.UUID, req UpdateStatusRequest) (*PurchaseOrderResponse, error) {
	target := trade.PurchaseOrderStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	return s.mutate(ctx, tenantID, orderID, "update purchase order status", func(order *trade.PurchaseOrder) error {
		return order.UpdateStatus(target)
	})
}

// Cancel cancels a non-terminal purchase order
func (s *PurchaseOrderService) Cancel(ctx context.Context, tenantID, orderID uuid.UUID, req CancelPurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, "cancel purchase order", func(order *trade.PurchaseOrder) error {
		return order.Cancel(req.Reason)
	})
}

func (s *PurchaseOrderService) mutate(ctx context.Context, tenantID, orderID uuid.UUID, operation string, fn func(*trade.PurchaseOrder) error) (*PurchaseOrderResponse, error) {
	var order *trade.PurchaseOrder
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if err := fn(order); err != nil {
			return err
		}
		return repos.PurchaseOrders().SaveWithLock(ctx, order)
	})
	if err != nil {
		return nil, s.fail(ctx, operation, err)
	}

	s.publish(ctx, order.GetDomainEvents())
	order.ClearDomainEvents()

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Delete removes an order that has neither payments nor received goods
func (s *PurchaseOrderService) Delete(ctx context.Context, tenantID, orderID uuid.UUID) error {
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.PurchaseOrders().FindByIDForUpdate(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		payments, err := repos.Payments().CountByOrder(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if err := order.EnsureDeletable(payments); err != nil {
			return err
		}
		return repos.PurchaseOrders().DeleteForTenant(ctx, tenantID, orderID)
	})
	if err != nil {
		return s.fail(ctx, "delete purchase order", err)
	}
	logger.For(ctx, s.logger).Info("purchase order deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("order_id", orderID.String()),
	)
	return nil
}

// RecordPayment books money paid to the supplier against an order
func (s *PurchaseOrderService) RecordPayment(ctx context.Context, tenantID, orderID uuid.UUID, req RecordPaymentRequest) (*RecordPaymentResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Payment amount must be positive")
	}
	if req.PaymentMethodID != nil {
		if err := s.checkPaymentMethod(ctx, tenantID, *req.PaymentMethodID); err != nil {
			return nil, err
		}
	}

	var (
		order   *trade.PurchaseOrder
		payment *trade.PurchasePayment
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if err := order.RecordPayment(req.Amount); err != nil {
			return err
		}
		payment, err = trade.NewPurchasePayment(order, req.Amount, req.ActorID, trade.PaymentDetails{
			PaymentMethodID: req.PaymentMethodID,
			ReferenceNumber: req.ReferenceNumber,
			Notes:           req.Notes,
			Date:            req.PaymentDate,
		})
		if err != nil {
			return err
		}
		if err := repos.Payments().Create(ctx, payment); err != nil {
			return err
		}
		return repos.PurchaseOrders().SaveWithLock(ctx, order)
	})
	if err != nil {
		return nil, s.fail(ctx, "record payment", err)
	}

	s.metrics.RecordPayment(ctx, tenantID, req.Amount)
	s.publish(ctx, order.GetDomainEvents())
	order.ClearDomainEvents()

	return &RecordPaymentResponse{
		Payment: ToPaymentResponse(payment),
		Order:   ToPurchaseOrderResponse(order),
	}, nil
}

func (s *PurchaseOrderService) checkPaymentMethod(ctx context.Context, tenantID, id uuid.UUID) error {
	method, err := s.directory.GetPaymentMethod(ctx, tenantID, id)
	if err != nil {
		return s.fail(ctx, "load payment method", err)
	}
	if !method.IsActive {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Payment method %s is inactive", method.Name))
	}
	return nil
}

// ListPayments returns the payments recorded against an order
func (s *PurchaseOrderService) ListPayments(ctx context.Context, tenantID, orderID uuid.UUID) ([]PaymentResponse, error) {
	var payments []trade.PurchasePayment
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.PurchaseOrders().FindByIDForTenant(ctx, tenantID, orderID); err != nil {
			return err
		}
		var err error
		payments, err = repos.Payments().FindByOrder(ctx, tenantID, orderID)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "list payments", err)
	}
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses, nil
}

// StatusSummary counts orders per status. Every status is listed, including empty ones.
func (s *PurchaseOrderService) StatusSummary(ctx context.Context, tenantID uuid.UUID) (*PurchaseOrderStatusSummary, error) {
	rows, err := s.orderRepo.StatusSummary(ctx, tenantID)
	if err != nil {
		return nil, s.fail(ctx, "summarize purchase orders", err)
	}
	byStatus := make(map[trade.PurchaseOrderStatus]trade.StatusSummary, len(rows))
	for _, row := range rows {
		byStatus[row.Status] = row
	}

	summary := &PurchaseOrderStatusSummary{}
	for _, status := range trade.AllPurchaseOrderStatuses() {
		row, ok := byStatus[status]
		if !ok {
			row = trade.StatusSummary{Status: status, GrandTotal: decimal.Zero}
		}
		summary.Statuses = append(summary.Statuses, StatusCount{
			Status:     string(status),
			Count:      row.Count,
			GrandTotal: row.GrandTotal,
		})
		summary.Total += row.Count
	}
	return summary, nil
}

// SupplierOutstanding returns what is still owed to one supplier over its non-cancelled orders
func (s *PurchaseOrderService) SupplierOutstanding(ctx context.Context, tenantID, supplierID uuid.UUID) (*SupplierOutstandingResponse, error) {
	if _, err := s.directory.GetSupplier(ctx, tenantID, supplierID); err != nil {
		return nil, s.fail(ctx, "load supplier", err)
	}
	balances, err := s.orderRepo.SupplierBalances(ctx, tenantID, &supplierID)
	if err != nil {
		return nil, s.fail(ctx, "load supplier balance", err)
	}
	outstanding := decimal.Zero
	for _, b := range balances {
		outstanding = outstanding.Add(b.Outstanding)
	}
	return &SupplierOutstandingResponse{SupplierID: supplierID, Outstanding: outstanding}, nil
}

// SupplierSummary returns purchase totals per supplier. A nil supplierID summarizes every supplier.
func (s *PurchaseOrderService) SupplierSummary(ctx context.Context, tenantID uuid.UUID, supplierID *uuid.UUID) ([]SupplierSummaryResponse, error) {
	balances, err := s.orderRepo.SupplierBalances(ctx, tenantID, supplierID)
	if err != nil {
		return nil, s.fail(ctx, "load supplier balances", err)
	}
	responses := make([]SupplierSummaryResponse, len(balances))
	for i, b := range balances {
		responses[i] = SupplierSummaryResponse{
			SupplierID:  b.SupplierID,
			OrderCount:  b.OrderCount,
			GrandTotal:  b.GrandTotal,
			PaidAmount:  b.PaidAmount,
			Outstanding: b.Outstanding,
		}
	}
	return responses, nil
}
