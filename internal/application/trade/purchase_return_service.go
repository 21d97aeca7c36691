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
	"go.uber.org/zap"
)

// PurchaseReturnService handles returns of received goods to suppliers and their refunds
type PurchaseReturnService struct {
	serviceBase
	txScope    TransactionScope
	returnRepo trade.PurchaseReturnRepository
	directory  masterdata.Directory
}

// NewPurchaseReturnService creates a new PurchaseReturnService.
// returnRepo serves the read-only queries; every write goes through txScope.
func NewPurchaseReturnService(
	txScope TransactionScope,
	returnRepo trade.PurchaseReturnRepository,
	directory masterdata.Directory,
	logger *zap.Logger,
) *PurchaseReturnService {
	return &PurchaseReturnService{
		serviceBase: newServiceBase(logger),
		txScope:     txScope,
		returnRepo:  returnRepo,
		directory:   directory,
	}
}

// Create opens a PENDING return for part of a received order line
func (s *PurchaseReturnService) Create(ctx context.Context, tenantID uuid.UUID, req CreatePurchaseReturnRequest) (*PurchaseReturnResponse, error) {
	request := trade.ReturnRequest{
		LineID:   req.LineID,
		Quantity: req.Quantity,
		Reason:   trade.ReturnReason(strings.ToUpper(strings.TrimSpace(req.Reason))),
		Type:     trade.ReturnType(strings.ToUpper(strings.TrimSpace(req.ReturnType))),
		Notes:    req.Notes,
	}

	var ret *trade.PurchaseReturn
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.PurchaseOrders().FindByLineIDForUpdate(ctx, tenantID, req.LineID)
		if err != nil {
			return err
		}
		alreadyReturned, err := repos.PurchaseReturns().SumActiveQuantityByLine(ctx, tenantID, req.LineID)
		if err != nil {
			return err
		}
		returnNumber, err := s.nextNumber(ctx, repos, tenantID, order.BranchID, trade.PrefixPurchaseReturn)
		if err != nil {
			return err
		}

		ret, err = trade.NewPurchaseReturn(order, request, alreadyReturned, returnNumber)
		if err != nil {
			return err
		}
		ret.SetCreatedBy(req.CreatedBy)
		return repos.PurchaseReturns().Create(ctx, ret)
	})
	if err != nil {
		return nil, s.fail(ctx, "create purchase return", err)
	}

	s.metrics.RecordReturn(ctx, tenantID, string(ret.ReturnType), string(ret.Status))
	s.publish(ctx, ret.GetDomainEvents())
	ret.ClearDomainEvents()

	response := ToPurchaseReturnResponse(ret)
	return &response, nil
}

func (s *PurchaseReturnService) nextNumber(ctx context.Context, repos TransactionalRepositories, tenantID, branchID uuid.UUID, prefix string) (string, error) {
	branch, err := repos.Directory().GetBranch(ctx, tenantID, branchID)
	if err != nil {
		return "", err
	}
	seq, err := repos.Sequences().Next(ctx, tenantID, branchID, prefix)
	if err != nil {
		return "", err
	}
	return trade.FormatDocumentNumber(prefix, branch.Code, seq), nil
}

// GetByID retrieves a purchase return by ID
func (s *PurchaseReturnService) GetByID(ctx context.Context, tenantID, returnID uuid.UUID) (*PurchaseReturnResponse, error) {
	ret, err := s.returnRepo.FindByIDForTenant(ctx, tenantID, returnID)
	if err != nil {
		return nil, s.fail(ctx, "load purchase return", err)
	}
	response := ToPurchaseReturnResponse(ret)
	return &response, nil
}

// List retrieves purchase returns with filtering and pagination
func (s *PurchaseReturnService) List(ctx context.Context, tenantID uuid.UUID, filter PurchaseReturnListFilter) (*shared.Paginated[PurchaseReturnResponse], error) {
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

	if filter.OrderID != nil {
		domainFilter.Filters["order_id"] = *filter.OrderID
	}
	if filter.SupplierID != nil {
		domainFilter.Filters["supplier_id"] = *filter.SupplierID
	}
	if filter.BranchID != nil {
		domainFilter.Filters["branch_id"] = *filter.BranchID
	}
	if filter.Status != "" {
		status := trade.ReturnStatus(strings.ToUpper(filter.Status))
		if !status.IsValid() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Invalid return status: %s", filter.Status))
		}
		domainFilter.Filters["status"] = string(status)
	}
	if filter.ReturnType != "" {
		returnType := trade.ReturnType(strings.ToUpper(filter.ReturnType))
		if !returnType.IsValid() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Invalid return type: %s", filter.ReturnType))
		}
		domainFilter.Filters["return_type"] = string(returnType)
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	returns, err := s.returnRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, s.fail(ctx, "list purchase returns", err)
	}
	total, err := s.returnRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, s.fail(ctx, "count purchase returns", err)
	}

	page := shared.NewPaginated(ToPurchaseReturnResponses(returns), total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Confirm takes the goods out of stock and books the return against its order line.
// A REPLACEMENT return also raises a new PENDING order for the same goods.
func (s *PurchaseReturnService) Confirm(ctx context.Context, tenantID, returnID uuid.UUID, actorID *uuid.UUID) (*ConfirmReturnResponse, error) {
	var (
		ret         *trade.PurchaseReturn
		replacement *trade.PurchaseOrder
		movement    *inventory.StockMovement
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		ret, err = repos.PurchaseReturns().FindByIDForUpdate(ctx, tenantID, returnID)
		if err != nil {
			return err
		}
		if ret.Status != trade.ReturnStatusPending {
			// Confirm reports AlreadyProcessed or InvalidState before anything is touched
			return ret.Confirm(actorID, ret.ReplacementOrderID)
		}

		order, err := repos.PurchaseOrders().FindByIDForUpdate(ctx, tenantID, ret.OrderID)
		if err != nil {
			return err
		}
		line := order.GetLine(ret.LineID)
		if line == nil {
			return shared.NewDomainError(shared.CodeNotFound,
				fmt.Sprintf("Line %s not found in purchase order %s", ret.LineID, order.OrderNumber))
		}

		ledger := inventory.NewLedger(repos.BranchStocks(), repos.StockMovements())
		retRef := ret.ID
		movement, err = ledger.Apply(ctx, inventory.MovementRequest{
			TenantID:      tenantID,
			BranchID:      ret.BranchID,
			ItemID:        ret.ItemID,
			Quantity:      ret.ReturnQuantity.Neg(),
			MovementType:  inventory.MovementTypeReturn,
			ReferenceType: inventory.ReferenceTypePurchaseReturn,
			ReferenceID:   &retRef,
			ActorID:       actorID,
			Notes:         fmt.Sprintf("Returned to supplier on %s (%s)", ret.ReturnNumber, order.OrderNumber),
		})
		if err != nil {
			return err
		}

		var replacementID *uuid.UUID
		if ret.ReturnType == trade.ReturnTypeReplacement {
			orderNumber, err := s.nextNumber(ctx, repos, tenantID, order.BranchID, trade.PrefixPurchaseOrder)
			if err != nil {
				return err
			}
			replacement, err = trade.NewReplacementOrder(order, line, ret.ReturnQuantity, orderNumber, ret.ID)
			if err != nil {
				return err
			}
			replacement.SetCreatedBy(actorID)
			if err := repos.PurchaseOrders().Create(ctx, replacement); err != nil {
				return err
			}
			id := replacement.ID
			replacementID = &id
		}

		if err := order.RecordReturn(ret.LineID, ret.ReturnQuantity); err != nil {
			return err
		}
		if err := repos.PurchaseOrders().SaveWithLock(ctx, order); err != nil {
			return err
		}

		if err := ret.Confirm(actorID, replacementID); err != nil {
			return err
		}
		return repos.PurchaseReturns().SaveWithLock(ctx, ret)
	})
	if err != nil {
		return nil, s.fail(ctx, "confirm purchase return", err)
	}

	events := ret.GetDomainEvents()
	if movement != nil {
		s.metrics.RecordStockMovement(ctx, tenantID, string(movement.MovementType))
		events = append(events, inventory.NewStockMovedEvent(movement))
	}
	if replacement != nil {
		s.metrics.RecordPurchaseOrderCreated(ctx, tenantID, replacement.GrandTotal)
		events = append(events, replacement.GetDomainEvents()...)
		replacement.ClearDomainEvents()
	}
	s.metrics.RecordReturn(ctx, tenantID, string(ret.ReturnType), string(ret.Status))
	s.publish(ctx, events)
	ret.ClearDomainEvents()

	logger.For(ctx, s.logger).Info("purchase return confirmed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("return_number", ret.ReturnNumber),
		zap.String("return_type", string(ret.ReturnType)),
		zap.String("quantity", ret.ReturnQuantity.String()),
	)

	result := &ConfirmReturnResponse{Return: ToPurchaseReturnResponse(ret)}
	if replacement != nil {
		order := ToPurchaseOrderResponse(replacement)
		result.ReplacementOrder = &order
	}
	return result, nil
}

// Reject closes a PENDING return without any stock or money effect
func (s *PurchaseReturnService) Reject(ctx context.Context, tenantID, returnID uuid.UUID, req RejectPurchaseReturnRequest) (*PurchaseReturnResponse, error) {
	var ret *trade.PurchaseReturn
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		ret, err = repos.PurchaseReturns().FindByIDForUpdate(ctx, tenantID, returnID)
		if err != nil {
			return err
		}
		if err := ret.Reject(req.Reason); err != nil {
			return err
		}
		return repos.PurchaseReturns().SaveWithLock(ctx, ret)
	})
	if err != nil {
		return nil, s.fail(ctx, "reject purchase return", err)
	}

	s.metrics.RecordReturn(ctx, tenantID, string(ret.ReturnType), string(ret.Status))
	s.publish(ctx, ret.GetDomainEvents())
	ret.ClearDomainEvents()

	response := ToPurchaseReturnResponse(ret)
	return &response, nil
}

// ProcessRefund books the supplier refund of a confirmed REFUND return exactly once
func (s *PurchaseReturnService) ProcessRefund(ctx context.Context, tenantID, returnID uuid.UUID, req ProcessRefundRequest) (*ProcessRefundResponse, error) {
	if req.PaymentMethodID != nil {
		method, err := s.directory.GetPaymentMethod(ctx, tenantID, *req.PaymentMethodID)
		if err != nil {
			return nil, s.fail(ctx, "load payment method", err)
		}
		if !method.IsActive {
			return nil, shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Payment method %s is inactive", method.Name))
		}
	}

	var (
		ret    *trade.PurchaseReturn
		refund *trade.RefundTransaction
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		ret, err = repos.PurchaseReturns().FindByIDForUpdate(ctx, tenantID, returnID)
		if err != nil {
			return err
		}
		if err := ret.EnsureRefundable(); err != nil {
			return err
		}

		order, err := repos.PurchaseOrders().FindByIDForUpdate(ctx, tenantID, ret.OrderID)
		if err != nil {
			return err
		}
		refund, err = trade.NewRefundTransaction(ret, req.ActorID, trade.PaymentDetails{
			PaymentMethodID: req.PaymentMethodID,
			ReferenceNumber: req.ReferenceNumber,
			Notes:           req.Notes,
			Date:            req.RefundDate,
		})
		if err != nil {
			return err
		}
		if err := order.ApplyRefund(refund.Amount); err != nil {
			return err
		}
		if err := repos.Refunds().Create(ctx, refund); err != nil {
			return err
		}
		if err := repos.PurchaseOrders().SaveWithLock(ctx, order); err != nil {
			return err
		}

		if err := ret.MarkRefunded(); err != nil {
			return err
		}
		return repos.PurchaseReturns().SaveWithLock(ctx, ret)
	})
	if err != nil {
		return nil, s.fail(ctx, "process refund", err)
	}

	s.metrics.RecordRefund(ctx, tenantID, refund.Amount)
	s.publish(ctx, ret.GetDomainEvents())
	ret.ClearDomainEvents()

	logger.For(ctx, s.logger).Info("purchase return refunded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("return_number", ret.ReturnNumber),
		zap.String("amount", refund.Amount.String()),
	)

	return &ProcessRefundResponse{
		Return:            ToPurchaseReturnResponse(ret),
		RefundTransaction: ToRefundTransactionResponse(refund),
	}, nil
}
