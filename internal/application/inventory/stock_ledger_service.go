package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/inventory"
	"github.com/repairdesk/backend/internal/domain/masterdata"
	"github.com/repairdesk/backend/internal/domain/shared"
	"github.com/repairdesk/backend/internal/infrastructure/logger"
	"github.com/repairdesk/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// StockLedgerService exposes branch stock and its movement ledger.
// Purchase receiving and returns post movements from the trade services; this
// service reads the ledger, verifies it and posts manual adjustments.
type StockLedgerService struct {
	txScope        TransactionScope
	stocks         inventory.BranchStockRepository
	movements      inventory.StockMovementRepository
	directory      masterdata.Directory
	eventPublisher shared.EventPublisher
	metrics        *telemetry.LedgerMetrics
	logger         *zap.Logger
}

// NewStockLedgerService creates a new StockLedgerService
func NewStockLedgerService(
	txScope TransactionScope,
	stocks inventory.BranchStockRepository,
	movements inventory.StockMovementRepository,
	directory masterdata.Directory,
	logger *zap.Logger,
) *StockLedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockLedgerService{
		txScope:   txScope,
		stocks:    stocks,
		movements: movements,
		directory: directory,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockLedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the ledger metrics collector
func (s *StockLedgerService) SetMetrics(metrics *telemetry.LedgerMetrics) {
	s.metrics = metrics
}

// GetBranchStock returns the stock of one item at one branch. An item that was
// never stocked at an existing branch has quantity zero.
func (s *StockLedgerService) GetBranchStock(ctx context.Context, tenantID uuid.UUID, query StockQuery) (*BranchStockResponse, error) {
	if _, err := s.directory.GetBranch(ctx, tenantID, query.BranchID); err != nil {
		return nil, s.fail(ctx, "get branch", err)
	}
	item, err := s.resolveItem(ctx, tenantID, query.ItemID, query.InventoryID)
	if err != nil {
		return nil, err
	}

	stock, err := s.stocks.FindByBranchAndItem(ctx, tenantID, query.BranchID, item.ID)
	if errors.Is(err, shared.ErrNotFound) {
		return &BranchStockResponse{BranchID: query.BranchID, ItemID: item.ID}, nil
	}
	if err != nil {
		return nil, s.fail(ctx, "get branch stock", err)
	}
	resp := ToBranchStockResponse(stock)
	return &resp, nil
}

// ListBranchStock returns every stock row of a branch
func (s *StockLedgerService) ListBranchStock(ctx context.Context, tenantID, branchID uuid.UUID) ([]BranchStockResponse, error) {
	if _, err := s.directory.GetBranch(ctx, tenantID, branchID); err != nil {
		return nil, s.fail(ctx, "get branch", err)
	}
	stocks, err := s.stocks.FindByBranch(ctx, tenantID, branchID)
	if err != nil {
		return nil, s.fail(ctx, "list branch stock", err)
	}
	responses := make([]BranchStockResponse, len(stocks))
	for i := range stocks {
		responses[i] = ToBranchStockResponse(&stocks[i])
	}
	return responses, nil
}

// ListMovements returns one page of the movement history, oldest first
func (s *StockLedgerService) ListMovements(ctx context.Context, tenantID uuid.UUID, filter MovementListFilter) (*shared.Paginated[StockMovementResponse], error) {
	domainFilter := inventory.MovementFilter{
		BranchID:    filter.BranchID,
		ReferenceID: filter.ReferenceID,
		From:        filter.StartDate,
		To:          filter.EndDate,
	}
	paging := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}
	paging.Normalize()
	domainFilter.Page, domainFilter.PageSize = paging.Page, paging.PageSize

	if filter.MovementType != "" {
		mt := inventory.MovementType(strings.ToUpper(filter.MovementType))
		if !mt.IsValid() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Invalid movement type: %s", filter.MovementType))
		}
		domainFilter.MovementType = &mt
	}
	if filter.ReferenceType != "" {
		rt := inventory.ReferenceType(strings.ToUpper(filter.ReferenceType))
		if !rt.IsValid() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Invalid reference type: %s", filter.ReferenceType))
		}
		domainFilter.ReferenceType = &rt
	}
	if filter.ItemID != nil || filter.InventoryID != nil {
		item, err := s.resolveItem(ctx, tenantID, filter.ItemID, filter.InventoryID)
		if err != nil {
			return nil, err
		}
		domainFilter.ItemID = &item.ID
	}

	movements, total, err := s.movements.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, s.fail(ctx, "list stock movements", err)
	}
	page := shared.NewPaginated(ToStockMovementResponses(movements), total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// VerifyLedger replays the movements of one stock row and compares the sum
// with the stored quantity
func (s *StockLedgerService) VerifyLedger(ctx context.Context, tenantID uuid.UUID, query StockQuery) (*LedgerVerificationResponse, error) {
	item, err := s.resolveItem(ctx, tenantID, query.ItemID, query.InventoryID)
	if err != nil {
		return nil, err
	}
	stock, err := s.stocks.FindByBranchAndItem(ctx, tenantID, query.BranchID, item.ID)
	if err != nil {
		return nil, s.fail(ctx, "get branch stock", err)
	}
	result, err := s.verify(ctx, stock)
	if err != nil {
		return nil, s.fail(ctx, "verify ledger", err)
	}
	return result, nil
}

// VerifyBranch replays the ledger of every stock row of a branch
func (s *StockLedgerService) VerifyBranch(ctx context.Context, tenantID, branchID uuid.UUID) (*BranchVerificationResponse, error) {
	if _, err := s.directory.GetBranch(ctx, tenantID, branchID); err != nil {
		return nil, s.fail(ctx, "get branch", err)
	}
	stocks, err := s.stocks.FindByBranch(ctx, tenantID, branchID)
	if err != nil {
		return nil, s.fail(ctx, "list branch stock", err)
	}

	out := &BranchVerificationResponse{
		BranchID: branchID,
		Rows:     make([]LedgerVerificationResponse, 0, len(stocks)),
	}
	for i := range stocks {
		row, err := s.verify(ctx, &stocks[i])
		if err != nil {
			return nil, s.fail(ctx, "verify ledger", err)
		}
		out.Checked++
		if !row.Consistent {
			out.Inconsistent++
		}
		out.Rows = append(out.Rows, *row)
	}
	return out, nil
}

func (s *StockLedgerService) verify(ctx context.Context, stock *inventory.BranchStock) (*LedgerVerificationResponse, error) {
	sum, count, err := s.movements.SumByBranchStock(ctx, stock.TenantID, stock.ID)
	if err != nil {
		return nil, err
	}
	discrepancy := stock.Quantity.Sub(sum)
	result := &LedgerVerificationResponse{
		BranchStockID:  stock.ID,
		BranchID:       stock.BranchID,
		ItemID:         stock.ItemID,
		Quantity:       stock.Quantity,
		LedgerQuantity: sum,
		MovementCount:  count,
		Discrepancy:    discrepancy,
		Consistent:     discrepancy.IsZero(),
	}
	if !result.Consistent {
		logger.For(ctx, s.logger).Warn("stock ledger discrepancy",
			zap.String("tenant_id", stock.TenantID.String()),
			zap.String("branch_stock_id", stock.ID.String()),
			zap.String("quantity", stock.Quantity.String()),
			zap.String("ledger_quantity", sum.String()),
		)
	}
	return result, nil
}

// Adjust posts a manual ADJUSTMENT movement. The resulting stock may not go negative.
func (s *StockLedgerService) Adjust(ctx context.Context, tenantID uuid.UUID, req AdjustStockRequest) (*StockMovementResponse, error) {
	if req.Quantity.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Adjustment quantity cannot be zero")
	}
	if strings.TrimSpace(req.Notes) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Adjustment notes are required")
	}
	branch, err := s.directory.GetBranch(ctx, tenantID, req.BranchID)
	if err != nil {
		return nil, s.fail(ctx, "get branch", err)
	}
	if !branch.IsActive {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Branch is inactive")
	}
	item, err := s.resolveItem(ctx, tenantID, req.ItemID, req.InventoryID)
	if err != nil {
		return nil, err
	}

	var movement *inventory.StockMovement
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		ledger := inventory.NewLedger(repos.BranchStocks(), repos.StockMovements())
		var err error
		movement, err = ledger.Apply(ctx, inventory.MovementRequest{
			TenantID:      tenantID,
			BranchID:      branch.ID,
			ItemID:        item.ID,
			Quantity:      req.Quantity,
			MovementType:  inventory.MovementTypeAdjustment,
			ReferenceType: inventory.ReferenceTypeManual,
			ActorID:       req.ActorID,
			Notes:         strings.TrimSpace(req.Notes),
		})
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "adjust stock", err)
	}

	s.metrics.RecordStockMovement(ctx, tenantID, string(movement.MovementType))
	s.publish(ctx, inventory.NewStockMovedEvent(movement))
	logger.For(ctx, s.logger).Info("stock adjusted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("branch_id", branch.ID.String()),
		zap.String("item_id", item.ID.String()),
		zap.String("quantity", req.Quantity.String()),
		zap.String("new_quantity", movement.NewQuantity.String()),
	)

	resp := ToStockMovementResponse(movement)
	return &resp, nil
}

func (s *StockLedgerService) resolveItem(ctx context.Context, tenantID uuid.UUID, itemID, inventoryID *uuid.UUID) (*masterdata.Item, error) {
	ref, err := masterdata.NewItemRef(itemID, inventoryID)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, err.Error())
	}
	item, err := s.directory.ResolveItem(ctx, tenantID, ref)
	if err != nil {
		return nil, s.fail(ctx, "resolve item", err)
	}
	return item, nil
}

func (s *StockLedgerService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.For(ctx, s.logger).Warn("failed to publish domain events", zap.Int("count", len(events)), zap.Error(err))
	}
}

func (s *StockLedgerService) fail(ctx context.Context, operation string, err error) error {
	var de *shared.DomainError
	if errors.As(err, &de) {
		if de.Code == shared.CodeConcurrencyConflict {
			s.metrics.RecordConcurrencyConflict(ctx, operation)
		}
		return de
	}
	logger.For(ctx, s.logger).Error("unexpected failure", zap.String("operation", operation), zap.Error(err))
	return shared.NewInternalError("Failed to "+operation, err)
}
