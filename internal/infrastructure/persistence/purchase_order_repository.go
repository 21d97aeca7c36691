package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/shared"
	"github.com/repairdesk/backend/internal/domain/trade"
	"github.com/repairdesk/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPurchaseOrderRepository implements trade.PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}

// FindByIDForTenant finds a purchase order by ID within a tenant
func (r *GormPurchaseOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", preloadLines).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a purchase order and holds a row lock on it until the transaction ends
func (r *GormPurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}

	var lines []models.PurchaseOrderLineModel
	if err := preloadLines(r.db.WithContext(ctx)).
		Where("order_id = ?", model.ID).
		Find(&lines).Error; err != nil {
		return nil, err
	}
	model.Lines = lines
	return model.ToDomain(), nil
}

// FindByLineIDForUpdate finds the order owning a line, locked for update
func (r *GormPurchaseOrderRepository) FindByLineIDForUpdate(ctx context.Context, tenantID, lineID uuid.UUID) (*trade.PurchaseOrder, error) {
	var line models.PurchaseOrderLineModel
	if err := r.db.WithContext(ctx).
		Select("id", "order_id").
		Where("id = ?", lineID).
		First(&line).Error; err != nil {
		return nil, translateError(err)
	}
	return r.FindByIDForUpdate(ctx, tenantID, line.OrderID)
}

// FindAllForTenant lists one page of orders
func (r *GormPurchaseOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]trade.PurchaseOrder, error) {
	filter.Normalize()

	var orderModels []models.PurchaseOrderModel
	query := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.
		Order(orderClause(filter.OrderBy, filter.OrderDir, PurchaseOrderSortFields)).
		Offset(filter.Offset()).Limit(filter.PageSize).
		Preload("Lines", preloadLines).
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]trade.PurchaseOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, nil
}

// CountForTenant counts orders matching the filter
func (r *GormPurchaseOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new order; gorm inserts its lines through the association
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, order *trade.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(models.PurchaseOrderModelFromDomain(order)).Error
}

// SaveWithLock updates the order header only if the stored version is the one it was read at,
// then brings the line rows in sync with the aggregate.
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *trade.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.PurchaseOrderModel{}).
			Where("id = ? AND tenant_id = ? AND version = ?", order.ID, order.TenantID, order.Version-1).
			Updates(map[string]any{
				"expected_delivery_date": order.ExpectedDeliveryDate,
				"delivery_date":          order.DeliveryDate,
				"supplier_invoice_ref":   order.SupplierInvoiceRef,
				"notes":                  order.Notes,
				"total_amount":           order.TotalAmount,
				"tax_amount":             order.TaxAmount,
				"grand_total":            order.GrandTotal,
				"paid_amount":            order.PaidAmount,
				"status":                 order.Status,
				"cancelled_at":           order.CancelledAt,
				"completed_at":           order.CompletedAt,
				"version":                order.Version,
				"updated_at":             order.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		lineIDs := make([]uuid.UUID, len(order.Lines))
		lineModels := make([]models.PurchaseOrderLineModel, len(order.Lines))
		for i := range order.Lines {
			lineIDs[i] = order.Lines[i].ID
			lineModels[i] = *models.PurchaseOrderLineModelFromDomain(&order.Lines[i])
		}

		stale := tx.Where("order_id = ?", order.ID)
		if len(lineIDs) > 0 {
			stale = stale.Where("id NOT IN ?", lineIDs)
		}
		if err := stale.Delete(&models.PurchaseOrderLineModel{}).Error; err != nil {
			return err
		}

		if len(lineModels) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "unit_price", "tax_rate", "tax_amount", "line_total", "received_quantity", "returned_quantity", "updated_at"}),
		}).Create(&lineModels).Error
	})
}

// DeleteForTenant removes an order and its lines
func (r *GormPurchaseOrderRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.PurchaseOrderModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Where("order_id = ?", id).Delete(&models.PurchaseOrderLineModel{}).Error
	})
}

// ExistsByOrderNumber checks if an order number exists for a tenant
func (r *GormPurchaseOrderRepository) ExistsByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Where("tenant_id = ? AND order_number = ?", tenantID, orderNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// StatusSummary counts orders and sums grand totals per status
func (r *GormPurchaseOrderRepository) StatusSummary(ctx context.Context, tenantID uuid.UUID) ([]trade.StatusSummary, error) {
	var rows []struct {
		Status     string
		Count      int64
		GrandTotal decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(grand_total), 0) AS grand_total").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	summaries := make([]trade.StatusSummary, len(rows))
	for i, row := range rows {
		summaries[i] = trade.StatusSummary{
			Status:     trade.PurchaseOrderStatus(row.Status),
			Count:      row.Count,
			GrandTotal: row.GrandTotal,
		}
	}
	return summaries, nil
}

// SupplierBalances aggregates non-cancelled orders per supplier
func (r *GormPurchaseOrderRepository) SupplierBalances(ctx context.Context, tenantID uuid.UUID, supplierID *uuid.UUID) ([]trade.SupplierBalance, error) {
	var rows []struct {
		SupplierID uuid.UUID
		OrderCount int64
		GrandTotal decimal.Decimal
		PaidAmount decimal.Decimal
	}
	query := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Select("supplier_id, COUNT(*) AS order_count, COALESCE(SUM(grand_total), 0) AS grand_total, COALESCE(SUM(paid_amount), 0) AS paid_amount").
		Where("tenant_id = ? AND status <> ?", tenantID, trade.PurchaseOrderStatusCancelled)
	if supplierID != nil {
		query = query.Where("supplier_id = ?", *supplierID)
	}
	if err := query.Group("supplier_id").Order("supplier_id").Scan(&rows).Error; err != nil {
		return nil, err
	}

	balances := make([]trade.SupplierBalance, len(rows))
	for i, row := range rows {
		balances[i] = trade.SupplierBalance{
			SupplierID:  row.SupplierID,
			OrderCount:  row.OrderCount,
			GrandTotal:  row.GrandTotal,
			PaidAmount:  row.PaidAmount,
			Outstanding: row.GrandTotal.Sub(row.PaidAmount),
		}
	}
	return balances, nil
}

// applyFilterWithoutPagination applies search and field filters
func (r *GormPurchaseOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(order_number) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "supplier_id":
			query = query.Where("supplier_id = ?", value)
		case "branch_id":
			query = query.Where("branch_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("order_date >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("order_date <= ?", t)
			}
		}
	}
	return query
}

// Ensure interface compliance
var _ trade.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
