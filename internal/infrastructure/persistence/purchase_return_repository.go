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

// GormPurchaseReturnRepository implements trade.PurchaseReturnRepository using GORM
type GormPurchaseReturnRepository struct {
	db *gorm.DB
}

// NewGormPurchaseReturnRepository creates a new GormPurchaseReturnRepository
func NewGormPurchaseReturnRepository(db *gorm.DB) *GormPurchaseReturnRepository {
	return &GormPurchaseReturnRepository{db: db}
}

// FindByIDForTenant finds a purchase return by ID within a tenant
func (r *GormPurchaseReturnRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.PurchaseReturn, error) {
	var model models.PurchaseReturnModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a purchase return and locks its row
func (r *GormPurchaseReturnRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*trade.PurchaseReturn, error) {
	var model models.PurchaseReturnModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists one page of returns
func (r *GormPurchaseReturnRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]trade.PurchaseReturn, error) {
	filter.Normalize()

	var returnModels []models.PurchaseReturnModel
	query := r.db.WithContext(ctx).Model(&models.PurchaseReturnModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.
		Order(orderClause(filter.OrderBy, filter.OrderDir, PurchaseReturnSortFields)).
		Offset(filter.Offset()).Limit(filter.PageSize).
		Find(&returnModels).Error; err != nil {
		return nil, err
	}

	returns := make([]trade.PurchaseReturn, len(returnModels))
	for i := range returnModels {
		returns[i] = *returnModels[i].ToDomain()
	}
	return returns, nil
}

// CountForTenant counts returns matching the filter
func (r *GormPurchaseReturnRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.PurchaseReturnModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumActiveQuantityByLine sums the quantity of every return of a line that was not rejected
func (r *GormPurchaseReturnRepository) SumActiveQuantityByLine(ctx context.Context, tenantID, lineID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.PurchaseReturnModel{}).
		Select("COALESCE(SUM(return_quantity), 0) AS total").
		Where("tenant_id = ? AND line_id = ? AND status <> ?", tenantID, lineID, trade.ReturnStatusRejected).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Create inserts a new return
func (r *GormPurchaseReturnRepository) Create(ctx context.Context, ret *trade.PurchaseReturn) error {
	return r.db.WithContext(ctx).Create(models.PurchaseReturnModelFromDomain(ret)).Error
}

// SaveWithLock updates a return only if the stored version is the one it was read at
func (r *GormPurchaseReturnRepository) SaveWithLock(ctx context.Context, ret *trade.PurchaseReturn) error {
	result := r.db.WithContext(ctx).Model(&models.PurchaseReturnModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", ret.ID, ret.TenantID, ret.Version-1).
		Updates(map[string]any{
			"status":               ret.Status,
			"stock_reversed":       ret.StockReversed,
			"refund_processed":     ret.RefundProcessed,
			"replacement_order_id": ret.ReplacementOrderID,
			"notes":                ret.Notes,
			"confirmed_by":         ret.ConfirmedBy,
			"confirmed_at":         ret.ConfirmedAt,
			"rejected_at":          ret.RejectedAt,
			"refunded_at":          ret.RefundedAt,
			"version":              ret.Version,
			"updated_at":           ret.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func (r *GormPurchaseReturnRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(return_number) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "order_id":
			query = query.Where("order_id = ?", value)
		case "supplier_id":
			query = query.Where("supplier_id = ?", value)
		case "branch_id":
			query = query.Where("branch_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "return_type":
			query = query.Where("return_type = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}
	return query
}

// Ensure interface compliance
var _ trade.PurchaseReturnRepository = (*GormPurchaseReturnRepository)(nil)
