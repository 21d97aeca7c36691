package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/trade"
	"github.com/repairdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPurchasePaymentRepository implements trade.PurchasePaymentRepository using GORM
type GormPurchasePaymentRepository struct {
	db *gorm.DB
}

// NewGormPurchasePaymentRepository creates a new GormPurchasePaymentRepository
func NewGormPurchasePaymentRepository(db *gorm.DB) *GormPurchasePaymentRepository {
	return &GormPurchasePaymentRepository{db: db}
}

// Create appends a payment
func (r *GormPurchasePaymentRepository) Create(ctx context.Context, payment *trade.PurchasePayment) error {
	return r.db.WithContext(ctx).Create(models.PurchasePaymentModelFromDomain(payment)).Error
}

// FindByOrder lists the payments of an order, oldest first
func (r *GormPurchasePaymentRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]trade.PurchasePayment, error) {
	var rows []models.PurchasePaymentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Order("payment_date ASC").Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	payments := make([]trade.PurchasePayment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, nil
}

// CountByOrder counts the payments of an order
func (r *GormPurchasePaymentRepository) CountByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PurchasePaymentModel{}).
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GormRefundTransactionRepository implements trade.RefundTransactionRepository using GORM
type GormRefundTransactionRepository struct {
	db *gorm.DB
}

// NewGormRefundTransactionRepository creates a new GormRefundTransactionRepository
func NewGormRefundTransactionRepository(db *gorm.DB) *GormRefundTransactionRepository {
	return &GormRefundTransactionRepository{db: db}
}

// Create appends a refund
func (r *GormRefundTransactionRepository) Create(ctx context.Context, refund *trade.RefundTransaction) error {
	return r.db.WithContext(ctx).Create(models.RefundTransactionModelFromDomain(refund)).Error
}

// FindByReturn lists the refunds recorded for a return
func (r *GormRefundTransactionRepository) FindByReturn(ctx context.Context, tenantID, returnID uuid.UUID) ([]trade.RefundTransaction, error) {
	var rows []models.RefundTransactionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND return_id = ?", tenantID, returnID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	refunds := make([]trade.RefundTransaction, len(rows))
	for i := range rows {
		refunds[i] = *rows[i].ToDomain()
	}
	return refunds, nil
}

// Ensure interface compliance
var (
	_ trade.PurchasePaymentRepository   = (*GormPurchasePaymentRepository)(nil)
	_ trade.RefundTransactionRepository = (*GormRefundTransactionRepository)(nil)
)
