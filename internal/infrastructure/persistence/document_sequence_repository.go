package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/trade"
	"github.com/repairdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDocumentSequence implements trade.DocumentSequence on the document_sequences table.
// The upsert takes a row lock that is held until the surrounding transaction ends,
// so concurrent callers for the same branch and prefix are serialized.
type GormDocumentSequence struct {
	db *gorm.DB
}

// NewGormDocumentSequence creates a new GormDocumentSequence
func NewGormDocumentSequence(db *gorm.DB) *GormDocumentSequence {
	return &GormDocumentSequence{db: db}
}

// Next increments and returns the counter, starting at 1
func (r *GormDocumentSequence) Next(ctx context.Context, tenantID, branchID uuid.UUID, prefix string) (int64, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		return 0, fmt.Errorf("document sequence prefix is required")
	}

	db := r.db.WithContext(ctx)
	row := models.DocumentSequenceModel{TenantID: tenantID, BranchID: branchID, Prefix: prefix, Value: 1}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "branch_id"}, {Name: "prefix"}},
		DoUpdates: clause.Assignments(map[string]any{"value": gorm.Expr("document_sequences.value + 1")}),
	}).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("failed to advance %s sequence: %w", prefix, err)
	}

	var value int64
	if err := db.Model(&models.DocumentSequenceModel{}).
		Select("value").
		Where("tenant_id = ? AND branch_id = ? AND prefix = ?", tenantID, branchID, prefix).
		Scan(&value).Error; err != nil {
		return 0, fmt.Errorf("failed to read %s sequence: %w", prefix, err)
	}
	return value, nil
}

// Ensure interface compliance
var _ trade.DocumentSequence = (*GormDocumentSequence)(nil)
