package models

import (
	"github.com/google/uuid"
)

// DocumentSequenceModel holds the last issued number per tenant, branch and document prefix
type DocumentSequenceModel struct {
	TenantID uuid.UUID `gorm:"type:uuid;primaryKey"`
	BranchID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Prefix   string    `gorm:"type:varchar(10);primaryKey"`
	Value    int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (DocumentSequenceModel) TableName() string {
	return "document_sequences"
}
