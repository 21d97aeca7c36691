package persistence

import (
	"errors"

	"github.com/repairdesk/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps gorm's not-found sentinel to the domain one
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// pageBounds normalizes page/pageSize the same way shared.Filter does
func pageBounds(page, pageSize int) (offset, limit int) {
	f := shared.Filter{Page: page, PageSize: pageSize}
	f.Normalize()
	return f.Offset(), f.PageSize
}
