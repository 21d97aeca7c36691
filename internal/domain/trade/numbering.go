package trade

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Document number prefixes
const (
	PrefixPurchaseOrder  = "PO"
	PrefixPurchaseReturn = "PR"
)

// DocumentSequence hands out collision-free, per-branch increasing numbers.
// Next must be called inside the transaction that inserts the document.
type DocumentSequence interface {
	Next(ctx context.Context, tenantID, branchID uuid.UUID, prefix string) (int64, error)
}

// FormatDocumentNumber renders numbers like PO-DT01-00042
func FormatDocumentNumber(prefix, branchCode string, seq int64) string {
	return fmt.Sprintf("%s-%s-%05d", prefix, strings.ToUpper(strings.TrimSpace(branchCode)), seq)
}
