package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// orderClause builds a whitelisted ORDER BY fragment, falling back to created_at DESC
func orderClause(orderBy, orderDir string, allowed map[string]bool) string {
	field := ValidateSortField(orderBy, allowed, "")
	if field == "" {
		return "created_at DESC"
	}
	return field + " " + ValidateSortOrder(orderDir)
}

// PurchaseOrderSortFields contains allowed sort fields for purchase orders
var PurchaseOrderSortFields = map[string]bool{
	"id":                     true,
	"created_at":             true,
	"updated_at":             true,
	"order_number":           true,
	"order_date":             true,
	"expected_delivery_date": true,
	"delivery_date":          true,
	"supplier_id":            true,
	"branch_id":              true,
	"status":                 true,
	"total_amount":           true,
	"grand_total":            true,
	"paid_amount":            true,
}

// PurchaseReturnSortFields contains allowed sort fields for purchase returns
var PurchaseReturnSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"return_number":   true,
	"supplier_id":     true,
	"status":          true,
	"return_type":     true,
	"reason":          true,
	"return_quantity": true,
	"refund_amount":   true,
}
