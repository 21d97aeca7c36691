// Package masterdata describes the reference data the purchase ledger reads but never owns:
// branches, suppliers, items and payment methods. They are maintained by other parts of the
// repair-shop backend and are consumed here only through the Directory port.
package masterdata

import (
	"context"

	"github.com/google/uuid"
)

// Branch is a physical location that holds its own stock
type Branch struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Code     string
	Name     string
	IsActive bool
}

// Supplier is a vendor goods are purchased from
type Supplier struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Code     string
	Name     string
	IsActive bool
}

// Item is a stockable part or consumable
type Item struct {
	ID                uuid.UUID
	TenantID          uuid.UUID
	SKU               string
	Name              string
	LegacyInventoryID *uuid.UUID
	IsActive          bool
}

// PaymentMethod is a way money moves between the shop and a supplier
type PaymentMethod struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Name     string
	IsActive bool
}

// Directory resolves master data within a tenant.
// Every lookup returns shared.ErrNotFound when the record is missing or belongs to another tenant.
type Directory interface {
	GetBranch(ctx context.Context, tenantID, id uuid.UUID) (*Branch, error)
	GetSupplier(ctx context.Context, tenantID, id uuid.UUID) (*Supplier, error)
	// ResolveItem turns either flavour of ItemRef into the canonical item
	ResolveItem(ctx context.Context, tenantID uuid.UUID, ref ItemRef) (*Item, error)
	GetPaymentMethod(ctx context.Context, tenantID, id uuid.UUID) (*PaymentMethod, error)
}
