package masterdata

import (
	"fmt"

	"github.com/google/uuid"
)

// ItemRefKind says which key an ItemRef carries
type ItemRefKind int

const (
	// ItemRefCatalog refers to an item by its catalog ID
	ItemRefCatalog ItemRefKind = iota + 1
	// ItemRefLegacyInventory refers to an item through the pre-catalog inventory record ID
	ItemRefLegacyInventory
)

// ItemRef is a reference to an item by exactly one of two keys.
// Older clients still send the legacy inventory record ID; it is resolved once,
// at the application boundary, and only canonical item IDs travel further.
type ItemRef struct {
	kind ItemRefKind
	id   uuid.UUID
}

// ItemRefByID references an item by catalog ID
func ItemRefByID(id uuid.UUID) ItemRef {
	return ItemRef{kind: ItemRefCatalog, id: id}
}

// ItemRefByLegacyInventory references an item by legacy inventory record ID
func ItemRefByLegacyInventory(id uuid.UUID) ItemRef {
	return ItemRef{kind: ItemRefLegacyInventory, id: id}
}

// NewItemRef builds a reference from the two optional request fields.
// Exactly one of them must be set.
func NewItemRef(itemID, legacyInventoryID *uuid.UUID) (ItemRef, error) {
	hasItem := itemID != nil && *itemID != uuid.Nil
	hasLegacy := legacyInventoryID != nil && *legacyInventoryID != uuid.Nil
	switch {
	case hasItem && hasLegacy:
		return ItemRef{}, fmt.Errorf("item reference is ambiguous: both item_id and inventory_id given")
	case hasItem:
		return ItemRefByID(*itemID), nil
	case hasLegacy:
		return ItemRefByLegacyInventory(*legacyInventoryID), nil
	default:
		return ItemRef{}, fmt.Errorf("item reference is required")
	}
}

// Kind returns which key the reference carries
func (r ItemRef) Kind() ItemRefKind { return r.kind }

// ID returns the raw key
func (r ItemRef) ID() uuid.UUID { return r.id }

// IsZero reports whether the reference is unset
func (r ItemRef) IsZero() bool { return r.kind == 0 }

func (r ItemRef) String() string {
	switch r.kind {
	case ItemRefCatalog:
		return "item:" + r.id.String()
	case ItemRefLegacyInventory:
		return "legacy-inventory:" + r.id.String()
	default:
		return "item:<unset>"
	}
}
