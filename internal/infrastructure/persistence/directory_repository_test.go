package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/repairdesk/backend/internal/domain/masterdata"
	"github.com/repairdesk/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormDirectory(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	dir := NewGormDirectory(db)
	ctx := context.Background()

	t.Run("branch", func(t *testing.T) {
		branch, err := dir.GetBranch(ctx, f.tenantID, f.branch.ID)
		require.NoError(t, err)
		assert.Equal(t, "DT01", branch.Code)

		_, err = dir.GetBranch(ctx, uuid.New(), f.branch.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("supplier", func(t *testing.T) {
		supplier, err := dir.GetSupplier(ctx, f.tenantID, f.supplier.ID)
		require.NoError(t, err)
		assert.True(t, supplier.IsActive)
	})

	t.Run("item by catalog id", func(t *testing.T) {
		item, err := dir.ResolveItem(ctx, f.tenantID, masterdata.ItemRefByID(f.item.ID))
		require.NoError(t, err)
		assert.Equal(t, f.item.ID, item.ID)
	})

	t.Run("item by legacy inventory id", func(t *testing.T) {
		item, err := dir.ResolveItem(ctx, f.tenantID, masterdata.ItemRefByLegacyInventory(*f.item.LegacyInventoryID))
		require.NoError(t, err)
		assert.Equal(t, f.item.ID, item.ID)
		assert.Equal(t, "SCR-IP13", item.SKU)
	})

	t.Run("legacy id of another tenant", func(t *testing.T) {
		_, err := dir.ResolveItem(ctx, uuid.New(), masterdata.ItemRefByLegacyInventory(*f.item.LegacyInventoryID))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("catalog id is not a legacy id", func(t *testing.T) {
		_, err := dir.ResolveItem(ctx, f.tenantID, masterdata.ItemRefByLegacyInventory(f.item.ID))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("unset reference", func(t *testing.T) {
		_, err := dir.ResolveItem(ctx, f.tenantID, masterdata.ItemRef{})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("payment method", func(t *testing.T) {
		pm, err := dir.GetPaymentMethod(ctx, f.tenantID, f.paymentMID)
		require.NoError(t, err)
		assert.Equal(t, "Bank transfer", pm.Name)
	})
}
