package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/branchstock_backend/models"
	"github.com/HSouheill/branchstock_backend/repositories/memstore"
)

func seedStock(t *testing.T, catalog *CatalogService, branchID, category string, stocks map[string]int) map[string]string {
	t.Helper()
	ctx := context.Background()
	_, err := catalog.UpsertCategory(ctx, branchID, category, nil)
	require.NoError(t, err)

	ids := map[string]string{}
	for model, stock := range stocks {
		id, err := catalog.AddItem(ctx, branchID, category, map[string]interface{}{
			"brand": "Acme", "model": model, "price": 10, "stock": stock,
		})
		require.NoError(t, err)
		ids[model] = id
	}
	return ids
}

func newLowStock(store *memstore.Store) *LowStockService {
	return NewLowStockService(store.Branches(), store.Items(), 5)
}

func TestScan_StrictlyBelowThreshold(t *testing.T) {
	catalog, store := newCatalog(t)
	ids := seedStock(t, catalog, "downtown", "phones", map[string]int{"A4": 4, "A5": 5, "A0": 0})

	result, err := newLowStock(store).Scan(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "downtown", result[0].BranchID)
	assert.Equal(t, "Downtown", result[0].BranchName)

	flagged := map[string]models.LowStockItem{}
	for _, it := range result[0].LowStockItems {
		flagged[it.ItemID] = it
	}
	assert.Len(t, flagged, 2)
	assert.Contains(t, flagged, ids["A4"])
	assert.Contains(t, flagged, ids["A0"])
	assert.NotContains(t, flagged, ids["A5"])
	assert.Equal(t, "Acme A4", flagged[ids["A4"]].Label)
	assert.Equal(t, 4, flagged[ids["A4"]].Stock)
}

func TestScan_OmitsHealthyBranches(t *testing.T) {
	catalog, store := newCatalog(t)
	ctx := context.Background()
	_, err := catalog.CreateBranch(ctx, "harbor", "Harbor")
	require.NoError(t, err)
	seedStock(t, catalog, "downtown", "phones", map[string]int{"A9": 9})
	seedStock(t, catalog, "harbor", "cases", map[string]int{"C1": 1})

	result, err := newLowStock(store).Scan(ctx, 0)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "harbor", result[0].BranchID)
	require.Len(t, result[0].LowStockItems, 1)
	assert.Equal(t, "cases", result[0].LowStockItems[0].Category)
}

func TestScan_CustomThreshold(t *testing.T) {
	catalog, store := newCatalog(t)
	seedStock(t, catalog, "downtown", "phones", map[string]int{"A9": 9, "A12": 12})

	result, err := newLowStock(store).Scan(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Len(t, result[0].LowStockItems, 1)
}

func TestScanBranch(t *testing.T) {
	catalog, store := newCatalog(t)
	seedStock(t, catalog, "downtown", "phones", map[string]int{"A9": 9})
	svc := newLowStock(store)

	branch, err := svc.ScanBranch(context.Background(), "downtown", 0)
	require.NoError(t, err)
	assert.Equal(t, "downtown", branch.BranchID)
	assert.Empty(t, branch.LowStockItems)

	_, err = svc.ScanBranch(context.Background(), "uptown", 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

type failingItems struct {
	*memstore.Items
	failBranch string
}

func (f failingItems) List(ctx context.Context, branchID, category string) ([]models.Item, error) {
	if branchID == f.failBranch {
		return nil, errors.New("read timeout")
	}
	return f.Items.List(ctx, branchID, category)
}

func TestScan_BranchFailure(t *testing.T) {
	catalog, store := newCatalog(t)
	ctx := context.Background()
	_, err := catalog.CreateBranch(ctx, "harbor", "Harbor")
	require.NoError(t, err)
	seedStock(t, catalog, "downtown", "phones", map[string]int{"A1": 1})
	seedStock(t, catalog, "harbor", "cases", map[string]int{"C1": 1})

	svc := NewLowStockService(store.Branches(), failingItems{store.Items(), "harbor"}, 5)
	_, err = svc.Scan(ctx, 0)
	var partial *PartialFailureError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, "lowStockScan", partial.Operation)
	assert.Equal(t, []string{"downtown"}, partial.Completed)
	assert.Equal(t, "harbor", partial.Failed)
}

func TestThreshold(t *testing.T) {
	svc := NewLowStockService(nil, nil, 5)
	assert.Equal(t, 5, svc.Threshold(0))
	assert.Equal(t, 5, svc.Threshold(-3))
	assert.Equal(t, 8, svc.Threshold(8))
}

func TestScan_BrandFallsBackToType(t *testing.T) {
	catalog, store := newCatalog(t)
	ctx := context.Background()
	_, err := catalog.UpsertCategory(ctx, "downtown", "cables", nil)
	require.NoError(t, err)
	id, err := catalog.AddItem(ctx, "downtown", "cables", map[string]interface{}{
		"type": "USB-C", "model": "1m", "price": 5, "stock": 2,
	})
	require.NoError(t, err)

	result, err := newLowStock(store).Scan(ctx, 5)
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Len(t, result[0].LowStockItems, 1)
	entry := result[0].LowStockItems[0]
	assert.Equal(t, id, entry.ItemID)
	assert.Equal(t, "USB-C", entry.Brand)
	assert.Equal(t, "USB-C 1m", entry.Label)
}
