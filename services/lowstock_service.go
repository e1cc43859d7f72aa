package services

import (
	"context"

	"github.com/HSouheill/branchstock_backend/models"
	"github.com/HSouheill/branchstock_backend/repositories"
)

// LowStockService sweeps branch catalogs for items that need restocking.
type LowStockService struct {
	branches         repositories.BranchRepository
	items            repositories.ItemRepository
	defaultThreshold int
}

func NewLowStockService(branches repositories.BranchRepository, items repositories.ItemRepository, defaultThreshold int) *LowStockService {
	return &LowStockService{
		branches:         branches,
		items:            items,
		defaultThreshold: defaultThreshold,
	}
}

// Threshold resolves a requested threshold; non-positive values fall back
// to the configured default.
func (s *LowStockService) Threshold(requested int) int {
	if requested > 0 {
		return requested
	}
	return s.defaultThreshold
}

// Scan flags every item with stock below threshold in every declared
// category of every branch. Branches with nothing flagged are omitted.
func (s *LowStockService) Scan(ctx context.Context, threshold int) ([]models.BranchLowStock, error) {
	threshold = s.Threshold(threshold)

	branches, err := s.branches.List(ctx)
	if err != nil {
		return nil, err
	}

	result := []models.BranchLowStock{}
	done := make([]string, 0, len(branches))
	for i := range branches {
		flagged, err := s.scanBranch(ctx, &branches[i], threshold)
		if err != nil {
			return nil, &PartialFailureError{
				Operation: "lowStockScan",
				Completed: done,
				Failed:    branches[i].ID,
				Err:       err,
			}
		}
		done = append(done, branches[i].ID)
		if len(flagged) == 0 {
			continue
		}
		result = append(result, models.BranchLowStock{
			BranchID:      branches[i].ID,
			BranchName:    branches[i].Name,
			LowStockItems: flagged,
		})
	}
	return result, nil
}

// ScanBranch is Scan for one branch. The branch is returned even when
// nothing is flagged.
func (s *LowStockService) ScanBranch(ctx context.Context, branchID string, threshold int) (*models.BranchLowStock, error) {
	threshold = s.Threshold(threshold)

	branch, err := s.branches.FindByID(ctx, branchID)
	if err != nil {
		return nil, err
	}
	flagged, err := s.scanBranch(ctx, branch, threshold)
	if err != nil {
		return nil, err
	}
	return &models.BranchLowStock{
		BranchID:      branch.ID,
		BranchName:    branch.Name,
		LowStockItems: flagged,
	}, nil
}

func (s *LowStockService) scanBranch(ctx context.Context, branch *models.Branch, threshold int) ([]models.LowStockItem, error) {
	flagged := []models.LowStockItem{}
	for _, category := range branch.Categories {
		items, err := s.items.List(ctx, branch.ID, category.Name)
		if err != nil {
			return nil, err
		}
		for i := range items {
			if items[i].Stock < threshold {
				flagged = append(flagged, lowStockEntry(&items[i]))
			}
		}
	}
	return flagged, nil
}

func lowStockEntry(item *models.Item) models.LowStockItem {
	brand := item.Brand
	if brand == "" {
		brand = item.Type
	}
	return models.LowStockItem{
		ItemID:   item.ID,
		Brand:    brand,
		Model:    item.Model,
		Category: item.Category,
		Stock:    item.Stock,
		Label:    item.DisplayName(),
	}
}
