package repositories

import (
	"context"

	"github.com/HSouheill/branchstock_backend/models"
)

type BranchRepository interface {
	Create(ctx context.Context, branch *models.Branch) error
	FindByID(ctx context.Context, id string) (*models.Branch, error)
	List(ctx context.Context) ([]models.Branch, error)
	// UpdateCategories replaces the category list only while the stored
	// revision still equals revision. ErrConflict otherwise.
	UpdateCategories(ctx context.Context, id string, revision int64, categories []models.Category) error
}

type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	FindByID(ctx context.Context, branchID, category, id string) (*models.Item, error)
	List(ctx context.Context, branchID, category string) ([]models.Item, error)
	Update(ctx context.Context, branchID, category, id string, update models.ItemUpdate) (*models.Item, error)
	SetImageURL(ctx context.Context, branchID, category, id, url string) error
	// DecrementStock subtracts qty only if the current stock covers it and
	// returns the new stock. ErrInsufficientStock otherwise.
	DecrementStock(ctx context.Context, branchID, category, id string, qty int) (int, error)
	IncrementStock(ctx context.Context, branchID, category, id string, qty int) (int, error)
}

type SaleRepository interface {
	Create(ctx context.Context, sale *models.Sale) error
	List(ctx context.Context, branchID string, filter models.SaleFilter) ([]models.Sale, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, uid string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, uid string, assignment models.RoleAssignment) error
	SetBlocked(ctx context.Context, uid string, blocked bool) error
	ListWorkers(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	CountWorkers(ctx context.Context) (int64, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *models.OwnerMessage) error
	List(ctx context.Context, limit int64) ([]models.OwnerMessage, error)
}
