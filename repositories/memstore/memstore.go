// Package memstore is an in-process implementation of the repository
// interfaces, used by tests and local tooling.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/HSouheill/branchstock_backend/models"
	"github.com/HSouheill/branchstock_backend/repositories"
)

type itemKey struct {
	branch   string
	category string
	id       string
}

// Store holds every collection behind one mutex. The exported error
// fields inject failures into the matching operation.
type Store struct {
	mu       sync.Mutex
	branches []models.Branch
	items    map[itemKey]models.Item
	order    []itemKey
	sales    []models.Sale
	users    map[string]models.User
	messages []models.OwnerMessage

	SaleCreateErr     error
	IncrementStockErr error
	SaleListErr       map[string]error
}

func New() *Store {
	return &Store{
		items:       map[itemKey]models.Item{},
		users:       map[string]models.User{},
		SaleListErr: map[string]error{},
	}
}

func (s *Store) Branches() *Branches { return &Branches{s} }
func (s *Store) Items() *Items       { return &Items{s} }
func (s *Store) Sales() *Sales       { return &Sales{s} }
func (s *Store) Users() *Users       { return &Users{s} }
func (s *Store) Messages() *Messages { return &Messages{s} }

// AllSales returns a copy of the ledger in insertion order.
func (s *Store) AllSales() []models.Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Sale(nil), s.sales...)
}

func copyBranch(b models.Branch) models.Branch {
	cats := make([]models.Category, len(b.Categories))
	for i, c := range b.Categories {
		cats[i] = models.Category{Name: c.Name, Fields: append([]models.FieldSpec{}, c.Fields...)}
	}
	b.Categories = cats
	return b
}

func copyItem(it models.Item) models.Item {
	if it.Attributes != nil {
		attrs := make(map[string]interface{}, len(it.Attributes))
		for k, v := range it.Attributes {
			attrs[k] = v
		}
		it.Attributes = attrs
	}
	return it
}

type Branches struct{ s *Store }

func (r *Branches) Create(_ context.Context, branch *models.Branch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.branches {
		if b.ID == branch.ID {
			return repositories.ErrDuplicate
		}
	}
	r.s.branches = append(r.s.branches, copyBranch(*branch))
	return nil
}

func (r *Branches) FindByID(_ context.Context, id string) (*models.Branch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.branches {
		if b.ID == id {
			out := copyBranch(b)
			return &out, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *Branches) List(_ context.Context) ([]models.Branch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Branch, len(r.s.branches))
	for i, b := range r.s.branches {
		out[i] = copyBranch(b)
	}
	return out, nil
}

func (r *Branches) UpdateCategories(_ context.Context, id string, revision int64, categories []models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.branches {
		if r.s.branches[i].ID == id {
			if r.s.branches[i].Revision != revision {
				return repositories.ErrConflict
			}
			r.s.branches[i] = copyBranch(models.Branch{
				ID:         id,
				Name:       r.s.branches[i].Name,
				Categories: categories,
				CreatedAt:  r.s.branches[i].CreatedAt,
				UpdatedAt:  r.s.branches[i].UpdatedAt,
				Revision:   revision + 1,
			})
			return nil
		}
	}
	return repositories.ErrNotFound
}

type Items struct{ s *Store }

func (r *Items) Create(_ context.Context, item *models.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := itemKey{item.BranchID, item.Category, item.ID}
	if _, ok := r.s.items[key]; ok {
		return repositories.ErrDuplicate
	}
	r.s.items[key] = copyItem(*item)
	r.s.order = append(r.s.order, key)
	return nil
}

func (r *Items) FindByID(_ context.Context, branchID, category, id string) (*models.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[itemKey{branchID, category, id}]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := copyItem(it)
	return &out, nil
}

func (r *Items) List(_ context.Context, branchID, category string) ([]models.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Item{}
	for _, key := range r.s.order {
		if key.branch != branchID || key.category != category {
			continue
		}
		if it, ok := r.s.items[key]; ok {
			out = append(out, copyItem(it))
		}
	}
	return out, nil
}

func (r *Items) Update(_ context.Context, branchID, category, id string, update models.ItemUpdate) (*models.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := itemKey{branchID, category, id}
	it, ok := r.s.items[key]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if update.Price != nil {
		it.Price = *update.Price
	}
	if update.Stock != nil {
		it.Stock = *update.Stock
	}
	if update.Warranty != nil {
		it.Warranty = *update.Warranty
	}
	r.s.items[key] = it
	out := copyItem(it)
	return &out, nil
}

func (r *Items) SetImageURL(_ context.Context, branchID, category, id, url string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := itemKey{branchID, category, id}
	it, ok := r.s.items[key]
	if !ok {
		return repositories.ErrNotFound
	}
	it.ImageURL = url
	r.s.items[key] = it
	return nil
}

// Delete removes an item, as an admin cleaning up the catalog would.
func (r *Items) Delete(_ context.Context, branchID, category, id string) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.items, itemKey{branchID, category, id})
}

func (r *Items) DecrementStock(_ context.Context, branchID, category, id string, qty int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := itemKey{branchID, category, id}
	it, ok := r.s.items[key]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	if it.Stock < qty {
		return 0, repositories.ErrInsufficientStock
	}
	it.Stock -= qty
	r.s.items[key] = it
	return it.Stock, nil
}

func (r *Items) IncrementStock(_ context.Context, branchID, category, id string, qty int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.IncrementStockErr != nil {
		return 0, r.s.IncrementStockErr
	}
	key := itemKey{branchID, category, id}
	it, ok := r.s.items[key]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	it.Stock += qty
	r.s.items[key] = it
	return it.Stock, nil
}

type Sales struct{ s *Store }

func (r *Sales) Create(_ context.Context, sale *models.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.SaleCreateErr != nil {
		return r.s.SaleCreateErr
	}
	r.s.sales = append(r.s.sales, *sale)
	return nil
}

func (r *Sales) List(_ context.Context, branchID string, filter models.SaleFilter) ([]models.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.SaleListErr[branchID]; err != nil {
		return nil, err
	}

	var from, to string
	if !filter.From.IsZero() {
		from = models.FormatTimestamp(filter.From)
	}
	if !filter.To.IsZero() {
		to = models.FormatTimestamp(filter.To)
	}

	out := []models.Sale{}
	for _, sale := range r.s.sales {
		if sale.BranchID != branchID {
			continue
		}
		if filter.WorkerID != "" && sale.WorkerID != filter.WorkerID {
			continue
		}
		if from != "" && sale.Timestamp < from {
			continue
		}
		if to != "" && sale.Timestamp >= to {
			continue
		}
		out = append(out, sale)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

type Users struct{ s *Store }

func (r *Users) FindByID(_ context.Context, uid string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[uid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r *Users) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.UID]; ok {
		return repositories.ErrDuplicate
	}
	r.s.users[user.UID] = *user
	return nil
}

func (r *Users) UpdateRole(_ context.Context, uid string, a models.RoleAssignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[uid]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Role = a.Role
	u.IsAdmin = a.IsAdmin
	u.IsWorker = a.IsWorker
	u.BranchID = a.BranchID
	u.BranchName = a.BranchName
	r.s.users[uid] = u
	return nil
}

func (r *Users) SetBlocked(_ context.Context, uid string, blocked bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[uid]
	if !ok {
		return repositories.ErrNotFound
	}
	u.IsBlocked = blocked
	r.s.users[uid] = u
	return nil
}

func (r *Users) ListWorkers(_ context.Context) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.User{}
	for _, u := range r.s.users {
		if u.IsWorker {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Users) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.users)), nil
}

func (r *Users) CountWorkers(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, u := range r.s.users {
		if u.IsWorker {
			n++
		}
	}
	return n, nil
}

type Messages struct{ s *Store }

func (r *Messages) Create(_ context.Context, msg *models.OwnerMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.messages = append(r.s.messages, *msg)
	return nil
}

// List returns the newest messages first.
func (r *Messages) List(_ context.Context, limit int64) ([]models.OwnerMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.OwnerMessage{}
	for i := len(r.s.messages) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		out = append(out, r.s.messages[i])
	}
	return out, nil
}

var (
	_ repositories.BranchRepository  = (*Branches)(nil)
	_ repositories.ItemRepository    = (*Items)(nil)
	_ repositories.SaleRepository    = (*Sales)(nil)
	_ repositories.UserRepository    = (*Users)(nil)
	_ repositories.MessageRepository = (*Messages)(nil)
)
