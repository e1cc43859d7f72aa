package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/HSouheill/branchstock_backend/models"
	"github.com/HSouheill/branchstock_backend/repositories"
)

const (
	UnknownModel = "Unknown Model"
	UnknownEmail = "Unknown Email"
)

// AggregatorService computes rollups on read from the sales ledger.
type AggregatorService struct {
	branches repositories.BranchRepository
	items    repositories.ItemRepository
	sales    repositories.SaleRepository
	users    repositories.UserRepository
	now      func() time.Time
}

func NewAggregatorService(
	branches repositories.BranchRepository,
	items repositories.ItemRepository,
	sales repositories.SaleRepository,
	users repositories.UserRepository,
	loc *time.Location,
) *AggregatorService {
	if loc == nil {
		loc = time.Local
	}
	return &AggregatorService{
		branches: branches,
		items:    items,
		sales:    sales,
		users:    users,
		now:      func() time.Time { return time.Now().In(loc) },
	}
}

func (s *AggregatorService) windowFilter(window models.Window, workerID string) (models.SaleFilter, error) {
	from, to, err := WindowBounds(window, s.now())
	if err != nil {
		return models.SaleFilter{}, err
	}
	return models.SaleFilter{WorkerID: workerID, From: from, To: to}, nil
}

// Rollup totals one branch's sales in window, optionally narrowed to one
// worker and to sales matching search.
func (s *AggregatorService) Rollup(ctx context.Context, branchID string, window models.Window, workerID, search string) (*models.Rollup, error) {
	if _, err := s.branches.FindByID(ctx, branchID); err != nil {
		return nil, err
	}
	filter, err := s.windowFilter(window, workerID)
	if err != nil {
		return nil, err
	}

	sales, err := s.sales.List(ctx, branchID, filter)
	if err != nil {
		return nil, err
	}

	rollup := &models.Rollup{BranchID: branchID, Window: window, WorkerID: workerID, Search: search}
	if search == "" {
		rollup.Totals = Summarize(sales)
		return rollup, nil
	}

	views, err := s.enrichAll(ctx, sales)
	if err != nil {
		return nil, err
	}
	rollup.Totals = SummarizeViews(filterViews(views, search))
	return rollup, nil
}

// SalesReport is Rollup together with the enriched sales it counted,
// newest first.
func (s *AggregatorService) SalesReport(ctx context.Context, branchID string, window models.Window, workerID, search string) (*models.SalesReport, error) {
	if _, err := s.branches.FindByID(ctx, branchID); err != nil {
		return nil, err
	}
	filter, err := s.windowFilter(window, workerID)
	if err != nil {
		return nil, err
	}

	sales, err := s.sales.List(ctx, branchID, filter)
	if err != nil {
		return nil, err
	}
	views, err := s.enrichAll(ctx, sales)
	if err != nil {
		return nil, err
	}
	views = filterViews(views, search)

	return &models.SalesReport{
		Rollup: models.Rollup{
			BranchID: branchID,
			Window:   window,
			WorkerID: workerID,
			Search:   search,
			Totals:   SummarizeViews(views),
		},
		Sales: views,
	}, nil
}

func filterViews(views []models.SaleView, search string) []models.SaleView {
	if search == "" {
		return views
	}
	out := make([]models.SaleView, 0, len(views))
	for _, v := range views {
		if MatchesSearch(v, search) {
			out = append(out, v)
		}
	}
	return out
}

// Enrich joins one sale to its item and worker as they are now.
func (s *AggregatorService) Enrich(ctx context.Context, sale models.Sale) (models.SaleView, error) {
	views, err := s.enrichAll(ctx, []models.Sale{sale})
	if err != nil {
		return models.SaleView{}, err
	}
	return views[0], nil
}

type itemRef struct {
	branch   string
	category string
	id       string
}

// enrichAll looks each referenced item and worker up once. Deleted
// references are reported as unknown rather than failing.
func (s *AggregatorService) enrichAll(ctx context.Context, sales []models.Sale) ([]models.SaleView, error) {
	items := map[itemRef]*models.Item{}
	users := map[string]*models.User{}
	views := make([]models.SaleView, 0, len(sales))

	for _, sale := range sales {
		ref := itemRef{branch: sale.BranchID, category: sale.Category, id: sale.ProductID}
		item, seen := items[ref]
		if !seen {
			found, err := s.items.FindByID(ctx, sale.BranchID, sale.Category, sale.ProductID)
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return nil, err
			}
			item = found
			items[ref] = item
		}

		user, seen := users[sale.WorkerID]
		if !seen {
			found, err := s.users.FindByID(ctx, sale.WorkerID)
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return nil, err
			}
			user = found
			users[sale.WorkerID] = user
		}

		view := models.SaleView{Sale: sale, Amount: sale.Amount()}
		if item != nil {
			view.ProductBrand = item.Brand
			view.ProductModel = item.Model
			price := item.Price
			view.ProductPrice = &price
		} else {
			view.ProductModel = UnknownModel
		}
		if user != nil {
			view.WorkerName = user.Name
			view.SoldBy = user.Email
		} else {
			view.SoldBy = UnknownEmail
		}
		views = append(views, view)
	}
	return views, nil
}

// AllBranchesRollup returns today's and the trailing week's totals for
// every branch, including branches that sold nothing. Any branch failure
// fails the whole call.
func (s *AggregatorService) AllBranchesRollup(ctx context.Context) ([]models.BranchSalesRow, error) {
	branches, err := s.branches.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	dayFrom, dayTo, _ := WindowBounds(models.WindowToday, now)
	weekFrom, weekTo, _ := WindowBounds(models.WindowLastWeek, now)
	span := models.SaleFilter{From: earliest(dayFrom, weekFrom), To: latest(dayTo, weekTo)}

	rows := make([]models.BranchSalesRow, 0, len(branches))
	done := make([]string, 0, len(branches))
	for _, branch := range branches {
		sales, err := s.sales.List(ctx, branch.ID, span)
		if err != nil {
			return nil, &PartialFailureError{
				Operation: "allBranchesRollup",
				Completed: done,
				Failed:    branch.ID,
				Err:       err,
			}
		}
		rows = append(rows, models.BranchSalesRow{
			BranchID:    branch.ID,
			BranchName:  branch.Name,
			DailyTotal:  Summarize(InRange(sales, dayFrom, dayTo)).TotalAmount,
			WeeklyTotal: Summarize(InRange(sales, weekFrom, weekTo)).TotalAmount,
		})
		done = append(done, branch.ID)
	}
	return rows, nil
}

// Overview counts users and sums today's and last month's sales over all branches.
func (s *AggregatorService) Overview(ctx context.Context) (*models.Overview, error) {
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalWorkers, err := s.users.CountWorkers(ctx)
	if err != nil {
		return nil, err
	}
	branches, err := s.branches.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	dayFrom, dayTo, _ := WindowBounds(models.WindowToday, now)
	monthFrom, monthTo, _ := WindowBounds(models.WindowLastMonth, now)
	span := models.SaleFilter{From: earliest(dayFrom, monthFrom), To: latest(dayTo, monthTo)}

	today, month := decimal.Zero, decimal.Zero
	done := make([]string, 0, len(branches))
	for _, branch := range branches {
		sales, err := s.sales.List(ctx, branch.ID, span)
		if err != nil {
			return nil, &PartialFailureError{
				Operation: "overview",
				Completed: done,
				Failed:    branch.ID,
				Err:       err,
			}
		}
		today = today.Add(decimal.NewFromFloat(Summarize(InRange(sales, dayFrom, dayTo)).TotalAmount))
		month = month.Add(decimal.NewFromFloat(Summarize(InRange(sales, monthFrom, monthTo)).TotalAmount))
		done = append(done, branch.ID)
	}

	todayTotal, _ := today.Float64()
	monthTotal, _ := month.Float64()
	return &models.Overview{
		TotalUsers:   totalUsers,
		TotalWorkers: totalWorkers,
		TodaySales:   todayTotal,
		MonthSales:   monthTotal,
	}, nil
}

func earliest(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
