package models

// Window is a named time range over the sales ledger.
type Window string

const (
	WindowToday     Window = "today"
	WindowYesterday Window = "yesterday"
	WindowLastWeek  Window = "lastWeek"
	WindowLastMonth Window = "lastMonth"
)

// Valid reports whether w is a known window.
func (w Window) Valid() bool {
	switch w {
	case WindowToday, WindowYesterday, WindowLastWeek, WindowLastMonth:
		return true
	}
	return false
}

// Totals is the count and amount of a set of sales.
type Totals struct {
	Count         int     `json:"count"`
	TotalAmount   float64 `json:"totalAmount"`
	TotalQuantity int     `json:"totalQuantity"`
}

// Rollup is the totals of one branch over one window
type Rollup struct {
	BranchID string `json:"branchId"`
	Window   Window `json:"window"`
	WorkerID string `json:"workerId,omitempty"`
	Search   string `json:"search,omitempty"`
	Totals
}

// SalesReport is a rollup together with the enriched sales it was computed from.
type SalesReport struct {
	Rollup
	Sales []SaleView `json:"sales"`
}

// BranchSalesRow is one line of the admin all-branches view.
type BranchSalesRow struct {
	BranchID    string  `json:"branchId"`
	BranchName  string  `json:"branchName"`
	DailyTotal  float64 `json:"dailyTotal"`
	WeeklyTotal float64 `json:"weeklyTotal"`
}

// Overview feeds the owner dashboard.
type Overview struct {
	TotalUsers   int64   `json:"totalUsers"`
	TotalWorkers int64   `json:"totalWorkers"`
	TodaySales   float64 `json:"todaySales"`
	MonthSales   float64 `json:"monthSales"`
}

// LowStockItem is one flagged item.
type LowStockItem struct {
	ItemID   string `json:"itemId"`
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	Category string `json:"category"`
	Stock    int    `json:"stock"`
	Label    string `json:"label"`
}

// BranchLowStock groups flagged items per branch.
type BranchLowStock struct {
	BranchID      string         `json:"branchId"`
	BranchName    string         `json:"branchName"`
	LowStockItems []LowStockItem `json:"lowStockItems"`
}
