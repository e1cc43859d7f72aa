package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/HSouheill/branchstock_backend/models"
)

// timestampResolution is the precision sales are stored with. Trailing
// windows end one tick after now so a sale stamped exactly now is counted.
const timestampResolution = time.Millisecond

// WindowBounds returns the half-open range [from, to) covered by window at
// now. Calendar windows use now's location for midnight.
func WindowBounds(window models.Window, now time.Time) (time.Time, time.Time, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch window {
	case models.WindowToday:
		return midnight, midnight.AddDate(0, 0, 1), nil
	case models.WindowYesterday:
		return midnight.AddDate(0, 0, -1), midnight, nil
	case models.WindowLastWeek:
		return now.Add(-7 * 24 * time.Hour), now.Add(timestampResolution), nil
	case models.WindowLastMonth:
		return now.AddDate(0, -1, 0), now.Add(timestampResolution), nil
	}
	return time.Time{}, time.Time{}, newValidationError("window", fmt.Sprintf("unknown window %q", window))
}

// InRange keeps the sales whose timestamp falls in [from, to). Sales with
// an unparseable timestamp are skipped.
func InRange(sales []models.Sale, from, to time.Time) []models.Sale {
	out := make([]models.Sale, 0, len(sales))
	for _, sale := range sales {
		t, err := sale.Time()
		if err != nil {
			continue
		}
		if !t.Before(from) && t.Before(to) {
			out = append(out, sale)
		}
	}
	return out
}

// Summarize totals a set of sales using each sale's own recorded price.
func Summarize(sales []models.Sale) models.Totals {
	total := decimal.Zero
	quantity := 0
	for _, sale := range sales {
		line := decimal.NewFromFloat(sale.Price).Mul(decimal.NewFromInt(int64(sale.Quantity)))
		total = total.Add(line)
		quantity += sale.Quantity
	}
	amount, _ := total.Float64()
	return models.Totals{
		Count:         len(sales),
		TotalAmount:   amount,
		TotalQuantity: quantity,
	}
}

// SummarizeViews is Summarize over enriched sales.
func SummarizeViews(views []models.SaleView) models.Totals {
	sales := make([]models.Sale, len(views))
	for i := range views {
		sales[i] = views[i].Sale
	}
	return Summarize(sales)
}

// MatchesSearch reports whether any searchable attribute of view contains
// term, ignoring case. An empty term matches everything.
func MatchesSearch(view models.SaleView, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, v := range []string{
		view.ProductID,
		view.Category,
		view.ProductBrand,
		view.ProductModel,
		view.WorkerName,
		view.SoldBy,
	} {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}
