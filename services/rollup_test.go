package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/branchstock_backend/models"
)

var testNow = time.Date(2024, 3, 15, 15, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func saleAt(t time.Time, price float64, qty int) models.Sale {
	return models.Sale{Price: price, Quantity: qty, Timestamp: models.FormatTimestamp(t)}
}

func TestWindowBounds(t *testing.T) {
	midnight := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		window   models.Window
		from, to time.Time
	}{
		{models.WindowToday, midnight, midnight.Add(24 * time.Hour)},
		{models.WindowYesterday, midnight.Add(-24 * time.Hour), midnight},
		{models.WindowLastWeek, testNow.Add(-7 * 24 * time.Hour), testNow.Add(time.Millisecond)},
		{models.WindowLastMonth, time.Date(2024, 2, 15, 15, 0, 0, 0, time.UTC), testNow.Add(time.Millisecond)},
	}
	for _, tt := range tests {
		t.Run(string(tt.window), func(t *testing.T) {
			from, to, err := WindowBounds(tt.window, testNow)
			require.NoError(t, err)
			assert.True(t, tt.from.Equal(from), "from %s", from)
			assert.True(t, tt.to.Equal(to), "to %s", to)
		})
	}

	_, _, err := WindowBounds("fortnight", testNow)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestWindowBounds_UsesLocationMidnight(t *testing.T) {
	beirut := time.FixedZone("EET", 2*60*60)
	now := time.Date(2024, 3, 15, 1, 0, 0, 0, beirut)

	from, _, err := WindowBounds(models.WindowToday, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 14, 22, 0, 0, 0, time.UTC), from.UTC())
}

func TestInRange_WindowMembership(t *testing.T) {
	sales := []models.Sale{
		saleAt(testNow.Add(-25*time.Hour), 1, 1),
		saleAt(testNow.Add(-2*time.Hour), 2, 1),
		saleAt(testNow.Add(-3*24*time.Hour), 4, 1),
		saleAt(testNow.Add(-40*24*time.Hour), 8, 1),
	}

	totalFor := func(window models.Window) float64 {
		from, to, err := WindowBounds(window, testNow)
		require.NoError(t, err)
		return Summarize(InRange(sales, from, to)).TotalAmount
	}

	assert.Equal(t, 2.0, totalFor(models.WindowToday))
	assert.Equal(t, 1.0, totalFor(models.WindowYesterday))
	assert.Equal(t, 7.0, totalFor(models.WindowLastWeek))
	assert.Equal(t, 7.0, totalFor(models.WindowLastMonth))
}

func TestInRange_HalfOpen(t *testing.T) {
	from := testNow.Add(-time.Hour)
	sales := []models.Sale{
		saleAt(from, 1, 1),
		saleAt(testNow, 1, 1),
		{Price: 1, Quantity: 1, Timestamp: "not a time"},
	}

	got := InRange(sales, from, testNow)
	require.Len(t, got, 1)
	assert.Equal(t, models.FormatTimestamp(from), got[0].Timestamp)
}

func TestSummarize(t *testing.T) {
	totals := Summarize([]models.Sale{
		saleAt(testNow, 0.1, 3),
		saleAt(testNow, 19.99, 2),
	})
	assert.Equal(t, 2, totals.Count)
	assert.Equal(t, 5, totals.TotalQuantity)
	assert.Equal(t, 40.28, totals.TotalAmount)

	// Sub-cent prices are summed exactly, not rounded to cents.
	fractional := Summarize([]models.Sale{saleAt(testNow, 0.125, 3), saleAt(testNow, 0.001, 1)})
	assert.Equal(t, 0.376, fractional.TotalAmount)

	assert.Equal(t, models.Totals{}, Summarize(nil))
}

func TestMatchesSearch(t *testing.T) {
	view := models.SaleView{
		Sale:         models.Sale{ProductID: "item-42", Category: "phones"},
		ProductBrand: "Acme",
		ProductModel: "X1",
		WorkerName:   "Rana",
		SoldBy:       "rana@example.com",
	}

	for _, term := range []string{"", "ITEM-42", "phone", "acme", "x1", "ran", "example.com"} {
		assert.True(t, MatchesSearch(view, term), term)
	}
	assert.False(t, MatchesSearch(view, "laptop"))
}
