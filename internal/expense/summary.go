package expense

import (
	"github.com/theirongolddev/iexpense/internal/model"

	"github.com/shopspring/decimal"
)

// CategoryTotal holds the aggregate for one category.
type CategoryTotal struct {
	Category     string
	Count        int
	Total        float64
	SharePercent float64
}

// Summary aggregates a record list by category.
type Summary struct {
	Categories []CategoryTotal
	Count      int
	Total      float64
}

// Summarize computes per-category totals in first-seen category order.
// Sums are accumulated as decimals so repeated float additions don't drift.
func Summarize(items []model.Expense) Summary {
	sums := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	var order []string
	grand := decimal.Zero

	for _, e := range items {
		if _, ok := sums[e.Type]; !ok {
			sums[e.Type] = decimal.Zero
			order = append(order, e.Type)
		}
		amt := decimal.NewFromFloat(e.Amount)
		sums[e.Type] = sums[e.Type].Add(amt)
		counts[e.Type]++
		grand = grand.Add(amt)
	}

	sum := Summary{
		Count: len(items),
		Total: grand.InexactFloat64(),
	}
	for _, cat := range order {
		ct := CategoryTotal{
			Category: cat,
			Count:    counts[cat],
			Total:    sums[cat].InexactFloat64(),
		}
		if !grand.IsZero() {
			ct.SharePercent = sums[cat].Div(grand).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		sum.Categories = append(sum.Categories, ct)
	}
	return sum
}

// TotalFor returns the total of one category, or zero when absent.
func (s Summary) TotalFor(category string) float64 {
	for _, ct := range s.Categories {
		if ct.Category == category {
			return ct.Total
		}
	}
	return 0
}
