package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CategoryStats summarizes the category list.
type CategoryStats struct {
	Total    int
	Active   int
	Inactive int
}

// CategorySummary computes CategoryStats over items.
func CategorySummary(items []Category) CategoryStats {
	s := CategoryStats{Total: len(items)}
	for _, c := range items {
		if c.Active {
			s.Active++
		}
	}
	s.Inactive = s.Total - s.Active
	return s
}

// CategoryTotals holds the per-category slice of ProductStats.
type CategoryTotals struct {
	Name  string
	Count int
	Value decimal.Decimal
}

// ProductStats summarizes the product list.
type ProductStats struct {
	Total        int
	Active       int
	Inactive     int
	WithDiscount int
	TotalValue   decimal.Decimal
	AveragePrice decimal.Decimal
	ByCategory   map[int64]CategoryTotals
}

// ProductSummary computes ProductStats over items. Values use list prices.
func ProductSummary(items []Product) ProductStats {
	s := ProductStats{
		Total:      len(items),
		TotalValue: decimal.Zero,
		ByCategory: make(map[int64]CategoryTotals),
	}
	for _, p := range items {
		if p.Active {
			s.Active++
		}
		if p.HasDiscount() {
			s.WithDiscount++
		}
		s.TotalValue = s.TotalValue.Add(p.Price)

		ct := s.ByCategory[p.CategoryID]
		if ct.Name == "" {
			ct.Name = p.CategoryName
		}
		ct.Count++
		ct.Value = ct.Value.Add(p.Price)
		s.ByCategory[p.CategoryID] = ct
	}
	s.Inactive = s.Total - s.Active
	s.AveragePrice = decimal.Zero
	if s.Total > 0 {
		s.AveragePrice = s.TotalValue.Div(decimal.NewFromInt(int64(s.Total))).Round(2)
	}
	return s
}

// FormatBRL renders d as Brazilian reais, e.g. "R$ 1.234,56".
func FormatBRL(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%sR$ %s,%s", sign, b.String(), frac)
}
