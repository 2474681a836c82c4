package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CategoryTotal represents an amount aggregated by category name.
type CategoryTotal struct {
	Name   string
	Amount decimal.Decimal
}

// Summary is a compact view of the whole ledger.
type Summary struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
	Count   int
}

// SortedTotals turns a category map into a slice ordered by amount
// (largest first), ties broken by name.
func SortedTotals(m map[string]decimal.Decimal) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(m))
	for name, amount := range m {
		out = append(out, CategoryTotal{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}
