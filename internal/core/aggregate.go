package core

import (
	"sort"
	"time"
)

// CategoryTotal is an amount aggregated by category.
type CategoryTotal struct {
	Category Category `json:"category"`
	Total    Money    `json:"total"`
}

// MonthTotal is an amount aggregated by calendar month.
type MonthTotal struct {
	Year  int   `json:"year"`
	Month int   `json:"month"` // 1-12
	Total Money `json:"total"`
}

// BudgetStatus compares one category's budget against actual spending.
type BudgetStatus struct {
	Category  Category `json:"category"`
	Budget    Money    `json:"budget"`
	Actual    Money    `json:"actual"`
	Remaining Money    `json:"remaining"`
}

// CategoryTotals groups transactions by category, summing amounts.
// Categories with no transactions are omitted; output order is the
// order of first occurrence.
func CategoryTotals(txs []Transaction) []CategoryTotal {
	sums := make(map[Category]int64)
	var order []Category
	for _, t := range txs {
		if _, seen := sums[t.Category]; !seen {
			order = append(order, t.Category)
		}
		sums[t.Category] += t.Amount.Cents
	}
	out := make([]CategoryTotal, 0, len(order))
	for _, c := range order {
		out = append(out, CategoryTotal{Category: c, Total: Money{Cents: sums[c]}})
	}
	return out
}

// CategoryTotalsSeeded is CategoryTotals seeded with the full
// enumeration: every category appears, zero when unused, in
// enumeration order.
func CategoryTotalsSeeded(txs []Transaction) []CategoryTotal {
	sums := make(map[Category]int64, len(Categories()))
	for _, t := range txs {
		sums[t.Category] += t.Amount.Cents
	}
	out := make([]CategoryTotal, 0, len(Categories()))
	for _, c := range Categories() {
		out = append(out, CategoryTotal{Category: c, Total: Money{Cents: sums[c]}})
	}
	return out
}

// MonthlyTotals groups transactions by the year+month of their date,
// summing amounts. Output order is the order of first occurrence.
func MonthlyTotals(txs []Transaction) []MonthTotal {
	type key struct{ year, month int }
	sums := make(map[key]int64)
	var order []key
	for _, t := range txs {
		k := key{t.Date.Year(), int(t.Date.Month())}
		if _, seen := sums[k]; !seen {
			order = append(order, k)
		}
		sums[k] += t.Amount.Cents
	}
	out := make([]MonthTotal, 0, len(order))
	for _, k := range order {
		out = append(out, MonthTotal{Year: k.year, Month: k.month, Total: Money{Cents: sums[k]}})
	}
	return out
}

// CompareBudgets produces one status row per enumeration category.
// Actual sums every transaction in the category; callers scope the
// transaction slice to the budgets' month. A category with no budget
// reports budget zero and a remaining equal to the negative of actual.
func CompareBudgets(budgets []Budget, txs []Transaction) []BudgetStatus {
	byCategory := make(map[Category]int64, len(budgets))
	for _, b := range budgets {
		byCategory[b.Category] = b.Amount.Cents
	}
	actual := make(map[Category]int64)
	for _, t := range txs {
		actual[t.Category] += t.Amount.Cents
	}
	out := make([]BudgetStatus, 0, len(Categories()))
	for _, c := range Categories() {
		budget := byCategory[c]
		spent := actual[c]
		out = append(out, BudgetStatus{
			Category:  c,
			Budget:    Money{Cents: budget},
			Actual:    Money{Cents: spent},
			Remaining: Money{Cents: budget - spent},
		})
	}
	return out
}

// MostRecent returns the n most recent transactions, date descending.
// The sort is stable, so equal dates keep their input order.
func MostRecent(txs []Transaction, n int) []Transaction {
	sorted := make([]Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// Total sums all transaction amounts.
func Total(txs []Transaction) Money {
	var cents int64
	for _, t := range txs {
		cents += t.Amount.Cents
	}
	return Money{Cents: cents}
}

// Average returns the mean transaction amount, zero for an empty slice.
func Average(txs []Transaction) Money {
	if len(txs) == 0 {
		return Money{}
	}
	return Money{Cents: Total(txs).Cents / int64(len(txs))}
}

// InMonth filters transactions to those dated within the month
// containing ref.
func InMonth(txs []Transaction, ref time.Time) []Transaction {
	start := MonthOf(ref)
	end := start.AddDate(0, 1, 0)
	var out []Transaction
	for _, t := range txs {
		if !t.Date.Before(start) && t.Date.Before(end) {
			out = append(out, t)
		}
	}
	return out
}
