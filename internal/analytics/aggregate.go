// Package analytics derives period summaries from a ledger snapshot. The
// aggregation functions are pure; Service only loads the snapshot.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"smartcents/internal/core"
)

type Totals struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
	// SavingsRate is a whole percentage; 0 when there is no income.
	SavingsRate int64 `json:"savings_rate"`
}

type CategoryAmount struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type MonthPoint struct {
	Period   string          `json:"period"` // YYYY-MM
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.NewFromFloat(0.5)
)

// InRange reports whether d lies in [from, to]. Zero bounds are open.
func InRange(d, from, to core.Date) bool {
	if !from.IsZero() && d.Compare(from) < 0 {
		return false
	}
	if !to.IsZero() && d.Compare(to) > 0 {
		return false
	}
	return true
}

// PeriodTotals sums the transactions dated within [from, to].
func PeriodTotals(txs []core.Transaction, from, to core.Date) Totals {
	income, expenses := decimal.Zero, decimal.Zero
	for _, t := range txs {
		if !InRange(t.Date, from, to) {
			continue
		}
		switch t.Type {
		case core.Income:
			income = income.Add(t.Amount)
		case core.Expense:
			expenses = expenses.Add(t.Amount)
		}
	}

	totals := Totals{
		Income:   income,
		Expenses: expenses,
		Balance:  income.Sub(expenses),
	}
	totals.SavingsRate = SavingsRate(income, expenses)
	return totals
}

// SavingsRate returns round((income-expenses)/income*100), rounding halves
// toward positive infinity. Income <= 0 yields 0.
func SavingsRate(income, expenses decimal.Decimal) int64 {
	if !income.IsPositive() {
		return 0
	}
	rate := income.Sub(expenses).Mul(hundred).Div(income)
	return rate.Add(half).Floor().IntPart()
}

// ByCategory sums the amounts of transactions of type typ per category name.
// Transactions without a category, or whose category is not in categories,
// are grouped under core.UncategorizedLabel.
func ByCategory(txs []core.Transaction, categories []core.Category, typ core.TransactionType) map[string]decimal.Decimal {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	out := make(map[string]decimal.Decimal)
	for _, t := range txs {
		if t.Type != typ {
			continue
		}
		label := core.UncategorizedLabel
		if !t.IsUncategorized() {
			if name, ok := names[*t.CategoryID]; ok {
				label = name
			}
		}
		out[label] = out[label].Add(t.Amount)
	}
	return out
}

// SortedBreakdown orders a ByCategory result by amount, largest first, then by name.
func SortedBreakdown(m map[string]decimal.Decimal) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(m))
	for name, amount := range m {
		out = append(out, CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// MonthlySeries buckets transactions by YYYY-MM. Months appear in the order
// they are first seen in txs, so a date-ordered input gives a chronological
// series.
func MonthlySeries(txs []core.Transaction) []MonthPoint {
	var (
		out   []MonthPoint
		index = make(map[string]int)
	)
	for _, t := range txs {
		period := t.Date.Period()
		i, ok := index[period]
		if !ok {
			i = len(out)
			index[period] = i
			out = append(out, MonthPoint{Period: period, Income: decimal.Zero, Expenses: decimal.Zero})
		}
		switch t.Type {
		case core.Income:
			out[i].Income = out[i].Income.Add(t.Amount)
		case core.Expense:
			out[i].Expenses = out[i].Expenses.Add(t.Amount)
		}
	}
	return out
}
