package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"smartcents/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func tx(id, amount string, typ core.TransactionType, date core.Date, categoryID string) core.Transaction {
	t := core.Transaction{ID: id, Amount: dec(amount), Type: typ, Date: date, UserID: "u1"}
	if categoryID != "" {
		t.CategoryID = &categoryID
	}
	return t
}

func TestPeriodTotals(t *testing.T) {
	march := []core.Transaction{
		tx("1", "50", core.Expense, core.NewDate(2024, 3, 5), "food"),
	}
	got := PeriodTotals(march, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31))
	assert.True(t, got.Income.IsZero())
	assert.True(t, got.Expenses.Equal(dec("50")))
	assert.True(t, got.Balance.Equal(dec("-50")))
	assert.Equal(t, int64(0), got.SavingsRate)

	mixed := []core.Transaction{
		tx("1", "1000", core.Income, core.NewDate(2024, 3, 1), ""),
		tx("2", "300", core.Expense, core.NewDate(2024, 3, 31), ""),
		tx("3", "999", core.Expense, core.NewDate(2024, 4, 1), ""),
	}
	got = PeriodTotals(mixed, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31))
	assert.True(t, got.Balance.Equal(dec("700")), "range bounds are inclusive")
	assert.Equal(t, int64(70), got.SavingsRate)

	unbounded := PeriodTotals(mixed, core.Date{}, core.Date{})
	assert.True(t, unbounded.Expenses.Equal(dec("1299")))

	empty := PeriodTotals(nil, core.Date{}, core.Date{})
	assert.True(t, empty.Balance.IsZero())
	assert.Equal(t, int64(0), empty.SavingsRate)
}

func TestSavingsRateRounding(t *testing.T) {
	tests := []struct {
		income, expenses string
		want             int64
	}{
		{"1000", "300", 70},
		{"200", "199", 1},     // 0.5 rounds up
		{"3", "2", 33},        // 33.33
		{"3", "1", 67},        // 66.67
		{"100", "250", -150},  // -150 exact
		{"200", "501", -150},  // -150.5 rounds toward +inf
		{"0", "50", 0},
		{"-10", "0", 0},
	}
	for _, tt := range tests {
		got := SavingsRate(dec(tt.income), dec(tt.expenses))
		assert.Equal(t, tt.want, got, "income=%s expenses=%s", tt.income, tt.expenses)
	}
}

func TestByCategory(t *testing.T) {
	cats := []core.Category{
		{ID: "food", Name: "Food", Type: core.Expense},
		{ID: "rent", Name: "Rent", Type: core.Expense},
	}
	txs := []core.Transaction{
		tx("1", "20", core.Expense, core.NewDate(2024, 1, 1), "food"),
		tx("2", "30.5", core.Expense, core.NewDate(2024, 1, 2), "food"),
		tx("3", "800", core.Expense, core.NewDate(2024, 1, 3), "rent"),
		tx("4", "5", core.Expense, core.NewDate(2024, 1, 4), ""),
		tx("5", "7", core.Expense, core.NewDate(2024, 1, 5), "deleted"),
		tx("6", "1000", core.Income, core.NewDate(2024, 1, 6), ""),
	}

	got := ByCategory(txs, cats, core.Expense)
	assert.Len(t, got, 3)
	assert.True(t, got["Food"].Equal(dec("50.5")))
	assert.True(t, got["Rent"].Equal(dec("800")))
	assert.True(t, got[core.UncategorizedLabel].Equal(dec("12")))

	income := ByCategory(txs, cats, core.Income)
	assert.Len(t, income, 1)
	assert.True(t, income[core.UncategorizedLabel].Equal(dec("1000")))

	breakdown := SortedBreakdown(got)
	names := make([]string, 0, len(breakdown))
	for _, b := range breakdown {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"Rent", "Food", core.UncategorizedLabel}, names)
}

func TestMonthlySeriesKeepsFirstSeenOrder(t *testing.T) {
	txs := []core.Transaction{
		tx("1", "10", core.Expense, core.NewDate(2024, 3, 2), ""),
		tx("2", "100", core.Income, core.NewDate(2024, 1, 15), ""),
		tx("3", "5", core.Expense, core.NewDate(2024, 3, 20), ""),
		tx("4", "1", core.Expense, core.NewDate(2024, 1, 1), ""),
	}

	got := MonthlySeries(txs)
	if assert.Len(t, got, 2) {
		assert.Equal(t, "2024-03", got[0].Period)
		assert.True(t, got[0].Expenses.Equal(dec("15")))
		assert.True(t, got[0].Income.IsZero())

		assert.Equal(t, "2024-01", got[1].Period)
		assert.True(t, got[1].Income.Equal(dec("100")))
		assert.True(t, got[1].Expenses.Equal(dec("1")))
	}

	assert.Empty(t, MonthlySeries(nil))
}
