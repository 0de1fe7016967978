package analytics

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartcents/internal/core"
	"smartcents/internal/log"
	"smartcents/internal/storage"
)

func TestSummary(t *testing.T) {
	ctx := context.Background()
	store, err := storage.Open(filepath.Join(t.TempDir(), "analytics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.CreateUser(ctx, core.User{ID: "u1", Email: "u1@example.com", PasswordHash: "x"}))
	require.NoError(t, store.CreateUser(ctx, core.User{ID: "u2", Email: "u2@example.com", PasswordHash: "x"}))
	require.NoError(t, store.CreateCategory(ctx, core.Category{ID: "food", Name: "Food", Type: core.Expense, Color: "red", UserID: "u1"}))

	for _, in := range []core.Transaction{
		tx("a", "1000", core.Income, core.NewDate(2024, 3, 1), ""),
		tx("b", "250", core.Expense, core.NewDate(2024, 3, 10), "food"),
		tx("c", "50", core.Expense, core.NewDate(2024, 4, 2), ""),
		tx("d", "70", core.Expense, core.NewDate(2024, 5, 1), "food"),
	} {
		require.NoError(t, store.InsertTransaction(ctx, in))
	}
	other := tx("z", "9999", core.Expense, core.NewDate(2024, 3, 5), "")
	other.UserID = "u2"
	require.NoError(t, store.InsertTransaction(ctx, other))

	svc := NewService(store, log.Nop())
	got, err := svc.Summary(ctx, "u1", core.NewDate(2024, 3, 1), core.NewDate(2024, 4, 30))
	require.NoError(t, err)

	assert.True(t, got.Totals.Income.Equal(dec("1000")))
	assert.True(t, got.Totals.Expenses.Equal(dec("300")))
	assert.Equal(t, int64(70), got.Totals.SavingsRate)

	require.Len(t, got.Expenses, 2)
	assert.Equal(t, "Food", got.Expenses[0].Name)
	assert.Equal(t, core.UncategorizedLabel, got.Expenses[1].Name)

	require.Len(t, got.Monthly, 2)
	assert.Equal(t, "2024-03", got.Monthly[0].Period)
	assert.Equal(t, "2024-04", got.Monthly[1].Period)
}
