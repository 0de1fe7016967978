package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartcents/internal/config"
	"smartcents/internal/core"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		DBPath:            filepath.Join(dir, "smartcents.db"),
		SessionFile:       filepath.Join(dir, "session"),
		JWTSecret:         "test-secret-0123456789",
		SessionTTL:        time.Hour,
		BcryptCost:        4,
		LogLevel:          "info",
		LogFormat:         "text",
		SettingsCacheSize: 8,
		SettingsCacheTTL:  time.Minute,
	}
}

// run executes the CLI once and returns exit code and stdout.
func run(t *testing.T, cfg *config.Config, args ...string) (int, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), cfg, args, &stdout, &stderr)
	if code != ExitSuccess {
		t.Logf("smartcents %s: exit %d: %s", strings.Join(args, " "), code, stderr.String())
	}
	return code, stdout.String()
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(NewApp(testConfig(t), nil))
	for _, path := range [][]string{
		{"register"}, {"login"}, {"logout"}, {"whoami"}, {"password"}, {"currencies"},
		{"category", "add"}, {"category", "update"}, {"category", "delete"},
		{"category", "list"}, {"category", "tree"}, {"category", "import"},
		{"tx", "add"}, {"tx", "list"}, {"tx", "delete"}, {"tx", "export"},
		{"report"}, {"settings", "get"}, {"settings", "set"},
		{"budget", "set"}, {"budget", "list"}, {"budget", "delete"},
	} {
		sub, _, err := cmd.Find(path)
		require.NoError(t, err, "command %v should exist", path)
		assert.Equal(t, path[len(path)-1], sub.Name())
	}

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
	require.NotNil(t, cmd.PersistentFlags().Lookup("db"))
}

func TestExitCodes(t *testing.T) {
	cfg := testConfig(t)

	code, out := run(t, cfg, "whoami")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Not logged in")

	code, _ = run(t, cfg, "tx", "list")
	assert.Equal(t, ExitAuth, code)

	code, _ = run(t, cfg, "whoami", "--format", "yaml")
	assert.Equal(t, ExitUsage, code)

	code, _ = run(t, cfg, "register", "--email", "ada@example.com", "--password", "password1")
	require.Equal(t, ExitSuccess, code)

	code, _ = run(t, cfg, "register", "--email", "ada@example.com", "--password", "password1")
	assert.Equal(t, ExitUsage, code, "duplicate identity")

	code, _ = run(t, cfg, "login", "--email", "ada@example.com", "--password", "wrong-password")
	assert.Equal(t, ExitAuth, code)

	code, _ = run(t, cfg, "tx", "add", "abc")
	assert.Equal(t, ExitUsage, code)

	code, _ = run(t, cfg, "tx", "delete", "missing")
	assert.Equal(t, ExitNotFound, code)

	code, _ = run(t, cfg, "tx", "add", "1", "--bogus")
	assert.Equal(t, ExitUsage, code)
}

func TestLedgerFlow(t *testing.T) {
	cfg := testConfig(t)

	code, _ := run(t, cfg, "register", "--email", "ada@example.com", "--password", "password1")
	require.Equal(t, ExitSuccess, code)

	code, out := run(t, cfg, "category", "add", "Food", "--format", "json")
	require.Equal(t, ExitSuccess, code)
	var food core.Category
	require.NoError(t, json.Unmarshal([]byte(out), &food))
	assert.Equal(t, "Food", food.Name)
	assert.Equal(t, core.Expense, food.Type)

	code, _ = run(t, cfg, "tx", "add", "12.50", "-c", food.ID, "-d", "2024-03-01", "-m", "Lunch")
	require.Equal(t, ExitSuccess, code)
	code, _ = run(t, cfg, "tx", "add", "1000", "--type", "income", "-d", "2024-03-02")
	require.Equal(t, ExitSuccess, code)

	code, out = run(t, cfg, "report", "--month", "2024-03", "--format", "json")
	require.Equal(t, ExitSuccess, code)
	var summary struct {
		Totals struct {
			SavingsRate int64 `json:"savings_rate"`
		} `json:"totals"`
		Expenses []struct {
			Name string `json:"name"`
		} `json:"expenses_by_category"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, int64(99), summary.Totals.SavingsRate)
	require.Len(t, summary.Expenses, 1)
	assert.Equal(t, "Food", summary.Expenses[0].Name)

	code, out = run(t, cfg, "tx", "export", "csv")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "Date,Type,Amount,Category,Description\n"+
		"2024-03-01,expense,12.5,Food,\"Lunch\"\n"+
		"2024-03-02,income,1000,,\"\"\n", out)

	code, _ = run(t, cfg, "category", "delete", food.ID)
	require.Equal(t, ExitSuccess, code)

	code, out = run(t, cfg, "tx", "list", "--format", "json", "--type", "expense")
	require.Equal(t, ExitSuccess, code)
	var txs []core.Transaction
	require.NoError(t, json.Unmarshal([]byte(out), &txs))
	require.Len(t, txs, 1)
	assert.Nil(t, txs[0].CategoryID, "deleting a category uncategorizes its transactions")

	code, _ = run(t, cfg, "logout")
	require.Equal(t, ExitSuccess, code)
	code, out = run(t, cfg, "whoami")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Not logged in")
}

func TestSettingsAndBudgets(t *testing.T) {
	cfg := testConfig(t)
	code, _ := run(t, cfg, "register", "--email", "ada@example.com", "--password", "password1")
	require.Equal(t, ExitSuccess, code)

	code, out := run(t, cfg, "settings", "get", "--format", "json")
	require.Equal(t, ExitSuccess, code)
	var s core.Settings
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, core.DefaultSettings(), s)

	code, out = run(t, cfg, "settings", "set", "--currency", "eur", "--theme", "dark", "--format", "json")
	require.Equal(t, ExitSuccess, code)
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, "EUR", s.Currency)
	assert.Equal(t, core.ThemeDark, s.Theme)
	assert.Equal(t, "en", s.Language)

	code, _ = run(t, cfg, "settings", "set", "--currency", "XXX")
	assert.Equal(t, ExitUsage, code)

	code, _ = run(t, cfg, "budget", "set", "300", "--period", "monthly")
	require.Equal(t, ExitSuccess, code)
	code, out = run(t, cfg, "budget", "list")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "(overall)")
	assert.Contains(t, out, "€300.00")

	code, _ = run(t, cfg, "budget", "set", "300", "--period", "weekly")
	assert.Equal(t, ExitUsage, code)
}

func TestReportRange(t *testing.T) {
	now := time.Date(2024, 2, 10, 15, 0, 0, 0, time.UTC)

	from, to, err := reportRange("", "", "", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", from.String())
	assert.Equal(t, "2024-02-29", to.String())

	from, to, err = reportRange("", "", "2023-12", now)
	require.NoError(t, err)
	assert.Equal(t, "2023-12-01", from.String())
	assert.Equal(t, "2023-12-31", to.String())

	from, to, err = reportRange("2024-01-05", "", "", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", from.String())
	assert.True(t, to.IsZero())

	_, _, err = reportRange("2024-02-01", "2024-01-01", "", now)
	assert.ErrorIs(t, err, core.ErrInvalidDate)

	_, _, err = reportRange("", "", "March", now)
	assert.ErrorIs(t, err, core.ErrInvalidDate)
}
