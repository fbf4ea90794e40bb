package analytics_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"fintrack/fintrack/cmd/analytics"
	"fintrack/fintrack/cmd/root"
	"fintrack/fintrack/internal/config"
	"fintrack/fintrack/internal/container"
	"fintrack/fintrack/internal/logging"
	"fintrack/fintrack/internal/models"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, source string) *bytes.Buffer {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Log:       config.LogConfig{Level: "error", Format: "text"},
		API:       config.APIConfig{BaseURL: "http://localhost:8000", TimeoutSeconds: 5},
		Session:   config.SessionConfig{File: filepath.Join(dir, "session.yaml")},
		Analytics: config.AnalyticsConfig{Source: source},
		Offline: config.OfflineConfig{
			Enabled:          true,
			TransactionsFile: filepath.Join(dir, "transactions.csv"),
			CategoriesFile:   filepath.Join(dir, "categories.yaml"),
		},
		Output: config.OutputConfig{Format: config.OutputJSON, CurrencySymbol: "$"},
	}
	var buf bytes.Buffer
	require.NoError(t, root.Setup(cfg, &buf, container.WithLogger(logging.NewMockLogger())))
	t.Cleanup(root.Teardown)

	ctx := context.Background()
	for _, tx := range []models.Transaction{
		{Date: models.MustParseDate("2023-12-20"), Description: "Gift", Category: "Shopping", Amount: decimal.RequireFromString("40"), AccountType: models.AccountCreditCard},
		{Date: models.MustParseDate("2024-01-31"), Description: "Payroll", Category: "Income", Amount: decimal.RequireFromString("-2500"), AccountType: models.AccountChecking},
		{Date: models.MustParseDate("2024-02-01"), Description: "Groceries", Category: "Food", Amount: decimal.RequireFromString("60"), AccountType: models.AccountDebit, PDFSource: "feb.pdf"},
		{Date: models.MustParseDate("2024-02-03"), Description: "Market", Category: "Food", Amount: decimal.RequireFromString("40"), AccountType: models.AccountDebit, PDFSource: "feb.pdf"},
	} {
		_, err := root.Container().GetMutations().Create(ctx, tx)
		require.NoError(t, err)
	}
	buf.Reset()
	return &buf
}

func run(t *testing.T, out *bytes.Buffer, v interface{}, args ...string) {
	t.Helper()
	analytics.Cmd.SetArgs(args)
	defer func() {
		for _, c := range analytics.Cmd.Commands() {
			c.Flags().VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
	}()
	require.NoError(t, analytics.Cmd.Execute())
	require.NoError(t, json.Unmarshal(out.Bytes(), v))
	out.Reset()
}

func TestBreakdown(t *testing.T) {
	for _, source := range []string{config.AnalyticsServer, config.AnalyticsLocal} {
		t.Run(source, func(t *testing.T) {
			out := setup(t, source)

			var bs []models.CategoryBreakdown
			run(t, out, &bs, "breakdown", "--top", "2")

			require.Len(t, bs, 2)
			assert.Equal(t, "Income", bs[0].Category)
			assert.Equal(t, "Food", bs[1].Category)
			assert.Equal(t, 2, bs[1].Count)
			assert.True(t, bs[1].Amount.Equal(decimal.NewFromInt(100)))
		})
	}
}

func TestBreakdown_LocalHonoursFilters(t *testing.T) {
	out := setup(t, config.AnalyticsLocal)

	var bs []models.CategoryBreakdown
	run(t, out, &bs, "breakdown", "--account-type", "debit")

	require.Len(t, bs, 1)
	assert.Equal(t, "Food", bs[0].Category)
	assert.True(t, bs[0].Percentage.Equal(decimal.NewFromInt(100)))
}

func TestMonthly(t *testing.T) {
	out := setup(t, config.AnalyticsLocal)

	var reports []models.MonthlyReport
	run(t, out, &reports, "monthly")
	require.Len(t, reports, 3)
	assert.Equal(t, 2023, reports[0].Year)

	run(t, out, &reports, "monthly", "--year", "2024")
	require.Len(t, reports, 2)
	assert.Equal(t, 1, reports[0].Month)
	assert.Equal(t, 2, reports[1].TransactionCount)

	run(t, out, &reports, "monthly", "-n", "1")
	require.Len(t, reports, 1)
	assert.Equal(t, 2, reports[0].Month)
}

func TestAccounts(t *testing.T) {
	out := setup(t, config.AnalyticsServer)

	var as []models.AccountTypeSummary
	run(t, out, &as, "accounts", "--start", "2024-01-01")

	require.Len(t, as, 2)
	byType := map[models.AccountType]models.AccountTypeSummary{}
	for _, a := range as {
		byType[a.AccountType] = a
	}
	assert.Equal(t, 2, byType[models.AccountDebit].Count)
	assert.True(t, byType[models.AccountChecking].Amount.Equal(decimal.NewFromInt(2500)))
}

func TestSources(t *testing.T) {
	out := setup(t, config.AnalyticsServer)

	var ss []models.SourceSummary
	run(t, out, &ss, "sources")

	sources := map[string]int{}
	for _, s := range ss {
		sources[s.Source] = s.Count
	}
	assert.Equal(t, map[string]int{models.SourceManual: 2, "feb.pdf": 2}, sources)
}

func TestFlow(t *testing.T) {
	out := setup(t, config.AnalyticsServer)

	var f models.FlowSummary
	run(t, out, &f, "flow", "--start", "2030-01-01")

	assert.Equal(t, 0, f.InflowCount+f.OutflowCount)

	run(t, out, &f, "flow")
	assert.Equal(t, 1, f.InflowCount)
	assert.Equal(t, 3, f.OutflowCount)
	assert.True(t, f.TotalOutflow.Equal(decimal.NewFromInt(140)))
	assert.True(t, f.Net.Equal(decimal.NewFromInt(-2360)))
}
