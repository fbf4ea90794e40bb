package tx_test

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"testing"

	"fintrack/fintrack/cmd/root"
	"fintrack/fintrack/cmd/tx"
	"fintrack/fintrack/internal/apierror"
	"fintrack/fintrack/internal/config"
	"fintrack/fintrack/internal/container"
	"fintrack/fintrack/internal/logging"
	"fintrack/fintrack/internal/models"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *bytes.Buffer {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Log:       config.LogConfig{Level: "error", Format: "text"},
		API:       config.APIConfig{BaseURL: "http://localhost:8000", TimeoutSeconds: 5},
		Session:   config.SessionConfig{File: filepath.Join(dir, "session.yaml")},
		Analytics: config.AnalyticsConfig{Source: config.AnalyticsLocal},
		Offline: config.OfflineConfig{
			Enabled:          true,
			TransactionsFile: filepath.Join(dir, "transactions.csv"),
			CategoriesFile:   filepath.Join(dir, "categories.yaml"),
		},
		Output: config.OutputConfig{Format: config.OutputTable, CurrencySymbol: "$"},
	}
	var buf bytes.Buffer
	require.NoError(t, root.Setup(cfg, &buf, container.WithLogger(logging.NewMockLogger())))
	t.Cleanup(root.Teardown)
	return &buf
}

func resetFlags(cmd *cobra.Command) {
	for _, c := range append(cmd.Commands(), cmd) {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	tx.Cmd.SetArgs(args)
	defer resetFlags(tx.Cmd)
	return tx.Cmd.Execute()
}

func seed(t *testing.T) {
	t.Helper()
	require.NoError(t, run(t, "add", "--date", "2024-01-31", "-d", "Payroll", "--category", "Income", "-a", "2500", "--inflow", "--account-type", "checking"))
	require.NoError(t, run(t, "add", "--date", "2024-02-01", "-d", "Groceries", "--category", "Food", "-a", "54.20"))
	require.NoError(t, run(t, "add", "--date", "2024-02-03", "-d", "Bus pass", "--category", "Transport", "-a", "30"))
}

func stored(t *testing.T) []models.Transaction {
	t.Helper()
	txs, err := root.Container().GetBackend().ListTransactions(context.Background(), url.Values{})
	require.NoError(t, err)
	return txs
}

func byDescription(t *testing.T, desc string) models.Transaction {
	t.Helper()
	for _, tr := range stored(t) {
		if tr.Description == desc {
			return tr
		}
	}
	t.Fatalf("no transaction %q", desc)
	return models.Transaction{}
}

func TestAdd(t *testing.T) {
	out := setup(t)

	require.NoError(t, run(t, "add", "--date", "31.01.2024", "-d", "Payroll", "--category", "Income", "-a", "2500", "--inflow"))

	assert.Contains(t, out.String(), "Created transaction ")
	tr := byDescription(t, "Payroll")
	assert.Equal(t, "-2500", tr.Amount.String())
	assert.Equal(t, "2024-01-31", tr.Date.String())
	assert.Equal(t, models.AccountCreditCard, tr.AccountType)
	assert.Equal(t, models.SourceManual, tr.PDFSource)
}

func TestAdd_Invalid(t *testing.T) {
	setup(t)

	tests := []struct {
		name string
		args []string
	}{
		{"zero amount", []string{"add", "-d", "x", "--category", "Food", "-a", "0"}},
		{"bad amount", []string{"add", "-d", "x", "--category", "Food", "-a", "ten"}},
		{"bad date", []string{"add", "-d", "x", "--category", "Food", "-a", "1", "--date", "someday"}},
		{"bad account type", []string{"add", "-d", "x", "--category", "Food", "-a", "1", "--account-type", "wallet"}},
		{"missing description", []string{"add", "--category", "Food", "-a", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, run(t, tt.args...))
		})
	}
	assert.Empty(t, stored(t))
}

func TestList_Filters(t *testing.T) {
	out := setup(t)
	seed(t)
	out.Reset()

	require.NoError(t, run(t, "list", "--category", "Food"))
	assert.Contains(t, out.String(), "Groceries")
	assert.NotContains(t, out.String(), "Payroll")
	assert.Contains(t, out.String(), "1 transactions (0 inflow, 1 outflow)")

	out.Reset()
	require.NoError(t, run(t, "list"))
	assert.Contains(t, out.String(), "3 transactions (1 inflow, 2 outflow)")

	out.Reset()
	require.NoError(t, run(t, "list", "--start", "2024-03-01"))
	assert.Contains(t, out.String(), "No transactions found.")
}

func TestList_SortedByStore(t *testing.T) {
	setup(t)
	seed(t)

	require.NoError(t, run(t, "list", "--sort", "amount", "--order", "asc"))
	txs := root.Container().GetStore().Transactions()
	require.Len(t, txs, 3)
	assert.Equal(t, "Payroll", txs[0].Description)
	assert.Equal(t, "Groceries", txs[2].Description)
}

func TestList_RejectsBadFlags(t *testing.T) {
	setup(t)
	assert.Error(t, run(t, "list", "--sort", "id"))
	assert.Error(t, run(t, "list", "--range", "this-month", "--start", "2024-01-01"))
}

func TestEdit(t *testing.T) {
	out := setup(t)
	seed(t)
	id := byDescription(t, "Groceries").ID

	require.NoError(t, run(t, "edit", string(id), "--category", "Shopping", "-a", "60"))

	assert.Contains(t, out.String(), "Updated transaction "+string(id))
	tr := byDescription(t, "Groceries")
	assert.Equal(t, "Shopping", tr.Category)
	assert.Equal(t, "60", tr.Amount.String())
	assert.Equal(t, "2024-02-01", tr.Date.String())
}

func TestEdit_NothingToUpdate(t *testing.T) {
	setup(t)
	seed(t)

	err := run(t, "edit", string(byDescription(t, "Groceries").ID))
	var validation *apierror.ValidationError
	assert.True(t, errors.As(err, &validation))
}

func TestEdit_NotFound(t *testing.T) {
	setup(t)

	err := run(t, "edit", "missing", "-d", "x")
	assert.Equal(t, apierror.KindNotFound, apierror.Classify(err))
}

func TestFlow(t *testing.T) {
	out := setup(t)
	seed(t)
	id := byDescription(t, "Bus pass").ID

	require.NoError(t, run(t, "flow", string(id), "inflow"))
	assert.Contains(t, out.String(), "as inflow")
	assert.Equal(t, "-30", byDescription(t, "Bus pass").Amount.String())

	require.NoError(t, run(t, "flow", string(id), "Outflow"))
	assert.Equal(t, "30", byDescription(t, "Bus pass").Amount.String())

	assert.Error(t, run(t, "flow", string(id), "sideways"))
	assert.Error(t, run(t, "flow", "missing", "inflow"))
}

func TestRm(t *testing.T) {
	out := setup(t)
	seed(t)
	id := byDescription(t, "Bus pass").ID

	require.NoError(t, run(t, "rm", string(id)))

	assert.Contains(t, out.String(), "Deleted transaction "+string(id))
	assert.Len(t, stored(t), 2)
	assert.Equal(t, apierror.KindNotFound, apierror.Classify(run(t, "rm", string(id))))
}

func TestBulkRm_ByID(t *testing.T) {
	out := setup(t)
	seed(t)
	a := byDescription(t, "Bus pass").ID
	b := byDescription(t, "Groceries").ID

	err := run(t, "bulk-rm", string(a), string(b))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without --yes")
	assert.Len(t, stored(t), 3)

	require.NoError(t, run(t, "bulk-rm", string(a), string(b), string(a), "--yes"))
	assert.Contains(t, out.String(), "Deleted 2 transactions")
	assert.Len(t, stored(t), 1)
}

func TestBulkRm_AllMatching(t *testing.T) {
	out := setup(t)
	seed(t)

	require.NoError(t, run(t, "bulk-rm", "--all", "--start", "2024-02-01", "-y"))

	assert.Contains(t, out.String(), "Deleted 2 transactions")
	remaining := stored(t)
	require.Len(t, remaining, 1)
	assert.Equal(t, "Payroll", remaining[0].Description)
	assert.Equal(t, 0, root.Container().GetSelection().Len())
}

func TestBulkRm_Arguments(t *testing.T) {
	out := setup(t)
	seed(t)

	assert.Error(t, run(t, "bulk-rm"))
	assert.Error(t, run(t, "bulk-rm", "--all", "some-id"))
	assert.Error(t, run(t, "bulk-rm", "not-listed"))

	require.NoError(t, run(t, "bulk-rm", "--all", "--category", "Entertainment"))
	assert.Contains(t, out.String(), "Nothing to delete")
}
