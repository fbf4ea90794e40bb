package offline

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/fintrack/internal/apierror"
	"fintrack/fintrack/internal/logging"
	"fintrack/fintrack/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func openTemp(t *testing.T) (*Backend, string) {
	t.Helper()
	dir := t.TempDir()
	b, err := Open(filepath.Join(dir, "transactions.csv"), filepath.Join(dir, "categories.yaml"), logging.NewMockLogger())
	require.NoError(t, err)
	return b, dir
}

func newTx(date, description, category, amount string) models.Transaction {
	return models.Transaction{
		Date:        models.MustParseDate(date),
		Description: description,
		Category:    category,
		Amount:      decimal.RequireFromString(amount),
		AccountType: models.AccountDebit,
	}
}

func TestOpen_SeedsDefaults(t *testing.T) {
	b, _ := openTemp(t)

	txs, err := b.ListTransactions(context.Background(), url.Values{})
	require.NoError(t, err)
	assert.Empty(t, txs)

	cats, err := b.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, cats, len(models.DefaultCategories))
	assert.True(t, cats[0].IsDefault)
}

func TestCreate_PersistsAcrossOpen(t *testing.T) {
	b, dir := openTemp(t)
	ctx := context.Background()

	id, err := b.CreateTransaction(ctx, models.Transaction{
		Date:        models.MustParseDate("2024-01-31"),
		Description: "Groceries",
		Category:    "Food",
		Amount:      decimal.RequireFromString("54.20"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	reopened, err := Open(filepath.Join(dir, "transactions.csv"), filepath.Join(dir, "categories.yaml"), nil)
	require.NoError(t, err)
	txs, err := reopened.ListTransactions(ctx, url.Values{})
	require.NoError(t, err)
	require.Len(t, txs, 1)

	got := txs[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, models.MustParseDate("2024-01-31"), got.Date)
	assert.True(t, decimal.RequireFromString("54.2").Equal(got.Amount))
	assert.Equal(t, models.AccountCreditCard, got.AccountType)
	assert.Equal(t, models.SourceManual, got.PDFSource)
}

func TestCreate_Invalid(t *testing.T) {
	b, _ := openTemp(t)

	_, err := b.CreateTransaction(context.Background(), models.Transaction{Description: "x"})

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
}

func TestList_FiltersAndSorts(t *testing.T) {
	b, _ := openTemp(t)
	ctx := context.Background()
	for _, tx := range []models.Transaction{
		newTx("2024-01-31", "b", "Food", "10"),
		newTx("2024-02-01", "a", "Food", "30"),
		newTx("2024-02-15", "c", "Rent", "20"),
	} {
		_, err := b.CreateTransaction(ctx, tx)
		require.NoError(t, err)
	}

	txs, err := b.ListTransactions(ctx, url.Values{
		"start_date": {"2024-02-01"},
		"sort_by":    {"amount"},
		"sort_order": {"asc"},
	})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "c", txs[0].Description)
	assert.Equal(t, "a", txs[1].Description)

	txs, err = b.ListTransactions(ctx, url.Values{"category": {"Food"}})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "a", txs[0].Description, "default sort is newest first")

	_, err = b.ListTransactions(ctx, url.Values{"sort_by": {"id"}})
	assert.Error(t, err)
}

func TestUpdate_FlowFlipsSign(t *testing.T) {
	b, _ := openTemp(t)
	ctx := context.Background()
	id, err := b.CreateTransaction(ctx, newTx("2024-01-10", "Refund", "Shopping", "45"))
	require.NoError(t, err)

	inflow := true
	amount := decimal.RequireFromString("45")
	require.NoError(t, b.UpdateTransaction(ctx, string(id), models.TransactionPatch{IsInflow: &inflow, Amount: &amount}))

	txs, err := b.ListTransactions(ctx, url.Values{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "-45", txs[0].Amount.String())
	assert.True(t, txs[0].IsInflow())
}

func TestUpdate_Missing(t *testing.T) {
	b, _ := openTemp(t)
	category := "Food"

	err := b.UpdateTransaction(context.Background(), "nope", models.TransactionPatch{Category: &category})

	assert.True(t, errors.Is(err, apierror.ErrNotFound))
}

func TestDeleteAndBulkDelete(t *testing.T) {
	b, _ := openTemp(t)
	ctx := context.Background()
	var ids []string
	for i := 0; i < 4; i++ {
		id, err := b.CreateTransaction(ctx, newTx("2024-01-10", "tx", "Food", "1"))
		require.NoError(t, err)
		ids = append(ids, string(id))
	}

	require.NoError(t, b.DeleteTransaction(ctx, ids[0]))
	assert.True(t, errors.Is(b.DeleteTransaction(ctx, ids[0]), apierror.ErrNotFound))

	res, err := b.BulkDelete(ctx, []string{ids[1], ids[2], "unknown"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.DeletedCount)

	txs, err := b.ListTransactions(ctx, url.Values{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, models.ID(ids[3]), txs[0].ID)
}

func TestImportCSV_SkipsDuplicates(t *testing.T) {
	b, _ := openTemp(t)
	ctx := context.Background()
	_, err := b.CreateTransaction(ctx, newTx("2024-01-10", "Coffee", "Food", "4.50"))
	require.NoError(t, err)

	csv := strings.Join([]string{
		"id,date,description,category,amount,account_type,pdf_source",
		",2024-01-10,Coffee,Food,4.5,debit,",
		",2024-01-11,Lunch,Food,12,debit,",
		",2024-01-11,Lunch,Food,12.00,debit,",
		",2024-01-12,Salary,Income,-2500,checking,",
	}, "\n")

	res, err := b.ImportCSV(ctx, "bank-export.csv", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, res.ImportedCount)
	assert.Equal(t, 2, res.DuplicateCount)

	txs, err := b.ListTransactions(ctx, url.Values{"pdf_source": {"bank-export.csv"}})
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestImportCSV_Malformed(t *testing.T) {
	b, _ := openTemp(t)

	_, err := b.ImportCSV(context.Background(), "x.csv", strings.NewReader("date,amount\n2024-01-01,abc\n"))

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
}

func TestImportPDF_Unsupported(t *testing.T) {
	b, _ := openTemp(t)

	_, err := b.ImportPDF(context.Background(), "statement.pdf", strings.NewReader("%PDF"))

	assert.True(t, errors.Is(err, apierror.ErrUnsupported))
}

func TestExport_Workbook(t *testing.T) {
	b, _ := openTemp(t)
	ctx := context.Background()
	_, err := b.CreateTransaction(ctx, newTx("2024-01-10", "Coffee", "Food", "4.50"))
	require.NoError(t, err)
	_, err = b.CreateTransaction(ctx, newTx("2024-03-10", "Rent", "Housing", "900"))
	require.NoError(t, err)

	dl, err := b.Export(ctx, url.Values{"end_date": {"2024-01-31"}})
	require.NoError(t, err)
	assert.Equal(t, "transactions.xlsx", dl.Filename)

	wb, err := excelize.OpenReader(bytes.NewReader(dl.Body))
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()
	rows, err := wb.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, "Coffee", rows[1][1])
	assert.Equal(t, models.FlowOutflow, rows[1][4])
}

func TestCategories(t *testing.T) {
	b, dir := openTemp(t)
	ctx := context.Background()

	created, err := b.CreateCategory(ctx, models.Category{Name: "Travel", Color: "#0ea5e9"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = b.CreateCategory(ctx, models.Category{Name: "travel"})
	assert.Error(t, err, "names are unique ignoring case")

	renamed, err := b.UpdateCategory(ctx, string(created.ID), models.Category{Name: "Trips"})
	require.NoError(t, err)
	assert.Equal(t, "Trips", renamed.Name)
	assert.Equal(t, "#0ea5e9", renamed.Color)

	err = b.DeleteCategory(ctx, "food")
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)

	require.NoError(t, b.DeleteCategory(ctx, string(created.ID)))
	assert.True(t, errors.Is(b.DeleteCategory(ctx, string(created.ID)), apierror.ErrNotFound))

	data, err := os.ReadFile(filepath.Join(dir, "categories.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "categories:")
	assert.NotContains(t, string(data), "Trips")
}

func TestAnalytics(t *testing.T) {
	b, _ := openTemp(t)
	ctx := context.Background()
	for _, tx := range []models.Transaction{
		newTx("2024-02-01", "a", "Food", "30"),
		newTx("2024-01-31", "b", "Food", "10"),
		newTx("2023-12-15", "c", "Rent", "-20"),
	} {
		_, err := b.CreateTransaction(ctx, tx)
		require.NoError(t, err)
	}

	reports, err := b.MonthlyReport(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "2024-01", reports[0].Key())
	assert.Equal(t, "2024-02", reports[1].Key())

	all, err := b.MonthlyReport(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	breakdown, err := b.CategoryBreakdown(ctx)
	require.NoError(t, err)
	require.Len(t, breakdown, 2)
	assert.Equal(t, "Food", breakdown[0].Category)
	assert.True(t, decimal.RequireFromString("40").Equal(breakdown[0].Amount))
}
