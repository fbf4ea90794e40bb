// Package offline implements the backend API over local files, so the client
// can be used without a server. Transactions live in a CSV file and
// categories in a YAML file; both are rewritten after every change.
package offline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"fintrack/fintrack/internal/aggregate"
	"fintrack/fintrack/internal/api"
	"fintrack/fintrack/internal/apierror"
	"fintrack/fintrack/internal/fileutils"
	"fintrack/fintrack/internal/logging"
	"fintrack/fintrack/internal/models"
	"fintrack/fintrack/internal/query"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
)

// Backend is a file-backed api.Backend. It is safe for concurrent use
// within one process.
type Backend struct {
	mu             sync.Mutex
	txFile         string
	categoriesFile string
	logger         logging.Logger

	txs        []models.Transaction
	categories []models.Category
}

var _ api.Backend = (*Backend)(nil)

// Open loads the transaction and category files. Missing files start empty;
// a missing category file is seeded with the default categories.
func Open(txFile, categoriesFile string, logger logging.Logger) (*Backend, error) {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	b := &Backend{
		txFile:         txFile,
		categoriesFile: categoriesFile,
		logger:         logger.WithField(logging.FieldBackend, "offline"),
	}
	if err := b.loadTransactions(); err != nil {
		return nil, err
	}
	if err := b.loadCategories(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Backend) loadTransactions() error {
	data, err := os.ReadFile(b.txFile)
	if errors.Is(err, os.ErrNotExist) {
		b.logger.Debug("Transactions file not found, starting empty", logging.F(logging.FieldFile, b.txFile))
		b.txs = []models.Transaction{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading transactions file: %w", err)
	}

	var txs []models.Transaction
	if len(data) > 0 {
		if err := gocsv.UnmarshalBytes(data, &txs); err != nil {
			return fmt.Errorf("error parsing transactions file %s: %w", b.txFile, err)
		}
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	b.txs = txs
	b.logger.Debug("Loaded transactions",
		logging.F(logging.FieldFile, b.txFile),
		logging.F(logging.FieldCount, len(txs)))
	return nil
}

// saveTransactions must be called with mu held.
func (b *Backend) saveTransactions() error {
	data, err := gocsv.MarshalBytes(&b.txs)
	if err != nil {
		return fmt.Errorf("error encoding transactions: %w", err)
	}
	return writeFile(b.txFile, data)
}

func writeFile(path string, data []byte) error {
	return fileutils.WriteFileAtomic(path, data, models.PermissionDataFile)
}

func notFound(method, path, what string) error {
	return &apierror.APIError{Method: method, Path: path, StatusCode: http.StatusNotFound, Detail: what + " not found"}
}

func badRequest(method, path, detail string) error {
	return &apierror.APIError{Method: method, Path: path, StatusCode: http.StatusBadRequest, Detail: detail}
}

func (b *Backend) indexOf(id models.ID) int {
	for i, tx := range b.txs {
		if tx.ID == id {
			return i
		}
	}
	return -1
}

// ListTransactions filters and sorts locally with the same parameters the
// server understands.
func (b *Backend) ListTransactions(ctx context.Context, q url.Values) ([]models.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, s, err := query.ParseValues(q)
	if err != nil {
		return nil, badRequest(http.MethodGet, "/api/transactions", err.Error())
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return query.SortTransactions(query.Filter(f, b.txs), s), nil
}

// CreateTransaction stores tx under a new id.
func (b *Backend) CreateTransaction(ctx context.Context, tx models.Transaction) (models.ID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if tx.AccountType == "" {
		tx.AccountType = models.AccountCreditCard
	}
	if tx.PDFSource == "" {
		tx.PDFSource = models.SourceManual
	}
	if err := tx.Validate(); err != nil {
		return "", badRequest(http.MethodPost, "/api/transactions", err.Error())
	}
	tx.ID = models.ID(uuid.NewString())

	b.mu.Lock()
	defer b.mu.Unlock()
	b.txs = append(b.txs, tx)
	if err := b.saveTransactions(); err != nil {
		b.txs = b.txs[:len(b.txs)-1]
		return "", err
	}
	b.logger.Debug("Transaction created", logging.F(logging.FieldTransactionID, tx.ID))
	return tx.ID, nil
}

// UpdateTransaction applies a partial update, re-signing the amount when
// the flow flag is set.
func (b *Backend) UpdateTransaction(ctx context.Context, id string, patch models.TransactionPatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := "/api/transactions/" + id

	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(models.ID(id))
	if i < 0 {
		return notFound(http.MethodPut, path, "Transaction")
	}
	if patch.IsEmpty() {
		return badRequest(http.MethodPut, path, "No valid fields to update")
	}

	prev := b.txs[i]
	next := patch.Apply(prev)
	if next.AccountType != "" && !next.AccountType.Valid() {
		return badRequest(http.MethodPut, path, fmt.Sprintf("Invalid account type %q", next.AccountType))
	}
	b.txs[i] = next
	if err := b.saveTransactions(); err != nil {
		b.txs[i] = prev
		return err
	}
	return nil
}

// DeleteTransaction removes one transaction.
func (b *Backend) DeleteTransaction(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(models.ID(id))
	if i < 0 {
		return notFound(http.MethodDelete, "/api/transactions/"+id, "Transaction")
	}

	prev := b.txs
	b.txs = append(append(make([]models.Transaction, 0, len(prev)-1), prev[:i]...), prev[i+1:]...)
	if err := b.saveTransactions(); err != nil {
		b.txs = prev
		return err
	}
	return nil
}

// BulkDelete removes every known id and reports how many were removed.
// Unknown ids are skipped.
func (b *Backend) BulkDelete(ctx context.Context, ids []string) (models.BulkDeleteResult, error) {
	if err := ctx.Err(); err != nil {
		return models.BulkDeleteResult{}, err
	}
	drop := make(map[models.ID]struct{}, len(ids))
	for _, id := range ids {
		drop[models.ID(id)] = struct{}{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	prev := b.txs
	kept := make([]models.Transaction, 0, len(prev))
	for _, tx := range prev {
		if _, ok := drop[tx.ID]; !ok {
			kept = append(kept, tx)
		}
	}
	deleted := len(prev) - len(kept)
	if deleted == 0 {
		return models.BulkDeleteResult{}, nil
	}
	b.txs = kept
	if err := b.saveTransactions(); err != nil {
		b.txs = prev
		return models.BulkDeleteResult{}, err
	}
	return models.BulkDeleteResult{DeletedCount: deleted}, nil
}

// ImportPDF is not available without the server-side statement parser.
func (b *Backend) ImportPDF(ctx context.Context, filename string, r io.Reader) (models.ImportResult, error) {
	return models.ImportResult{}, fmt.Errorf("import %s: %w", filename, apierror.ErrUnsupported)
}

type duplicateKey struct {
	date        models.Date
	description string
	amount      string
}

func keyOf(tx models.Transaction) duplicateKey {
	return duplicateKey{date: tx.Date, description: tx.Description, amount: tx.Amount.String()}
}

// ImportCSV reads rows in the transaction file layout. Rows matching an
// existing transaction on date, description and amount are skipped.
func (b *Backend) ImportCSV(ctx context.Context, filename string, r io.Reader) (models.ImportResult, error) {
	if err := ctx.Err(); err != nil {
		return models.ImportResult{}, err
	}
	var rows []models.Transaction
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return models.ImportResult{}, badRequest(http.MethodPost, "/api/transactions/bulk-import",
			fmt.Sprintf("Invalid CSV file: %v", err))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	seen := make(map[duplicateKey]struct{}, len(b.txs)+len(rows))
	for _, tx := range b.txs {
		seen[keyOf(tx)] = struct{}{}
	}

	prev := b.txs
	var imported, duplicates int
	for _, row := range rows {
		if row.AccountType == "" {
			row.AccountType = models.AccountCreditCard
		}
		if row.PDFSource == "" {
			row.PDFSource = filepath.Base(filename)
		}
		if err := row.Validate(); err != nil {
			b.logger.Warn("Skipping invalid CSV row",
				logging.F(logging.FieldFile, filename),
				logging.F(logging.FieldError, err.Error()))
			continue
		}
		k := keyOf(row)
		if _, dup := seen[k]; dup {
			duplicates++
			continue
		}
		seen[k] = struct{}{}
		row.ID = models.ID(uuid.NewString())
		b.txs = append(b.txs, row)
		imported++
	}

	if imported > 0 {
		if err := b.saveTransactions(); err != nil {
			b.txs = prev
			return models.ImportResult{}, err
		}
	}
	return models.ImportResult{
		Message:        fmt.Sprintf("Imported %d transactions, skipped %d duplicates", imported, duplicates),
		ImportedCount:  imported,
		DuplicateCount: duplicates,
	}, nil
}

// MonthlyReport aggregates the stored transactions by month, limited to
// year when it is non-zero.
func (b *Backend) MonthlyReport(ctx context.Context, year int) ([]models.MonthlyReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	txs := make([]models.Transaction, 0, len(b.txs))
	for _, tx := range b.txs {
		if year == 0 || tx.Date.Year == year {
			txs = append(txs, tx)
		}
	}
	b.mu.Unlock()
	return aggregate.SortMonths(aggregate.ByMonth(txs)), nil
}

// CategoryBreakdown aggregates the stored transactions by category.
func (b *Backend) CategoryBreakdown(ctx context.Context) ([]models.CategoryBreakdown, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	txs := make([]models.Transaction, len(b.txs))
	copy(txs, b.txs)
	b.mu.Unlock()
	return aggregate.ByCategory(txs), nil
}
