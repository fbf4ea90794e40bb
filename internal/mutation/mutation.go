// Package mutation performs the write operations on the backend and keeps
// the transaction store in step with them.
//
// Each operation sends exactly one request. When it succeeds the store is
// refetched once; the store is never patched locally. When it fails the
// backend error is returned wrapped and the store is left as it was.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"fintrack/fintrack/internal/api"
	"fintrack/fintrack/internal/apierror"
	"fintrack/fintrack/internal/logging"
	"fintrack/fintrack/internal/models"
	"fintrack/fintrack/internal/store"
)

// ErrInFlight is returned by SetFlow while a flow change for the same
// transaction has not completed.
var ErrInFlight = errors.New("flow change already in progress")

// Refresher refetches the transaction list.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Lookup finds a loaded transaction.
type Lookup interface {
	Get(id models.ID) (models.Transaction, bool)
}

// Selection supplies the ids of a bulk action and is emptied once the
// action completes.
type Selection interface {
	IDs() []models.ID
	Clear()
}

// Coordinator runs mutations against a backend. It is safe for concurrent
// use; mutations are not queued against each other.
type Coordinator struct {
	backend   api.Backend
	refresher Refresher
	lookup    Lookup
	selection Selection
	logger    logging.Logger

	mu      sync.Mutex
	pending map[models.ID]struct{}
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLookup sets where SetFlow reads the stored amount.
func WithLookup(l Lookup) Option {
	return func(c *Coordinator) { c.lookup = l }
}

// WithSelection sets the selection used by BulkDeleteSelected.
func WithSelection(s Selection) Option {
	return func(c *Coordinator) { c.selection = s }
}

// New creates a Coordinator. The refresher is usually the transaction store.
func New(backend api.Backend, refresher Refresher, logger logging.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	c := &Coordinator{
		backend:   backend,
		refresher: refresher,
		logger:    logger,
		pending:   map[models.ID]struct{}{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create adds a transaction. Account type defaults to credit card and the
// source to manual entry.
func (c *Coordinator) Create(ctx context.Context, tx models.Transaction) (models.ID, error) {
	if tx.AccountType == "" {
		tx.AccountType = models.AccountCreditCard
	}
	if tx.PDFSource == "" {
		tx.PDFSource = models.SourceManual
	}
	if err := tx.Validate(); err != nil {
		return "", &apierror.ValidationError{Field: "transaction", Reason: err.Error()}
	}

	log := c.logger.WithField(logging.FieldOperation, "create")
	id, err := c.backend.CreateTransaction(ctx, tx)
	if err != nil {
		log.WithError(err).Warn("Creating transaction failed")
		return "", fmt.Errorf("create transaction: %w", err)
	}
	log.Info("Transaction created", logging.F(logging.FieldTransactionID, id))
	c.refresh(ctx, log)
	return id, nil
}

// Update sends a partial update.
func (c *Coordinator) Update(ctx context.Context, id models.ID, patch models.TransactionPatch) error {
	if id == "" {
		return &apierror.ValidationError{Field: "id", Reason: "is required"}
	}
	if patch.IsEmpty() {
		return &apierror.ValidationError{Reason: "nothing to update"}
	}
	if err := validatePatch(patch); err != nil {
		return err
	}

	log := c.logger.WithFields(
		logging.F(logging.FieldOperation, "update"),
		logging.F(logging.FieldTransactionID, id),
	)
	if err := c.backend.UpdateTransaction(ctx, string(id), patch); err != nil {
		log.WithError(err).Warn("Updating transaction failed")
		return fmt.Errorf("update transaction %s: %w", id, err)
	}
	log.Info("Transaction updated")
	c.refresh(ctx, log)
	return nil
}

func validatePatch(p models.TransactionPatch) error {
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		return &apierror.ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return &apierror.ValidationError{Field: "category", Reason: "must not be empty"}
	}
	if p.Amount != nil && p.Amount.IsZero() {
		return &apierror.ValidationError{Field: "amount", Reason: "must not be zero"}
	}
	if p.AccountType != nil && !p.AccountType.Valid() {
		return &apierror.ValidationError{Field: "account type", Reason: fmt.Sprintf("unknown value %q", *p.AccountType)}
	}
	if p.Date != nil && p.Date.IsZero() {
		return &apierror.ValidationError{Field: "date", Reason: "is required"}
	}
	return nil
}

// Delete removes one transaction.
func (c *Coordinator) Delete(ctx context.Context, id models.ID) error {
	if id == "" {
		return &apierror.ValidationError{Field: "id", Reason: "is required"}
	}
	log := c.logger.WithFields(
		logging.F(logging.FieldOperation, "delete"),
		logging.F(logging.FieldTransactionID, id),
	)
	if err := c.backend.DeleteTransaction(ctx, string(id)); err != nil {
		log.WithError(err).Warn("Deleting transaction failed")
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	log.Info("Transaction deleted")
	c.refresh(ctx, log)
	return nil
}

// BulkDelete removes the given transactions in one request. With no ids it
// does nothing. The deleted count reported by the backend is returned as-is.
// On success the selection is cleared whether or not the refetch works.
func (c *Coordinator) BulkDelete(ctx context.Context, ids []models.ID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = string(id)
	}

	log := c.logger.WithFields(
		logging.F(logging.FieldOperation, "bulk_delete"),
		logging.F(logging.FieldCount, len(ids)),
	)
	res, err := c.backend.BulkDelete(ctx, raw)
	if err != nil {
		log.WithError(err).Warn("Bulk delete failed")
		return 0, fmt.Errorf("delete %d transactions: %w", len(ids), err)
	}
	log.Info("Transactions deleted", logging.F("deleted_count", res.DeletedCount))
	if c.selection != nil {
		c.selection.Clear()
	}
	c.refresh(ctx, log)
	return res.DeletedCount, nil
}

// BulkDeleteSelected deletes the current selection.
func (c *Coordinator) BulkDeleteSelected(ctx context.Context) (int, error) {
	if c.selection == nil {
		return 0, nil
	}
	return c.BulkDelete(ctx, c.selection.IDs())
}

// Pending reports whether a flow change for id is in flight.
func (c *Coordinator) Pending(id models.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[id]
	return ok
}

// SetFlow marks a transaction as inflow or outflow. The stored amount is
// sent along with the flag so the backend re-signs it. A second call for
// the same id while the first is in flight returns ErrInFlight.
func (c *Coordinator) SetFlow(ctx context.Context, id models.ID, inflow bool) error {
	if id == "" {
		return &apierror.ValidationError{Field: "id", Reason: "is required"}
	}
	c.mu.Lock()
	if _, busy := c.pending[id]; busy {
		c.mu.Unlock()
		return ErrInFlight
	}
	c.pending[id] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	patch := models.TransactionPatch{IsInflow: &inflow}
	if c.lookup != nil {
		if tx, ok := c.lookup.Get(id); ok {
			amount := tx.Amount
			patch.Amount = &amount
		}
	}

	log := c.logger.WithFields(
		logging.F(logging.FieldOperation, "set_flow"),
		logging.F(logging.FieldTransactionID, id),
		logging.F("is_inflow", inflow),
	)
	if err := c.backend.UpdateTransaction(ctx, string(id), patch); err != nil {
		log.WithError(err).Warn("Changing transaction flow failed")
		return fmt.Errorf("set flow of transaction %s: %w", id, err)
	}
	log.Info("Transaction flow changed")
	c.refresh(ctx, log)
	return nil
}

// ImportPDF uploads a bank statement.
func (c *Coordinator) ImportPDF(ctx context.Context, filename string, r io.Reader) (models.ImportResult, error) {
	return c.upload(ctx, "import_pdf", filename, r, c.backend.ImportPDF)
}

// ImportCSV uploads a CSV export.
func (c *Coordinator) ImportCSV(ctx context.Context, filename string, r io.Reader) (models.ImportResult, error) {
	return c.upload(ctx, "import_csv", filename, r, c.backend.ImportCSV)
}

type uploadFunc func(ctx context.Context, filename string, r io.Reader) (models.ImportResult, error)

func (c *Coordinator) upload(ctx context.Context, op, filename string, r io.Reader, send uploadFunc) (models.ImportResult, error) {
	if strings.TrimSpace(filename) == "" {
		return models.ImportResult{}, &apierror.ValidationError{Field: "file", Reason: "is required"}
	}
	log := c.logger.WithFields(
		logging.F(logging.FieldOperation, op),
		logging.F(logging.FieldFile, filename),
	)
	res, err := send(ctx, filename, r)
	if err != nil {
		log.WithError(err).Warn("Import failed")
		return models.ImportResult{}, fmt.Errorf("import %s: %w", filename, err)
	}
	log.Info("Import finished",
		logging.F("imported_count", res.ImportedCount),
		logging.F("duplicate_count", res.DuplicateCount))
	c.refresh(ctx, log)
	return res, nil
}

// CreateCategory adds a category.
func (c *Coordinator) CreateCategory(ctx context.Context, cat models.Category) (models.Category, error) {
	if err := cat.Validate(); err != nil {
		return models.Category{}, &apierror.ValidationError{Field: "category", Reason: err.Error()}
	}
	cat.IsDefault = false

	log := c.logger.WithFields(
		logging.F(logging.FieldOperation, "create_category"),
		logging.F(logging.FieldCategory, cat.Name),
	)
	created, err := c.backend.CreateCategory(ctx, cat)
	if err != nil {
		log.WithError(err).Warn("Creating category failed")
		return models.Category{}, fmt.Errorf("create category %q: %w", cat.Name, err)
	}
	log.Info("Category created")
	c.refresh(ctx, log)
	return created, nil
}

// UpdateCategory renames or recolours a category. Transactions may carry
// the category name, so the list is refetched.
func (c *Coordinator) UpdateCategory(ctx context.Context, id models.ID, cat models.Category) (models.Category, error) {
	if id == "" {
		return models.Category{}, &apierror.ValidationError{Field: "id", Reason: "is required"}
	}
	if err := cat.Validate(); err != nil {
		return models.Category{}, &apierror.ValidationError{Field: "category", Reason: err.Error()}
	}

	log := c.logger.WithFields(
		logging.F(logging.FieldOperation, "update_category"),
		logging.F(logging.FieldCategory, cat.Name),
	)
	updated, err := c.backend.UpdateCategory(ctx, string(id), cat)
	if err != nil {
		log.WithError(err).Warn("Updating category failed")
		return models.Category{}, fmt.Errorf("update category %s: %w", id, err)
	}
	log.Info("Category updated")
	c.refresh(ctx, log)
	return updated, nil
}

// DeleteCategory removes a user-defined category. Default categories are
// refused without a request.
func (c *Coordinator) DeleteCategory(ctx context.Context, cat models.Category) error {
	if cat.ID == "" {
		return &apierror.ValidationError{Field: "id", Reason: "is required"}
	}
	if cat.IsDefault {
		return &apierror.ValidationError{Field: "category", Reason: fmt.Sprintf("%q is a default category and cannot be deleted", cat.Name)}
	}

	log := c.logger.WithFields(
		logging.F(logging.FieldOperation, "delete_category"),
		logging.F(logging.FieldCategory, cat.Name),
	)
	if err := c.backend.DeleteCategory(ctx, string(cat.ID)); err != nil {
		log.WithError(err).Warn("Deleting category failed")
		return fmt.Errorf("delete category %q: %w", cat.Name, err)
	}
	log.Info("Category deleted")
	c.refresh(ctx, log)
	return nil
}

// refresh refetches after a successful mutation. The mutation already
// happened, so a failed refetch is logged rather than returned; the store
// keeps reporting it through Err.
func (c *Coordinator) refresh(ctx context.Context, log logging.Logger) {
	if c.refresher == nil {
		return
	}
	err := c.refresher.Refresh(ctx)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrStale), errors.Is(err, store.ErrClosed):
		log.Debug("Refetch after mutation superseded", logging.F(logging.FieldError, err.Error()))
	default:
		log.WithError(err).Warn("Refetch after mutation failed")
	}
}
