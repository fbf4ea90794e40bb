// Package api is the typed client of the finance backend REST API.
package api

import (
	"context"
	"io"
	"net/url"

	"fintrack/fintrack/internal/models"
)

// Backend is everything the client needs from a finance backend. The HTTP
// Client implements it against the server; the offline package implements
// it over local files.
type Backend interface {
	ListTransactions(ctx context.Context, query url.Values) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, tx models.Transaction) (models.ID, error)
	UpdateTransaction(ctx context.Context, id string, patch models.TransactionPatch) error
	DeleteTransaction(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (models.BulkDeleteResult, error)

	ImportPDF(ctx context.Context, filename string, r io.Reader) (models.ImportResult, error)
	ImportCSV(ctx context.Context, filename string, r io.Reader) (models.ImportResult, error)
	Export(ctx context.Context, query url.Values) (*Download, error)

	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, c models.Category) (models.Category, error)
	UpdateCategory(ctx context.Context, id string, c models.Category) (models.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	MonthlyReport(ctx context.Context, year int) ([]models.MonthlyReport, error)
	CategoryBreakdown(ctx context.Context) ([]models.CategoryBreakdown, error)
}

// Authenticator is the account half of the API.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (models.Token, error)
	Register(ctx context.Context, r models.Registration) (models.User, error)
	Me(ctx context.Context) (models.User, error)
}

// TokenSource supplies the bearer token. Expire is called when the backend
// rejects the token with a 401.
type TokenSource interface {
	Token() string
	Expire()
}

// Download is a file streamed back by the backend.
type Download struct {
	Filename    string
	ContentType string
	Body        []byte
}

// DefaultExportFilename is used when the backend sends no usable
// Content-Disposition header.
const DefaultExportFilename = "transactions.xlsx"
