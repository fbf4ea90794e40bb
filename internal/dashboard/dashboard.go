// Package dashboard loads everything the overview screen shows in one go.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"fintrack/fintrack/internal/aggregate"
	"fintrack/fintrack/internal/analytics"
	"fintrack/fintrack/internal/config"
	"fintrack/fintrack/internal/logging"
	"fintrack/fintrack/internal/models"

	"golang.org/x/sync/errgroup"
)

const (
	// TopCategories is the number of categories in the breakdown chart.
	TopCategories = 5
	// TrendMonths is the number of months in the spending trend.
	TrendMonths = 6
)

// Store is the transaction list the dashboard reads.
type Store interface {
	Refresh(ctx context.Context) error
	Transactions() []models.Transaction
}

// CategoryLister lists the categories.
type CategoryLister interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// View is one loaded dashboard.
type View struct {
	Transactions []models.Transaction
	Categories   []models.Category
	Breakdown    []models.CategoryBreakdown
	Trend        []models.MonthlyReport
	Accounts     []models.AccountTypeSummary
	Sources      []models.SourceSummary
	Flow         models.FlowSummary
	LoadedAt     time.Time
}

// Loader builds a View.
type Loader struct {
	store      Store
	categories CategoryLister
	provider   *analytics.Provider
	logger     logging.Logger
}

// NewLoader returns a Loader.
func NewLoader(store Store, categories CategoryLister, provider *analytics.Provider, logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Loader{store: store, categories: categories, provider: provider, logger: logger}
}

// Load fetches transactions, categories and server analytics concurrently.
// The first failure cancels the remaining requests and is returned.
// Locally computed views are derived once the transactions are in.
func (l *Loader) Load(ctx context.Context, year int) (*View, error) {
	start := time.Now()
	view := &View{}
	server := l.provider.Source() == config.AnalyticsServer

	var breakdown []models.CategoryBreakdown
	var monthly []models.MonthlyReport

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := l.store.Refresh(gctx); err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		cats, err := l.categories.ListCategories(gctx)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		view.Categories = cats
		return nil
	})
	if server {
		g.Go(func() error {
			var err error
			breakdown, err = l.provider.CategoryBreakdown(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			monthly, err = l.provider.MonthlyReports(gctx, year)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		l.logger.WithError(err).Warn("Loading dashboard failed")
		return nil, err
	}

	if !server {
		var err error
		if breakdown, err = l.provider.CategoryBreakdown(ctx); err != nil {
			return nil, err
		}
		if monthly, err = l.provider.MonthlyReports(ctx, year); err != nil {
			return nil, err
		}
	}

	view.Transactions = l.store.Transactions()
	if view.Categories == nil {
		view.Categories = []models.Category{}
	}
	view.Breakdown = aggregate.SortBreakdown(breakdown, TopCategories)
	view.Trend = aggregate.LastMonths(monthly, TrendMonths)
	view.Accounts = l.provider.AccountTypes()
	view.Sources = l.provider.Sources()
	view.Flow = l.provider.Flow()
	view.LoadedAt = time.Now()

	l.logger.Debug("Dashboard loaded",
		logging.F(logging.FieldCount, len(view.Transactions)),
		logging.F(logging.FieldDuration, time.Since(start).String()))
	return view, nil
}
