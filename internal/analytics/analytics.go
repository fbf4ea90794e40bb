// Package analytics serves the derived spending views either from the
// backend's analytics endpoints or by recomputing them from the loaded
// transactions.
package analytics

import (
	"context"
	"fmt"

	"fintrack/fintrack/internal/aggregate"
	"fintrack/fintrack/internal/config"
	"fintrack/fintrack/internal/logging"
	"fintrack/fintrack/internal/models"
)

// Remote is the analytics half of the backend API.
type Remote interface {
	MonthlyReport(ctx context.Context, year int) ([]models.MonthlyReport, error)
	CategoryBreakdown(ctx context.Context) ([]models.CategoryBreakdown, error)
}

// Local supplies the transactions currently loaded.
type Local interface {
	Transactions() []models.Transaction
}

// Provider answers analytics queries from one configured source. A failing
// server source is reported as an error; there is no silent fallback to
// local computation.
type Provider struct {
	source string
	remote Remote
	local  Local
	logger logging.Logger
}

// NewProvider returns a provider for source, which is config.AnalyticsServer
// or config.AnalyticsLocal.
func NewProvider(source string, remote Remote, local Local, logger logging.Logger) (*Provider, error) {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	switch source {
	case config.AnalyticsServer:
		if remote == nil {
			return nil, fmt.Errorf("analytics source %q needs a backend", source)
		}
	case config.AnalyticsLocal:
		if local == nil {
			return nil, fmt.Errorf("analytics source %q needs loaded transactions", source)
		}
	default:
		return nil, fmt.Errorf("unknown analytics source %q (expected server or local)", source)
	}
	return &Provider{source: source, remote: remote, local: local, logger: logger}, nil
}

// Source returns the configured source.
func (p *Provider) Source() string {
	return p.source
}

// CategoryBreakdown returns spending per category.
func (p *Provider) CategoryBreakdown(ctx context.Context) ([]models.CategoryBreakdown, error) {
	if p.source == config.AnalyticsLocal {
		return aggregate.ByCategory(p.local.Transactions()), nil
	}
	out, err := p.remote.CategoryBreakdown(ctx)
	if err != nil {
		p.logger.WithError(err).Warn("Loading category breakdown failed")
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	if out == nil {
		out = []models.CategoryBreakdown{}
	}
	return out, nil
}

// MonthlyReports returns spending per month in chronological order. A zero
// year means every year.
func (p *Provider) MonthlyReports(ctx context.Context, year int) ([]models.MonthlyReport, error) {
	if p.source == config.AnalyticsLocal {
		txs := p.local.Transactions()
		if year != 0 {
			kept := make([]models.Transaction, 0, len(txs))
			for _, tx := range txs {
				if tx.Date.Year == year {
					kept = append(kept, tx)
				}
			}
			txs = kept
		}
		return aggregate.SortMonths(aggregate.ByMonth(txs)), nil
	}
	out, err := p.remote.MonthlyReport(ctx, year)
	if err != nil {
		p.logger.WithError(err).Warn("Loading monthly report failed", logging.F("year", year))
		return nil, fmt.Errorf("monthly report: %w", err)
	}
	return aggregate.SortMonths(out), nil
}

// AccountTypes splits the loaded transactions by account type. The backend
// has no endpoint for it, so it is always computed locally.
func (p *Provider) AccountTypes() []models.AccountTypeSummary {
	return aggregate.ByAccountType(p.transactions())
}

// Sources splits the loaded transactions by originating statement.
func (p *Provider) Sources() []models.SourceSummary {
	return aggregate.BySource(p.transactions())
}

// Flow summarizes inflows and outflows of the loaded transactions.
func (p *Provider) Flow() models.FlowSummary {
	return aggregate.Flow(p.transactions())
}

func (p *Provider) transactions() []models.Transaction {
	if p.local == nil {
		return nil
	}
	return p.local.Transactions()
}
