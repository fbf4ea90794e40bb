// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fintrack/fintrack/internal/dateutils"
	"fintrack/fintrack/internal/models"

	"github.com/spf13/cobra"
)

// QueryFlags are the list filters and sort order shared by every command
// that reads transactions.
type QueryFlags struct {
	Start       string
	End         string
	Range       string
	Category    string
	Source      string
	AccountType string
	Sort        string
	Order       string
}

// Configurer takes a complete filter and sort state in one change.
type Configurer interface {
	Configure(ctx context.Context, f models.FilterState, s models.SortConfig) error
}

// AddQueryFlags registers the query flags on cmd.
func AddQueryFlags(cmd *cobra.Command, q *QueryFlags) {
	flags := cmd.Flags()
	flags.StringVar(&q.Start, "start", "", "Only transactions on or after this date")
	flags.StringVar(&q.End, "end", "", "Only transactions on or before this date")
	flags.StringVar(&q.Range, "range", "", "Quick date range: this-month, last-month, last-3-months or this-year")
	flags.StringVar(&q.Category, "category", "", "Only this category")
	flags.StringVar(&q.Source, "source", "", "Only transactions imported from this statement")
	flags.StringVar(&q.AccountType, "account-type", "", "Only this account type: credit_card, debit, checking or savings")
	flags.StringVar(&q.Sort, "sort", "", "Sort by date, description, category or amount (default date)")
	flags.StringVar(&q.Order, "order", "", "Sort order: asc or desc (default desc)")
}

// Build turns the flags into filter and sort state. Dates accept the
// usual input formats and are normalized; --range resolves against now.
func (q QueryFlags) Build(now models.Date) (models.FilterState, models.SortConfig, error) {
	var f models.FilterState
	if q.Range != "" {
		if q.Start != "" || q.End != "" {
			return f, models.SortConfig{}, errors.New("--range cannot be combined with --start or --end")
		}
		qr, err := dateutils.ParseQuickRange(q.Range)
		if err != nil {
			return f, models.SortConfig{}, err
		}
		r, err := qr.Resolve(now)
		if err != nil {
			return f, models.SortConfig{}, err
		}
		f.StartDate, f.EndDate = r.Start.String(), r.End.String()
	}

	var err error
	if f.StartDate == "" {
		if f.StartDate, err = normalizeDate("--start", q.Start); err != nil {
			return f, models.SortConfig{}, err
		}
	}
	if f.EndDate == "" {
		if f.EndDate, err = normalizeDate("--end", q.End); err != nil {
			return f, models.SortConfig{}, err
		}
	}
	f.Category = strings.TrimSpace(q.Category)
	f.PDFSource = strings.TrimSpace(q.Source)
	f.AccountType = strings.TrimSpace(q.AccountType)

	s := models.DefaultSort
	if q.Sort != "" {
		if s.Field, err = models.ParseSortField(strings.ToLower(q.Sort)); err != nil {
			return f, models.SortConfig{}, err
		}
	}
	if q.Order != "" {
		if s.Direction, err = models.ParseSortDirection(strings.ToLower(q.Order)); err != nil {
			return f, models.SortConfig{}, err
		}
	}
	return f, s, nil
}

// Apply builds the flags and hands the result to c as a single change.
func (q QueryFlags) Apply(ctx context.Context, c Configurer, now models.Date) error {
	f, s, err := q.Build(now)
	if err != nil {
		return err
	}
	return c.Configure(ctx, f, s)
}

func normalizeDate(flag, value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	d, err := dateutils.ParseUserDate(value)
	if err != nil {
		return "", fmt.Errorf("invalid %s: %w", flag, err)
	}
	return d.String(), nil
}
