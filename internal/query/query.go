// Package query maps the transaction list filters and sort order to the
// backend query string, and applies the same semantics locally.
package query

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"fintrack/fintrack/internal/models"
)

// Query parameter names understood by the backend.
const (
	ParamStartDate   = "start_date"
	ParamEndDate     = "end_date"
	ParamCategory    = "category"
	ParamPDFSource   = "pdf_source"
	ParamAccountType = "account_type"
	ParamSortBy      = "sort_by"
	ParamSortOrder   = "sort_order"
)

// filterField identifies one FilterState field.
type filterField int

const (
	fieldStartDate filterField = iota
	fieldEndDate
	fieldCategory
	fieldPDFSource
	fieldAccountType
)

// filterNames maps both the camelCase field names and the query parameter
// names to a field.
var filterNames = map[string]filterField{
	"startDate":      fieldStartDate,
	ParamStartDate:   fieldStartDate,
	"endDate":        fieldEndDate,
	ParamEndDate:     fieldEndDate,
	"category":       fieldCategory,
	"pdfSource":      fieldPDFSource,
	ParamPDFSource:   fieldPDFSource,
	"accountType":    fieldAccountType,
	ParamAccountType: fieldAccountType,
}

// withField returns f with one field set to value, after validating it.
func withField(f models.FilterState, name, value string) (models.FilterState, error) {
	field, ok := filterNames[name]
	if !ok {
		return f, fmt.Errorf("unknown filter %q (expected startDate, endDate, category, pdfSource or accountType)", name)
	}
	value = strings.TrimSpace(value)

	switch field {
	case fieldStartDate, fieldEndDate:
		if value != "" {
			d, err := models.ParseDate(value)
			if err != nil {
				return f, fmt.Errorf("filter %s: %w", name, err)
			}
			value = d.String()
		}
		if field == fieldStartDate {
			f.StartDate = value
		} else {
			f.EndDate = value
		}
	case fieldCategory:
		f.Category = value
	case fieldPDFSource:
		f.PDFSource = value
	case fieldAccountType:
		if value != "" {
			a, err := models.ParseAccountType(value)
			if err != nil {
				return f, fmt.Errorf("filter %s: %w", name, err)
			}
			value = string(a)
		}
		f.AccountType = value
	}
	return f, nil
}

// Validate checks every field of f the way SetFilter would.
func Validate(f models.FilterState) (models.FilterState, error) {
	out := models.FilterState{}
	var err error
	for _, kv := range [][2]string{
		{ParamStartDate, f.StartDate},
		{ParamEndDate, f.EndDate},
		{ParamCategory, f.Category},
		{ParamPDFSource, f.PDFSource},
		{ParamAccountType, f.AccountType},
	} {
		if out, err = withField(out, kv[0], kv[1]); err != nil {
			return models.FilterState{}, err
		}
	}
	return out, nil
}

// ActiveCount returns the number of non-empty filters.
func ActiveCount(f models.FilterState) int {
	n := 0
	for _, v := range []string{f.StartDate, f.EndDate, f.Category, f.PDFSource, f.AccountType} {
		if v != "" {
			n++
		}
	}
	return n
}

// Values encodes filters and sort as backend query parameters. Empty filters
// are omitted; sort_by and sort_order are always present.
func Values(f models.FilterState, s models.SortConfig) url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set(ParamStartDate, f.StartDate)
	set(ParamEndDate, f.EndDate)
	set(ParamCategory, f.Category)
	set(ParamPDFSource, f.PDFSource)
	set(ParamAccountType, f.AccountType)

	if s.Field == "" {
		s.Field = models.DefaultSort.Field
	}
	if s.Direction == "" {
		s.Direction = models.DefaultSort.Direction
	}
	v.Set(ParamSortBy, string(s.Field))
	v.Set(ParamSortOrder, string(s.Direction))
	return v
}

// ParseValues decodes backend query parameters. Missing sort parameters
// fall back to the default sort.
func ParseValues(v url.Values) (models.FilterState, models.SortConfig, error) {
	f, err := Validate(models.FilterState{
		StartDate:   v.Get(ParamStartDate),
		EndDate:     v.Get(ParamEndDate),
		Category:    v.Get(ParamCategory),
		PDFSource:   v.Get(ParamPDFSource),
		AccountType: v.Get(ParamAccountType),
	})
	if err != nil {
		return models.FilterState{}, models.SortConfig{}, err
	}

	s := models.DefaultSort
	if by := v.Get(ParamSortBy); by != "" {
		if s.Field, err = models.ParseSortField(by); err != nil {
			return models.FilterState{}, models.SortConfig{}, err
		}
	}
	if order := v.Get(ParamSortOrder); order != "" {
		if s.Direction, err = models.ParseSortDirection(order); err != nil {
			return models.FilterState{}, models.SortConfig{}, err
		}
	}
	return f, s, nil
}

// Match reports whether tx satisfies every filter in f. Dates compare on
// the calendar day, bounds inclusive; a filter date that does not parse
// matches nothing.
func Match(f models.FilterState, tx models.Transaction) bool {
	if f.StartDate != "" {
		start, err := models.ParseDate(f.StartDate)
		if err != nil || tx.Date.Before(start) {
			return false
		}
	}
	if f.EndDate != "" {
		end, err := models.ParseDate(f.EndDate)
		if err != nil || tx.Date.After(end) {
			return false
		}
	}
	if f.Category != "" && tx.Category != f.Category {
		return false
	}
	if f.PDFSource != "" && tx.SourceLabel() != f.PDFSource {
		return false
	}
	if f.AccountType != "" && string(tx.AccountType) != f.AccountType {
		return false
	}
	return true
}

// Filter returns the transactions matching f, in order.
func Filter(f models.FilterState, txs []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if Match(f, tx) {
			out = append(out, tx)
		}
	}
	return out
}

// SortTransactions returns a sorted copy of txs. Text columns compare
// case-insensitively; ties keep their input order.
func SortTransactions(txs []models.Transaction, s models.SortConfig) []models.Transaction {
	out := make([]models.Transaction, len(txs))
	copy(out, txs)

	compare := func(a, b models.Transaction) int {
		switch s.Field {
		case models.SortByDescription:
			return strings.Compare(strings.ToLower(a.Description), strings.ToLower(b.Description))
		case models.SortByCategory:
			return strings.Compare(strings.ToLower(a.Category), strings.ToLower(b.Category))
		case models.SortByAmount:
			return a.Amount.Cmp(b.Amount)
		default:
			return a.Date.Compare(b.Date)
		}
	}
	desc := s.Direction == models.SortDesc

	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i], out[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}
