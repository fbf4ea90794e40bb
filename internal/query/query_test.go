package query

import (
	"net/url"
	"testing"

	"fintrack/fintrack/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValues_Mapping(t *testing.T) {
	f := models.FilterState{
		StartDate:   "2024-01-01",
		EndDate:     "2024-01-31",
		Category:    "Food",
		PDFSource:   "jan.pdf",
		AccountType: "debit",
	}
	v := Values(f, models.SortConfig{Field: models.SortByAmount, Direction: models.SortAsc})

	assert.Equal(t, url.Values{
		"start_date":   {"2024-01-01"},
		"end_date":     {"2024-01-31"},
		"category":     {"Food"},
		"pdf_source":   {"jan.pdf"},
		"account_type": {"debit"},
		"sort_by":      {"amount"},
		"sort_order":   {"asc"},
	}, v)
}

func TestValues_OmitsEmptyFilters(t *testing.T) {
	v := Values(models.FilterState{Category: "Food"}, models.DefaultSort)

	assert.Equal(t, "category=Food&sort_by=date&sort_order=desc", v.Encode())
	for _, key := range []string{ParamStartDate, ParamEndDate, ParamPDFSource, ParamAccountType} {
		_, present := v[key]
		assert.False(t, present, key)
	}
}

func TestValues_DefaultsMissingSort(t *testing.T) {
	v := Values(models.FilterState{}, models.SortConfig{})
	assert.Equal(t, "date", v.Get(ParamSortBy))
	assert.Equal(t, "desc", v.Get(ParamSortOrder))
}

func TestValues_RoundTrip(t *testing.T) {
	filters := []models.FilterState{
		{},
		{StartDate: "2024-01-01"},
		{EndDate: "2024-12-31", Category: "Food & Drink"},
		{PDFSource: "Manual", AccountType: "credit_card"},
		{StartDate: "2023-02-28", EndDate: "2024-02-29", Category: "Ünïcode", PDFSource: "stmt 1.pdf", AccountType: "savings"},
	}
	sorts := []models.SortConfig{
		models.DefaultSort,
		{Field: models.SortByDescription, Direction: models.SortAsc},
		{Field: models.SortByCategory, Direction: models.SortDesc},
		{Field: models.SortByAmount, Direction: models.SortAsc},
	}

	for _, f := range filters {
		for _, s := range sorts {
			encoded := Values(f, s).Encode()
			decoded, err := url.ParseQuery(encoded)
			require.NoError(t, err)

			gotF, gotS, err := ParseValues(decoded)
			require.NoError(t, err)
			assert.Equal(t, f, gotF, encoded)
			assert.Equal(t, s, gotS, encoded)
		}
	}
}

func TestParseValues_Invalid(t *testing.T) {
	tests := []url.Values{
		{ParamStartDate: {"31/01/2024"}},
		{ParamAccountType: {"wallet"}},
		{ParamSortBy: {"id"}},
		{ParamSortOrder: {"up"}},
	}
	for _, v := range tests {
		_, _, err := ParseValues(v)
		assert.Error(t, err, v.Encode())
	}
}

func TestActiveCount(t *testing.T) {
	assert.Equal(t, 0, ActiveCount(models.FilterState{}))
	assert.Equal(t, 2, ActiveCount(models.FilterState{Category: "Food", AccountType: "debit"}))
}

func tx(id, date, category, amount string) models.Transaction {
	return models.Transaction{
		ID:          models.ID(id),
		Date:        models.MustParseDate(date),
		Description: "tx " + id,
		Category:    category,
		Amount:      decimal.RequireFromString(amount),
		AccountType: models.AccountDebit,
	}
}

func TestMatch(t *testing.T) {
	jan31 := tx("1", "2024-01-31", "Food", "10")
	manual := jan31
	manual.PDFSource = ""
	imported := jan31
	imported.PDFSource = "jan.pdf"

	tests := []struct {
		name     string
		filter   models.FilterState
		tx       models.Transaction
		expected bool
	}{
		{name: "no filter", filter: models.FilterState{}, tx: jan31, expected: true},
		{name: "inclusive start", filter: models.FilterState{StartDate: "2024-01-31"}, tx: jan31, expected: true},
		{name: "inclusive end", filter: models.FilterState{EndDate: "2024-01-31"}, tx: jan31, expected: true},
		{name: "before start", filter: models.FilterState{StartDate: "2024-02-01"}, tx: jan31, expected: false},
		{name: "after end", filter: models.FilterState{EndDate: "2024-01-30"}, tx: jan31, expected: false},
		{name: "category match", filter: models.FilterState{Category: "Food"}, tx: jan31, expected: true},
		{name: "category mismatch", filter: models.FilterState{Category: "Transport"}, tx: jan31, expected: false},
		{name: "manual source", filter: models.FilterState{PDFSource: "Manual"}, tx: manual, expected: true},
		{name: "imported source", filter: models.FilterState{PDFSource: "jan.pdf"}, tx: imported, expected: true},
		{name: "manual vs imported", filter: models.FilterState{PDFSource: "Manual"}, tx: imported, expected: false},
		{name: "account type", filter: models.FilterState{AccountType: "savings"}, tx: jan31, expected: false},
		{name: "unparseable date matches nothing", filter: models.FilterState{StartDate: "soon"}, tx: jan31, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Match(tt.filter, tt.tx))
		})
	}
}

func TestFilter(t *testing.T) {
	txs := []models.Transaction{
		tx("1", "2024-01-05", "Food", "10"),
		tx("2", "2024-02-05", "Food", "20"),
		tx("3", "2024-01-20", "Transport", "30"),
	}
	got := Filter(models.FilterState{StartDate: "2024-01-01", EndDate: "2024-01-31"}, txs)
	assert.Equal(t, []string{"1", "3"}, models.IDs(got))
	assert.NotNil(t, Filter(models.FilterState{Category: "None"}, txs))
}

func TestSortTransactions(t *testing.T) {
	a := tx("a", "2024-01-02", "food", "30")
	a.Description = "banana"
	b := tx("b", "2024-01-01", "Transport", "-5")
	b.Description = "Apple"
	c := tx("c", "2024-01-03", "Shopping", "12.5")
	c.Description = "cherry"
	txs := []models.Transaction{a, b, c}

	tests := []struct {
		sort     models.SortConfig
		expected []string
	}{
		{models.SortConfig{Field: models.SortByDate, Direction: models.SortDesc}, []string{"c", "a", "b"}},
		{models.SortConfig{Field: models.SortByDate, Direction: models.SortAsc}, []string{"b", "a", "c"}},
		{models.SortConfig{Field: models.SortByDescription, Direction: models.SortAsc}, []string{"b", "a", "c"}},
		{models.SortConfig{Field: models.SortByCategory, Direction: models.SortAsc}, []string{"a", "c", "b"}},
		{models.SortConfig{Field: models.SortByAmount, Direction: models.SortDesc}, []string{"a", "c", "b"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.sort.Field)+"_"+string(tt.sort.Direction), func(t *testing.T) {
			assert.Equal(t, tt.expected, models.IDs(SortTransactions(txs, tt.sort)))
		})
	}
	// input untouched
	assert.Equal(t, []string{"a", "b", "c"}, models.IDs(txs))
}

func TestSortTransactions_StableTies(t *testing.T) {
	txs := []models.Transaction{
		tx("1", "2024-01-01", "Food", "10"),
		tx("2", "2024-01-01", "Food", "10"),
		tx("3", "2024-01-01", "Food", "10"),
	}
	assert.Equal(t, []string{"1", "2", "3"}, models.IDs(SortTransactions(txs, models.DefaultSort)))
}
