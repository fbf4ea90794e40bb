package models

import "fmt"

// FilterState holds the transaction list filters. Empty fields are
// unconstrained.
type FilterState struct {
	StartDate   string `json:"startDate,omitempty" yaml:"start_date,omitempty"`
	EndDate     string `json:"endDate,omitempty" yaml:"end_date,omitempty"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`
	PDFSource   string `json:"pdfSource,omitempty" yaml:"pdf_source,omitempty"`
	AccountType string `json:"accountType,omitempty" yaml:"account_type,omitempty"`
}

// IsEmpty reports whether no filter is set.
func (f FilterState) IsEmpty() bool {
	return f == FilterState{}
}

// SortField is a sortable transaction column.
type SortField string

// Sort fields
const (
	SortByDate        SortField = "date"
	SortByDescription SortField = "description"
	SortByCategory    SortField = "category"
	SortByAmount      SortField = "amount"
)

// ParseSortField validates s as a sort field.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(s); f {
	case SortByDate, SortByDescription, SortByCategory, SortByAmount:
		return f, nil
	default:
		return "", fmt.Errorf("unknown sort field %q (expected date, description, category or amount)", s)
	}
}

// SortDirection is ascending or descending.
type SortDirection string

// Sort directions
const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection validates s as a sort direction.
func ParseSortDirection(s string) (SortDirection, error) {
	switch d := SortDirection(s); d {
	case SortAsc, SortDesc:
		return d, nil
	default:
		return "", fmt.Errorf("unknown sort order %q (expected asc or desc)", s)
	}
}

// Reverse returns the opposite direction.
func (d SortDirection) Reverse() SortDirection {
	if d == SortDesc {
		return SortAsc
	}
	return SortDesc
}

// SortConfig is the active sort of the transaction list.
type SortConfig struct {
	Field     SortField     `json:"field" yaml:"field"`
	Direction SortDirection `json:"direction" yaml:"direction"`
}

// DefaultSort is newest first.
var DefaultSort = SortConfig{Field: SortByDate, Direction: SortDesc}
