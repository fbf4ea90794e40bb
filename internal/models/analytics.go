package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryBreakdown is spending aggregated by category label.
type CategoryBreakdown struct {
	Category   string          `json:"category" yaml:"category"`
	Amount     decimal.Decimal `json:"amount" yaml:"amount"`
	Count      int             `json:"count" yaml:"count"`
	Percentage decimal.Decimal `json:"percentage" yaml:"percentage"`
}

// MonthlyReport is spending aggregated by calendar month.
type MonthlyReport struct {
	Year             int             `json:"year" yaml:"year"`
	Month            int             `json:"month" yaml:"month"`
	TotalSpent       decimal.Decimal `json:"total_spent" yaml:"total_spent"`
	TransactionCount int             `json:"transaction_count" yaml:"transaction_count"`
}

// Key returns "YYYY-MM".
func (r MonthlyReport) Key() string {
	return fmt.Sprintf("%04d-%02d", r.Year, r.Month)
}

// Label returns a human month label such as "January 2024".
func (r MonthlyReport) Label() string {
	if r.Month < 1 || r.Month > 12 {
		return r.Key()
	}
	if r.Year == 0 {
		return time.Month(r.Month).String()
	}
	return fmt.Sprintf("%s %d", time.Month(r.Month), r.Year)
}

// AccountTypeSummary is spending aggregated by account type.
type AccountTypeSummary struct {
	AccountType AccountType     `json:"account_type" yaml:"account_type"`
	Amount      decimal.Decimal `json:"amount" yaml:"amount"`
	Count       int             `json:"count" yaml:"count"`
	Percentage  decimal.Decimal `json:"percentage" yaml:"percentage"`
}

// SourceSummary is spending aggregated by originating statement.
type SourceSummary struct {
	Source     string          `json:"source" yaml:"source"`
	Amount     decimal.Decimal `json:"amount" yaml:"amount"`
	Count      int             `json:"count" yaml:"count"`
	Percentage decimal.Decimal `json:"percentage" yaml:"percentage"`
}

// FlowSummary splits a set of transactions into money in and money out.
type FlowSummary struct {
	InflowCount  int             `json:"inflow_count" yaml:"inflow_count"`
	OutflowCount int             `json:"outflow_count" yaml:"outflow_count"`
	TotalInflow  decimal.Decimal `json:"total_inflow" yaml:"total_inflow"`
	TotalOutflow decimal.Decimal `json:"total_outflow" yaml:"total_outflow"`
	Net          decimal.Decimal `json:"net" yaml:"net"`
}
