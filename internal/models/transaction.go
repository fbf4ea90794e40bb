// Package models provides the data structures exchanged with the finance backend.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// AccountType is the kind of account a transaction was booked on.
type AccountType string

// Valid reports whether the account type is one of the known values.
func (a AccountType) Valid() bool {
	for _, known := range AccountTypes {
		if a == known {
			return true
		}
	}
	return false
}

// ParseAccountType validates s as an account type.
func ParseAccountType(s string) (AccountType, error) {
	a := AccountType(strings.ToLower(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fmt.Errorf("unknown account type %q (expected one of credit_card, debit, checking, savings)", s)
	}
	return a, nil
}

// ID is an opaque backend identifier. Numeric JSON ids are kept as their
// decimal string.
type ID string

// UnmarshalJSON accepts both string and numeric ids.
func (id *ID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("invalid id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Transaction is one financial event as stored by the backend.
//
// Amount follows the backend sign convention: negative is an inflow (money
// received), positive is an outflow (an expense).
type Transaction struct {
	ID          ID              `json:"id" csv:"id" yaml:"id"`
	Date        Date            `json:"date" csv:"date" yaml:"date"`
	Description string          `json:"description" csv:"description" yaml:"description"`
	Category    string          `json:"category" csv:"category" yaml:"category"`
	Amount      decimal.Decimal `json:"amount" csv:"amount" yaml:"amount"`
	AccountType AccountType     `json:"account_type" csv:"account_type" yaml:"account_type"`
	PDFSource   string          `json:"pdf_source,omitempty" csv:"pdf_source" yaml:"pdf_source,omitempty"`
}

// IsInflow reports whether the transaction is money received.
func (t Transaction) IsInflow() bool {
	return t.Amount.IsNegative()
}

// IsOutflow reports whether the transaction is money spent.
func (t Transaction) IsOutflow() bool {
	return t.Amount.IsPositive()
}

// FlowLabel returns "Inflow" or "Outflow" read from the amount sign.
func (t Transaction) FlowLabel() string {
	if t.IsInflow() {
		return FlowInflow
	}
	return FlowOutflow
}

// CategoryLabel returns the category verbatim, or "Uncategorized" when it
// is empty.
func (t Transaction) CategoryLabel() string {
	if t.Category == "" {
		return CategoryUncategorized
	}
	return t.Category
}

// SourceLabel returns the originating statement name, or "Manual" for
// transactions entered by hand.
func (t Transaction) SourceLabel() string {
	if t.PDFSource == "" {
		return SourceManual
	}
	return t.PDFSource
}

// IsManual reports whether the transaction was entered by hand.
func (t Transaction) IsManual() bool {
	return t.SourceLabel() == SourceManual
}

// Validate checks the fields required to create a transaction.
func (t Transaction) Validate() error {
	var problems []string
	if t.Date.IsZero() {
		problems = append(problems, "date is required")
	}
	if strings.TrimSpace(t.Description) == "" {
		problems = append(problems, "description is required")
	}
	if strings.TrimSpace(t.Category) == "" {
		problems = append(problems, "category is required")
	}
	if t.Amount.IsZero() {
		problems = append(problems, "amount must not be zero")
	}
	if t.AccountType != "" && !t.AccountType.Valid() {
		problems = append(problems, fmt.Sprintf("unknown account type %q", t.AccountType))
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// transactionWire mirrors Transaction with the amount as a bare JSON number.
type transactionWire struct {
	ID          ID          `json:"id,omitempty"`
	Date        Date        `json:"date"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Amount      json.Number `json:"amount"`
	AccountType AccountType `json:"account_type,omitempty"`
	PDFSource   string      `json:"pdf_source,omitempty"`
}

// MarshalJSON encodes the amount as a JSON number rather than a string.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionWire{
		ID:          t.ID,
		Date:        t.Date,
		Description: t.Description,
		Category:    t.Category,
		Amount:      json.Number(t.Amount.String()),
		AccountType: t.AccountType,
		PDFSource:   t.PDFSource,
	})
}

// TransactionPatch carries the fields of a partial update. Nil fields are
// not sent.
type TransactionPatch struct {
	Description *string
	Category    *string
	Amount      *decimal.Decimal
	Date        *Date
	AccountType *AccountType
	IsInflow    *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p TransactionPatch) IsEmpty() bool {
	return p.Description == nil && p.Category == nil && p.Amount == nil &&
		p.Date == nil && p.AccountType == nil && p.IsInflow == nil
}

// MarshalJSON encodes only the fields that are set.
func (p TransactionPatch) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, 6)
	if p.Description != nil {
		out["description"] = *p.Description
	}
	if p.Category != nil {
		out["category"] = *p.Category
	}
	if p.Amount != nil {
		out["amount"] = json.Number(p.Amount.String())
	}
	if p.Date != nil {
		out["date"] = p.Date.String()
	}
	if p.AccountType != nil {
		out["account_type"] = string(*p.AccountType)
	}
	if p.IsInflow != nil {
		out["is_inflow"] = *p.IsInflow
	}
	return json.Marshal(out)
}

// Apply returns t with the patch applied the way the backend applies it:
// an is_inflow request flips the sign of the amount when needed.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.AccountType != nil {
		t.AccountType = *p.AccountType
	}
	if p.IsInflow != nil {
		switch {
		case *p.IsInflow && t.Amount.IsPositive():
			t.Amount = t.Amount.Neg()
		case !*p.IsInflow && t.Amount.IsNegative():
			t.Amount = t.Amount.Abs()
		}
	}
	return t
}

// IDs returns the ids of the transactions in order.
func IDs(txs []Transaction) []string {
	ids := make([]string, len(txs))
	for i, t := range txs {
		ids[i] = string(t.ID)
	}
	return ids
}
