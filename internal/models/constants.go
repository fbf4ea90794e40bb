package models

// Category labels
const (
	CategoryUncategorized = "Uncategorized"
)

// SourceManual labels transactions that were entered by hand rather than
// imported from a statement.
const SourceManual = "Manual"

// Account types
const (
	AccountCreditCard AccountType = "credit_card"
	AccountDebit      AccountType = "debit"
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
)

// AccountTypes lists every account type in display order.
var AccountTypes = []AccountType{
	AccountCreditCard,
	AccountDebit,
	AccountChecking,
	AccountSavings,
}

// Flow labels
const (
	FlowInflow  = "Inflow"
	FlowOutflow = "Outflow"
)

// File permissions
const (
	PermissionSecretFile = 0600
	PermissionDirectory  = 0750
	PermissionDataFile   = 0644
)
