package models

import "github.com/shopspring/decimal"

// SignedAmount returns the absolute amount with the sign convention of the
// backend applied: inflows are negative, outflows positive.
func SignedAmount(amount decimal.Decimal, inflow bool) decimal.Decimal {
	if inflow {
		return amount.Abs().Neg()
	}
	return amount.Abs()
}
