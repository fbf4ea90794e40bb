// Package currencyutils parses amounts typed by users.
package currencyutils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	currencyCode   = regexp.MustCompile(`^[A-Za-z]{3}\s*|\s*[A-Za-z]{3}$`)
	currencySymbol = regexp.MustCompile(`[€$£¥₣₤₹₺₽₩฿₫₴₪]`)
)

// ParseAmount parses an amount in the formats people write them:
// "1234.56", "1,234.56", "1.234,56", "1'234.56", "1 234,56", with an
// optional currency symbol or ISO code. A leading minus is kept.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	standardized := StandardizeAmount(amountStr)
	if standardized == "" || standardized == "-" {
		return decimal.Zero, errors.New("amount is required")
	}
	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", amountStr)
	}
	return amount, nil
}

// StandardizeAmount strips currency markers and grouping so that
// decimal.NewFromString accepts the result.
func StandardizeAmount(amountStr string) string {
	s := strings.TrimSpace(amountStr)
	s = currencyCode.ReplaceAllString(s, "")
	s = currencySymbol.ReplaceAllString(s, "")
	s = strings.NewReplacer(" ", "", "\u00a0", "", "'", "", "\u2019", "").Replace(s)

	// "-$12" and "$-12" both end up as "-12"
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			// 1.234,56
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// 1,234.56
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-comma-1 <= 2 {
			// 1234,56
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// 1,234 or 1,234,567
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	if negative {
		s = "-" + s
	}
	return s
}
