// Package aggregate computes the spending breakdowns shown on the dashboard
// from a list of transactions.
//
// Every function is pure: the input slice is never modified, the output only
// depends on the input, and an empty input gives an empty, non-nil slice.
// Groups keep the order in which their key first appears in the input.
package aggregate

import (
	"sort"

	"fintrack/fintrack/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// percentage returns part/total*100, or zero when total is zero.
func percentage(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred)
}

// ByCategory sums the absolute amount of each category. Transactions without
// a category are grouped under "Uncategorized".
func ByCategory(txs []models.Transaction) []models.CategoryBreakdown {
	out := make([]models.CategoryBreakdown, 0)
	index := make(map[string]int)
	total := decimal.Zero

	for _, tx := range txs {
		key := tx.CategoryLabel()
		amount := tx.Amount.Abs()
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, models.CategoryBreakdown{Category: key, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(amount)
		out[i].Count++
		total = total.Add(amount)
	}

	for i := range out {
		out[i].Percentage = percentage(out[i].Amount, total)
	}
	return out
}

// ByMonth sums the absolute amount of each calendar month, keyed on the
// civil date of the transaction.
func ByMonth(txs []models.Transaction) []models.MonthlyReport {
	type monthKey struct{ year, month int }

	out := make([]models.MonthlyReport, 0)
	index := make(map[monthKey]int)

	for _, tx := range txs {
		key := monthKey{year: tx.Date.Year, month: int(tx.Date.Month)}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, models.MonthlyReport{Year: key.year, Month: key.month, TotalSpent: decimal.Zero})
		}
		out[i].TotalSpent = out[i].TotalSpent.Add(tx.Amount.Abs())
		out[i].TransactionCount++
	}
	return out
}

// ByAccountType nets the signed amounts of each account type and reports the
// magnitude, with the share taken against the magnitude of the overall net.
func ByAccountType(txs []models.Transaction) []models.AccountTypeSummary {
	out := make([]models.AccountTypeSummary, 0)
	sums := make([]decimal.Decimal, 0)
	index := make(map[models.AccountType]int)
	net := decimal.Zero

	for _, tx := range txs {
		i, ok := index[tx.AccountType]
		if !ok {
			i = len(out)
			index[tx.AccountType] = i
			out = append(out, models.AccountTypeSummary{AccountType: tx.AccountType})
			sums = append(sums, decimal.Zero)
		}
		sums[i] = sums[i].Add(tx.Amount)
		out[i].Count++
		net = net.Add(tx.Amount)
	}

	net = net.Abs()
	for i := range out {
		out[i].Amount = sums[i].Abs()
		out[i].Percentage = percentage(out[i].Amount, net)
	}
	return out
}

// BySource groups on the originating statement, "Manual" for hand-entered
// transactions, using the same netting as ByAccountType.
func BySource(txs []models.Transaction) []models.SourceSummary {
	out := make([]models.SourceSummary, 0)
	sums := make([]decimal.Decimal, 0)
	index := make(map[string]int)
	net := decimal.Zero

	for _, tx := range txs {
		key := tx.SourceLabel()
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, models.SourceSummary{Source: key})
			sums = append(sums, decimal.Zero)
		}
		sums[i] = sums[i].Add(tx.Amount)
		out[i].Count++
		net = net.Add(tx.Amount)
	}

	net = net.Abs()
	for i := range out {
		out[i].Amount = sums[i].Abs()
		out[i].Percentage = percentage(out[i].Amount, net)
	}
	return out
}

// Flow counts and sums inflows and outflows. Totals are magnitudes; Net is
// outflow minus inflow, so a positive net means more was spent than received.
// Zero amounts count as outflows, matching FlowLabel.
func Flow(txs []models.Transaction) models.FlowSummary {
	summary := models.FlowSummary{
		TotalInflow:  decimal.Zero,
		TotalOutflow: decimal.Zero,
	}
	for _, tx := range txs {
		if tx.IsInflow() {
			summary.InflowCount++
			summary.TotalInflow = summary.TotalInflow.Add(tx.Amount.Abs())
			continue
		}
		summary.OutflowCount++
		summary.TotalOutflow = summary.TotalOutflow.Add(tx.Amount.Abs())
	}
	summary.Net = summary.TotalOutflow.Sub(summary.TotalInflow)
	return summary
}

// SortBreakdown returns a copy of bs ordered by amount, largest first, ties
// keeping their input order. When n > 0 the result is cut to n entries.
func SortBreakdown(bs []models.CategoryBreakdown, n int) []models.CategoryBreakdown {
	out := make([]models.CategoryBreakdown, len(bs))
	copy(out, bs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// SortMonths returns a copy of reports in chronological order.
func SortMonths(reports []models.MonthlyReport) []models.MonthlyReport {
	out := make([]models.MonthlyReport, len(reports))
	copy(out, reports)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// LastMonths returns the n most recent reports in chronological order.
func LastMonths(reports []models.MonthlyReport, n int) []models.MonthlyReport {
	sorted := SortMonths(reports)
	if n > 0 && len(sorted) > n {
		sorted = sorted[len(sorted)-n:]
	}
	return sorted
}
