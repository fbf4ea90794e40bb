package render

import (
	"fmt"
	"strconv"
	"strings"

	"fintrack/fintrack/internal/dashboard"
	"fintrack/fintrack/internal/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
	inflowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))
	outflowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	titleStyle   = lipgloss.NewStyle().Bold(true).MarginTop(1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func (r *Renderer) draw(t *table.Table) error {
	_, err := fmt.Fprintln(r.w, t.Render())
	return err
}

func (r *Renderer) empty(what string) error {
	_, err := fmt.Fprintln(r.w, mutedStyle.Render("No "+what+" found."))
	return err
}

func flowCell(tx models.Transaction) string {
	if tx.IsInflow() {
		return inflowStyle.Render(models.FlowInflow)
	}
	return outflowStyle.Render(models.FlowOutflow)
}

// Transactions prints the transaction list with an inflow/outflow footer.
func (r *Renderer) Transactions(txs []models.Transaction) error {
	if r.Structured() {
		return r.encode(txs)
	}
	if len(txs) == 0 {
		return r.empty("transactions")
	}

	t := newTable("ID", "Date", "Description", "Category", "Amount", "Flow", "Account", "Source")
	var inflows, outflows int
	for _, tx := range txs {
		if tx.IsInflow() {
			inflows++
		} else {
			outflows++
		}
		t.Row(
			string(tx.ID),
			tx.Date.String(),
			truncate(tx.Description, 40),
			tx.CategoryLabel(),
			r.money(tx.Amount.Abs()),
			flowCell(tx),
			string(tx.AccountType),
			truncate(tx.SourceLabel(), 24),
		)
	}
	if err := r.draw(t); err != nil {
		return err
	}
	_, err := fmt.Fprintf(r.w, "%d transactions (%d inflow, %d outflow)\n", len(txs), inflows, outflows)
	return err
}

// Transaction prints one transaction as a key/value table.
func (r *Renderer) Transaction(tx models.Transaction) error {
	if r.Structured() {
		return r.encode(tx)
	}
	t := newTable("Field", "Value").
		Row("ID", string(tx.ID)).
		Row("Date", tx.Date.String()).
		Row("Description", tx.Description).
		Row("Category", tx.CategoryLabel()).
		Row("Amount", r.money(tx.Amount.Abs())).
		Row("Flow", flowCell(tx)).
		Row("Account", string(tx.AccountType)).
		Row("Source", tx.SourceLabel())
	return r.draw(t)
}

// Categories prints the category list.
func (r *Renderer) Categories(cats []models.Category) error {
	if r.Structured() {
		return r.encode(cats)
	}
	if len(cats) == 0 {
		return r.empty("categories")
	}
	t := newTable("ID", "Name", "Color", "Default")
	for _, c := range cats {
		swatch := c.Color
		if c.Color != "" {
			swatch = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render("■ " + c.Color)
		}
		def := ""
		if c.IsDefault {
			def = "yes"
		}
		t.Row(string(c.ID), c.Name, swatch, def)
	}
	return r.draw(t)
}

// Breakdown prints spending per category.
func (r *Renderer) Breakdown(bs []models.CategoryBreakdown) error {
	if r.Structured() {
		return r.encode(bs)
	}
	if len(bs) == 0 {
		return r.empty("spending")
	}
	t := newTable("Category", "Amount", "Count", "Share")
	for _, b := range bs {
		t.Row(b.Category, r.money(b.Amount), strconv.Itoa(b.Count), Percent(b.Percentage))
	}
	return r.draw(t)
}

// Monthly prints spending per month.
func (r *Renderer) Monthly(reports []models.MonthlyReport) error {
	if r.Structured() {
		return r.encode(reports)
	}
	if len(reports) == 0 {
		return r.empty("monthly reports")
	}
	t := newTable("Month", "Spent", "Transactions")
	for _, m := range reports {
		t.Row(m.Label(), r.money(m.TotalSpent), strconv.Itoa(m.TransactionCount))
	}
	return r.draw(t)
}

// Accounts prints the account type split.
func (r *Renderer) Accounts(as []models.AccountTypeSummary) error {
	if r.Structured() {
		return r.encode(as)
	}
	if len(as) == 0 {
		return r.empty("accounts")
	}
	t := newTable("Account", "Amount", "Transactions", "Share")
	for _, a := range as {
		name := string(a.AccountType)
		if name == "" {
			name = "unknown"
		}
		t.Row(name, r.money(a.Amount), strconv.Itoa(a.Count), Percent(a.Percentage))
	}
	return r.draw(t)
}

// Sources prints the statement source split.
func (r *Renderer) Sources(ss []models.SourceSummary) error {
	if r.Structured() {
		return r.encode(ss)
	}
	if len(ss) == 0 {
		return r.empty("sources")
	}
	t := newTable("Source", "Amount", "Transactions", "Share")
	for _, s := range ss {
		t.Row(s.Source, r.money(s.Amount), strconv.Itoa(s.Count), Percent(s.Percentage))
	}
	return r.draw(t)
}

// Flow prints money in against money out.
func (r *Renderer) Flow(f models.FlowSummary) error {
	if r.Structured() {
		return r.encode(f)
	}
	t := newTable("", "Transactions", "Total").
		Row(inflowStyle.Render(models.FlowInflow), strconv.Itoa(f.InflowCount), r.money(f.TotalInflow)).
		Row(outflowStyle.Render(models.FlowOutflow), strconv.Itoa(f.OutflowCount), r.money(f.TotalOutflow)).
		Row("Net", "", r.money(f.Net))
	return r.draw(t)
}

// ImportResult prints the outcome of an import.
func (r *Renderer) ImportResult(res models.ImportResult) error {
	if r.Structured() {
		return r.encode(res)
	}
	msg := res.Message
	if msg == "" {
		msg = "Import finished"
	}
	_, err := fmt.Fprintf(r.w, "%s: %d imported, %d duplicates skipped\n", msg, res.ImportedCount, res.DuplicateCount)
	return err
}

// User prints the logged in account.
func (r *Renderer) User(u models.User) error {
	if r.Structured() {
		return r.encode(u)
	}
	parts := []string{u.Email}
	if u.Username != "" {
		parts = append(parts, "("+u.Username+")")
	}
	if u.FullName != "" {
		parts = append([]string{u.FullName}, "<"+u.Email+">")
	}
	_, err := fmt.Fprintf(r.w, "Logged in as %s\n", strings.Join(parts, " "))
	return err
}

type dashboardOutput struct {
	Breakdown []models.CategoryBreakdown  `json:"category_breakdown" yaml:"category_breakdown"`
	Trend     []models.MonthlyReport      `json:"monthly_trend" yaml:"monthly_trend"`
	Accounts  []models.AccountTypeSummary `json:"accounts" yaml:"accounts"`
	Sources   []models.SourceSummary      `json:"sources" yaml:"sources"`
	Flow      models.FlowSummary          `json:"flow" yaml:"flow"`
	Count     int                         `json:"transaction_count" yaml:"transaction_count"`
}

// Dashboard prints every panel of a loaded dashboard.
func (r *Renderer) Dashboard(v *dashboard.View) error {
	if r.Structured() {
		return r.encode(dashboardOutput{
			Breakdown: v.Breakdown,
			Trend:     v.Trend,
			Accounts:  v.Accounts,
			Sources:   v.Sources,
			Flow:      v.Flow,
			Count:     len(v.Transactions),
		})
	}

	sections := []struct {
		title string
		draw  func() error
	}{
		{"Overview", func() error { return r.Flow(v.Flow) }},
		{fmt.Sprintf("Top %d categories", dashboard.TopCategories), func() error { return r.Breakdown(v.Breakdown) }},
		{"Monthly trend", func() error { return r.Monthly(v.Trend) }},
		{"Account types", func() error { return r.Accounts(v.Accounts) }},
		{"Sources", func() error { return r.Sources(v.Sources) }},
	}
	for _, s := range sections {
		if _, err := fmt.Fprintln(r.w, titleStyle.Render(s.title)); err != nil {
			return err
		}
		if err := s.draw(); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(r.w, "%d transactions, %d categories\n", len(v.Transactions), len(v.Categories))
	return err
}
