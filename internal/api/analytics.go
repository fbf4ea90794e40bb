package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"fintrack/fintrack/internal/models"
)

// MonthlyReport fetches the server's monthly spending totals. Year 0 leaves
// the choice of year to the backend.
func (c *Client) MonthlyReport(ctx context.Context, year int) ([]models.MonthlyReport, error) {
	var query url.Values
	if year > 0 {
		query = url.Values{"year": []string{strconv.Itoa(year)}}
	}
	var reports []models.MonthlyReport
	if err := c.getJSON(ctx, "/api/analytics/monthly-report", query, &reports); err != nil {
		return nil, fmt.Errorf("monthly report: %w", err)
	}
	if reports == nil {
		reports = []models.MonthlyReport{}
	}
	return reports, nil
}

// CategoryBreakdown fetches the server's spending per category.
func (c *Client) CategoryBreakdown(ctx context.Context) ([]models.CategoryBreakdown, error) {
	var breakdown []models.CategoryBreakdown
	if err := c.getJSON(ctx, "/api/analytics/category-breakdown", nil, &breakdown); err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	if breakdown == nil {
		breakdown = []models.CategoryBreakdown{}
	}
	return breakdown, nil
}
