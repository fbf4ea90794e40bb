package offline

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"

	"fintrack/fintrack/internal/api"
	"fintrack/fintrack/internal/models"
	"fintrack/fintrack/internal/query"

	"github.com/xuri/excelize/v2"
)

const (
	exportSheet       = "Transactions"
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportContentPath = "/api/transactions/export/excel"
)

var exportHeaders = []string{"Date", "Description", "Category", "Amount", "Type", "Account Type", "Source"}

// Export writes the transactions matching q to an xlsx workbook.
func (b *Backend) Export(ctx context.Context, q url.Values) (*api.Download, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, s, err := query.ParseValues(q)
	if err != nil {
		return nil, badRequest(http.MethodGet, exportContentPath, err.Error())
	}

	b.mu.Lock()
	txs := query.SortTransactions(query.Filter(f, b.txs), s)
	b.mu.Unlock()

	body, err := buildWorkbook(txs)
	if err != nil {
		return nil, err
	}
	return &api.Download{
		Filename:    api.DefaultExportFilename,
		ContentType: xlsxContentType,
		Body:        body,
	}, nil
}

func buildWorkbook(txs []models.Transaction) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, fmt.Errorf("error naming sheet: %w", err)
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, fmt.Errorf("error writing header: %w", err)
		}
	}

	for r, tx := range txs {
		amount, _ := tx.Amount.Float64()
		row := []interface{}{
			tx.Date.String(),
			tx.Description,
			tx.CategoryLabel(),
			amount,
			tx.FlowLabel(),
			string(tx.AccountType),
			tx.SourceLabel(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("error writing row %d: %w", r+2, err)
		}
	}

	for col, width := range map[string]float64{"A": 12, "B": 40, "C": 18, "D": 12, "E": 10, "F": 14, "G": 24} {
		if err := f.SetColWidth(exportSheet, col, col, width); err != nil {
			return nil, fmt.Errorf("error sizing column %s: %w", col, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("error encoding workbook: %w", err)
	}
	return buf.Bytes(), nil
}
