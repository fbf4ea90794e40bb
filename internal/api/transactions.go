package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"

	"fintrack/fintrack/internal/models"
)

const transactionsPath = "/api/transactions"

// ListTransactions fetches the transactions matching query.
func (c *Client) ListTransactions(ctx context.Context, query url.Values) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := c.getJSON(ctx, transactionsPath, query, &txs); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	return txs, nil
}

// CreateTransaction creates tx. The backend answers either with the created
// transaction or with {message, id}; the id is returned in both cases and
// may be empty if the backend sent neither.
func (c *Client) CreateTransaction(ctx context.Context, tx models.Transaction) (models.ID, error) {
	tx.ID = ""
	var created struct {
		ID models.ID `json:"id"`
	}
	payload, err := json.Marshal(tx)
	if err != nil {
		return "", fmt.Errorf("encode transaction: %w", err)
	}
	_, body, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        transactionsPath,
		body:        bytes.NewReader(payload),
		contentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("create transaction: %w", err)
	}
	if len(bytes.TrimSpace(body)) > 0 {
		// the id is informational; an unexpected body is not a failure
		_ = json.Unmarshal(body, &created)
	}
	return created.ID, nil
}

// UpdateTransaction applies a partial update.
func (c *Client) UpdateTransaction(ctx context.Context, id string, patch models.TransactionPatch) error {
	if err := c.sendJSON(ctx, http.MethodPut, transactionsPath+"/"+url.PathEscape(id), patch, nil); err != nil {
		return fmt.Errorf("update transaction %s: %w", id, err)
	}
	return nil
}

// DeleteTransaction deletes one transaction.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	if _, _, err := c.do(ctx, request{method: http.MethodDelete, path: transactionsPath + "/" + url.PathEscape(id)}); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	return nil
}

// BulkDelete deletes the given transactions in one request. The count is
// the backend's and is not reconciled against len(ids).
func (c *Client) BulkDelete(ctx context.Context, ids []string) (models.BulkDeleteResult, error) {
	payload := struct {
		TransactionIDs []string `json:"transaction_ids"`
	}{TransactionIDs: ids}

	var resp struct {
		DeletedCount *int `json:"deleted_count"`
		Count        *int `json:"count"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, transactionsPath+"/bulk-delete", payload, &resp); err != nil {
		return models.BulkDeleteResult{}, fmt.Errorf("bulk delete %d transactions: %w", len(ids), err)
	}

	var result models.BulkDeleteResult
	switch {
	case resp.DeletedCount != nil:
		result.DeletedCount = *resp.DeletedCount
	case resp.Count != nil:
		result.DeletedCount = *resp.Count
	}
	return result, nil
}

// ImportPDF uploads a bank statement for server-side extraction.
func (c *Client) ImportPDF(ctx context.Context, filename string, r io.Reader) (models.ImportResult, error) {
	result, err := c.upload(ctx, transactionsPath+"/pdf-import", filename, r)
	if err != nil {
		return models.ImportResult{}, fmt.Errorf("import pdf %s: %w", filename, err)
	}
	return result, nil
}

// ImportCSV uploads a CSV file of transactions.
func (c *Client) ImportCSV(ctx context.Context, filename string, r io.Reader) (models.ImportResult, error) {
	result, err := c.upload(ctx, transactionsPath+"/bulk-import", filename, r)
	if err != nil {
		return models.ImportResult{}, fmt.Errorf("import csv %s: %w", filename, err)
	}
	return result, nil
}

func (c *Client) upload(ctx context.Context, path, filename string, r io.Reader) (models.ImportResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return models.ImportResult{}, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return models.ImportResult{}, fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return models.ImportResult{}, err
	}

	_, body, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        &buf,
		contentType: mw.FormDataContentType(),
	})
	if err != nil {
		return models.ImportResult{}, err
	}

	var result models.ImportResult
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			return models.ImportResult{}, fmt.Errorf("decode response of %s: %w", path, err)
		}
	}
	return result, nil
}

// Export downloads the spreadsheet of the transactions matching query. The
// filename comes from the Content-Disposition header.
func (c *Client) Export(ctx context.Context, query url.Values) (*Download, error) {
	resp, body, err := c.do(ctx, request{method: http.MethodGet, path: transactionsPath + "/export/excel", query: query})
	if err != nil {
		return nil, fmt.Errorf("export transactions: %w", err)
	}
	return &Download{
		Filename:    filenameFromDisposition(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// filenameFromDisposition returns the base name of the attachment filename
// (RFC 6266, including the RFC 5987 filename* form), or
// DefaultExportFilename.
func filenameFromDisposition(header string) string {
	if header == "" {
		return DefaultExportFilename
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return DefaultExportFilename
	}
	name := filepath.Base(params["filename"])
	if name == "" || name == "." || name == "/" || name == ".." {
		return DefaultExportFilename
	}
	return name
}
