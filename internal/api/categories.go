package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"fintrack/fintrack/internal/models"
)

const categoriesPath = "/api/categories"

// ListCategories fetches the user's categories.
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := c.getJSON(ctx, categoriesPath, nil, &categories); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

// CreateCategory creates a category and returns it as stored.
func (c *Client) CreateCategory(ctx context.Context, cat models.Category) (models.Category, error) {
	created, err := c.writeCategory(ctx, http.MethodPost, categoriesPath, cat)
	if err != nil {
		return models.Category{}, fmt.Errorf("create category %q: %w", cat.Name, err)
	}
	return created, nil
}

// UpdateCategory renames or recolors a category.
func (c *Client) UpdateCategory(ctx context.Context, id string, cat models.Category) (models.Category, error) {
	cat.ID = models.ID(id)
	updated, err := c.writeCategory(ctx, http.MethodPut, categoriesPath+"/"+url.PathEscape(id), cat)
	if err != nil {
		return models.Category{}, fmt.Errorf("update category %s: %w", id, err)
	}
	return updated, nil
}

// DeleteCategory deletes a category.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	if _, _, err := c.do(ctx, request{method: http.MethodDelete, path: categoriesPath + "/" + url.PathEscape(id)}); err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	return nil
}

// writeCategory sends cat and merges whatever the backend returned over it:
// a full category, {message, id}, or nothing.
func (c *Client) writeCategory(ctx context.Context, method, path string, cat models.Category) (models.Category, error) {
	payload, err := json.Marshal(struct {
		Name  string `json:"name"`
		Color string `json:"color,omitempty"`
	}{Name: cat.Name, Color: cat.Color})
	if err != nil {
		return models.Category{}, err
	}

	_, body, err := c.do(ctx, request{
		method:      method,
		path:        path,
		body:        bytes.NewReader(payload),
		contentType: "application/json",
	})
	if err != nil {
		return models.Category{}, err
	}

	result := cat
	if len(bytes.TrimSpace(body)) > 0 {
		var got models.Category
		if err := json.Unmarshal(body, &got); err == nil {
			if got.ID != "" {
				result.ID = got.ID
			}
			if got.Name != "" {
				result = got
			}
		}
	}
	return result, nil
}
