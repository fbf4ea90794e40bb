package models

import (
	"errors"
	"strings"
)

// Category is an expense label.
type Category struct {
	ID        ID     `json:"id,omitempty" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Color     string `json:"color,omitempty" yaml:"color,omitempty"`
	IsDefault bool   `json:"is_default" yaml:"is_default"`
}

// Validate checks the fields required to create or rename a category.
func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("category name is required")
	}
	if c.Color != "" && !isHexColor(c.Color) {
		return errors.New("category color must be a hex value like #3b82f6")
	}
	return nil
}

// CategoriesFile is the on-disk layout of a category list.
type CategoriesFile struct {
	Categories []Category `yaml:"categories"`
}

// DefaultCategories is the set seeded for a new user.
var DefaultCategories = []Category{
	{ID: "food", Name: "Food", Color: "#ef4444", IsDefault: true},
	{ID: "transport", Name: "Transport", Color: "#3b82f6", IsDefault: true},
	{ID: "entertainment", Name: "Entertainment", Color: "#a855f7", IsDefault: true},
	{ID: "utilities", Name: "Utilities", Color: "#f59e0b", IsDefault: true},
	{ID: "shopping", Name: "Shopping", Color: "#10b981", IsDefault: true},
	{ID: "income", Name: "Income", Color: "#22c55e", IsDefault: true},
	{ID: "others", Name: "Others", Color: "#6b7280", IsDefault: true},
}

func isHexColor(s string) bool {
	if !strings.HasPrefix(s, "#") || (len(s) != 4 && len(s) != 7) {
		return false
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
