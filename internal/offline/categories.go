package offline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"fintrack/fintrack/internal/logging"
	"fintrack/fintrack/internal/models"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const categoriesPath = "/api/categories"

func (b *Backend) loadCategories() error {
	data, err := os.ReadFile(b.categoriesFile)
	if errors.Is(err, os.ErrNotExist) {
		b.logger.Debug("Categories file not found, seeding defaults", logging.F(logging.FieldFile, b.categoriesFile))
		b.categories = append([]models.Category(nil), models.DefaultCategories...)
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading categories file: %w", err)
	}

	var file models.CategoriesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("error parsing categories file %s: %w", b.categoriesFile, err)
	}
	// a bare list without the top-level key is accepted too
	if len(file.Categories) == 0 {
		var list []models.Category
		if err := yaml.Unmarshal(data, &list); err == nil && len(list) > 0 {
			file.Categories = list
		}
	}
	if file.Categories == nil {
		file.Categories = []models.Category{}
	}
	b.categories = file.Categories
	return nil
}

// saveCategories must be called with mu held.
func (b *Backend) saveCategories() error {
	data, err := yaml.Marshal(models.CategoriesFile{Categories: b.categories})
	if err != nil {
		return fmt.Errorf("error encoding categories: %w", err)
	}
	return writeFile(b.categoriesFile, data)
}

func (b *Backend) categoryIndex(id models.ID) int {
	for i, c := range b.categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (b *Backend) nameTaken(name string, except models.ID) bool {
	for _, c := range b.categories {
		if c.ID != except && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// ListCategories returns every category, defaults first as seeded.
func (b *Backend) ListCategories(ctx context.Context) ([]models.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Category, len(b.categories))
	copy(out, b.categories)
	return out, nil
}

// CreateCategory adds a user category under a new id.
func (b *Backend) CreateCategory(ctx context.Context, c models.Category) (models.Category, error) {
	if err := ctx.Err(); err != nil {
		return models.Category{}, err
	}
	if err := c.Validate(); err != nil {
		return models.Category{}, badRequest(http.MethodPost, categoriesPath, err.Error())
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.nameTaken(c.Name, "") {
		return models.Category{}, badRequest(http.MethodPost, categoriesPath, "Category already exists")
	}
	c.ID = models.ID(uuid.NewString())
	c.IsDefault = false

	b.categories = append(b.categories, c)
	if err := b.saveCategories(); err != nil {
		b.categories = b.categories[:len(b.categories)-1]
		return models.Category{}, err
	}
	return c, nil
}

// UpdateCategory renames or recolours a category.
func (b *Backend) UpdateCategory(ctx context.Context, id string, c models.Category) (models.Category, error) {
	if err := ctx.Err(); err != nil {
		return models.Category{}, err
	}
	path := categoriesPath + "/" + id
	if err := c.Validate(); err != nil {
		return models.Category{}, badRequest(http.MethodPut, path, err.Error())
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.categoryIndex(models.ID(id))
	if i < 0 {
		return models.Category{}, notFound(http.MethodPut, path, "Category")
	}
	if b.nameTaken(c.Name, models.ID(id)) {
		return models.Category{}, badRequest(http.MethodPut, path, "Category already exists")
	}

	prev := b.categories[i]
	next := prev
	next.Name = c.Name
	if c.Color != "" {
		next.Color = c.Color
	}
	b.categories[i] = next
	if err := b.saveCategories(); err != nil {
		b.categories[i] = prev
		return models.Category{}, err
	}
	return next, nil
}

// DeleteCategory removes a user category. Default categories are kept.
func (b *Backend) DeleteCategory(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := categoriesPath + "/" + id

	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.categoryIndex(models.ID(id))
	if i < 0 {
		return notFound(http.MethodDelete, path, "Category")
	}
	if b.categories[i].IsDefault {
		return badRequest(http.MethodDelete, path, "Cannot delete default category")
	}

	prev := b.categories
	b.categories = append(append(make([]models.Category, 0, len(prev)-1), prev[:i]...), prev[i+1:]...)
	if err := b.saveCategories(); err != nil {
		b.categories = prev
		return err
	}
	return nil
}
