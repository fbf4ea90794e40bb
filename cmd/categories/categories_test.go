package categories_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"fintrack/fintrack/cmd/categories"
	"fintrack/fintrack/cmd/root"
	"fintrack/fintrack/internal/apierror"
	"fintrack/fintrack/internal/config"
	"fintrack/fintrack/internal/container"
	"fintrack/fintrack/internal/logging"
	"fintrack/fintrack/internal/models"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *bytes.Buffer {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Log:       config.LogConfig{Level: "error", Format: "text"},
		API:       config.APIConfig{BaseURL: "http://localhost:8000", TimeoutSeconds: 5},
		Session:   config.SessionConfig{File: filepath.Join(dir, "session.yaml")},
		Analytics: config.AnalyticsConfig{Source: config.AnalyticsLocal},
		Offline: config.OfflineConfig{
			Enabled:          true,
			TransactionsFile: filepath.Join(dir, "transactions.csv"),
			CategoriesFile:   filepath.Join(dir, "categories.yaml"),
		},
		Output: config.OutputConfig{Format: config.OutputTable, CurrencySymbol: "$"},
	}
	var buf bytes.Buffer
	require.NoError(t, root.Setup(cfg, &buf, container.WithLogger(logging.NewMockLogger())))
	t.Cleanup(root.Teardown)
	return &buf
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	categories.Cmd.SetArgs(args)
	defer func() {
		for _, c := range append(categories.Cmd.Commands(), categories.Cmd) {
			c.Flags().VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
	}()
	return categories.Cmd.Execute()
}

func list(t *testing.T) []models.Category {
	t.Helper()
	cats, err := root.Container().GetBackend().ListCategories(context.Background())
	require.NoError(t, err)
	return cats
}

func named(t *testing.T, name string) (models.Category, bool) {
	t.Helper()
	for _, c := range list(t) {
		if c.Name == name {
			return c, true
		}
	}
	return models.Category{}, false
}

func TestList(t *testing.T) {
	out := setup(t)

	require.NoError(t, run(t, "list"))
	for _, c := range models.DefaultCategories {
		assert.Contains(t, out.String(), c.Name)
	}
}

func TestAdd(t *testing.T) {
	out := setup(t)

	require.NoError(t, run(t, "add", "Travel", "--color", "#0ea5e9"))

	assert.Contains(t, out.String(), "Created category Travel")
	c, ok := named(t, "Travel")
	require.True(t, ok)
	assert.Equal(t, "#0ea5e9", c.Color)
	assert.False(t, c.IsDefault)
}

func TestAdd_Rejected(t *testing.T) {
	setup(t)

	err := run(t, "add", "Food")
	assert.Equal(t, apierror.KindValidation, apierror.Classify(err))

	err = run(t, "add", "Travel", "--color", "blue")
	assert.Error(t, err)
	assert.Len(t, list(t), len(models.DefaultCategories))
}

func TestRename(t *testing.T) {
	out := setup(t)
	require.NoError(t, run(t, "add", "Travel", "--color", "#0ea5e9"))

	require.NoError(t, run(t, "rename", "travel", "Holidays"))
	assert.Contains(t, out.String(), "Updated category Holidays")
	c, ok := named(t, "Holidays")
	require.True(t, ok)
	assert.Equal(t, "#0ea5e9", c.Color)

	require.NoError(t, run(t, "rename", string(c.ID), "--color", "#111111"))
	c, _ = named(t, "Holidays")
	assert.Equal(t, "#111111", c.Color)
}

func TestRename_NeedsChange(t *testing.T) {
	setup(t)
	assert.Error(t, run(t, "rename", "food"))
	assert.Error(t, run(t, "rename", "unknown", "x"))
}

func TestRm(t *testing.T) {
	out := setup(t)
	require.NoError(t, run(t, "add", "Travel"))

	require.NoError(t, run(t, "rm", "Travel"))

	assert.Contains(t, out.String(), "Deleted category Travel")
	_, ok := named(t, "Travel")
	assert.False(t, ok)
}

func TestRm_DefaultRefused(t *testing.T) {
	setup(t)

	err := run(t, "rm", "food")

	assert.Equal(t, apierror.KindValidation, apierror.Classify(err))
	assert.Contains(t, err.Error(), "default category")
	assert.Len(t, list(t), len(models.DefaultCategories))
}

func TestCategoriesCommand_Subcommands(t *testing.T) {
	var names []string
	for _, c := range categories.Cmd.Commands() {
		// executing the command on its own adds cobra's help and completion
		if c.Name() == "help" || c.Name() == "completion" {
			continue
		}
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"list", "add", "rename", "rm"}, names)
	assert.IsType(t, &cobra.Command{}, categories.Cmd)
}
