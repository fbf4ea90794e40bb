// Package categories contains the category commands.
package categories

import (
	"context"
	"fmt"
	"strings"

	"fintrack/fintrack/cmd/root"
	"fintrack/fintrack/internal/models"

	"github.com/spf13/cobra"
)

var (
	color string

	// Cmd groups the category commands
	Cmd = &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "Manage expense categories",
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE:  listFunc,
	}

	addCmd = &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE:  addFunc,
	}

	renameCmd = &cobra.Command{
		Use:   "rename <id|name> [new-name]",
		Short: "Rename or recolour a category",
		Long: `Rename a category, or change its colour with --color. The category is
found by id or by name.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: renameFunc,
	}

	rmCmd = &cobra.Command{
		Use:     "rm <id|name>",
		Aliases: []string{"delete"},
		Short:   "Delete a user-defined category",
		Long:    `Delete a category. Default categories cannot be deleted.`,
		Args:    cobra.ExactArgs(1),
		RunE:    rmFunc,
	}
)

func init() {
	addCmd.Flags().StringVar(&color, "color", "", "Colour as a hex value like #3b82f6")
	renameCmd.Flags().StringVar(&color, "color", "", "New colour as a hex value")

	Cmd.AddCommand(listCmd, addCmd, renameCmd, rmCmd)
}

func listFunc(cmd *cobra.Command, args []string) error {
	if err := root.RequireLogin(); err != nil {
		return err
	}
	cats, err := root.Container().GetBackend().ListCategories(cmd.Context())
	if err != nil {
		return err
	}
	return root.Renderer().Categories(cats)
}

func addFunc(cmd *cobra.Command, args []string) error {
	if err := root.RequireLogin(); err != nil {
		return err
	}
	created, err := root.Container().GetMutations().CreateCategory(cmd.Context(), models.Category{
		Name:  strings.TrimSpace(args[0]),
		Color: strings.TrimSpace(color),
	})
	if err != nil {
		return err
	}
	return root.Renderer().Message("Created category %s (%s)", created.Name, created.ID)
}

func renameFunc(cmd *cobra.Command, args []string) error {
	if err := root.RequireLogin(); err != nil {
		return err
	}
	if len(args) == 1 && !cmd.Flags().Changed("color") {
		return fmt.Errorf("give a new name or --color")
	}
	cat, err := find(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	next := cat
	if len(args) == 2 {
		next.Name = strings.TrimSpace(args[1])
	}
	if cmd.Flags().Changed("color") {
		next.Color = strings.TrimSpace(color)
	}

	updated, err := root.Container().GetMutations().UpdateCategory(cmd.Context(), cat.ID, next)
	if err != nil {
		return err
	}
	return root.Renderer().Message("Updated category %s", updated.Name)
}

func rmFunc(cmd *cobra.Command, args []string) error {
	if err := root.RequireLogin(); err != nil {
		return err
	}
	cat, err := find(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := root.Container().GetMutations().DeleteCategory(cmd.Context(), cat); err != nil {
		return err
	}
	return root.Renderer().Message("Deleted category %s", cat.Name)
}

// find resolves a category by id first, then by name ignoring case.
func find(ctx context.Context, ref string) (models.Category, error) {
	cats, err := root.Container().GetBackend().ListCategories(ctx)
	if err != nil {
		return models.Category{}, err
	}
	for _, c := range cats {
		if string(c.ID) == ref {
			return c, nil
		}
	}
	for _, c := range cats {
		if strings.EqualFold(c.Name, strings.TrimSpace(ref)) {
			return c, nil
		}
	}
	return models.Category{}, fmt.Errorf("category %q not found", ref)
}
