// Package importer contains the statement import commands.
package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fintrack/fintrack/cmd/root"
	"fintrack/fintrack/internal/models"

	"github.com/spf13/cobra"
)

var (
	// Cmd groups the import commands
	Cmd = &cobra.Command{
		Use:   "import",
		Short: "Import bank statements",
	}

	pdfCmd = &cobra.Command{
		Use:   "pdf <file>",
		Short: "Import a PDF bank statement",
		Long: `Upload a PDF bank statement. The backend extracts its transactions and
skips those it already has.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return importFile(cmd, args[0], ".pdf", root.Container().GetMutations().ImportPDF)
		},
	}

	csvCmd = &cobra.Command{
		Use:   "csv <file>",
		Short: "Import a CSV export",
		Long: `Import transactions from a CSV file with the columns date, description,
category, amount, account_type and pdf_source. Duplicates are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return importFile(cmd, args[0], ".csv", root.Container().GetMutations().ImportCSV)
		},
	}
)

type importFunc func(ctx context.Context, filename string, r io.Reader) (models.ImportResult, error)

func init() {
	Cmd.AddCommand(pdfCmd, csvCmd)
}

func importFile(cmd *cobra.Command, path, ext string, send importFunc) error {
	if err := root.RequireLogin(); err != nil {
		return err
	}
	if !strings.EqualFold(filepath.Ext(path), ext) {
		return fmt.Errorf("%s is not a %s file", path, strings.TrimPrefix(ext, "."))
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	res, err := send(cmd.Context(), filepath.Base(path), f)
	if err != nil {
		return err
	}
	return root.Renderer().ImportResult(res)
}
