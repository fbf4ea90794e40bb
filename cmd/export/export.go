// Package export contains the spreadsheet export command.
package export

import (
	"fintrack/fintrack/cmd/common"
	"fintrack/fintrack/cmd/root"
	"fintrack/fintrack/internal/dateutils"
	"fintrack/fintrack/internal/export"
	"fintrack/fintrack/internal/query"

	"github.com/spf13/cobra"
)

var (
	filters   common.QueryFlags
	target    string
	overwrite bool

	// Cmd downloads the filtered transactions as a workbook
	Cmd = &cobra.Command{
		Use:   "export",
		Short: "Export transactions to an Excel workbook",
		Long: `Export the transactions matching the filters to an Excel workbook.
The file is named by the backend unless --file is given, and an existing
file is never replaced without --force.`,
		Args: cobra.NoArgs,
		RunE: exportFunc,
	}
)

func init() {
	common.AddQueryFlags(Cmd, &filters)
	Cmd.Flags().StringVarP(&target, "file", "f", "", "Output file or directory")
	Cmd.Flags().BoolVar(&overwrite, "force", false, "Replace an existing file")
}

func exportFunc(cmd *cobra.Command, args []string) error {
	if err := root.RequireLogin(); err != nil {
		return err
	}
	c := root.Container()
	f, s, err := filters.Build(dateutils.Today())
	if err != nil {
		return err
	}
	if f, err = query.Validate(f); err != nil {
		return err
	}

	dl, err := c.GetBackend().Export(cmd.Context(), query.Values(f, s))
	if err != nil {
		return err
	}
	path, err := export.Save(dl, target, overwrite, c.GetLogger())
	if err != nil {
		return err
	}
	return root.Renderer().Message("Exported to %s", path)
}
