// Package dashboard contains the overview command.
package dashboard

import (
	"fintrack/fintrack/cmd/root"
	"fintrack/fintrack/internal/dateutils"

	"github.com/spf13/cobra"
)

var (
	year int

	// Cmd prints every overview panel at once
	Cmd = &cobra.Command{
		Use:   "dashboard",
		Short: "Show the spending overview",
		Long: `Show the spending overview: inflow and outflow totals, the top
categories, the monthly trend and the account and statement splits.`,
		Args: cobra.NoArgs,
		RunE: dashboardFunc,
	}
)

func init() {
	Cmd.Flags().IntVarP(&year, "year", "y", 0, "Year of the monthly trend (default current year)")
}

func dashboardFunc(cmd *cobra.Command, args []string) error {
	if err := root.RequireLogin(); err != nil {
		return err
	}
	y := year
	if y == 0 {
		y = dateutils.Today().Year
	}
	view, err := root.Container().GetDashboard().Load(cmd.Context(), y)
	if err != nil {
		return err
	}
	return root.Renderer().Dashboard(view)
}
