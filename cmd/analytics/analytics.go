// Package analytics contains the spending report commands.
package analytics

import (
	"fintrack/fintrack/cmd/common"
	"fintrack/fintrack/cmd/root"
	"fintrack/fintrack/internal/aggregate"
	"fintrack/fintrack/internal/config"
	"fintrack/fintrack/internal/dateutils"

	"github.com/spf13/cobra"
)

var (
	filters common.QueryFlags
	top     int
	year    int
	last    int

	// Cmd groups the analytics commands
	Cmd = &cobra.Command{
		Use:   "analytics",
		Short: "Spending reports",
		Long: `Spending reports over the transactions. Category and monthly reports
come from the backend unless analytics.source is "local"; the backend
reports ignore the list filters. Account, source and flow reports are
always computed from the filtered list.`,
	}

	breakdownCmd = &cobra.Command{
		Use:   "breakdown",
		Short: "Spending per category",
		Args:  cobra.NoArgs,
		RunE:  breakdownFunc,
	}

	monthlyCmd = &cobra.Command{
		Use:   "monthly",
		Short: "Spending per month",
		Args:  cobra.NoArgs,
		RunE:  monthlyFunc,
	}

	accountsCmd = &cobra.Command{
		Use:   "accounts",
		Short: "Totals per account type",
		Args:  cobra.NoArgs,
		RunE:  accountsFunc,
	}

	sourcesCmd = &cobra.Command{
		Use:   "sources",
		Short: "Totals per imported statement",
		Args:  cobra.NoArgs,
		RunE:  sourcesFunc,
	}

	flowCmd = &cobra.Command{
		Use:   "flow",
		Short: "Inflow and outflow totals",
		Args:  cobra.NoArgs,
		RunE:  flowFunc,
	}
)

func init() {
	for _, c := range []*cobra.Command{breakdownCmd, monthlyCmd, accountsCmd, sourcesCmd, flowCmd} {
		common.AddQueryFlags(c, &filters)
		Cmd.AddCommand(c)
	}
	breakdownCmd.Flags().IntVarP(&top, "top", "n", 0, "Show only the largest n categories")
	monthlyCmd.Flags().IntVarP(&year, "year", "y", 0, "Only this year")
	monthlyCmd.Flags().IntVarP(&last, "last", "n", 0, "Show only the most recent n months")
}

// load fetches the filtered list when the report is computed from it.
func load(cmd *cobra.Command, local bool) error {
	if err := root.RequireLogin(); err != nil {
		return err
	}
	c := root.Container()
	if !local && c.GetAnalytics().Source() != config.AnalyticsLocal {
		return nil
	}
	return filters.Apply(cmd.Context(), c.GetController(), dateutils.Today())
}

func breakdownFunc(cmd *cobra.Command, args []string) error {
	if err := load(cmd, false); err != nil {
		return err
	}
	bs, err := root.Container().GetAnalytics().CategoryBreakdown(cmd.Context())
	if err != nil {
		return err
	}
	return root.Renderer().Breakdown(aggregate.SortBreakdown(bs, top))
}

func monthlyFunc(cmd *cobra.Command, args []string) error {
	if err := load(cmd, false); err != nil {
		return err
	}
	reports, err := root.Container().GetAnalytics().MonthlyReports(cmd.Context(), year)
	if err != nil {
		return err
	}
	if last > 0 {
		reports = aggregate.LastMonths(reports, last)
	}
	return root.Renderer().Monthly(reports)
}

func accountsFunc(cmd *cobra.Command, args []string) error {
	if err := load(cmd, true); err != nil {
		return err
	}
	return root.Renderer().Accounts(root.Container().GetAnalytics().AccountTypes())
}

func sourcesFunc(cmd *cobra.Command, args []string) error {
	if err := load(cmd, true); err != nil {
		return err
	}
	return root.Renderer().Sources(root.Container().GetAnalytics().Sources())
}

func flowFunc(cmd *cobra.Command, args []string) error {
	if err := load(cmd, true); err != nil {
		return err
	}
	return root.Renderer().Flow(root.Container().GetAnalytics().Flow())
}
