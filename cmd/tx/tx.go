// Package tx contains the transaction commands.
package tx

import (
	"errors"
	"fmt"
	"strings"

	"fintrack/fintrack/cmd/common"
	"fintrack/fintrack/cmd/root"
	"fintrack/fintrack/internal/currencyutils"
	"fintrack/fintrack/internal/dateutils"
	"fintrack/fintrack/internal/models"

	"github.com/spf13/cobra"
)

const (
	flowIn  = "inflow"
	flowOut = "outflow"
)

var (
	listQuery common.QueryFlags
	bulkQuery common.QueryFlags

	date        string
	description string
	category    string
	amount      string
	accountType string
	inflow      bool

	all bool
	yes bool

	// Cmd groups the transaction commands
	Cmd = &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "List and edit transactions",
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Long: `List transactions matching the given filters, newest first unless
--sort and --order say otherwise.`,
		Args: cobra.NoArgs,
		RunE: listFunc,
	}

	addCmd = &cobra.Command{
		Use:   "add",
		Short: "Add a manual transaction",
		Long: `Add a manual transaction. Amounts are outflows unless --inflow is
given or the amount is negative.`,
		Args: cobra.NoArgs,
		RunE: addFunc,
	}

	editCmd = &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a transaction",
		Long:  `Change the fields of a transaction given as flags. Other fields are left alone.`,
		Args:  cobra.ExactArgs(1),
		RunE:  editFunc,
	}

	flowCmd = &cobra.Command{
		Use:       "flow <id> <inflow|outflow>",
		Short:     "Mark a transaction as inflow or outflow",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{flowIn, flowOut},
		RunE:      flowFunc,
	}

	rmCmd = &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a transaction",
		Args:    cobra.ExactArgs(1),
		RunE:    rmFunc,
	}

	bulkRmCmd = &cobra.Command{
		Use:   "bulk-rm [id...]",
		Short: "Delete several transactions at once",
		Long: `Delete the given transactions, or with --all every transaction matching
the filters, in a single request. Deleting more than one transaction
requires --yes.`,
		RunE: bulkRmFunc,
	}
)

func init() {
	common.AddQueryFlags(listCmd, &listQuery)

	addCmd.Flags().StringVar(&date, "date", "", "Booking date (default today)")
	addCmd.Flags().StringVarP(&description, "description", "d", "", "Description")
	addCmd.Flags().StringVar(&category, "category", "", "Category name")
	addCmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount")
	addCmd.Flags().StringVar(&accountType, "account-type", "", "Account type (default credit_card)")
	addCmd.Flags().BoolVar(&inflow, "inflow", false, "Record money coming in")
	_ = addCmd.MarkFlagRequired("description")
	_ = addCmd.MarkFlagRequired("category")
	_ = addCmd.MarkFlagRequired("amount")

	editCmd.Flags().StringVar(&date, "date", "", "New booking date")
	editCmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	editCmd.Flags().StringVar(&category, "category", "", "New category")
	editCmd.Flags().StringVarP(&amount, "amount", "a", "", "New amount")
	editCmd.Flags().StringVar(&accountType, "account-type", "", "New account type")

	common.AddQueryFlags(bulkRmCmd, &bulkQuery)
	bulkRmCmd.Flags().BoolVar(&all, "all", false, "Delete every transaction matching the filters")
	bulkRmCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not refuse to delete several transactions")

	Cmd.AddCommand(listCmd, addCmd, editCmd, flowCmd, rmCmd, bulkRmCmd)
}

func listFunc(cmd *cobra.Command, args []string) error {
	if err := root.RequireLogin(); err != nil {
		return err
	}
	c := root.Container()
	if err := listQuery.Apply(cmd.Context(), c.GetController(), dateutils.Today()); err != nil {
		return err
	}
	return root.Renderer().Transactions(c.GetStore().Transactions())
}

func addFunc(cmd *cobra.Command, args []string) error {
	if err := root.RequireLogin(); err != nil {
		return err
	}
	amt, err := currencyutils.ParseAmount(amount)
	if err != nil {
		return err
	}
	if inflow {
		amt = models.SignedAmount(amt, true)
	}
	booked := dateutils.Today()
	if date != "" {
		if booked, err = dateutils.ParseUserDate(date); err != nil {
			return err
		}
	}
	at, err := optionalAccountType(accountType)
	if err != nil {
		return err
	}

	id, err := root.Container().GetMutations().Create(cmd.Context(), models.Transaction{
		Date:        booked,
		Description: strings.TrimSpace(description),
		Category:    strings.TrimSpace(category),
		Amount:      amt,
		AccountType: at,
	})
	if err != nil {
		return err
	}
	return root.Renderer().Message("Created transaction %s", id)
}

func editFunc(cmd *cobra.Command, args []string) error {
	if err := root.RequireLogin(); err != nil {
		return err
	}
	patch, err := buildPatch(cmd)
	if err != nil {
		return err
	}
	id := models.ID(args[0])
	if err := root.Container().GetMutations().Update(cmd.Context(), id, patch); err != nil {
		return err
	}
	return root.Renderer().Message("Updated transaction %s", id)
}

func buildPatch(cmd *cobra.Command) (models.TransactionPatch, error) {
	var patch models.TransactionPatch
	flags := cmd.Flags()
	if flags.Changed("description") {
		d := description
		patch.Description = &d
	}
	if flags.Changed("category") {
		c := category
		patch.Category = &c
	}
	if flags.Changed("amount") {
		amt, err := currencyutils.ParseAmount(amount)
		if err != nil {
			return patch, err
		}
		patch.Amount = &amt
	}
	if flags.Changed("date") {
		d, err := dateutils.ParseUserDate(date)
		if err != nil {
			return patch, err
		}
		patch.Date = &d
	}
	if flags.Changed("account-type") {
		at, err := models.ParseAccountType(accountType)
		if err != nil {
			return patch, err
		}
		patch.AccountType = &at
	}
	return patch, nil
}

func flowFunc(cmd *cobra.Command, args []string) error {
	if err := root.RequireLogin(); err != nil {
		return err
	}
	var in bool
	switch strings.ToLower(args[1]) {
	case flowIn:
		in = true
	case flowOut:
	default:
		return fmt.Errorf("unknown flow %q (expected inflow or outflow)", args[1])
	}

	// the stored amount travels with the flag, so load it first
	c := root.Container()
	if err := c.GetStore().Refresh(cmd.Context()); err != nil {
		return err
	}
	id := models.ID(args[0])
	if !c.GetStore().Contains(id) {
		return fmt.Errorf("transaction %s not found", id)
	}
	if err := c.GetMutations().SetFlow(cmd.Context(), id, in); err != nil {
		return err
	}
	return root.Renderer().Message("Marked transaction %s as %s", id, strings.ToLower(args[1]))
}

func rmFunc(cmd *cobra.Command, args []string) error {
	if err := root.RequireLogin(); err != nil {
		return err
	}
	id := models.ID(args[0])
	if err := root.Container().GetMutations().Delete(cmd.Context(), id); err != nil {
		return err
	}
	return root.Renderer().Message("Deleted transaction %s", id)
}

func bulkRmFunc(cmd *cobra.Command, args []string) error {
	if err := root.RequireLogin(); err != nil {
		return err
	}
	if all == (len(args) > 0) {
		return errors.New("give either transaction ids or --all")
	}

	c := root.Container()
	if err := bulkQuery.Apply(cmd.Context(), c.GetController(), dateutils.Today()); err != nil {
		return err
	}
	sel := c.GetSelection()
	if all {
		sel.SelectAll()
	} else {
		for _, arg := range args {
			id := models.ID(arg)
			if !c.GetStore().Contains(id) {
				return fmt.Errorf("transaction %s is not in the current list", id)
			}
			if !sel.IsSelected(id) {
				sel.Toggle(id)
			}
		}
	}

	n := sel.Len()
	if n == 0 {
		return root.Renderer().Message("Nothing to delete")
	}
	if n > 1 && !yes {
		return fmt.Errorf("refusing to delete %d transactions without --yes", n)
	}
	deleted, err := c.GetMutations().BulkDeleteSelected(cmd.Context())
	if err != nil {
		return err
	}
	return root.Renderer().Message("Deleted %d transactions", deleted)
}

func optionalAccountType(s string) (models.AccountType, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return models.ParseAccountType(s)
}
