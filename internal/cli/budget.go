package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"smartcents/internal/core"
)

func newBudgetCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage spending limits",
	}
	cmd.AddCommand(newBudgetSetCommand(app))
	cmd.AddCommand(newBudgetListCommand(app))
	cmd.AddCommand(newBudgetDeleteCommand(app))
	return cmd
}

func newBudgetSetCommand(app *App) *cobra.Command {
	var category, period string
	cmd := &cobra.Command{
		Use:   "set <amount>",
		Short: "Add a budget for a category, or an overall one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.identity(ctx)
			if err != nil {
				return err
			}
			amount, err := core.ParseAmount(args[0])
			if err != nil {
				return err
			}
			p, err := core.ParseBudgetPeriod(period)
			if err != nil {
				return err
			}
			b, err := app.Budget.Set(ctx, id.UserID, category, amount, p)
			if err != nil {
				return err
			}
			return app.render(cmd, b, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Budget %s set: %s %s\n", b.ID, b.Amount, b.Period)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "category id, empty for an overall budget")
	cmd.Flags().StringVarP(&period, "period", "p", string(core.Monthly), "monthly or yearly")
	return cmd
}

func newBudgetListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List budgets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.identity(ctx)
			if err != nil {
				return err
			}
			budgets, err := app.Budget.List(ctx, id.UserID)
			if err != nil {
				return err
			}
			prefs, err := app.Settings.Get(ctx, id.UserID)
			if err != nil {
				return err
			}
			return app.render(cmd, budgets, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tCATEGORY\tAMOUNT\tPERIOD")
				for _, b := range budgets {
					category := "(overall)"
					if b.CategoryID != nil {
						category = *b.CategoryID
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.ID, category, core.FormatMoney(b.Amount, prefs.Currency), b.Period)
				}
				return tw.Flush()
			})
		},
	}
}

func newBudgetDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.identity(ctx)
			if err != nil {
				return err
			}
			if err := app.Budget.Delete(ctx, id.UserID, args[0]); err != nil {
				return err
			}
			return app.render(cmd, map[string]string{"deleted": args[0]}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Deleted budget %s\n", args[0])
				return err
			})
		},
	}
}
