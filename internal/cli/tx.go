package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"smartcents/internal/core"
	"smartcents/internal/ledger"
)

func newTxCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transaction"},
		Short:   "Record, query and export transactions",
	}
	cmd.AddCommand(newTxAddCommand(app))
	cmd.AddCommand(newTxListCommand(app))
	cmd.AddCommand(newTxDeleteCommand(app))
	cmd.AddCommand(newTxExportCommand(app))
	return cmd
}

type filterOptions struct {
	From, To   string
	Type       string
	CategoryID string
	Search     string
	Newest     bool
}

func (o *filterOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.From, "from", "", "first date, YYYY-MM-DD")
	cmd.Flags().StringVar(&o.To, "to", "", "last date, YYYY-MM-DD")
	cmd.Flags().StringVarP(&o.Type, "type", "t", "", "only income or expense")
	cmd.Flags().StringVar(&o.CategoryID, "category", "", "only this category id")
	cmd.Flags().StringVar(&o.Search, "search", "", "description contains, case-insensitive")
	cmd.Flags().BoolVar(&o.Newest, "newest-first", false, "order by date descending")
}

func (o *filterOptions) filter() (ledger.Filter, error) {
	var f ledger.Filter
	var err error
	if o.From != "" {
		if f.DateFrom, err = core.ParseDate(o.From); err != nil {
			return f, err
		}
	}
	if o.To != "" {
		if f.DateTo, err = core.ParseDate(o.To); err != nil {
			return f, err
		}
	}
	if o.Type != "" {
		if f.Type, err = core.ParseTransactionType(o.Type); err != nil {
			return f, err
		}
	}
	f.CategoryID = o.CategoryID
	f.Text = o.Search
	if o.Newest {
		f.Order = ledger.OrderDateDesc
	}
	return f, nil
}

func newTxAddCommand(app *App) *cobra.Command {
	var typ, date, category, description string
	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Record a transaction",
		Example: `  smartcents tx add 12.50 --category <id> --description "Lunch"
  smartcents tx add 2500 --type income --date 2024-03-01`,
		Args: cobra.ExactArgs(1),
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
			t, err := core.ParseTransactionType(typ)
			if err != nil {
				return err
			}
			d := core.Today()
			if date != "" {
				if d, err = core.ParseDate(date); err != nil {
					return err
				}
			}

			tx, err := app.Ledger.Record(ctx, id.UserID, ledger.NewTransaction{
				Amount:      amount,
				Type:        t,
				Date:        d,
				CategoryID:  category,
				Description: description,
			})
			if err != nil {
				return err
			}
			return app.render(cmd, tx, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Recorded %s %s on %s (%s)\n", tx.Type, tx.Amount, tx.Date, tx.ID)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "expense", "income or expense")
	cmd.Flags().StringVarP(&date, "date", "d", "", "YYYY-MM-DD, default today")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category id")
	cmd.Flags().StringVarP(&description, "description", "m", "", "free text note")
	return cmd
}

func newTxListCommand(app *App) *cobra.Command {
	opts := &filterOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.identity(ctx)
			if err != nil {
				return err
			}
			f, err := opts.filter()
			if err != nil {
				return err
			}
			txs, cats, err := app.Ledger.Snapshot(ctx, id.UserID, f)
			if err != nil {
				return err
			}
			prefs, err := app.Settings.Get(ctx, id.UserID)
			if err != nil {
				return err
			}

			names := make(map[string]string, len(cats))
			for _, c := range cats {
				names[c.ID] = c.Name
			}
			return app.render(cmd, txs, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "DATE\tTYPE\tAMOUNT\tCATEGORY\tDESCRIPTION\tID")
				for _, t := range txs {
					category := ""
					if !t.IsUncategorized() {
						category = names[*t.CategoryID]
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
						t.Date, t.Type, core.FormatMoney(t.Amount, prefs.Currency), category, t.Description, t.ID)
				}
				return tw.Flush()
			})
		},
	}
	opts.bind(cmd)
	return cmd
}

func newTxDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.identity(ctx)
			if err != nil {
				return err
			}
			if err := app.Ledger.Delete(ctx, id.UserID, args[0]); err != nil {
				return err
			}
			return app.render(cmd, map[string]string{"deleted": args[0]}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Deleted transaction %s\n", args[0])
				return err
			})
		},
	}
}

func newTxExportCommand(app *App) *cobra.Command {
	opts := &filterOptions{}
	var output string
	cmd := &cobra.Command{
		Use:       "export <csv|xlsx>",
		Short:     "Export transactions as CSV or an Excel workbook",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"csv", "xlsx"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.identity(ctx)
			if err != nil {
				return err
			}
			f, err := opts.filter()
			if err != nil {
				return err
			}

			export := app.Ledger.ExportCSV
			switch args[0] {
			case "csv":
			case "xlsx":
				export = app.Ledger.ExportXLSX
				if output == "" || output == "-" {
					return usageErrorf("xlsx export needs --output <file>")
				}
			default:
				return usageErrorf("unknown export format %q: must be csv or xlsx", args[0])
			}

			if output == "" || output == "-" {
				return export(ctx, id.UserID, f, cmd.OutOrStdout())
			}

			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := export(ctx, id.UserID, f, file); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", output)
			return nil
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, default stdout (csv only)")
	return cmd
}
