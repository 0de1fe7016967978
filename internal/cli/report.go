package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"smartcents/internal/analytics"
	"smartcents/internal/core"
)

func newReportCommand(app *App) *cobra.Command {
	var from, to, month string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize income, expenses and savings for a period",
		Long: `Summarize income, expenses and savings for a period. Without flags the
report covers the current month; --month 2024-03 selects another month and
--from/--to an arbitrary inclusive range.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.identity(ctx)
			if err != nil {
				return err
			}

			start, end, err := reportRange(from, to, month, time.Now())
			if err != nil {
				return err
			}
			summary, err := app.Analytics.Summary(ctx, id.UserID, start, end)
			if err != nil {
				return err
			}
			prefs, err := app.Settings.Get(ctx, id.UserID)
			if err != nil {
				return err
			}
			return app.render(cmd, summary, func(w io.Writer) error {
				return writeSummary(w, summary, prefs.Currency)
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first date, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last date, YYYY-MM-DD")
	cmd.Flags().StringVar(&month, "month", "", "calendar month, YYYY-MM")
	cmd.MarkFlagsMutuallyExclusive("month", "from")
	cmd.MarkFlagsMutuallyExclusive("month", "to")
	return cmd
}

// reportRange resolves the report flags into inclusive bounds.
func reportRange(from, to, month string, now time.Time) (core.Date, core.Date, error) {
	if from != "" || to != "" {
		var start, end core.Date
		var err error
		if from != "" {
			if start, err = core.ParseDate(from); err != nil {
				return start, end, err
			}
		}
		if to != "" {
			if end, err = core.ParseDate(to); err != nil {
				return start, end, err
			}
		}
		if !start.IsZero() && !end.IsZero() && start.Compare(end) > 0 {
			return start, end, fmt.Errorf("%w: --from is after --to", core.ErrInvalidDate)
		}
		return start, end, nil
	}

	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if month != "" {
		t, err := time.Parse(core.PeriodLayout, month)
		if err != nil {
			return core.Date{}, core.Date{}, fmt.Errorf("%w: month %q", core.ErrInvalidDate, month)
		}
		first = t
	}
	last := first.AddDate(0, 1, -1)
	return core.Date{Time: first}, core.Date{Time: last}, nil
}

func writeSummary(w io.Writer, s analytics.Summary, currency string) error {
	period := "all time"
	switch {
	case !s.From.IsZero() && !s.To.IsZero():
		period = s.From.String() + " to " + s.To.String()
	case !s.From.IsZero():
		period = "since " + s.From.String()
	case !s.To.IsZero():
		period = "until " + s.To.String()
	}

	fmt.Fprintf(w, "Period:       %s\n", period)
	fmt.Fprintf(w, "Income:       %s\n", core.FormatMoney(s.Totals.Income, currency))
	fmt.Fprintf(w, "Expenses:     %s\n", core.FormatMoney(s.Totals.Expenses, currency))
	fmt.Fprintf(w, "Balance:      %s\n", core.FormatMoney(s.Totals.Balance, currency))
	fmt.Fprintf(w, "Savings rate: %d%%\n", s.Totals.SavingsRate)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if len(s.Expenses) > 0 {
		fmt.Fprintln(tw, "\nEXPENSES BY CATEGORY\t")
		for _, c := range s.Expenses {
			fmt.Fprintf(tw, "%s\t%s\n", c.Name, core.FormatMoney(c.Amount, currency))
		}
	}
	if len(s.Income) > 0 {
		fmt.Fprintln(tw, "\nINCOME BY CATEGORY\t")
		for _, c := range s.Income {
			fmt.Fprintf(tw, "%s\t%s\n", c.Name, core.FormatMoney(c.Amount, currency))
		}
	}
	if len(s.Monthly) > 1 {
		fmt.Fprintln(tw, "\nMONTH\tINCOME\tEXPENSES")
		for _, m := range s.Monthly {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Period, core.FormatMoney(m.Income, currency), core.FormatMoney(m.Expenses, currency))
		}
	}
	return tw.Flush()
}
