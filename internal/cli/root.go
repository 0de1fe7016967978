package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"smartcents/internal/config"
)

// NewRootCommand creates the root command for the smartcents CLI.
func NewRootCommand(app *App) *cobra.Command {
	opts := app.opts

	cmd := &cobra.Command{
		Use:           "smartcents",
		Short:         "Personal finance ledger",
		Long:          "Record income and expenses, organize them in categories and report on them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return usageErrorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return app.open()
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageErrorf("%v", err)
	})

	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "database file (default from SMARTCENTS_DB_PATH)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging on stderr")

	cmd.AddCommand(newRegisterCommand(app))
	cmd.AddCommand(newLoginCommand(app))
	cmd.AddCommand(newLogoutCommand(app))
	cmd.AddCommand(newWhoamiCommand(app))
	cmd.AddCommand(newPasswordCommand(app))
	cmd.AddCommand(newCategoryCommand(app))
	cmd.AddCommand(newTxCommand(app))
	cmd.AddCommand(newReportCommand(app))
	cmd.AddCommand(newSettingsCommand(app))
	cmd.AddCommand(newBudgetCommand(app))
	cmd.AddCommand(newCurrenciesCommand(app))

	return cmd
}

// Run executes one CLI invocation and returns the process exit code.
func Run(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	app := NewApp(cfg, stderr)
	defer app.Close()

	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitCode(err)
	}
	return ExitSuccess
}
