package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"smartcents/internal/core"
)

func newSettingsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change display preferences",
	}
	cmd.AddCommand(newSettingsGetCommand(app))
	cmd.AddCommand(newSettingsSetCommand(app))
	return cmd
}

func newSettingsGetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.identity(ctx)
			if err != nil {
				return err
			}
			s, err := app.Settings.Get(ctx, id.UserID)
			if err != nil {
				return err
			}
			return app.render(cmd, s, func(w io.Writer) error {
				return writeSettings(w, s)
			})
		},
	}
}

func newSettingsSetCommand(app *App) *cobra.Command {
	var language, currency, theme, name string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change preferences; unset flags keep their value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.identity(ctx)
			if err != nil {
				return err
			}

			var patch core.SettingsPatch
			flags := cmd.Flags()
			if flags.Changed("language") {
				patch.Language = &language
			}
			if flags.Changed("currency") {
				patch.Currency = &currency
			}
			if flags.Changed("theme") {
				t := core.Theme(theme)
				patch.Theme = &t
			}
			if flags.Changed("name") {
				patch.Name = &name
			}

			s, err := app.Settings.Update(ctx, id.UserID, patch)
			if err != nil {
				return err
			}
			return app.render(cmd, s, func(w io.Writer) error {
				return writeSettings(w, s)
			})
		},
	}
	cmd.Flags().StringVar(&language, "language", "", "language code, e.g. en")
	cmd.Flags().StringVar(&currency, "currency", "", "currency code, see 'smartcents currencies'")
	cmd.Flags().StringVar(&theme, "theme", "", "light or dark")
	cmd.Flags().StringVar(&name, "name", "", "display name, empty to clear")
	return cmd
}

func writeSettings(w io.Writer, s core.Settings) error {
	name := s.Name
	if name == "" {
		name = "-"
	}
	_, err := fmt.Fprintf(w, "Language: %s\nCurrency: %s\nTheme:    %s\nName:     %s\n", s.Language, s.Currency, s.Theme, name)
	return err
}
