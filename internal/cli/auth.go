package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"smartcents/internal/core"
)

type credentialsOptions struct {
	Email    string
	Password string
}

func (o *credentialsOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Email, "email", "", "account email")
	cmd.Flags().StringVar(&o.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
}

func newRegisterCommand(app *App) *cobra.Command {
	opts := &credentialsOptions{}
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := app.Auth.Register(ctx, opts.Email, opts.Password); err != nil {
				return err
			}
			id, token, err := app.Auth.Login(ctx, opts.Email, opts.Password)
			if err != nil {
				return err
			}
			if err := app.writeToken(token); err != nil {
				return err
			}
			return app.render(cmd, id, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Registered and logged in as %s\n", id.Email)
				return err
			})
		},
	}
	opts.bind(cmd)
	return cmd
}

func newLoginCommand(app *App) *cobra.Command {
	opts := &credentialsOptions{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, token, err := app.Auth.Login(cmd.Context(), opts.Email, opts.Password)
			if err != nil {
				return err
			}
			if err := app.writeToken(token); err != nil {
				return err
			}
			return app.render(cmd, id, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Logged in as %s\n", id.Email)
				return err
			})
		},
	}
	opts.bind(cmd)
	return cmd
}

func newLogoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.clearToken(); err != nil {
				return err
			}
			return app.render(cmd, map[string]bool{"logged_out": true}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, "Logged out")
				return err
			})
		},
	}
}

func newWhoamiCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := app.readToken()
			if err != nil {
				return err
			}
			id, err := app.Auth.CurrentIdentity(cmd.Context(), token)
			if err != nil {
				return err
			}
			return app.render(cmd, id, func(w io.Writer) error {
				if id == nil {
					_, err := fmt.Fprintln(w, "Not logged in")
					return err
				}
				_, err := fmt.Fprintf(w, "%s (%s)\n", id.Email, id.UserID)
				return err
			})
		},
	}
}

func newPasswordCommand(app *App) *cobra.Command {
	var oldPassword, newPassword string
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change the password of the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.identity(ctx)
			if err != nil {
				return err
			}
			if err := app.Auth.ChangePassword(ctx, id.UserID, oldPassword, newPassword); err != nil {
				return err
			}
			return app.render(cmd, id, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, "Password changed")
				return err
			})
		},
	}
	cmd.Flags().StringVar(&oldPassword, "old", "", "current password")
	cmd.Flags().StringVar(&newPassword, "new", "", "new password")
	_ = cmd.MarkFlagRequired("old")
	_ = cmd.MarkFlagRequired("new")
	return cmd
}

func newCurrenciesCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "currencies",
		Short: "List supported currency codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := core.Currencies()
			return app.render(cmd, list, func(w io.Writer) error {
				for _, c := range list {
					if _, err := fmt.Fprintf(w, "%s  %-4s %s\n", c.Code, c.Symbol, c.Name); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
