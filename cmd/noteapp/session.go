package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"noteapp/internal/client"
	"noteapp/internal/domain"
)

func newLoginCmd(flags *globalFlags) *cobra.Command {
	var token string
	var claim domain.Claim

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with an ID token or an explicit identity",
		Long: `Sign in and remember the account for later commands.

Pass the ID token issued by the identity provider with --token, or give the
identity directly with --email, --name and --avatar. Unknown emails get a new
account.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" && claim.Email == "" {
				return errors.New("either --token or --email is required")
			}
			return withApp(cmd, flags, false, func(ctx context.Context, app *client.App) error {
				var (
					user domain.User
					err  error
				)
				if token != "" {
					user, err = app.LoginWithToken(ctx, token)
				} else {
					user, err = app.Login(ctx, claim)
				}
				if user.ID == "" {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", displayName(user), user.Email)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d note(s)\n", len(app.Notes()))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "ID token from the identity provider")
	cmd.Flags().StringVar(&claim.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&claim.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&claim.AvatarURL, "avatar", "", "Avatar URL")
	return cmd
}

func newLogoutCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, false, func(ctx context.Context, app *client.App) error {
				app.Logout()
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
				return nil
			})
		},
	}
}

func newWhoamiCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, true, func(ctx context.Context, app *client.App) error {
				user, err := requireUser(app)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n", displayName(user), user.Email, user.ID)
				return nil
			})
		},
	}
}

func displayName(u domain.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
