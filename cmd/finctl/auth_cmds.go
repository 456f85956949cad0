package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jrsteele09/go-finance-client/internal/config"
	ferrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/internal/utils"
	"github.com/jrsteele09/go-finance-client/token"
	"github.com/jrsteele09/go-finance-client/users"
	"github.com/spf13/cobra"
)

const passwordEnvVar = "FINCTL_PASSWORD"

func loginCmd(cfg config.Config, opts *rootOptions) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session on disk",
		RunE: withApp(cfg, opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			var err error
			in := bufio.NewReader(cmd.InOrStdin())
			if username == "" {
				if username, err = readLine(in, cmd.ErrOrStderr(), "Username: "); err != nil {
					return err
				}
			}
			if password == "" {
				password = os.Getenv(passwordEnvVar)
			}
			if password == "" {
				if password, err = readLine(in, cmd.ErrOrStderr(), "Password: "); err != nil {
					return err
				}
			}

			if err := a.session.Login(ctx, username, password); err != nil {
				return err
			}
			u := a.session.User()
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", u.DisplayName(), u.Role)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username or email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (default $"+passwordEnvVar+", else prompted)")
	return cmd
}

func logoutCmd(cfg config.Config, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and forget the stored tokens",
		RunE: withApp(cfg, opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			a.session.Logout(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		}),
	}
}

func whoamiCmd(cfg config.Config, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Validate the stored session and show the current user",
		RunE: withApp(cfg, opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			if err := a.session.ValidateOnStartup(ctx); err != nil {
				return err
			}
			u := a.session.User()
			if u == nil {
				return ferrors.ErrNotAuthenticated
			}

			w := newTable(cmd.OutOrStdout())
			row(w, "ID", fmt.Sprint(u.ID))
			row(w, "Username", u.Username)
			row(w, "Name", orDash(u.FullName))
			row(w, "Email", u.Email)
			row(w, "Role", string(u.Role))
			row(w, "Admin", yesNo(u.IsAdmin()))
			row(w, "Active", yesNo(u.IsActive))
			return w.Flush()
		}),
	}
}

func registerCmd(cfg config.Config, opts *rootOptions) *cobra.Command {
	var reg users.Registration
	var fullName string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log into it",
		RunE: withApp(cfg, opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			if reg.Email == "" || reg.Username == "" || reg.Password == "" {
				return fmt.Errorf("%w: --email, --username and --password are required", ferrors.ErrInvalidArgument)
			}
			if err := users.ValidatePasswordStrength(reg.Password); err != nil {
				return fmt.Errorf("%w: %v", ferrors.ErrInvalidArgument, err)
			}
			reg.FullName = utils.PtrOrNil(fullName)
			if err := a.session.Register(ctx, reg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", a.session.User().DisplayName())
			return nil
		}),
	}
	cmd.Flags().StringVar(&reg.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&reg.Username, "username", "", "Username")
	cmd.Flags().StringVar(&reg.Password, "password", "", "Password")
	cmd.Flags().StringVar(&fullName, "full-name", "", "Full name")
	return cmd
}

func tokenCmd(cfg config.Config, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Inspect the stored tokens",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show where tokens are stored and what they claim",
		RunE: withApp(cfg, opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			pair, err := a.tokens.Load()
			if err != nil {
				return err
			}

			w := newTable(cmd.OutOrStdout())
			row(w, "Store", cfg.GetTokenStoreType())
			row(w, "Path", a.storePath)
			row(w, "API", a.client.BaseURL())
			row(w, "Access token", token.Redact(pair.AccessToken))
			row(w, "Refresh token", token.Redact(pair.RefreshToken))
			if pair.HasAccess() {
				if claims, err := token.Describe(pair.AccessToken); err == nil {
					row(w, "Subject", claims.Subject)
					if !claims.ExpiresAt.IsZero() {
						tok := pair.OAuth2()
						tok.Expiry = claims.ExpiresAt
						state := "valid"
						if !tok.Valid() {
							state = "expired"
						}
						row(w, "Expires", claims.ExpiresAt.Local().Format(time.RFC1123)+" ("+state+")")
					}
				}
			}
			return w.Flush()
		}),
	})
	return cmd
}
