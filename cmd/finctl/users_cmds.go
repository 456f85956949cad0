package main

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-finance-client/internal/config"
	"github.com/jrsteele09/go-finance-client/internal/utils"
	"github.com/jrsteele09/go-finance-client/users"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func usersCmd(cfg config.Config, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts (admin only)",
	}
	cmd.AddCommand(
		usersListCmd(cfg, opts),
		usersGetCmd(cfg, opts),
		usersCreateCmd(cfg, opts),
		usersUpdateCmd(cfg, opts),
		usersDeleteCmd(cfg, opts),
	)
	return cmd
}

func usersListCmd(cfg config.Config, opts *rootOptions) *cobra.Command {
	var skip, limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: authed(cfg, opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			list, err := a.client.Users.List(ctx, skip, limit)
			if err != nil {
				return err
			}
			w := newTable(cmd.OutOrStdout())
			row(w, "ID", "USERNAME", "EMAIL", "ROLE", "ACTIVE")
			for _, u := range list {
				row(w, fmt.Sprint(u.ID), u.Username, u.Email, string(u.Role), yesNo(u.IsActive))
			}
			return w.Flush()
		}),
	}
	cmd.Flags().IntVar(&skip, "skip", 0, "Number of users to skip")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of users")
	return cmd
}

func usersGetCmd(cfg config.Config, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one account",
		Args:  cobra.ExactArgs(1),
		RunE: authed(cfg, opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			u, err := a.client.Users.Get(ctx, id)
			if err != nil {
				return err
			}
			return printUser(cmd, u)
		}),
	}
}

type userFlags struct {
	email, username, fullName, password, role string
	active                                    bool
}

func (uf *userFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&uf.email, "email", "", "Email address")
	fs.StringVar(&uf.username, "username", "", "Username")
	fs.StringVar(&uf.fullName, "full-name", "", "Full name")
	fs.StringVar(&uf.password, "password", "", "Password")
	fs.StringVar(&uf.role, "role", "", "admin or user")
	fs.BoolVar(&uf.active, "active", true, "Whether the account may log in")
}

func (uf *userFlags) input(fs *pflag.FlagSet) users.Input {
	var in users.Input
	if fs.Changed("email") {
		in.Email = utils.Ptr(uf.email)
	}
	if fs.Changed("username") {
		in.Username = utils.Ptr(uf.username)
	}
	if fs.Changed("full-name") {
		in.FullName = utils.Ptr(uf.fullName)
	}
	if fs.Changed("password") {
		in.Password = utils.Ptr(uf.password)
	}
	if fs.Changed("role") {
		in.Role = utils.Ptr(users.RoleType(uf.role))
	}
	if fs.Changed("active") {
		in.IsActive = utils.Ptr(uf.active)
	}
	return in
}

func usersCreateCmd(cfg config.Config, opts *rootOptions) *cobra.Command {
	uf := &userFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		RunE: authed(cfg, opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			u, err := a.client.Users.Create(ctx, uf.input(cmd.Flags()))
			if err != nil {
				return err
			}
			return printUser(cmd, u)
		}),
	}
	uf.bind(cmd.Flags())
	return cmd
}

func usersUpdateCmd(cfg config.Config, opts *rootOptions) *cobra.Command {
	uf := &userFlags{}
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change the given fields of an account",
		Args:  cobra.ExactArgs(1),
		RunE: authed(cfg, opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			u, err := a.client.Users.Update(ctx, id, uf.input(cmd.Flags()))
			if err != nil {
				return err
			}
			return printUser(cmd, u)
		}),
	}
	uf.bind(cmd.Flags())
	return cmd
}

func usersDeleteCmd(cfg config.Config, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: authed(cfg, opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.client.Users.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %d\n", id)
			return nil
		}),
	}
}

func printUser(cmd *cobra.Command, u *users.User) error {
	w := newTable(cmd.OutOrStdout())
	row(w, "ID", fmt.Sprint(u.ID))
	row(w, "Username", u.Username)
	row(w, "Name", orDash(u.FullName))
	row(w, "Email", u.Email)
	row(w, "Role", string(u.Role))
	row(w, "Active", yesNo(u.IsActive))
	row(w, "Created", u.CreatedAt.Format("2006-01-02 15:04"))
	return w.Flush()
}
