package main

import (
	"fmt"

	"github.com/jrsteele09/go-finance-client/internal/config"
	"github.com/spf13/cobra"
)

func rootCmd(cfg config.Config) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "finctl",
		Short: "Command line client for the personal finance API",
		Long: `finctl talks to the personal finance API: transactions, dashboard
figures, spreadsheet import, reports and user administration.

Log in once with "finctl login"; the session is kept on disk and refreshed
silently. When the server rejects the refresh token, commands exit with
status 3 and you need to log in again.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "API base URL (default $FINANCE_API_URL or http://localhost:8000/api)")
	cmd.PersistentFlags().BoolVar(&opts.showMetrics, "metrics", false, "Print client request metrics to stderr after the command")

	cmd.AddCommand(
		loginCmd(cfg, opts),
		logoutCmd(cfg, opts),
		whoamiCmd(cfg, opts),
		registerCmd(cfg, opts),
		transactionsCmd(cfg, opts),
		dashboardCmd(cfg, opts),
		uploadCmd(cfg, opts),
		reportCmd(cfg, opts),
		usersCmd(cfg, opts),
		tokenCmd(cfg, opts),
		versionCmd(cfg),
	)
	return cmd
}

func versionCmd(cfg config.Config) *cobra.Command {
	var banner bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if banner {
				displayAppname(cmd.OutOrStdout(), cfg.GetAppName())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", cfg.GetAppName(), Version)
		},
	}
	cmd.Flags().BoolVar(&banner, "banner", true, "Print the ASCII banner")
	return cmd
}
