package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jrsteele09/go-finance-client/internal/config"
	"github.com/spf13/cobra"
)

func uploadCmd(cfg config.Config, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Import transactions from files",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "excel FILE",
		Short: "Import an .xlsx or .xls spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: authed(cfg, opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			result, err := a.client.Upload.Excel(ctx, args[0], f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d)\n", result.Message, result.Count)
			return nil
		}),
	})
	return cmd
}
