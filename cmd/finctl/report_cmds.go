package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jrsteele09/go-finance-client/internal/config"
	"github.com/jrsteele09/go-finance-client/reports"
	"github.com/jrsteele09/go-finance-client/transactions"
	"github.com/spf13/cobra"
)

func reportCmd(cfg config.Config, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Download transaction reports",
	}
	cmd.AddCommand(reportFormatCmd(cfg, opts, reports.PDF), reportFormatCmd(cfg, opts, reports.Excel))
	return cmd
}

func reportFormatCmd(cfg config.Config, opts *rootOptions, format reports.Format) *cobra.Command {
	var start, end, txType, category, output string

	cmd := &cobra.Command{
		Use:   string(format),
		Short: fmt.Sprintf("Download the %s report", format),
		RunE: authed(cfg, opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			q := reports.Query{TransactionType: transactions.Type(txType), Category: category}
			var err error
			if q.StartDate, err = parseOptionalDate(start); err != nil {
				return err
			}
			if q.EndDate, err = parseOptionalDate(end); err != nil {
				return err
			}

			report, err := a.client.Reports.Download(ctx, format, q)
			if err != nil {
				return err
			}
			defer report.Body.Close()

			path := output
			if path == "" {
				path = report.FileName
			}
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			n, err := io.Copy(f, report.Body)
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", path, n)
			return nil
		}),
	}
	cmd.Flags().StringVar(&start, "start", "", "First date, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "Last date, YYYY-MM-DD")
	cmd.Flags().StringVar(&txType, "type", "", "Only this type: income or expense")
	cmd.Flags().StringVar(&category, "category", "", "Only this category")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: name sent by the server)")
	return cmd
}
