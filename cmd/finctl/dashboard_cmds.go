package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jrsteele09/go-finance-client/dashboard"
	"github.com/jrsteele09/go-finance-client/internal/config"
	"github.com/jrsteele09/go-finance-client/money"
	"github.com/spf13/cobra"
)

func dashboardCmd(cfg config.Config, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Aggregated figures",
	}
	cmd.AddCommand(dashboardStatsCmd(cfg, opts), dashboardHourlyCmd(cfg, opts))
	return cmd
}

func dashboardStatsCmd(cfg config.Config, opts *rootOptions) *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Totals, balance and breakdowns",
		RunE: authed(cfg, opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			var period dashboard.Period
			var err error
			if period.Start, err = parseOptionalDate(start); err != nil {
				return err
			}
			if period.End, err = parseOptionalDate(end); err != nil {
				return err
			}

			stats, err := a.client.Dashboard.Stats(ctx, period)
			if err != nil {
				return err
			}

			w := newTable(cmd.OutOrStdout())
			row(w, "Income", brl(stats.TotalIncome))
			row(w, "Expense", brl(stats.TotalExpense))
			row(w, "Balance", brl(stats.Balance))
			row(w, "Monthly balance", brl(stats.MonthlyBalance))
			row(w, "Fixed expenses", brl(stats.FixedExpenses))
			row(w, "Sporadic expenses", brl(stats.SporadicExpenses))
			row(w, "Investments", brl(stats.Investments))
			row(w, "")
			row(w, "EXPENSE CATEGORY", "AMOUNT")
			for _, c := range sortedCategories(stats.ExpenseByCategory) {
				row(w, c, brl(stats.ExpenseByCategory[c]))
			}
			row(w, "")
			row(w, "MONTH", "INCOME", "EXPENSE")
			for _, m := range stats.MonthlyTrend {
				row(w, m.Month, brl(m.Income), brl(m.Expense))
			}
			return w.Flush()
		}),
	}
	cmd.Flags().StringVar(&start, "start", "", "First date, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "Last date, YYYY-MM-DD")
	return cmd
}

func dashboardHourlyCmd(cfg config.Config, opts *rootOptions) *cobra.Command {
	now := time.Now()
	req := dashboard.HourlyCalculationRequest{Month: int(now.Month()), Year: now.Year(), HoursPerDay: 8}

	cmd := &cobra.Command{
		Use:   "hourly",
		Short: "What a month's income is worth per hour worked",
		RunE: authed(cfg, opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			out, err := a.client.Dashboard.HourlyCalculation(ctx, req)
			if err != nil {
				return err
			}
			w := newTable(cmd.OutOrStdout())
			row(w, "Month", out.Month)
			row(w, "Total received", brl(out.TotalReceived))
			row(w, "Hours", fmt.Sprintf("%g (%d days x %g h)", out.TotalHours, out.DaysWorked, out.HoursPerDay))
			row(w, "Per hour", brl(out.ValuePerHour))
			row(w, "Per day", brl(out.ValuePerDay))
			row(w, "Per week", brl(out.ValuePerWeek))
			return w.Flush()
		}),
	}
	cmd.Flags().IntVar(&req.Month, "month", req.Month, "Month, 1-12")
	cmd.Flags().IntVar(&req.Year, "year", req.Year, "Year")
	cmd.Flags().IntVar(&req.DaysWorked, "days", 0, "Days worked in the month")
	cmd.Flags().Float64Var(&req.HoursPerDay, "hours", req.HoursPerDay, "Hours worked per day")
	_ = cmd.MarkFlagRequired("days")
	return cmd
}

func sortedCategories(m map[string]money.Amount) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
