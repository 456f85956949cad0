package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/go-finance-client/internal/config"
	"github.com/jrsteele09/go-finance-client/internal/utils"
	"github.com/jrsteele09/go-finance-client/money"
	"github.com/jrsteele09/go-finance-client/transactions"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func transactionsCmd(cfg config.Config, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "List and edit transactions",
	}
	cmd.AddCommand(
		transactionsListCmd(cfg, opts),
		transactionsGetCmd(cfg, opts),
		transactionsCreateCmd(cfg, opts),
		transactionsUpdateCmd(cfg, opts),
		transactionsDeleteCmd(cfg, opts),
	)
	return cmd
}

func transactionsListCmd(cfg config.Config, opts *rootOptions) *cobra.Command {
	var (
		filter     transactions.Filter
		txType     string
		start, end string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		RunE: authed(cfg, opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			var err error
			filter.Type = transactions.Type(txType)
			if filter.StartDate, err = parseOptionalDate(start); err != nil {
				return err
			}
			if filter.EndDate, err = parseOptionalDate(end); err != nil {
				return err
			}

			list, err := a.client.Transactions.List(ctx, filter)
			if err != nil {
				return err
			}

			w := newTable(cmd.OutOrStdout())
			row(w, "ID", "DATE", "TYPE", "CATEGORY", "DESCRIPTION", "AMOUNT")
			for _, tx := range list {
				row(w, fmt.Sprint(tx.ID), tx.Date.String(), string(tx.Type), tx.Category, tx.Description, brl(tx.Amount))
			}
			return w.Flush()
		}),
	}
	cmd.Flags().IntVar(&filter.Skip, "skip", 0, "Number of transactions to skip")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Maximum number of transactions (server default when 0)")
	cmd.Flags().StringVar(&txType, "type", "", "Only this type: income or expense")
	cmd.Flags().StringVar(&start, "start", "", "First date, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "Last date, YYYY-MM-DD")
	return cmd
}

func transactionsGetCmd(cfg config.Config, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: authed(cfg, opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			tx, err := a.client.Transactions.Get(ctx, id)
			if err != nil {
				return err
			}
			return printTransaction(cmd, tx)
		}),
	}
}

// transactionFlags binds the create/update flags and turns the ones the
// user set into an Input.
type transactionFlags struct {
	txType, subtype, description, amount, date, category, notes string
}

func (tf *transactionFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&tf.txType, "type", "", "income or expense")
	fs.StringVar(&tf.subtype, "subtype", "", "fixed, sporadic, investment or received")
	fs.StringVar(&tf.description, "description", "", "Description")
	fs.StringVar(&tf.amount, "amount", "", "Amount, e.g. 1234.56 or 1234,56")
	fs.StringVar(&tf.date, "date", "", "Date, YYYY-MM-DD (create defaults to today)")
	fs.StringVar(&tf.category, "category", "", "Category (create defaults to "+transactions.DefaultCategory+")")
	fs.StringVar(&tf.notes, "notes", "", "Free-form notes")
}

func (tf *transactionFlags) input(fs *pflag.FlagSet) (transactions.Input, error) {
	var in transactions.Input
	if fs.Changed("type") {
		in.Type = utils.Ptr(transactions.Type(tf.txType))
	}
	if fs.Changed("subtype") {
		in.Subtype = utils.Ptr(transactions.Subtype(tf.subtype))
	}
	if fs.Changed("description") {
		in.Description = utils.Ptr(tf.description)
	}
	if fs.Changed("amount") {
		amount, err := money.Parse(tf.amount)
		if err != nil {
			return in, fmt.Errorf("invalid amount %q: %w", tf.amount, err)
		}
		in.Amount = &amount
	}
	if fs.Changed("date") {
		date, err := utils.ParseDate(tf.date)
		if err != nil {
			return in, err
		}
		in.Date = &date
	}
	if fs.Changed("category") {
		in.Category = utils.Ptr(tf.category)
	}
	if fs.Changed("notes") {
		in.Notes = utils.Ptr(tf.notes)
	}
	return in, nil
}

func transactionsCreateCmd(cfg config.Config, opts *rootOptions) *cobra.Command {
	tf := &transactionFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record a transaction",
		RunE: authed(cfg, opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			in, err := tf.input(cmd.Flags())
			if err != nil {
				return err
			}
			if in.Date == nil {
				now := time.Now()
				in.Date = utils.Ptr(utils.NewDate(now.Year(), now.Month(), now.Day()))
			}
			tx, err := a.client.Transactions.Create(ctx, in)
			if err != nil {
				return err
			}
			return printTransaction(cmd, tx)
		}),
	}
	tf.bind(cmd.Flags())
	return cmd
}

func transactionsUpdateCmd(cfg config.Config, opts *rootOptions) *cobra.Command {
	tf := &transactionFlags{}
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change the given fields of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: authed(cfg, opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			in, err := tf.input(cmd.Flags())
			if err != nil {
				return err
			}
			tx, err := a.client.Transactions.Update(ctx, id, in)
			if err != nil {
				return err
			}
			return printTransaction(cmd, tx)
		}),
	}
	tf.bind(cmd.Flags())
	return cmd
}

func transactionsDeleteCmd(cfg config.Config, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: authed(cfg, opts, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.client.Transactions.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted transaction %d\n", id)
			return nil
		}),
	}
}

func printTransaction(cmd *cobra.Command, tx *transactions.Transaction) error {
	subtype := "-"
	if tx.Subtype != nil {
		subtype = string(*tx.Subtype)
	}
	w := newTable(cmd.OutOrStdout())
	row(w, "ID", fmt.Sprint(tx.ID))
	row(w, "Date", tx.Date.String())
	row(w, "Type", string(tx.Type))
	row(w, "Subtype", subtype)
	row(w, "Description", tx.Description)
	row(w, "Amount", brl(tx.Amount))
	row(w, "Category", tx.Category)
	row(w, "Notes", orDash(tx.Notes))
	return w.Flush()
}
