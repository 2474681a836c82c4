package cli

import (
	"fmt"
	"strings"

	"budget/internal/core"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func menuCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Run the interactive menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMenu(cmd, a.svc)
		},
	}
}

func addCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "add <income|expense> <category> <amount>",
		Short:     "Record an income or an expense dated today",
		Args:      cobra.ExactArgs(3),
		ValidArgs: []string{core.Income.String(), core.Expense.String()},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := core.ParseKind(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			rec, err := a.svc.Add(cmd.Context(), kind, args[1], amount)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added: %s\n", rec)
			return nil
		},
	}
}

func balanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Print total income minus total expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printBalance(cmd, a.svc.Ledger().CalculateBalance())
			return nil
		},
	}
}

func analyzeCmd(a *app) *cobra.Command {
	var byTotal bool
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Print expense totals per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l := a.svc.Ledger()
			if byTotal {
				printAnalysis(cmd, l.ExpenseBreakdownByTotal())
				return nil
			}
			printAnalysis(cmd, l.ExpenseBreakdown())
			return nil
		},
	}
	cmd.Flags().BoolVar(&byTotal, "by-total", false, "order categories by total, largest first")
	return cmd
}

func listCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every transaction in the order it was added",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for line := range a.svc.Ledger().ListTransactions() {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func printBalance(cmd *cobra.Command, balance decimal.Decimal) {
	fmt.Fprintf(cmd.OutOrStdout(), "Remaining Budget: %s\n", core.FormatAmount(balance))
}

func printAnalysis(cmd *cobra.Command, totals []core.CategoryTotal) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Expense Analysis:")
	for _, t := range totals {
		fmt.Fprintf(out, "%s: %s\n", t.Name, core.FormatAmount(t.Amount))
	}
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, &core.ValidationError{Field: "amount", Value: s, Err: core.ErrInvalidAmount}
	}
	return d, nil
}
