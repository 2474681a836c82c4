package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"budget/internal/core"
	"budget/internal/services"

	"github.com/spf13/cobra"
)

const menuText = `
Budget Tracker
1. Add Income
2. Add Expense
3. Calculate Budget
4. Analyze Expenses
5. List Transactions
6. Exit
`

// runMenu drives the numbered menu until the user picks Exit or input ends.
func runMenu(cmd *cobra.Command, svc *services.LedgerService) error {
	p := &prompter{in: bufio.NewScanner(cmd.InOrStdin()), out: cmd.OutOrStdout()}
	l := svc.Ledger()

	for {
		fmt.Fprint(p.out, menuText)
		choice, ok := p.ask("Choose an option: ")
		if !ok {
			return nil
		}

		switch strings.TrimSpace(choice) {
		case "1":
			if !addFromMenu(cmd, p, svc, core.Income) {
				return nil
			}
		case "2":
			if !addFromMenu(cmd, p, svc, core.Expense) {
				return nil
			}
		case "3":
			printBalance(cmd, l.CalculateBalance())
		case "4":
			printAnalysis(cmd, l.ExpenseBreakdown())
		case "5":
			for line := range l.ListTransactions() {
				fmt.Fprintln(p.out, line)
			}
		case "6":
			return nil
		default:
			fmt.Fprintln(p.out, "Invalid choice, please try again.")
		}
	}
}

// addFromMenu reports false when input ended mid-prompt.
func addFromMenu(cmd *cobra.Command, p *prompter, svc *services.LedgerService, kind core.Kind) bool {
	category, ok := p.ask(fmt.Sprintf("Enter %s category: ", kind))
	if !ok {
		return false
	}

	for {
		text, ok := p.ask("Enter amount: ")
		if !ok {
			return false
		}
		amount, err := parseAmount(text)
		if err != nil {
			fmt.Fprintln(p.out, "Invalid amount, please try again.")
			continue
		}
		if _, err := svc.Add(cmd.Context(), kind, category, amount); err != nil {
			fmt.Fprintf(p.out, "Error: %v\n", err)
		}
		return true
	}
}

type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func (p *prompter) ask(label string) (string, bool) {
	fmt.Fprint(p.out, label)
	if !p.in.Scan() {
		fmt.Fprintln(p.out)
		return "", false
	}
	return p.in.Text(), true
}
