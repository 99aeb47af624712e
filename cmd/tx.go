package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/castrobruno/finbook"
	"github.com/castrobruno/finbook/date"
	"github.com/castrobruno/finbook/renderer"
	"github.com/google/subcommands"
)

type txCmd struct {
	account string
	month   string
	head    int
	tail    int
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list transactions in the ledger" }
func (*txCmd) Usage() string {
	return `fin tx [-a <account>] [-m <month>] [-head <n>] [-tail <n>]

  Lists transactions, optionally filtered by account and month, in
  chronological order.
`
}

func (p *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.account, "a", "", "Only transactions on this account.")
	f.StringVar(&p.month, "m", "", "Only transactions in this month, e.g. 2026-03.")
	f.IntVar(&p.head, "head", 0, "Show only the first N transactions.")
	f.IntVar(&p.tail, "tail", 0, "Show only the last N transactions.")
}

func (p *txCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.head > 0 && p.tail > 0 {
		fmt.Fprintln(os.Stderr, "Error: -head and -tail flags cannot be used together.")
		return subcommands.ExitUsageError
	}

	cfg := LoadConfig()
	ledger, err := DecodeLedger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var month date.Month
	if p.month != "" {
		month, err = date.ParseMonth(p.month)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing month: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	transactions := ledger.Transactions()
	slices.SortStableFunc(transactions, func(a, b finbook.Transaction) int {
		return a.Date.Compare(b.Date)
	})
	transactions = slices.DeleteFunc(transactions, func(t finbook.Transaction) bool {
		if p.account != "" && t.AccountID != p.account {
			return true
		}
		if p.month != "" && !month.Contains(t.Date) {
			return true
		}
		return false
	})

	if p.head > 0 && len(transactions) > p.head {
		transactions = transactions[:p.head]
	}
	if p.tail > 0 && len(transactions) > p.tail {
		transactions = transactions[len(transactions)-p.tail:]
	}

	printMarkdown(renderer.TransactionsMarkdown(transactions))
	return subcommands.ExitSuccess
}
