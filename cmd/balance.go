package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/castrobruno/finbook/date"
	"github.com/google/subcommands"
)

type balanceCmd struct {
	account string
	date    string
}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "show an account balance as of a date" }
func (*balanceCmd) Usage() string {
	return `fin balance -a <account> [-d <date>]

  Shows the balance of one account as of the given date (today by default).
  Credit card balances read as a negative amount owed.
`
}

func (p *balanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.account, "a", "", "Account id to report on.")
	f.StringVar(&p.date, "d", "", "Reference date, e.g. 2026-03-15. Defaults to today.")
}

func (p *balanceCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.account == "" {
		fmt.Fprintln(os.Stderr, "Error: -a is required.")
		return subcommands.ExitUsageError
	}
	cfg := LoadConfig()
	ledger, err := DecodeLedger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	on := date.Today()
	if p.date != "" {
		on, err = date.Parse(p.date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	account, ok := ledger.Account(p.account)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown account %q\n", p.account)
		return subcommands.ExitFailure
	}

	fmt.Printf("%s as of %s: %s\n", account.Name, on, ledger.BalanceAsOf(account.ID, on))
	return subcommands.ExitSuccess
}
