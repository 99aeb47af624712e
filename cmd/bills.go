package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/castrobruno/finbook/date"
	"github.com/castrobruno/finbook/renderer"
	"github.com/google/subcommands"
)

type billsCmd struct {
	month     string
	potential bool
	future    bool
	exclude   string
}

func (*billsCmd) Name() string     { return "bills" }
func (*billsCmd) Synopsis() string { return "show the monthly obligations board" }
func (*billsCmd) Usage() string {
	return `fin bills [-m <month>] [-potential | -future] [-exclude <bill_id>]

  Shows the tracked obligations of a month with their paid/overdue/pending
  status. With -potential, shows the projected loan and insurance
  installments of the month instead; with -future, the ones due after it.
  With -exclude, hides a tracked bill from the board.

Usage Examples:
# Current month's board.
$ fin bills

# Installments that could be paid ahead of time.
$ fin bills -m 2026-03 -future
`
}

func (p *billsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.month, "m", "", "Month to report on, e.g. 2026-03. Defaults to the current month.")
	f.BoolVar(&p.potential, "potential", false, "Show projected fixed installments for the month.")
	f.BoolVar(&p.future, "future", false, "Show projected installments due after the month.")
	f.StringVar(&p.exclude, "exclude", "", "Exclude the tracked bill with this id from the board.")
}

func (p *billsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg := LoadConfig()
	ledger, err := DecodeLedger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if p.exclude != "" {
		if err := ledger.ExcludeBill(p.exclude); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		if err := EncodeLedger(cfg, ledger); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Excluded bill %s\n", p.exclude)
		return subcommands.ExitSuccess
	}

	month := date.ThisMonth()
	if p.month != "" {
		month, err = date.ParseMonth(p.month)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing month: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	switch {
	case p.potential:
		printMarkdown(renderer.PotentialBillsMarkdown(month, ledger.PotentialFixedBills(month)))
	case p.future:
		printMarkdown(renderer.PotentialBillsMarkdown(month, ledger.FuturePotentialFixedBills(month)))
	default:
		printMarkdown(renderer.BillsMarkdown(month, ledger.BillsForMonth(month, date.Today())))
	}
	return subcommands.ExitSuccess
}
