package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/castrobruno/finbook"
	"github.com/castrobruno/finbook/date"
	"github.com/google/subcommands"
)

type payCmd struct {
	bill    string
	account string
	date    string
	undo    bool

	source      string
	ref         string
	installment int
}

func (*payCmd) Name() string     { return "pay" }
func (*payCmd) Synopsis() string { return "mark a tracked bill paid, or pay a projected installment" }
func (*payCmd) Usage() string {
	return `fin pay -bill <id> -a <account> [-d <date>]
fin pay -bill <id> -undo
fin pay -source <type> -ref <id> -n <number> -a <account> [-d <date>]
fin pay -source <type> -ref <id> -n <number> -undo

  Marks a tracked bill as paid, creating the linked ledger transaction on
  the payment account. With -undo, reverses the payment and deletes the
  transaction. The -source form pays a projected loan or insurance
  installment not tracked yet, tracking it in the same step; its -undo
  removes the tracked bill again.

Usage Examples:
# Pay loan installment 4 ahead of time from the checking account.
$ fin pay -source loan-installment -ref loan_7 -n 4 -a acc_1
`
}

func (p *payCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.bill, "bill", "", "Tracked bill id.")
	f.StringVar(&p.account, "a", "", "Account the payment leaves from.")
	f.StringVar(&p.date, "d", "", "Payment date. Defaults to today.")
	f.BoolVar(&p.undo, "undo", false, "Reverse the payment instead.")
	f.StringVar(&p.source, "source", "", "Projected installment source (loan-installment, insurance-installment).")
	f.StringVar(&p.ref, "ref", "", "Loan or insurance id of the projected installment.")
	f.IntVar(&p.installment, "n", 0, "Installment number of the projected installment.")
}

func (p *payCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	switch {
	case p.bill != "" && p.undo:
		err = ledger.UnmarkBillPaid(p.bill)
	case p.bill != "":
		if p.account == "" {
			fmt.Fprintln(os.Stderr, "Error: -a is required to pay a bill.")
			return subcommands.ExitUsageError
		}
		err = ledger.MarkBillPaid(p.bill, p.account, on)
	case p.source != "" && p.undo:
		err = ledger.UntrackPotential(finbook.BillSource(p.source), p.ref, p.installment)
	case p.source != "":
		err = p.payPotential(ledger, on)
	default:
		fmt.Fprintln(os.Stderr, "Error: either -bill or -source is required.")
		return subcommands.ExitUsageError
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if err := EncodeLedger(cfg, ledger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println("Done.")
	return subcommands.ExitSuccess
}

// payPotential finds the projected installment matching the flags and pays it
// through the advance-payment shortcut.
func (p *payCmd) payPotential(ledger *finbook.Ledger, on date.Date) error {
	if p.account == "" || p.ref == "" || p.installment == 0 {
		return fmt.Errorf("-a, -ref and -n are required to pay a projected installment")
	}
	source := finbook.BillSource(p.source)
	for _, pot := range append(ledger.PotentialFixedBills(date.MonthOf(on)),
		ledger.FuturePotentialFixedBills(date.MonthOf(on))...) {
		if pot.Source == source && pot.SourceRef == p.ref && pot.Installment == p.installment {
			_, err := ledger.TrackPotential(pot, p.account, on)
			return err
		}
	}
	return fmt.Errorf("no projected %s installment %d on %q", source, p.installment, p.ref)
}
