package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/castrobruno/finbook"
	"github.com/castrobruno/finbook/date"
	"github.com/castrobruno/finbook/renderer"
	"github.com/google/subcommands"
)

type scheduleCmd struct {
	loan string
	link bool
}

func (*scheduleCmd) Name() string     { return "schedule" }
func (*scheduleCmd) Synopsis() string { return "show a loan amortization schedule" }
func (*scheduleCmd) Usage() string {
	return `fin schedule [-loan <id>] [-link]

  Without -loan, lists the loans in the ledger. With -loan, prints the full
  amortization schedule with each installment's interest and principal split.
  With -link, first assigns installment numbers to unlinked loan payment
  transactions in chronological order.
`
}

func (p *scheduleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.loan, "loan", "", "Loan id to print the schedule of.")
	f.BoolVar(&p.link, "link", false, "Link unnumbered loan payments to installments first.")
}

func (p *scheduleCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg := LoadConfig()
	ledger, err := DecodeLedger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if p.loan == "" {
		return listLoans(ledger)
	}

	loan := ledger.LoanByID(p.loan)
	if loan == nil {
		fmt.Fprintf(os.Stderr, "Error: unknown loan %q\n", p.loan)
		return subcommands.ExitFailure
	}

	if p.link {
		n := ledger.LinkLoanPayments(loan.ID)
		if n > 0 {
			if err := EncodeLedger(cfg, ledger); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return subcommands.ExitFailure
			}
		}
		fmt.Fprintf(os.Stderr, "Linked %d payment(s) to installments.\n", n)
	}

	rows := finbook.Schedule(loan)
	paid := ledger.InstallmentsPaidAsOf(loan.ID, date.Today())
	printMarkdown(renderer.ScheduleMarkdown(loan, rows, paid))
	return subcommands.ExitSuccess
}

func listLoans(ledger *finbook.Ledger) subcommands.ExitStatus {
	b := &mdBuilder{}
	b.Printf("# Loans\n\n")
	b.Printf("| Id | Description | Principal | Installment | Term | Status |\n")
	b.Printf("|---|---|---:|---:|---:|---|\n")
	for _, loan := range ledger.Loans() {
		b.Printf("| %s | %s | %s | %s | %d | %s |\n",
			loan.ID, loan.Description, loan.Principal, loan.Installment, loan.TermMonths, loan.Status)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
