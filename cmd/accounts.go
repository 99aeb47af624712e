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

type accountsCmd struct {
	add         bool
	name        string
	accountType string
	institution string
	hidden      bool
}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list accounts and their balances, or add one" }
func (*accountsCmd) Usage() string {
	return `fin accounts [-add -name <name> -type <type> [-institution <name>]]

  Lists accounts with their current balances. With -add, registers a new
  account instead.

Usage Examples:
# List every account.
$ fin accounts

# Register a checking account.
$ fin accounts -add -name "Conta Corrente" -type checking -institution "Banco X"
`
}

func (p *accountsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.add, "add", false, "Add a new account instead of listing.")
	f.StringVar(&p.name, "name", "", "Name of the account to add.")
	f.StringVar(&p.accountType, "type", "", "Account type (checking, savings, credit-card, fixed-income, crypto, emergency-reserve, goal-fund).")
	f.StringVar(&p.institution, "institution", "", "Institution holding the account.")
	f.BoolVar(&p.hidden, "hide", false, "With -add, create the account hidden from reports.")
}

func (p *accountsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg := LoadConfig()
	ledger, err := DecodeLedger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if p.add {
		return p.addAccount(cfg, ledger)
	}

	today := date.Today()
	b := &mdBuilder{}
	b.Printf("# Accounts\n\n")
	b.Printf("| Name | Type | Institution | Balance |\n")
	b.Printf("|---|---|---|---:|\n")
	for _, a := range ledger.Accounts() {
		if a.Hidden {
			continue
		}
		b.Printf("| %s | %s | %s | %s |\n", a.Name, a.Type, a.Institution, ledger.BalanceAsOf(a.ID, today))
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}

func (p *accountsCmd) addAccount(cfg Config, ledger *finbook.Ledger) subcommands.ExitStatus {
	if p.name == "" || p.accountType == "" {
		fmt.Fprintln(os.Stderr, "Error: -name and -type are required with -add.")
		return subcommands.ExitUsageError
	}
	t, err := finbook.ParseAccountType(p.accountType)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	a, err := ledger.AddAccount(finbook.Account{
		Name:        p.name,
		Type:        t,
		Institution: p.institution,
		Hidden:      p.hidden,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := EncodeLedger(cfg, ledger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Added account %q (%s)\n", a.Name, a.ID)
	return subcommands.ExitSuccess
}
