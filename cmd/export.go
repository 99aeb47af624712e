package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/castrobruno/finbook"
	"github.com/google/subcommands"
)

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the full ledger as a versioned JSON document" }
func (*exportCmd) Usage() string {
	return `fin export [-o <file>]

  Writes the whole ledger, accounts, transactions, loans, bills, rules and
  imported statements included, as a versioned JSON document. Without -o the
  document goes to stdout. The same document loads back through the regular
  ledger file, so this doubles as a backup.
`
}

func (p *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.output, "o", "", "Destination file. Defaults to stdout.")
}

func (p *exportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg := LoadConfig()
	ledger, err := DecodeLedger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	out := os.Stdout
	if p.output != "" {
		out, err = os.Create(p.output)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		defer out.Close()
	}

	if err := finbook.Export(out, ledger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
