package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/castrobruno/finbook"
	"github.com/google/subcommands"
)

type commitCmd struct {
	statement string
}

func (*commitCmd) Name() string     { return "commit" }
func (*commitCmd) Synopsis() string { return "post reviewed statement candidates to the ledger" }
func (*commitCmd) Usage() string {
	return `fin commit [-s <statement_id>]

  Posts the classified, non-duplicate candidates of an imported statement as
  ledger transactions. Without -s, commits the most recently imported
  statement. Committing twice is a no-op.
`
}

func (p *commitCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.statement, "s", "", "Statement id to commit. Defaults to the last import.")
}

func (p *commitCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg := LoadConfig()
	ledger, err := DecodeLedger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var st *finbook.ImportedStatement
	if p.statement != "" {
		st = ledger.StatementByID(p.statement)
	} else if statements := ledger.Statements(); len(statements) > 0 {
		st = statements[len(statements)-1]
	}
	if st == nil {
		fmt.Fprintln(os.Stderr, "Error: no statement to commit.")
		return subcommands.ExitFailure
	}

	importer := finbook.NewImporter(ledger)
	importer.Log = Logger(cfg)
	n, err := importer.Commit(st)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if err := EncodeLedger(cfg, ledger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Committed %d transaction(s) from statement %s\n", n, st.ID)
	return subcommands.ExitSuccess
}
