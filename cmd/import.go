package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/castrobruno/finbook"
	"github.com/castrobruno/finbook/renderer"
	"github.com/google/subcommands"
)

type importCmd struct {
	account string
	rules   string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a bank statement file for review" }
func (*importCmd) Usage() string {
	return `fin import -a <account> [-rules <file>] <statement-file>

  Parses a CSV, TSV or OFX bank statement, applies the standardization
  rules, flags duplicates of already imported transactions, and stores the
  candidates for review. Nothing is posted to the ledger until "fin commit".

Usage Examples:
# Import a checking account CSV with a rule file.
$ fin import -a acc_1 -rules rules.yaml extrato-marco.csv
`
}

func (p *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.account, "a", "", "Account the statement belongs to.")
	f.StringVar(&p.rules, "rules", "", "YAML rule file to load into the ledger before importing.")
}

func (p *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.account == "" {
		fmt.Fprintln(os.Stderr, "Error: -a is required.")
		return subcommands.ExitUsageError
	}
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one statement file is expected.")
		return subcommands.ExitUsageError
	}

	cfg := LoadConfig()
	ledger, err := DecodeLedger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if p.rules != "" {
		if err := loadRules(ledger, p.rules); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}

	content, err := os.ReadFile(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading statement: %v\n", err)
		return subcommands.ExitFailure
	}

	importer := finbook.NewImporter(ledger)
	importer.Log = Logger(cfg)
	st, err := importer.Import(string(content), p.account)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if err := EncodeLedger(cfg, ledger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.StatementMarkdown(st))
	return subcommands.ExitSuccess
}

// loadRules reads a YAML rule file and adds its rules to the ledger, skipping
// patterns already declared.
func loadRules(ledger *finbook.Ledger, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open rule file: %w", err)
	}
	defer f.Close()

	rules, err := finbook.ReadRules(f)
	if err != nil {
		return fmt.Errorf("cannot read rule file %q: %w", path, err)
	}

	known := make(map[string]bool)
	for _, r := range ledger.Rules() {
		known[r.Pattern] = true
	}
	for _, r := range rules {
		if known[r.Pattern] {
			continue
		}
		if _, err := ledger.AddRule(r); err != nil {
			return err
		}
	}
	return nil
}
