package renderer

import (
	"github.com/castrobruno/finbook"
)

// TransactionsMarkdown renders a flat transaction listing.
func TransactionsMarkdown(txs []finbook.Transaction) string {
	b := newBuilder()
	b.Printf("# Transactions\n\n")
	if len(txs) == 0 {
		b.Printf("The ledger is empty.\n")
		return b.String()
	}
	b.Printf("| Date | Account | Operation | Amount | Description |\n")
	b.Printf("|---|---|---|---:|---|\n")
	for _, t := range txs {
		amount := t.Amount.String()
		if !t.Flow.Inbound() {
			amount = "-" + amount
		}
		b.Printf("| %s | %s | %s | %s | %s |\n", t.Date, t.AccountID, t.Operation, amount, t.Description)
	}
	return b.String()
}

// StatementMarkdown renders parsed candidates for review before commit.
func StatementMarkdown(st *finbook.ImportedStatement) string {
	b := newBuilder()
	b.Printf("# Statement %s (%s)\n\n", st.ID, st.Format)
	b.Printf("| Date | Amount | Description | Operation | Flags |\n")
	b.Printf("|---|---:|---|---|---|\n")
	for _, c := range st.Candidates {
		flags := ""
		switch {
		case c.Contabilized:
			flags = "committed"
		case c.DuplicateOf != "":
			flags = "duplicate"
		}
		amount := c.Amount.String()
		if !c.Flow.Inbound() {
			amount = "-" + amount
		}
		b.Printf("| %s | %s | %s | %s | %s |\n", c.Date, amount, c.RawDescription, c.Operation, flags)
	}
	b.Printf("\n%d candidates, %d ready to commit, %d rows skipped.\n",
		len(st.Candidates), st.ReadyCount(), st.Skipped)
	return b.String()
}
