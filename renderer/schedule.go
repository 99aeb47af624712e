package renderer

import (
	"github.com/castrobruno/finbook"
)

// ScheduleMarkdown renders a loan amortization table.
func ScheduleMarkdown(loan *finbook.Loan, rows []finbook.ScheduleRow, paid int) string {
	b := newBuilder()
	name := loan.Description
	if name == "" {
		name = loan.ID
	}
	b.Printf("# Amortization of %s\n\n", name)
	b.Printf("Principal %s, installment %s, %s%% a month over %d months starting %s.\n\n",
		loan.Principal, loan.Installment, loan.MonthlyRate, loan.TermMonths, loan.StartDate)
	if len(rows) == 0 {
		b.Printf("No schedule: the loan has no term or no periodic rate.\n")
		return b.String()
	}
	b.Printf("| # | Due | Interest | Principal | Balance | |\n")
	b.Printf("|---:|---|---:|---:|---:|---|\n")
	for _, r := range rows {
		mark := ""
		if r.Installment <= paid {
			mark = "paid"
		}
		b.Printf("| %d | %s | %s | %s | %s | %s |\n",
			r.Installment, r.DueDate, r.Interest, r.Principal, r.Balance, mark)
	}
	return b.String()
}
