package renderer

import (
	"github.com/castrobruno/finbook"
	"github.com/castrobruno/finbook/date"
)

// statusMark maps a bill status to its list marker.
func statusMark(s finbook.BillStatus) string {
	switch s {
	case finbook.StatusPaid:
		return "✓"
	case finbook.StatusOverdue:
		return "!"
	default:
		return " "
	}
}

// BillsMarkdown renders the month view of tracked bills.
func BillsMarkdown(month date.Month, views []finbook.BillView) string {
	b := newBuilder()
	b.Printf("# Bills for %s\n\n", month)
	if len(views) == 0 {
		b.Printf("No bills tracked for this month.\n")
		return b.String()
	}
	b.Printf("| | Due | Description | Amount | Status |\n")
	b.Printf("|---|---|---|---:|---|\n")
	var total, pending finbook.Cents
	for _, v := range views {
		b.Printf("| %s | %s | %s | %s | %s |\n",
			statusMark(v.Status), v.Bill.DueDate, v.Bill.Description, v.Bill.ExpectedAmount, v.Status)
		total += v.Bill.ExpectedAmount
		if v.Status != finbook.StatusPaid {
			pending += v.Bill.ExpectedAmount
		}
	}
	b.Printf("\nTotal %s, still open %s.\n", total, pending)
	return b.String()
}

// PotentialBillsMarkdown renders the fixed-obligation selector for a month.
func PotentialBillsMarkdown(month date.Month, bills []finbook.PotentialBill) string {
	b := newBuilder()
	b.Printf("# Fixed obligations for %s\n\n", month)
	if len(bills) == 0 {
		b.Printf("No loan or insurance installments due.\n")
		return b.String()
	}
	b.Printf("| Due | Description | Amount | Paid | Tracked |\n")
	b.Printf("|---|---|---:|---|---|\n")
	for _, p := range bills {
		b.Printf("| %s | %s | %s | %s | %s |\n",
			p.DueDate, p.Description, p.Amount, yesNo(p.LedgerPaid), yesNo(p.Tracked))
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
