package finbook

import (
	"slices"

	"github.com/castrobruno/finbook/date"
	"github.com/shopspring/decimal"
)

// ScheduleRow is one line of a loan amortization schedule, in cents.
type ScheduleRow struct {
	Installment int       `json:"installment"`
	DueDate     date.Date `json:"dueDate"`
	Interest    Cents     `json:"interest"`
	Principal   Cents     `json:"principal"`
	Balance     Cents     `json:"balance"`
}

// Schedule computes the fixed-installment (PRICE) amortization table of a
// loan, rows 1..TermMonths.
//
// All arithmetic is carried in integer cents, rounding every step to the
// nearest cent, so the table is deterministic and never drifts: for row i,
// interest is the rounded product of the remaining balance and the monthly
// rate, principal is the fixed installment minus that interest, and the
// final row's principal is forced to the entire remaining balance to absorb
// the residual cents that compounded rounding leaves behind. Once the
// balance reaches zero, the remaining rows are all-zero.
//
// A loan without a term or without a periodic rate has no schedule.
func Schedule(loan *Loan) []ScheduleRow {
	if loan == nil || loan.TermMonths <= 0 || loan.MonthlyRate.IsZero() {
		return nil
	}
	rate := loan.MonthlyRate.Div(decimal.NewFromInt(100))
	rows := make([]ScheduleRow, 0, loan.TermMonths)
	balance := loan.Principal
	for i := 1; i <= loan.TermMonths; i++ {
		row := ScheduleRow{Installment: i, DueDate: DueDate(loan.StartDate, i)}
		if balance > 0 {
			interest := Cents(decimal.NewFromInt(int64(balance)).Mul(rate).Round(0).IntPart())
			principal := loan.Installment - interest
			if i == loan.TermMonths {
				principal = balance
			}
			if principal > balance {
				principal = balance
			}
			balance -= principal
			row.Interest = interest
			row.Principal = principal
			row.Balance = balance
		}
		rows = append(rows, row)
	}
	return rows
}

// DueDate returns the due date of installment n: the start date itself for
// installment 1, then one calendar month per following installment.
func DueDate(start date.Date, n int) date.Date {
	return start.AddMonths(n - 1)
}

// InstallmentsPaidAsOf counts the loan installments settled by ledger
// payments dated at or before the given day.
//
// It counts distinct installment numbers among loan-payment transactions
// linked to the loan. When none of those payments records an installment
// number, it falls back to the raw payment count — which conflates "payments
// made" with "installment index" if payments landed out of order. That
// ambiguity is inherited behavior, kept as observed.
func (l *Ledger) InstallmentsPaidAsOf(loanID string, on date.Date) int {
	var raw int
	var numbers []int
	for _, t := range l.transactions {
		if t.Operation != OpLoanPayment || t.Date.After(on) {
			continue
		}
		ref, ok := t.LoanRef()
		if !ok || ref.LoanID != loanID {
			continue
		}
		raw++
		if ref.Installment > 0 && !slices.Contains(numbers, ref.Installment) {
			numbers = append(numbers, ref.Installment)
		}
	}
	if len(numbers) > 0 {
		return len(numbers)
	}
	return raw
}

// LinkLoanPayments assigns installment numbers, in date order, to the loan's
// payment transactions that carry none, starting after the highest number
// already linked. It returns how many payments were linked.
func (l *Ledger) LinkLoanPayments(loanID string) int {
	loan := l.LoanByID(loanID)
	if loan == nil {
		return 0
	}
	next := 1
	var unlinked []int // indexes into l.transactions
	for _, t := range l.sorted() {
		ref, ok := t.LoanRef()
		if t.Operation != OpLoanPayment || !ok || ref.LoanID != loanID {
			continue
		}
		if ref.Installment >= next {
			next = ref.Installment + 1
		}
		if ref.Installment == 0 {
			unlinked = append(unlinked, l.txIndex[t.ID])
		}
	}
	linked := 0
	for _, i := range unlinked {
		if loan.TermMonths > 0 && next > loan.TermMonths {
			break
		}
		l.transactions[i].Link = LoanLink{LoanID: loanID, Installment: next}
		loan.markPaid(next)
		next++
		linked++
	}
	if linked > 0 {
		l.bump()
	}
	return linked
}
