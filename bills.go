package finbook

import (
	"fmt"
	"slices"
	"strings"

	"github.com/castrobruno/finbook/date"
)

// BillSource identifies where a tracked obligation comes from.
type BillSource string

// Bill sources.
const (
	SourceLoanInstallment      BillSource = "loan-installment"
	SourceInsuranceInstallment BillSource = "insurance-installment"
	SourceFixedExpense         BillSource = "fixed-expense"
	SourceVariableExpense      BillSource = "variable-expense"
	SourceAdHoc                BillSource = "ad-hoc"
	SourcePurchaseInstallment  BillSource = "purchase-installment"
)

// Bill is a tracked obligation: a projected payment the user opted into
// following. Marking it paid creates the linked ledger transaction; unmarking
// deletes it again.
type Bill struct {
	ID             string     `json:"id"`
	Description    string     `json:"description"`
	DueDate        date.Date  `json:"dueDate"`
	ExpectedAmount Cents      `json:"expectedAmount"`
	Source         BillSource `json:"sourceType"`
	SourceRef      string     `json:"sourceRef,omitempty"`
	Installment    int        `json:"installmentNumber,omitempty"`
	AccountID      string     `json:"accountId,omitempty"`  // suggested payment account
	CategoryID     string     `json:"categoryId,omitempty"` // suggested category
	Paid           bool       `json:"isPaid,omitempty"`
	PaymentDate    date.Date  `json:"paymentDate,omitzero"`
	TransactionID  string     `json:"transactionId,omitempty"`
	Excluded       bool       `json:"isExcluded,omitempty"`
}

// installmentSourced reports whether the bill tracks one numbered installment
// of an external schedule, which makes (SourceRef, Installment) unique.
func (b *Bill) installmentSourced() bool {
	return b.Source == SourceLoanInstallment || b.Source == SourceInsuranceInstallment
}

// BillStatus is the display status of an obligation.
type BillStatus string

// Display statuses.
const (
	StatusPaid    BillStatus = "paid"
	StatusOverdue BillStatus = "overdue"
	StatusPending BillStatus = "pending"
)

// billStatus derives the display status against the reference day.
func billStatus(paid bool, due date.Date, today date.Date) BillStatus {
	switch {
	case paid:
		return StatusPaid
	case due.Before(today):
		return StatusOverdue
	default:
		return StatusPending
	}
}

// BillView is a tracked bill together with its derived display status.
type BillView struct {
	Bill   Bill
	Status BillStatus
}

// --- Tracked bills ---

// findBill returns the stored bill with the given id, or nil.
func (l *Ledger) findBill(id string) *Bill {
	for _, b := range l.bills {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// trackedInstallment returns the non-excluded bill tracking the given
// installment, or nil.
func (l *Ledger) trackedInstallment(source BillSource, ref string, installment int) *Bill {
	for _, b := range l.bills {
		if !b.Excluded && b.Source == source && b.SourceRef == ref && b.Installment == installment {
			return b
		}
	}
	return nil
}

// AddBill stores a tracked obligation. A missing ID is generated. For loan
// and insurance sourced bills, tracking the same (source, installment) twice
// among non-excluded bills is rejected.
func (l *Ledger) AddBill(b Bill) (*Bill, error) {
	if b.ID == "" {
		b.ID = newID()
	}
	if l.findBill(b.ID) != nil {
		return nil, fmt.Errorf("bill %q: %w", b.ID, ErrDuplicateID)
	}
	if b.installmentSourced() && !b.Excluded {
		if dup := l.trackedInstallment(b.Source, b.SourceRef, b.Installment); dup != nil {
			return nil, fmt.Errorf("%s %s installment %d: %w", b.Source, b.SourceRef, b.Installment, ErrDuplicateTracking)
		}
	}
	p := &b
	l.bills = append(l.bills, p)
	l.bump()
	return p, nil
}

// Bills returns all stored bills in declaration order.
func (l *Ledger) Bills() []Bill {
	out := make([]Bill, len(l.bills))
	for i, b := range l.bills {
		out[i] = *b
	}
	return out
}

// ExcludeBill soft-excludes a bill from projections. A paid bill cannot be
// excluded; unmark it first.
func (l *Ledger) ExcludeBill(id string) error {
	b := l.findBill(id)
	if b == nil {
		return fmt.Errorf("bill %q: %w", id, ErrUnknownBill)
	}
	if b.Paid {
		return fmt.Errorf("bill %q: %w", id, ErrBillPaid)
	}
	b.Excluded = true
	l.bump()
	return nil
}

// removeBill deletes a stored bill. Used only when untracking.
func (l *Ledger) removeBill(id string) bool {
	for i, b := range l.bills {
		if b.ID == id {
			l.bills = append(l.bills[:i], l.bills[i+1:]...)
			l.bump()
			return true
		}
	}
	return false
}

// BillsForMonth returns the tracked bills that surface in the given month:
// due in it, or actually settled in it (a bill paid early or late follows the
// month of its payment too). Excluded bills are hidden unless paid. The list
// is ordered by due date, then id. Status derives against 'today'.
func (l *Ledger) BillsForMonth(month date.Month, today date.Date) []BillView {
	var out []BillView
	for _, b := range l.bills {
		if b.Excluded && !b.Paid {
			continue
		}
		inMonth := month.Contains(b.DueDate) || (b.Paid && month.Contains(b.PaymentDate))
		if !inMonth {
			continue
		}
		// a bill settled outside the tracker (paid flag on the loan or
		// insurance itself) still displays as paid
		paid := b.Paid || l.sourcePaid(b)
		out = append(out, BillView{Bill: *b, Status: billStatus(paid, b.DueDate, today)})
	}
	slices.SortFunc(out, func(a, b BillView) int {
		if c := a.Bill.DueDate.Compare(b.Bill.DueDate); c != 0 {
			return c
		}
		return strings.Compare(a.Bill.ID, b.Bill.ID)
	})
	return out
}

// sourcePaid reports whether the installment a bill tracks is recorded as
// settled on its source loan or insurance policy.
func (l *Ledger) sourcePaid(b *Bill) bool {
	switch b.Source {
	case SourceLoanInstallment:
		if loan := l.LoanByID(b.SourceRef); loan != nil {
			return loan.HasPaid(b.Installment)
		}
	case SourceInsuranceInstallment:
		if p := l.InsuranceByID(b.SourceRef); p != nil {
			if ins := p.installment(b.Installment); ins != nil {
				return ins.Paid
			}
		}
	}
	return false
}

// --- Potential fixed bills ---

// PotentialBill is a projected loan or insurance installment not necessarily
// tracked yet, as shown in the "manage fixed obligations" selector.
type PotentialBill struct {
	Source      BillSource
	SourceRef   string
	Installment int
	Description string
	DueDate     date.Date
	Amount      Cents
	AccountID   string // suggested payment account
	CategoryID  string // suggested category
	LedgerPaid  bool   // settled according to the loan/insurance paid state
	Tracked     bool   // already present among tracked bills
}

// PotentialFixedBills projects, for the given month, one entry per active
// loan schedule installment and per insurance installment whose due date
// falls in it, each annotated with whether the ledger already settled it and
// whether it is already tracked.
func (l *Ledger) PotentialFixedBills(month date.Month) []PotentialBill {
	return l.potentialBills(func(due date.Date) bool { return month.Contains(due) })
}

// FuturePotentialFixedBills is the pay-ahead variant: only installments due
// strictly after the month's end.
func (l *Ledger) FuturePotentialFixedBills(month date.Month) []PotentialBill {
	end := month.Last()
	return l.potentialBills(func(due date.Date) bool { return due.After(end) })
}

func (l *Ledger) potentialBills(match func(date.Date) bool) []PotentialBill {
	var out []PotentialBill
	for _, loan := range l.loans {
		if loan.Status != Active {
			continue
		}
		for _, row := range Schedule(loan) {
			if !match(row.DueDate) {
				continue
			}
			desc := loan.Description
			if desc == "" {
				desc = "loan " + loan.ID
			}
			out = append(out, PotentialBill{
				Source:      SourceLoanInstallment,
				SourceRef:   loan.ID,
				Installment: row.Installment,
				Description: fmt.Sprintf("%s (%d/%d)", desc, row.Installment, loan.TermMonths),
				DueDate:     row.DueDate,
				Amount:      loan.Installment,
				LedgerPaid:  loan.HasPaid(row.Installment),
				Tracked:     l.trackedInstallment(SourceLoanInstallment, loan.ID, row.Installment) != nil,
			})
		}
	}
	for _, p := range l.insurances {
		for _, ins := range p.Installments {
			if !match(ins.DueDate) {
				continue
			}
			out = append(out, PotentialBill{
				Source:      SourceInsuranceInstallment,
				SourceRef:   p.ID,
				Installment: ins.Number,
				Description: fmt.Sprintf("%s (%d/%d)", p.Name, ins.Number, len(p.Installments)),
				DueDate:     ins.DueDate,
				Amount:      ins.Amount,
				AccountID:   p.AccountID,
				CategoryID:  p.CategoryID,
				LedgerPaid:  ins.Paid,
				Tracked:     l.trackedInstallment(SourceInsuranceInstallment, p.ID, ins.Number) != nil,
			})
		}
	}
	slices.SortFunc(out, func(a, b PotentialBill) int {
		if c := a.DueDate.Compare(b.DueDate); c != 0 {
			return c
		}
		if c := strings.Compare(a.SourceRef, b.SourceRef); c != 0 {
			return c
		}
		return a.Installment - b.Installment
	})
	return out
}

// --- Toggling and payment ---

// TrackPotential opts a projected installment into the tracked bill list.
// When its due date is already past relative to 'today' and the installment
// is still unpaid, the bill is created and immediately marked paid in the
// same step (the advance-payment shortcut): the linked transaction is
// appended and the loan/insurance paid flag flipped together.
func (l *Ledger) TrackPotential(p PotentialBill, accountID string, today date.Date) (*Bill, error) {
	if accountID == "" {
		accountID = p.AccountID
	}
	payNow := p.DueDate.Before(today) && !p.LedgerPaid
	if payNow {
		// Validate everything the mark-paid step needs before creating the
		// bill, so the pair of effects lands all-or-nothing.
		if err := l.checkPayable(p.Source, p.SourceRef, p.Installment, accountID); err != nil {
			return nil, err
		}
	}
	bill, err := l.AddBill(Bill{
		Description:    p.Description,
		DueDate:        p.DueDate,
		ExpectedAmount: p.Amount,
		Source:         p.Source,
		SourceRef:      p.SourceRef,
		Installment:    p.Installment,
		AccountID:      accountID,
		CategoryID:     p.CategoryID,
	})
	if err != nil {
		return nil, err
	}
	if payNow {
		if err := l.MarkBillPaid(bill.ID, accountID, today); err != nil {
			// checkPayable made this unreachable; fail loudly if it ever isn't
			l.removeBill(bill.ID)
			return nil, err
		}
	}
	return bill, nil
}

// UntrackPotential removes the tracked bill for the given installment. A paid
// bill is first unmarked, deleting its linked transaction and reversing the
// loan/insurance paid flag; both effects and the removal land together.
func (l *Ledger) UntrackPotential(source BillSource, ref string, installment int) error {
	bill := l.trackedInstallment(source, ref, installment)
	if bill == nil {
		return fmt.Errorf("%s %s installment %d: %w", source, ref, installment, ErrUnknownBill)
	}
	if bill.Paid {
		if err := l.UnmarkBillPaid(bill.ID); err != nil {
			return err
		}
	}
	l.removeBill(bill.ID)
	return nil
}

// checkPayable validates every precondition of a mark-paid without mutating:
// the account exists and, for schedule-sourced bills, the source record and
// installment exist and are still unpaid.
func (l *Ledger) checkPayable(source BillSource, ref string, installment int, accountID string) error {
	if _, ok := l.Account(accountID); !ok {
		return fmt.Errorf("payment account %q: %w", accountID, ErrUnknownAccount)
	}
	switch source {
	case SourceLoanInstallment:
		loan := l.LoanByID(ref)
		if loan == nil {
			return fmt.Errorf("loan %q: %w", ref, ErrUnknownLoan)
		}
		if loan.HasPaid(installment) {
			return fmt.Errorf("loan %q installment %d: already paid", ref, installment)
		}
	case SourceInsuranceInstallment:
		p := l.InsuranceByID(ref)
		if p == nil {
			return fmt.Errorf("insurance %q: %w", ref, ErrUnknownLoan)
		}
		ins := p.installment(installment)
		if ins == nil {
			return fmt.Errorf("insurance %q installment %d: %w", ref, installment, ErrUnknownInstallment)
		}
		if ins.Paid {
			return fmt.Errorf("insurance %q installment %d: already paid", ref, installment)
		}
	}
	return nil
}

// MarkBillPaid settles a tracked bill on the given day: it appends exactly
// one linked transaction and, for loan or insurance sourced bills, flips the
// source's paid flag. Preconditions are all validated first so the effects
// are visible together or not at all.
func (l *Ledger) MarkBillPaid(billID, accountID string, on date.Date) error {
	bill := l.findBill(billID)
	if bill == nil {
		return fmt.Errorf("bill %q: %w", billID, ErrUnknownBill)
	}
	if bill.Paid {
		return fmt.Errorf("bill %q: %w", billID, ErrBillPaid)
	}
	if accountID == "" {
		accountID = bill.AccountID
	}
	if err := l.checkPayable(bill.Source, bill.SourceRef, bill.Installment, accountID); err != nil {
		return err
	}

	tx := Transaction{
		ID:          newID(),
		Date:        on,
		AccountID:   accountID,
		Flow:        Out,
		Operation:   OpExpense,
		Amount:      bill.ExpectedAmount,
		CategoryID:  bill.CategoryID,
		Description: bill.Description,
	}
	if bill.Source == SourceLoanInstallment {
		tx.Operation = OpLoanPayment
		tx.Link = LoanLink{LoanID: bill.SourceRef, Installment: bill.Installment}
	}
	if err := l.Append(tx); err != nil {
		return err
	}
	switch bill.Source {
	case SourceLoanInstallment:
		l.LoanByID(bill.SourceRef).markPaid(bill.Installment)
	case SourceInsuranceInstallment:
		l.InsuranceByID(bill.SourceRef).installment(bill.Installment).Paid = true
	}
	bill.Paid = true
	bill.PaymentDate = on
	bill.TransactionID = tx.ID
	bill.AccountID = accountID
	l.bump()
	return nil
}

// UnmarkBillPaid is the exact inverse of MarkBillPaid: it deletes the linked
// transaction (and its transfer counterpart, if the payment was recorded as
// a transfer) and reverses the loan/insurance paid flag.
func (l *Ledger) UnmarkBillPaid(billID string) error {
	bill := l.findBill(billID)
	if bill == nil {
		return fmt.Errorf("bill %q: %w", billID, ErrUnknownBill)
	}
	if !bill.Paid {
		return fmt.Errorf("bill %q: %w", billID, ErrBillNotPaid)
	}

	if tx, ok := l.Transaction(bill.TransactionID); ok {
		if ref, isTransfer := tx.TransferRef(); isTransfer {
			for _, other := range l.transactions {
				if other.ID == tx.ID {
					continue
				}
				if r, ok := other.TransferRef(); ok && r.GroupID == ref.GroupID {
					l.removeTransaction(other.ID)
					break
				}
			}
		}
		l.removeTransaction(tx.ID)
	}
	switch bill.Source {
	case SourceLoanInstallment:
		if loan := l.LoanByID(bill.SourceRef); loan != nil {
			loan.unmarkPaid(bill.Installment)
		}
	case SourceInsuranceInstallment:
		if p := l.InsuranceByID(bill.SourceRef); p != nil {
			if ins := p.installment(bill.Installment); ins != nil {
				ins.Paid = false
			}
		}
	}
	bill.Paid = false
	bill.PaymentDate = date.Date{}
	bill.TransactionID = ""
	l.bump()
	return nil
}
