package finbook

import (
	"errors"
	"testing"
	"time"

	"github.com/castrobruno/finbook/date"
)

func TestBillsForMonth(t *testing.T) {
	l := testLedger(t)
	may := date.MustParseMonth("2024-05")
	today := date.New(2024, time.May, 15)

	add := func(b Bill) *Bill {
		t.Helper()
		p, err := l.AddBill(b)
		if err != nil {
			t.Fatalf("AddBill() error = %v", err)
		}
		return p
	}
	add(Bill{ID: "due", Description: "Aluguel", DueDate: date.New(2024, time.May, 20), ExpectedAmount: 150000, Source: SourceFixedExpense})
	add(Bill{ID: "late", Description: "Luz", DueDate: date.New(2024, time.May, 10), ExpectedAmount: 12000, Source: SourceVariableExpense})
	add(Bill{ID: "other-month", Description: "IPVA", DueDate: date.New(2024, time.June, 5), ExpectedAmount: 90000, Source: SourceAdHoc})
	paidEarly := add(Bill{ID: "paid-early", Description: "Seguro", DueDate: date.New(2024, time.June, 10), ExpectedAmount: 20000, Source: SourceAdHoc, AccountID: "acc_1"})
	excluded := add(Bill{ID: "excl", Description: "Assinatura", DueDate: date.New(2024, time.May, 25), ExpectedAmount: 3000, Source: SourceFixedExpense})

	if err := l.MarkBillPaid(paidEarly.ID, "acc_1", date.New(2024, time.May, 12)); err != nil {
		t.Fatalf("MarkBillPaid() error = %v", err)
	}
	if err := l.ExcludeBill(excluded.ID); err != nil {
		t.Fatalf("ExcludeBill() error = %v", err)
	}

	views := l.BillsForMonth(may, today)
	got := map[string]BillStatus{}
	for _, v := range views {
		got[v.Bill.ID] = v.Status
	}
	want := map[string]BillStatus{
		"late":       StatusOverdue,
		"due":        StatusPending,
		"paid-early": StatusPaid, // due in June, settled in May: surfaces in May
	}
	if len(got) != len(want) {
		t.Fatalf("BillsForMonth() returned %v, want ids %v", got, want)
	}
	for id, status := range want {
		if got[id] != status {
			t.Errorf("bill %q status = %q, want %q", id, got[id], status)
		}
	}
	// ordered by due date
	if views[0].Bill.ID != "late" {
		t.Errorf("first bill = %q, want the earliest due", views[0].Bill.ID)
	}
}

func TestExcludeBill_RejectsPaid(t *testing.T) {
	l := testLedger(t)
	b, err := l.AddBill(Bill{Description: "Conta", DueDate: date.New(2024, time.May, 10), ExpectedAmount: 5000, Source: SourceAdHoc, AccountID: "acc_1"})
	if err != nil {
		t.Fatalf("AddBill() error = %v", err)
	}
	if err := l.MarkBillPaid(b.ID, "acc_1", date.New(2024, time.May, 10)); err != nil {
		t.Fatalf("MarkBillPaid() error = %v", err)
	}
	if err := l.ExcludeBill(b.ID); !errors.Is(err, ErrBillPaid) {
		t.Errorf("ExcludeBill(paid) error = %v, want ErrBillPaid", err)
	}
}

func TestAddBill_RejectsDoubleTracking(t *testing.T) {
	l, loan := loanLedger(t)
	first := Bill{Description: "Parcela 3", DueDate: date.New(2024, time.May, 10), ExpectedAmount: loan.Installment,
		Source: SourceLoanInstallment, SourceRef: loan.ID, Installment: 3}
	if _, err := l.AddBill(first); err != nil {
		t.Fatalf("AddBill() error = %v", err)
	}
	if _, err := l.AddBill(first); !errors.Is(err, ErrDuplicateTracking) {
		t.Errorf("second AddBill() error = %v, want ErrDuplicateTracking", err)
	}
	// a different installment of the same loan is fine
	second := first
	second.Installment = 4
	second.DueDate = date.New(2024, time.June, 10)
	if _, err := l.AddBill(second); err != nil {
		t.Errorf("AddBill(other installment) error = %v", err)
	}
}

func TestPotentialFixedBills(t *testing.T) {
	l, loan := loanLedger(t)
	_, err := l.AddInsurance(InsurancePolicy{
		ID: "ins_1", Name: "Seguro Auto", AccountID: "acc_1",
		Installments: []InsuranceInstallment{
			{Number: 1, DueDate: date.New(2024, time.April, 5), Amount: 30000},
			{Number: 2, DueDate: date.New(2024, time.May, 5), Amount: 30000, Paid: true},
		},
	})
	if err != nil {
		t.Fatalf("AddInsurance() error = %v", err)
	}
	loan.markPaid(1)

	may := date.MustParseMonth("2024-05")
	got := l.PotentialFixedBills(may)
	// loan started 2024-02-10, so installment 4 is due 2024-05-10
	if len(got) != 2 {
		t.Fatalf("PotentialFixedBills() = %d entries, want 2 (insurance #2, loan #4): %+v", len(got), got)
	}
	ins := got[0]
	if ins.Source != SourceInsuranceInstallment || ins.Installment != 2 || !ins.LedgerPaid {
		t.Errorf("insurance entry = %+v, want paid installment 2", ins)
	}
	ln := got[1]
	if ln.Source != SourceLoanInstallment || ln.Installment != 4 || ln.LedgerPaid || ln.Tracked {
		t.Errorf("loan entry = %+v, want untracked unpaid installment 4", ln)
	}
	if ln.Amount != loan.Installment || ln.DueDate != date.New(2024, time.May, 10) {
		t.Errorf("loan entry amount/due = %d %s", ln.Amount, ln.DueDate)
	}

	// tracking flips the annotation
	if _, err := l.TrackPotential(ln, "acc_1", date.New(2024, time.May, 1)); err != nil {
		t.Fatalf("TrackPotential() error = %v", err)
	}
	got = l.PotentialFixedBills(may)
	if !got[1].Tracked {
		t.Error("loan entry should be annotated as tracked")
	}
}

func TestFuturePotentialFixedBills(t *testing.T) {
	l, loan := loanLedger(t)
	may := date.MustParseMonth("2024-05")
	for _, p := range l.FuturePotentialFixedBills(may) {
		if !p.DueDate.After(may.Last()) {
			t.Errorf("entry due %s is not strictly after %s", p.DueDate, may.Last())
		}
	}
	// loan term runs feb/2024..jan/2025: 8 installments fall after may
	if got := len(l.FuturePotentialFixedBills(may)); got != 8 {
		t.Errorf("future entries = %d, want 8 (term %d)", got, loan.TermMonths)
	}
}

func TestTrackPotential_AdvancePaymentShortcut(t *testing.T) {
	l, loan := loanLedger(t)
	today := date.New(2024, time.June, 1)
	p := PotentialBill{
		Source: SourceLoanInstallment, SourceRef: loan.ID, Installment: 2,
		Description: "loan (2/12)", DueDate: DueDate(loan.StartDate, 2), Amount: loan.Installment,
	}
	before := len(l.Transactions())
	bill, err := l.TrackPotential(p, "acc_1", today)
	if err != nil {
		t.Fatalf("TrackPotential() error = %v", err)
	}
	// due 2024-03-10, already past: bill is created paid, with the linked
	// transaction and the loan flag flipped in the same step
	if !bill.Paid || bill.TransactionID == "" || bill.PaymentDate != today {
		t.Errorf("bill = %+v, want paid today with a linked transaction", bill)
	}
	if len(l.Transactions()) != before+1 {
		t.Errorf("transactions = %d, want exactly one more", len(l.Transactions()))
	}
	tx, ok := l.Transaction(bill.TransactionID)
	if !ok {
		t.Fatal("linked transaction not found")
	}
	if ref, _ := tx.LoanRef(); ref.LoanID != loan.ID || ref.Installment != 2 {
		t.Errorf("transaction link = %+v, want loan %q installment 2", tx.Link, loan.ID)
	}
	if tx.Operation != OpLoanPayment || tx.Date != today || tx.Amount != loan.Installment {
		t.Errorf("transaction = %+v", tx)
	}
	if !loan.HasPaid(2) {
		t.Error("loan should record installment 2 as paid")
	}
}

func TestTrackUntrack_RestoresState(t *testing.T) {
	l, loan := loanLedger(t)
	today := date.New(2024, time.June, 1)
	txCount := len(l.Transactions())
	paidCount := len(loan.PaidInstallments)

	p := PotentialBill{
		Source: SourceLoanInstallment, SourceRef: loan.ID, Installment: 3,
		Description: "loan (3/12)", DueDate: DueDate(loan.StartDate, 3), Amount: loan.Installment,
	}
	if _, err := l.TrackPotential(p, "acc_1", today); err != nil {
		t.Fatalf("TrackPotential() error = %v", err)
	}
	if err := l.UntrackPotential(SourceLoanInstallment, loan.ID, 3); err != nil {
		t.Fatalf("UntrackPotential() error = %v", err)
	}

	if got := len(l.Transactions()); got != txCount {
		t.Errorf("transactions = %d, want restored to %d", got, txCount)
	}
	if got := len(loan.PaidInstallments); got != paidCount {
		t.Errorf("paid installments = %d, want restored to %d", got, paidCount)
	}
	if len(l.Bills()) != 0 {
		t.Error("bill should be removed")
	}
}

func TestTrackPotential_FailsWithoutMutation(t *testing.T) {
	l, loan := loanLedger(t)
	today := date.New(2024, time.June, 1)
	p := PotentialBill{
		Source: SourceLoanInstallment, SourceRef: loan.ID, Installment: 2,
		DueDate: DueDate(loan.StartDate, 2), Amount: loan.Installment,
	}
	txCount := len(l.Transactions())
	// unknown payment account: the advance-payment shortcut must fail before
	// creating anything
	if _, err := l.TrackPotential(p, "ghost", today); !errors.Is(err, ErrUnknownAccount) {
		t.Fatalf("TrackPotential(ghost account) error = %v, want ErrUnknownAccount", err)
	}
	if len(l.Bills()) != 0 || len(l.Transactions()) != txCount || len(loan.PaidInstallments) != 0 {
		t.Error("failed toggle must leave no partial state behind")
	}
}

func TestUnmarkBillPaid_DeletesTransferCounterpart(t *testing.T) {
	l := testLedger(t)
	b, err := l.AddBill(Bill{Description: "Fatura", DueDate: date.New(2024, time.May, 10), ExpectedAmount: 50000, Source: SourceAdHoc, AccountID: "acc_1"})
	if err != nil {
		t.Fatalf("AddBill() error = %v", err)
	}
	// settle the bill with a transfer pair recorded manually
	out, in := l.NewTransfer(date.New(2024, time.May, 10), "acc_1", "card_1", 50000, "Fatura")
	if err := l.Append(out, in); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	b.Paid = true
	b.PaymentDate = date.New(2024, time.May, 10)
	b.TransactionID = out.ID

	if err := l.UnmarkBillPaid(b.ID); err != nil {
		t.Fatalf("UnmarkBillPaid() error = %v", err)
	}
	if got := len(l.Transactions()); got != 0 {
		t.Errorf("transactions = %d, want both transfer legs deleted", got)
	}
}
