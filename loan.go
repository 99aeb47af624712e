package finbook

import (
	"github.com/castrobruno/finbook/date"
	"github.com/shopspring/decimal"
)

// LoanStatus is the lifecycle state of a loan or vehicle record.
type LoanStatus string

// Lifecycle states. A record created by the statement pipeline starts in
// PendingConfiguration until the user fills its terms in.
const (
	PendingConfiguration LoanStatus = "pending-configuration"
	Active               LoanStatus = "active"
	Settled              LoanStatus = "settled"
	Sold                 LoanStatus = "sold"
)

// Loan is a fixed-installment contract. Its amortization schedule is always
// derived from the terms below, never stored.
type Loan struct {
	ID          string          `json:"id"`
	Description string          `json:"description,omitempty"`
	Principal   Cents           `json:"valorTotal"`
	Installment Cents           `json:"parcela"`
	MonthlyRate decimal.Decimal `json:"monthlyRate"` // percentage, e.g. 2 for 2% a month
	TermMonths  int             `json:"termMonths"`
	StartDate   date.Date       `json:"startDate"`
	Status      LoanStatus      `json:"status"`
	// PaidInstallments records which installment numbers were settled through
	// the bill tracker or statement linking.
	PaidInstallments []int `json:"paidInstallments,omitempty"`
}

// HasPaid reports whether installment n is recorded as paid on the loan itself.
func (l *Loan) HasPaid(n int) bool {
	for _, p := range l.PaidInstallments {
		if p == n {
			return true
		}
	}
	return false
}

// markPaid records installment n as paid. Idempotent.
func (l *Loan) markPaid(n int) {
	if !l.HasPaid(n) {
		l.PaidInstallments = append(l.PaidInstallments, n)
	}
	if l.Status == Active && len(l.PaidInstallments) >= l.TermMonths && l.TermMonths > 0 {
		l.Status = Settled
	}
}

// unmarkPaid removes installment n from the paid set.
func (l *Loan) unmarkPaid(n int) {
	for i, p := range l.PaidInstallments {
		if p == n {
			l.PaidInstallments = append(l.PaidInstallments[:i], l.PaidInstallments[i+1:]...)
			break
		}
	}
	if l.Status == Settled && len(l.PaidInstallments) < l.TermMonths {
		l.Status = Active
	}
}

// InsuranceInstallment is one scheduled premium of a policy. Unlike loans,
// insurance schedules are stored as-is.
type InsuranceInstallment struct {
	Number  int       `json:"number"`
	DueDate date.Date `json:"dueDate"`
	Amount  Cents     `json:"amount"`
	Paid    bool      `json:"paid,omitempty"`
}

// InsurancePolicy is an insurance contract paid in installments.
type InsurancePolicy struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	AccountID    string                 `json:"accountId,omitempty"`  // suggested payment account
	CategoryID   string                 `json:"categoryId,omitempty"` // suggested category
	Installments []InsuranceInstallment `json:"installments"`
}

// installment returns a pointer to installment n, or nil.
func (p *InsurancePolicy) installment(n int) *InsuranceInstallment {
	for i := range p.Installments {
		if p.Installments[i].Number == n {
			return &p.Installments[i]
		}
	}
	return nil
}

// Vehicle is a vehicle bought or sold through the ledger. A purchase imported
// from a statement creates one in pending-configuration state.
type Vehicle struct {
	ID           string     `json:"id"`
	Description  string     `json:"description,omitempty"`
	PurchaseDate date.Date  `json:"purchaseDate"`
	Status       LoanStatus `json:"status"`
}
