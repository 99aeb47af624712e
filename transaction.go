package finbook

import (
	"encoding/json"
	"fmt"

	"github.com/castrobruno/finbook/date"
)

// Flow is the direction of a transaction relative to its account.
type Flow string

// Flows known to the ledger.
const (
	In          Flow = "in"
	Out         Flow = "out"
	TransferIn  Flow = "transfer_in"
	TransferOut Flow = "transfer_out"
)

// Inbound reports whether the flow adds money to the account.
func (f Flow) Inbound() bool { return f == In || f == TransferIn }

// ParseFlow parses a string into a Flow.
func ParseFlow(s string) (Flow, error) {
	switch f := Flow(s); f {
	case In, Out, TransferIn, TransferOut:
		return f, nil
	default:
		return "", fmt.Errorf("unknown flow %q", s)
	}
}

// OperationType is a typed string identifying what a transaction represents.
type OperationType string

// Operation types known to the ledger.
const (
	OpReceipt                OperationType = "receipt"
	OpExpense                OperationType = "expense"
	OpTransfer               OperationType = "transfer"
	OpInvestmentContribution OperationType = "investment-contribution"
	OpInvestmentRedemption   OperationType = "investment-redemption"
	OpLoanPayment            OperationType = "loan-payment"
	OpLoanDisbursement       OperationType = "loan-disbursement"
	OpVehiclePurchase        OperationType = "vehicle-purchase"
	OpVehicleSale            OperationType = "vehicle-sale"
	OpYield                  OperationType = "yield"
	OpInitialBalance         OperationType = "initial-balance"
)

// ParseOperationType parses a string into an OperationType.
func ParseOperationType(s string) (OperationType, error) {
	switch o := OperationType(s); o {
	case OpReceipt, OpExpense, OpTransfer, OpInvestmentContribution,
		OpInvestmentRedemption, OpLoanPayment, OpLoanDisbursement,
		OpVehiclePurchase, OpVehicleSale, OpYield, OpInitialBalance:
		return o, nil
	default:
		return "", fmt.Errorf("unknown operation type %q", s)
	}
}

// Link carries the references a transaction needs for its operation type.
// Each variant holds exactly the fields its operation uses, so a plain
// expense carries no link at all.
type Link interface {
	linkFields(w *jsonObjectWriter)
}

// TransferLink pairs the two legs of one transfer.
type TransferLink struct {
	GroupID string
}

func (l TransferLink) linkFields(w *jsonObjectWriter) { w.Append("transferGroupId", l.GroupID) }

// LoanLink ties a payment or disbursement to a loan, optionally to one
// installment. Installment 0 means the payment carries no installment number.
type LoanLink struct {
	LoanID      string
	Installment int
}

func (l LoanLink) linkFields(w *jsonObjectWriter) {
	w.Append("loanId", l.LoanID)
	w.Optional("installmentNumber", l.Installment)
}

// InvestmentLink ties a contribution, redemption or yield to an investment.
type InvestmentLink struct {
	InvestmentID string
}

func (l InvestmentLink) linkFields(w *jsonObjectWriter) { w.Append("investmentId", l.InvestmentID) }

// VehicleLink ties a purchase or sale to a vehicle record.
type VehicleLink struct {
	VehicleID string
}

func (l VehicleLink) linkFields(w *jsonObjectWriter) { w.Append("vehicleTransactionId", l.VehicleID) }

// Transaction is one immutable entry of the ledger.
//
// Amount is always a non-negative magnitude; direction comes from Flow,
// never from the sign of Amount.
type Transaction struct {
	ID          string
	Date        date.Date
	AccountID   string
	Flow        Flow
	Operation   OperationType
	Amount      Cents
	CategoryID  string
	Link        Link
	Conciliated bool
	Description string
}

// LoanRef returns the transaction's loan link, if any.
func (t Transaction) LoanRef() (LoanLink, bool) {
	l, ok := t.Link.(LoanLink)
	return l, ok
}

// TransferRef returns the transaction's transfer link, if any.
func (t Transaction) TransferRef() (TransferLink, bool) {
	l, ok := t.Link.(TransferLink)
	return l, ok
}

// MarshalJSON writes the transaction with its link variant flattened into
// per-operation optional fields, keeping the document format stable.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("date", t.Date)
	w.Append("accountId", t.AccountID)
	w.Append("flow", t.Flow)
	w.Append("operationType", t.Operation)
	w.Append("amount", int64(t.Amount))
	w.Optional("categoryId", t.CategoryID)
	if t.Link != nil {
		t.Link.linkFields(&w)
	}
	w.Optional("conciliated", t.Conciliated)
	w.Optional("description", t.Description)
	return w.MarshalJSON()
}

// jtransaction mirrors the flat wire shape of a transaction.
type jtransaction struct {
	ID           string        `json:"id"`
	Date         date.Date     `json:"date"`
	AccountID    string        `json:"accountId"`
	Flow         Flow          `json:"flow"`
	Operation    OperationType `json:"operationType"`
	Amount       int64         `json:"amount"`
	CategoryID   string        `json:"categoryId,omitempty"`
	Group        string        `json:"transferGroupId,omitempty"`
	LoanID       string        `json:"loanId,omitempty"`
	Installment  int           `json:"installmentNumber,omitempty"`
	InvestmentID string        `json:"investmentId,omitempty"`
	VehicleID    string        `json:"vehicleTransactionId,omitempty"`
	Conciliated  bool          `json:"conciliated,omitempty"`
	Description  string        `json:"description,omitempty"`
}

// UnmarshalJSON reads the flat wire shape back into the link union.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var j jtransaction
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*t = Transaction{
		ID:          j.ID,
		Date:        j.Date,
		AccountID:   j.AccountID,
		Flow:        j.Flow,
		Operation:   j.Operation,
		Amount:      Cents(j.Amount),
		CategoryID:  j.CategoryID,
		Conciliated: j.Conciliated,
		Description: j.Description,
	}
	switch {
	case j.Group != "":
		t.Link = TransferLink{GroupID: j.Group}
	case j.LoanID != "":
		t.Link = LoanLink{LoanID: j.LoanID, Installment: j.Installment}
	case j.InvestmentID != "":
		t.Link = InvestmentLink{InvestmentID: j.InvestmentID}
	case j.VehicleID != "":
		t.Link = VehicleLink{VehicleID: j.VehicleID}
	}
	return nil
}

var _ json.Marshaler = Transaction{}
var _ json.Unmarshaler = (*Transaction)(nil)
