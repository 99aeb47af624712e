package finbook

import (
	"encoding/json"
	"fmt"
	"io"
)

// SchemaVersion is the version stamped on exported documents.
const SchemaVersion = 1

// document is the wire shape of a full ledger export: a versioned envelope
// around every entity collection. Importing an export reconstructs an
// identical in-memory state.
type document struct {
	SchemaVersion int          `json:"schemaVersion"`
	Data          documentData `json:"data"`
}

type documentData struct {
	Accounts     []Account             `json:"accounts"`
	Categories   []Category            `json:"categories,omitempty"`
	Transactions []Transaction         `json:"transactions,omitempty"`
	Loans        []Loan                `json:"loans,omitempty"`
	Insurances   []InsurancePolicy     `json:"insurances,omitempty"`
	Vehicles     []Vehicle             `json:"vehicles,omitempty"`
	Bills        []Bill                `json:"bills,omitempty"`
	Rules        []StandardizationRule `json:"rules,omitempty"`
	Statements   []*ImportedStatement  `json:"statements,omitempty"`
}

// Export writes the whole ledger state to w as an indented, versioned JSON
// document.
func Export(w io.Writer, l *Ledger) error {
	doc := document{SchemaVersion: SchemaVersion}
	doc.Data.Accounts = l.accounts
	doc.Data.Categories = l.categories
	doc.Data.Transactions = l.transactions
	for _, loan := range l.loans {
		doc.Data.Loans = append(doc.Data.Loans, *loan)
	}
	for _, p := range l.insurances {
		doc.Data.Insurances = append(doc.Data.Insurances, *p)
	}
	doc.Data.Vehicles = l.vehicles
	for _, b := range l.bills {
		doc.Data.Bills = append(doc.Data.Bills, *b)
	}
	doc.Data.Rules = l.rules
	doc.Data.Statements = l.statements

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("cannot export ledger: %w", err)
	}
	return nil
}

// Import reads a versioned JSON document and rebuilds the ledger it
// describes. Every entity goes back through its regular registration path,
// so a document that violates an invariant (a transaction pointing at a
// missing account, a double-tracked installment) is rejected as a whole.
func Import(r io.Reader) (*Ledger, error) {
	var doc document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("cannot parse ledger document: %w", err)
	}
	if doc.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("unsupported schema version %d, want %d", doc.SchemaVersion, SchemaVersion)
	}

	l := NewLedger()
	for _, a := range doc.Data.Accounts {
		if _, err := l.AddAccount(a); err != nil {
			return nil, err
		}
	}
	for _, c := range doc.Data.Categories {
		if _, err := l.AddCategory(c); err != nil {
			return nil, err
		}
	}
	if err := l.Append(doc.Data.Transactions...); err != nil {
		return nil, err
	}
	for _, loan := range doc.Data.Loans {
		if _, err := l.AddLoan(loan); err != nil {
			return nil, err
		}
	}
	for _, p := range doc.Data.Insurances {
		if _, err := l.AddInsurance(p); err != nil {
			return nil, err
		}
	}
	for _, v := range doc.Data.Vehicles {
		if _, err := l.AddVehicle(v); err != nil {
			return nil, err
		}
	}
	for _, b := range doc.Data.Bills {
		if _, err := l.AddBill(b); err != nil {
			return nil, err
		}
	}
	for _, rule := range doc.Data.Rules {
		if _, err := l.AddRule(rule); err != nil {
			return nil, err
		}
	}
	for _, s := range doc.Data.Statements {
		l.AddStatement(s)
	}
	return l, nil
}
