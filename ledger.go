package finbook

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/castrobruno/finbook/date"
	"github.com/google/uuid"
)

// Sentinel errors for consistency failures. Referential failures (unknown
// account in a query, missing category on a rule) never error; they degrade
// to neutral values so historical data stays renderable.
var (
	ErrUnknownAccount     = errors.New("unknown account")
	ErrDuplicateID        = errors.New("duplicate id")
	ErrNegativeAmount     = errors.New("amount must be non-negative")
	ErrDuplicateTracking  = errors.New("installment is already tracked")
	ErrBillPaid           = errors.New("bill is paid")
	ErrBillNotPaid        = errors.New("bill is not paid")
	ErrUnknownBill        = errors.New("unknown bill")
	ErrUnknownLoan        = errors.New("unknown loan")
	ErrUnknownInstallment = errors.New("unknown installment")
)

// Ledger is the single in-memory store for all financial state: accounts,
// categories, the transaction log, loans, insurance policies, vehicles,
// tracked bills, standardization rules and imported statements.
//
// The computation model is single-mutator and synchronous: every mutation
// goes through a Ledger method, which bumps an internal version counter.
// Derived caches (see balanceCache) key off that counter, so a stale read is
// never served across a mutation boundary.
type Ledger struct {
	accounts     []Account
	categories   []Category
	transactions []Transaction
	loans        []*Loan
	insurances   []*InsurancePolicy
	vehicles     []Vehicle
	bills        []*Bill
	rules        []StandardizationRule
	statements   []*ImportedStatement

	accountIndex map[string]int
	txIndex      map[string]int

	version int64
	balance *balanceCache
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		accountIndex: make(map[string]int),
		txIndex:      make(map[string]int),
	}
}

// Version returns the mutation counter. It moves on every change.
func (l *Ledger) Version() int64 { return l.version }

func (l *Ledger) bump() { l.version++ }

// newID returns a fresh unique identifier.
func newID() string { return uuid.NewString() }

// --- Accounts and categories ---

// AddAccount registers an account. A missing ID is generated.
func (l *Ledger) AddAccount(a Account) (Account, error) {
	if a.ID == "" {
		a.ID = newID()
	}
	if _, ok := l.accountIndex[a.ID]; ok {
		return Account{}, fmt.Errorf("account %q: %w", a.ID, ErrDuplicateID)
	}
	if _, err := ParseAccountType(string(a.Type)); err != nil {
		return Account{}, err
	}
	l.accountIndex[a.ID] = len(l.accounts)
	l.accounts = append(l.accounts, a)
	l.bump()
	return a, nil
}

// Account returns the account with the given id.
func (l *Ledger) Account(id string) (Account, bool) {
	i, ok := l.accountIndex[id]
	if !ok {
		return Account{}, false
	}
	return l.accounts[i], true
}

// Accounts returns all accounts in declaration order.
func (l *Ledger) Accounts() []Account { return slices.Clone(l.accounts) }

// HideAccount soft-hides an account. Accounts referenced by transactions are
// never deleted, only hidden.
func (l *Ledger) HideAccount(id string) error {
	i, ok := l.accountIndex[id]
	if !ok {
		return fmt.Errorf("account %q: %w", id, ErrUnknownAccount)
	}
	l.accounts[i].Hidden = true
	l.bump()
	return nil
}

// AddCategory registers a category. A missing ID is generated.
func (l *Ledger) AddCategory(c Category) (Category, error) {
	if c.ID == "" {
		c.ID = newID()
	}
	for _, e := range l.categories {
		if e.ID == c.ID {
			return Category{}, fmt.Errorf("category %q: %w", c.ID, ErrDuplicateID)
		}
	}
	l.categories = append(l.categories, c)
	l.bump()
	return c, nil
}

// Category returns the category with the given id.
func (l *Ledger) Category(id string) (Category, bool) {
	for _, c := range l.categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// Categories returns all categories in declaration order.
func (l *Ledger) Categories() []Category { return slices.Clone(l.categories) }

// --- Transactions ---

// Append validates and appends transactions to the ledger. Each transaction
// must reference an existing account and carry a non-negative amount; a
// missing ID is generated. On the first error nothing is appended.
func (l *Ledger) Append(txs ...Transaction) error {
	// Validate everything before mutating anything, so a failure partway
	// through cannot leave a half-applied batch.
	seen := make(map[string]bool, len(txs))
	for i := range txs {
		if txs[i].ID == "" {
			txs[i].ID = newID()
		}
		t := txs[i]
		if t.Amount < 0 {
			return fmt.Errorf("transaction %q: %w", t.ID, ErrNegativeAmount)
		}
		if _, ok := l.accountIndex[t.AccountID]; !ok {
			return fmt.Errorf("transaction %q references account %q: %w", t.ID, t.AccountID, ErrUnknownAccount)
		}
		if _, ok := l.txIndex[t.ID]; ok || seen[t.ID] {
			return fmt.Errorf("transaction %q: %w", t.ID, ErrDuplicateID)
		}
		if _, err := ParseFlow(string(t.Flow)); err != nil {
			return fmt.Errorf("transaction %q: %w", t.ID, err)
		}
		if _, err := ParseOperationType(string(t.Operation)); err != nil {
			return fmt.Errorf("transaction %q: %w", t.ID, err)
		}
		seen[t.ID] = true
	}
	for _, t := range txs {
		l.txIndex[t.ID] = len(l.transactions)
		l.transactions = append(l.transactions, t)
	}
	l.bump()
	return nil
}

// Transaction returns the transaction with the given id.
func (l *Ledger) Transaction(id string) (Transaction, bool) {
	i, ok := l.txIndex[id]
	if !ok {
		return Transaction{}, false
	}
	return l.transactions[i], true
}

// Transactions returns a copy of all transactions in insertion order.
func (l *Ledger) Transactions() []Transaction { return slices.Clone(l.transactions) }

// SetConciliated flips the conciliation flag of a transaction, the only
// mutation allowed on a committed entry besides bill-tracker unwinding.
func (l *Ledger) SetConciliated(id string, v bool) error {
	i, ok := l.txIndex[id]
	if !ok {
		return fmt.Errorf("transaction %q not found", id)
	}
	l.transactions[i].Conciliated = v
	l.bump()
	return nil
}

// removeTransaction deletes a transaction. It exists only to unwind a bill
// tracker "mark paid" action; the log is otherwise append-only.
func (l *Ledger) removeTransaction(id string) bool {
	i, ok := l.txIndex[id]
	if !ok {
		return false
	}
	l.transactions = append(l.transactions[:i], l.transactions[i+1:]...)
	delete(l.txIndex, id)
	for j := i; j < len(l.transactions); j++ {
		l.txIndex[l.transactions[j].ID] = j
	}
	l.bump()
	return true
}

// sorted returns the chronologically sorted view of the log: date ascending,
// then id ascending as a stable tie-break. Same-day entries are id-ordered,
// not time-ordered; this exact order is what makes balances deterministic.
func (l *Ledger) sorted() []Transaction {
	view := slices.Clone(l.transactions)
	slices.SortFunc(view, func(a, b Transaction) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return view
}

// NewTransferID returns a fresh transfer group identifier.
func NewTransferID() string { return newID() }

// NewTransfer builds the two legs of a transfer of amount from one account to
// another, sharing one transfer group. When the destination is a credit card
// the inbound leg is a plain "in" (a card payment, not a movement between two
// cash accounts).
func (l *Ledger) NewTransfer(on date.Date, fromAccount, toAccount string, amount Cents, description string) (out, in Transaction) {
	group := NewTransferID()
	inFlow := TransferIn
	if a, ok := l.Account(toAccount); ok && a.Type == CreditCard {
		inFlow = In
	}
	out = Transaction{
		ID:          newID(),
		Date:        on,
		AccountID:   fromAccount,
		Flow:        TransferOut,
		Operation:   OpTransfer,
		Amount:      amount,
		Link:        TransferLink{GroupID: group},
		Description: description,
	}
	in = Transaction{
		ID:          newID(),
		Date:        on,
		AccountID:   toAccount,
		Flow:        inFlow,
		Operation:   OpTransfer,
		Amount:      amount,
		Link:        TransferLink{GroupID: group},
		Description: description,
	}
	return out, in
}

// --- Loans, insurances, vehicles ---

// AddLoan registers a loan. A missing ID is generated.
func (l *Ledger) AddLoan(loan Loan) (*Loan, error) {
	if loan.ID == "" {
		loan.ID = newID()
	}
	if l.LoanByID(loan.ID) != nil {
		return nil, fmt.Errorf("loan %q: %w", loan.ID, ErrDuplicateID)
	}
	p := &loan
	l.loans = append(l.loans, p)
	l.bump()
	return p, nil
}

// LoanByID returns the loan with the given id, or nil.
func (l *Ledger) LoanByID(id string) *Loan {
	for _, loan := range l.loans {
		if loan.ID == id {
			return loan
		}
	}
	return nil
}

// Loans returns all loans in declaration order.
func (l *Ledger) Loans() []*Loan { return slices.Clone(l.loans) }

// AddInsurance registers an insurance policy. A missing ID is generated.
func (l *Ledger) AddInsurance(p InsurancePolicy) (*InsurancePolicy, error) {
	if p.ID == "" {
		p.ID = newID()
	}
	if l.InsuranceByID(p.ID) != nil {
		return nil, fmt.Errorf("insurance %q: %w", p.ID, ErrDuplicateID)
	}
	ptr := &p
	l.insurances = append(l.insurances, ptr)
	l.bump()
	return ptr, nil
}

// InsuranceByID returns the policy with the given id, or nil.
func (l *Ledger) InsuranceByID(id string) *InsurancePolicy {
	for _, p := range l.insurances {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Insurances returns all policies in declaration order.
func (l *Ledger) Insurances() []*InsurancePolicy { return slices.Clone(l.insurances) }

// AddVehicle registers a vehicle record. A missing ID is generated.
func (l *Ledger) AddVehicle(v Vehicle) (Vehicle, error) {
	if v.ID == "" {
		v.ID = newID()
	}
	for _, e := range l.vehicles {
		if e.ID == v.ID {
			return Vehicle{}, fmt.Errorf("vehicle %q: %w", v.ID, ErrDuplicateID)
		}
	}
	l.vehicles = append(l.vehicles, v)
	l.bump()
	return v, nil
}

// Vehicles returns all vehicle records in declaration order.
func (l *Ledger) Vehicles() []Vehicle { return slices.Clone(l.vehicles) }

// --- Rules ---

// AddRule appends a standardization rule. Rules apply in declaration order.
func (l *Ledger) AddRule(r StandardizationRule) (StandardizationRule, error) {
	if r.ID == "" {
		r.ID = newID()
	}
	for _, e := range l.rules {
		if e.ID == r.ID {
			return StandardizationRule{}, fmt.Errorf("rule %q: %w", r.ID, ErrDuplicateID)
		}
	}
	l.rules = append(l.rules, r)
	l.bump()
	return r, nil
}

// Rules returns all rules in declaration order.
func (l *Ledger) Rules() []StandardizationRule { return slices.Clone(l.rules) }

// --- Statements ---

// AddStatement stores an imported statement and its candidates.
func (l *Ledger) AddStatement(s *ImportedStatement) *ImportedStatement {
	if s.ID == "" {
		s.ID = newID()
	}
	l.statements = append(l.statements, s)
	l.bump()
	return s
}

// Statements returns all imported statements in import order.
func (l *Ledger) Statements() []*ImportedStatement { return slices.Clone(l.statements) }

// StatementByID returns the imported statement with the given id, or nil.
func (l *Ledger) StatementByID(id string) *ImportedStatement {
	for _, s := range l.statements {
		if s.ID == id {
			return s
		}
	}
	return nil
}
