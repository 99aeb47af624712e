package finbook

import "fmt"

// AccountType is a typed string classifying an account.
type AccountType string

// Account types known to the ledger.
const (
	Checking         AccountType = "checking"
	Savings          AccountType = "savings"
	CreditCard       AccountType = "credit-card"
	FixedIncome      AccountType = "fixed-income"
	Crypto           AccountType = "crypto"
	EmergencyReserve AccountType = "emergency-reserve"
	GoalFund         AccountType = "goal-fund"
)

// ParseAccountType parses a string into an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	switch t := AccountType(s); t {
	case Checking, Savings, CreditCard, FixedIncome, Crypto, EmergencyReserve, GoalFund:
		return t, nil
	default:
		return "", fmt.Errorf("unknown account type %q", s)
	}
}

// Account is a place money sits: a bank account, a card, a fund.
//
// Accounts referenced by transactions are never hard-deleted, only hidden.
type Account struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        AccountType `json:"type"`
	Institution string      `json:"institution,omitempty"`
	Hidden      bool        `json:"hidden,omitempty"`
}

// Category labels transactions and bills for reporting.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
