package finbook

import (
	"sort"

	"github.com/castrobruno/finbook/date"
)

// balanceCache memoizes end-of-day balances per (account, day). It is derived
// from the whole transaction log and keyed to the ledger version it was built
// from: any mutation invalidates it entirely and the next read rebuilds it.
// Correctness over incrementality; there is no partial invalidation.
type balanceCache struct {
	builtVersion int64
	// values holds the balance as of each day that has at least one
	// transaction, per account. Same-day transactions coalesce into one
	// end-of-day figure (last write wins during the walk).
	values map[string]map[date.Date]Cents
	// days holds, per account, the distinct transaction days in ascending
	// order, for at-or-before lookups.
	days map[string][]date.Date
}

// rebuild walks the date+id sorted log once, maintaining a running signed
// total per account. Inbound flows add; everything else subtracts. A credit
// card therefore carries a balance at or below zero while debt is
// outstanding: the stored figure reads naturally as "amount owed".
func (l *Ledger) rebuildBalances() *balanceCache {
	c := &balanceCache{
		builtVersion: l.version,
		values:       make(map[string]map[date.Date]Cents),
		days:         make(map[string][]date.Date),
	}
	running := make(map[string]Cents)
	for _, t := range l.sorted() {
		if t.Flow.Inbound() {
			running[t.AccountID] += t.Amount
		} else {
			running[t.AccountID] -= t.Amount
		}
		byDay := c.values[t.AccountID]
		if byDay == nil {
			byDay = make(map[date.Date]Cents)
			c.values[t.AccountID] = byDay
		}
		if _, seen := byDay[t.Date]; !seen {
			// the walk is date-ordered, so new days arrive in ascending order
			c.days[t.AccountID] = append(c.days[t.AccountID], t.Date)
		}
		byDay[t.Date] = running[t.AccountID]
	}
	return c
}

// balances returns the cache, rebuilding it when the ledger moved.
func (l *Ledger) balances() *balanceCache {
	if l.balance == nil || l.balance.builtVersion != l.version {
		l.balance = l.rebuildBalances()
	}
	return l.balance
}

// BalanceAsOf returns the signed balance of an account at the end of the
// given day. An exact cached day answers directly; otherwise the latest
// transaction day at-or-before answers; an account with no transactions up
// to that day (including an unknown account) has balance zero.
func (l *Ledger) BalanceAsOf(accountID string, on date.Date) Cents {
	c := l.balances()
	byDay, ok := c.values[accountID]
	if !ok {
		return 0
	}
	if v, ok := byDay[on]; ok {
		return v
	}
	days := c.days[accountID]
	// index of the first day strictly after 'on'
	i := sort.Search(len(days), func(i int) bool { return days[i].After(on) })
	if i == 0 {
		return 0
	}
	return byDay[days[i-1]]
}
