// Package finbook provides the core types and engines for managing a personal
// financial ledger: accounts, categorized transactions, balances, loans,
// monthly obligations and bank-statement imports.
//
// The core functionalities include:
//   - Ledger Management: Recording income, expenses, transfers, investment
//     movements and loan payments against named accounts, with linked
//     transaction pairs for transfers.
//   - Balance Engine: Computing any account's balance as of any date from the
//     transaction history, with a version-stamped cache rebuilt on mutation.
//   - Loan Amortization: Computing fixed-installment schedules in integer
//     cents, splitting each payment into interest and principal, and tracking
//     which installments were settled.
//   - Obligation Projection: Projecting the bills of a month from loan and
//     insurance schedules, tracking the ones the user opts into, and keeping
//     their paid state and the ledger in lockstep.
//   - Statement Import: Parsing CSV, TSV and OFX bank statements, classifying
//     rows through user-defined standardization rules, flagging duplicates,
//     and posting reviewed candidates to the ledger.
//   - Data Persistence: Exporting and importing the whole ledger as a
//     versioned JSON document that round-trips byte for byte.
//
// This package is the foundational logic for the `fin` command-line tool. All
// monetary arithmetic is carried in integer cents so repeated rounding cannot
// drift.
package finbook
