package finbook

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/castrobruno/finbook/date"
	"github.com/rs/zerolog"
)

// ErrUnknownFormat reports a statement file the pipeline cannot recognize.
// Nothing is imported from such a file.
var ErrUnknownFormat = errors.New("unrecognized statement format")

// StatementFormat identifies the source format of an imported statement.
type StatementFormat string

// Statement formats the pipeline understands.
const (
	FormatDelimited StatementFormat = "delimited" // comma or tab separated with a header row
	FormatOFX       StatementFormat = "ofx"       // tagged <STMTTRN> blocks
)

// CandidateTransaction is a parsed statement row held outside the ledger
// until committed. Its classification can be filled by standardization rules
// or manual review; the parsed date and amount are never rewritten.
type CandidateTransaction struct {
	ID             string        `json:"id"`
	Date           date.Date     `json:"date"`
	Amount         Cents         `json:"amount"` // unsigned magnitude
	Flow           Flow          `json:"flow"`   // direction from the amount's sign
	RawDescription string        `json:"rawDescription"`
	Operation      OperationType `json:"operationType,omitempty"`
	CategoryID     string        `json:"categoryId,omitempty"`
	Description    string        `json:"description,omitempty"`
	// CounterAccountID names the other account of a transfer or investment
	// move, filled during review.
	CounterAccountID string `json:"counterAccountId,omitempty"`
	RuleID           string `json:"ruleId,omitempty"`
	DuplicateOf      string `json:"duplicateOf,omitempty"`
	Contabilized     bool   `json:"contabilized,omitempty"`
}

// Classified reports whether the candidate can be turned into a transaction.
func (c *CandidateTransaction) Classified() bool { return c.Operation != "" }

// ImportedStatement groups the candidates parsed from one file.
type ImportedStatement struct {
	ID         string                  `json:"id"`
	AccountID  string                  `json:"accountId"`
	Format     StatementFormat         `json:"format"`
	Skipped    int                     `json:"skipped,omitempty"` // rows dropped for unparseable date or amount
	Candidates []*CandidateTransaction `json:"candidates"`
}

// ReadyCount counts candidates that can be committed: classified, not
// flagged as duplicates, not already contabilized.
func (s *ImportedStatement) ReadyCount() int {
	n := 0
	for _, c := range s.Candidates {
		if c.Classified() && c.DuplicateOf == "" && !c.Contabilized {
			n++
		}
	}
	return n
}

// DuplicateMatcher decides whether a candidate duplicates an existing ledger
// transaction. The default heuristic is approximate on purpose; swap in a
// stricter or looser policy without touching the pipeline.
type DuplicateMatcher interface {
	// Match returns the id of the duplicated ledger transaction, if any.
	Match(c *CandidateTransaction, accountID string, ledger *Ledger) (string, bool)
}

// WindowMatcher flags a candidate as a duplicate of a ledger transaction on
// the same account when the cent amounts differ by at most MaxCentDelta, the
// direction matches, and the dates are at most MaxDayDelta days apart.
type WindowMatcher struct {
	MaxDayDelta  int
	MaxCentDelta Cents
}

// Match implements DuplicateMatcher.
func (m WindowMatcher) Match(c *CandidateTransaction, accountID string, ledger *Ledger) (string, bool) {
	for _, t := range ledger.transactions {
		if t.AccountID != accountID {
			continue
		}
		if t.Flow.Inbound() != c.Flow.Inbound() {
			continue
		}
		if (t.Amount - c.Amount).Abs() > m.MaxCentDelta {
			continue
		}
		delta := t.Date.DaysBetween(c.Date)
		if delta < 0 {
			delta = -delta
		}
		if delta > m.MaxDayDelta {
			continue
		}
		return t.ID, true
	}
	return "", false
}

// Importer runs the statement pipeline: parse, standardize, reconcile,
// commit. The zero Matcher defaults to the one-day exact-amount window; the
// zero Log discards.
type Importer struct {
	Ledger  *Ledger
	Matcher DuplicateMatcher
	Log     zerolog.Logger
}

// NewImporter builds an Importer with the default duplicate window.
func NewImporter(l *Ledger) *Importer {
	return &Importer{
		Ledger:  l,
		Matcher: WindowMatcher{MaxDayDelta: 1, MaxCentDelta: 0},
		Log:     zerolog.Nop(),
	}
}

// Import parses a raw statement export for the given account, applies the
// ledger's standardization rules in order, flags duplicates, and stores the
// resulting statement. An unrecognized format fails with no partial import.
func (imp *Importer) Import(content, accountID string) (*ImportedStatement, error) {
	if _, ok := imp.Ledger.Account(accountID); !ok {
		return nil, fmt.Errorf("import into account %q: %w", accountID, ErrUnknownAccount)
	}
	st, err := imp.parse(content, accountID)
	if err != nil {
		return nil, err
	}
	matcher := imp.Matcher
	if matcher == nil {
		matcher = WindowMatcher{MaxDayDelta: 1, MaxCentDelta: 0}
	}
	for _, c := range st.Candidates {
		imp.Ledger.applyRules(c)
		if id, ok := matcher.Match(c, accountID, imp.Ledger); ok {
			c.DuplicateOf = id
			// a duplicate inherits the classification of the entry it repeats
			if t, found := imp.Ledger.Transaction(id); found {
				c.Operation = t.Operation
				c.CategoryID = t.CategoryID
			}
		}
	}
	imp.Ledger.AddStatement(st)
	imp.Log.Info().
		Str("account", accountID).
		Str("format", string(st.Format)).
		Int("candidates", len(st.Candidates)).
		Int("skipped", st.Skipped).
		Msg("statement imported")
	return st, nil
}

// parse detects the format and parses candidates out of the raw content.
func (imp *Importer) parse(content, accountID string) (*ImportedStatement, error) {
	if strings.Contains(strings.ToUpper(content), "<STMTTRN>") {
		return imp.parseOFX(content, accountID)
	}
	return imp.parseDelimited(content, accountID)
}

// candidateFrom builds a candidate from normalized row values, defaulting the
// operation type from the amount's sign: outflows are expenses, inflows
// receipts.
func candidateFrom(on date.Date, amount Cents, negative bool, description string) *CandidateTransaction {
	c := &CandidateTransaction{
		ID:             newID(),
		Date:           on,
		Amount:         amount,
		Flow:           In,
		Operation:      OpReceipt,
		RawDescription: strings.TrimSpace(description),
	}
	if negative {
		c.Flow = Out
		c.Operation = OpExpense
	}
	return c
}

// --- Delimited format ---

// headerFold lowercases and strips the diacritics that show up in bank
// export headers, so "Descrição" matches the "descri" probe.
var headerFold = strings.NewReplacer(
	"á", "a", "à", "a", "ã", "a", "â", "a",
	"é", "e", "ê", "e", "í", "i",
	"ó", "o", "õ", "o", "ô", "o",
	"ú", "u", "ü", "u", "ç", "c",
)

func foldHeader(s string) string { return headerFold.Replace(strings.ToLower(strings.TrimSpace(s))) }

// headerColumns locates the date, amount and description columns by fuzzy,
// accent-insensitive substring match. Any missing probe means the header row
// is not recognized.
func headerColumns(fields []string) (dateCol, amountCol, descCol int, ok bool) {
	dateCol, amountCol, descCol = -1, -1, -1
	for i, f := range fields {
		h := foldHeader(f)
		switch {
		case dateCol < 0 && strings.Contains(h, "data"):
			dateCol = i
		case amountCol < 0 && strings.Contains(h, "valor"):
			amountCol = i
		case descCol < 0 && (strings.Contains(h, "descri") || strings.Contains(h, "hist")):
			descCol = i
		}
	}
	return dateCol, amountCol, descCol, dateCol >= 0 && amountCol >= 0 && descCol >= 0
}

func (imp *Importer) parseDelimited(content, accountID string) (*ImportedStatement, error) {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	var header string
	var body []string
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			header = line
			body = lines[i+1:]
			break
		}
	}
	if header == "" {
		return nil, ErrUnknownFormat
	}
	sep := ','
	if strings.Contains(header, "\t") {
		sep = '\t'
	}

	split := func(line string) ([]string, error) {
		r := csv.NewReader(strings.NewReader(line))
		r.Comma = sep
		r.FieldsPerRecord = -1
		return r.Read()
	}

	headFields, err := split(header)
	if err != nil {
		return nil, ErrUnknownFormat
	}
	dateCol, amountCol, descCol, ok := headerColumns(headFields)
	if !ok {
		return nil, ErrUnknownFormat
	}

	st := &ImportedStatement{AccountID: accountID, Format: FormatDelimited}
	for _, line := range body {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields, err := split(line)
		if err != nil {
			st.Skipped++
			imp.Log.Debug().Str("row", line).Msg("skipping malformed row")
			continue
		}
		// An unquoted decimal-comma amount splits into one extra field:
		// "15/03/2024,-89,90,MERCADO" has four fields for a three-column
		// header. Rejoin the amount with the field that follows it.
		if sep == ',' && len(fields) == len(headFields)+1 && amountCol+1 < len(fields) {
			merged := fields[amountCol] + "," + fields[amountCol+1]
			if _, _, err := ParseAmount(merged); err == nil {
				fields = append(fields[:amountCol+1], fields[amountCol+2:]...)
				fields[amountCol] = merged
			}
		}
		if len(fields) != len(headFields) {
			st.Skipped++
			imp.Log.Debug().Str("row", line).Msg("skipping row with unexpected column count")
			continue
		}
		on, err := date.Parse(fields[dateCol])
		if err != nil {
			// best effort: rows with unparseable dates are dropped, counted
			st.Skipped++
			imp.Log.Debug().Str("row", line).Msg("skipping row with unparseable date")
			continue
		}
		amount, negative, err := ParseAmount(fields[amountCol])
		if err != nil {
			st.Skipped++
			imp.Log.Debug().Str("row", line).Msg("skipping row with unparseable amount")
			continue
		}
		st.Candidates = append(st.Candidates, candidateFrom(on, amount, negative, fields[descCol]))
	}
	return st, nil
}

// --- OFX-like tagged format ---

// tagValue extracts the value of an SGML-style tag inside a block: the text
// after "<TAG>" up to the next "<" or end of line.
func tagValue(block, tag string) string {
	upper := strings.ToUpper(block)
	i := strings.Index(upper, "<"+tag+">")
	if i < 0 {
		return ""
	}
	v := block[i+len(tag)+2:]
	if j := strings.IndexAny(v, "<\r\n"); j >= 0 {
		v = v[:j]
	}
	return strings.TrimSpace(v)
}

func (imp *Importer) parseOFX(content, accountID string) (*ImportedStatement, error) {
	st := &ImportedStatement{AccountID: accountID, Format: FormatOFX}
	rest := content
	for {
		upper := strings.ToUpper(rest)
		start := strings.Index(upper, "<STMTTRN>")
		if start < 0 {
			break
		}
		rest = rest[start+len("<STMTTRN>"):]
		block := rest
		if end := strings.Index(strings.ToUpper(rest), "</STMTTRN>"); end >= 0 {
			block = rest[:end]
			rest = rest[end+len("</STMTTRN>"):]
		} else {
			rest = ""
		}

		posted := tagValue(block, "DTPOSTED")
		raw := tagValue(block, "TRNAMT")
		memo := tagValue(block, "MEMO")
		if memo == "" {
			memo = tagValue(block, "NAME")
		}
		on, err := date.Parse(posted)
		if err != nil {
			st.Skipped++
			imp.Log.Debug().Str("posted", posted).Msg("skipping block with unparseable date")
			continue
		}
		amount, negative, err := ParseAmount(raw)
		if err != nil {
			st.Skipped++
			imp.Log.Debug().Str("amount", raw).Msg("skipping block with unparseable amount")
			continue
		}
		st.Candidates = append(st.Candidates, candidateFrom(on, amount, negative, memo))
	}
	if len(st.Candidates) == 0 && st.Skipped == 0 {
		return nil, ErrUnknownFormat
	}
	return st, nil
}

// --- Commit ---

// Commit turns every ready candidate of the statement into committed ledger
// state: one transaction for a plain entry, a paired leg for transfers and
// investment moves, plus a pending-configuration Loan for a disbursement and
// a pending-configuration Vehicle for a vehicle purchase. Committed rows are
// marked contabilized. It returns how many candidates were committed.
func (imp *Importer) Commit(st *ImportedStatement) (int, error) {
	committed := 0
	for _, c := range st.Candidates {
		if !c.Classified() || c.DuplicateOf != "" || c.Contabilized {
			continue
		}
		if err := imp.commitCandidate(st.AccountID, c); err != nil {
			return committed, fmt.Errorf("candidate %q (%s): %w", c.ID, c.RawDescription, err)
		}
		c.Contabilized = true
		committed++
	}
	if committed > 0 {
		imp.Ledger.bump()
	}
	imp.Log.Info().Int("committed", committed).Msg("statement committed")
	return committed, nil
}

func (imp *Importer) commitCandidate(accountID string, c *CandidateTransaction) error {
	description := c.Description
	if description == "" {
		description = c.RawDescription
	}
	base := Transaction{
		Date:        c.Date,
		AccountID:   accountID,
		Flow:        c.Flow,
		Operation:   c.Operation,
		Amount:      c.Amount,
		CategoryID:  c.CategoryID,
		Description: description,
	}

	switch c.Operation {
	case OpTransfer, OpInvestmentContribution, OpInvestmentRedemption:
		if c.CounterAccountID == "" {
			return fmt.Errorf("%s needs a counter account", c.Operation)
		}
		from, to := accountID, c.CounterAccountID
		if c.Flow.Inbound() {
			// the statement account is the destination leg
			from, to = c.CounterAccountID, accountID
		}
		out, in := imp.Ledger.NewTransfer(c.Date, from, to, c.Amount, description)
		out.Operation = c.Operation
		in.Operation = c.Operation
		out.CategoryID = c.CategoryID
		in.CategoryID = c.CategoryID
		return imp.Ledger.Append(out, in)

	case OpLoanDisbursement:
		loan, err := imp.Ledger.AddLoan(Loan{
			Description: description,
			Principal:   c.Amount,
			StartDate:   c.Date,
			Status:      PendingConfiguration,
		})
		if err != nil {
			return err
		}
		base.Link = LoanLink{LoanID: loan.ID}
		return imp.Ledger.Append(base)

	case OpVehiclePurchase:
		v, err := imp.Ledger.AddVehicle(Vehicle{
			Description:  description,
			PurchaseDate: c.Date,
			Status:       PendingConfiguration,
		})
		if err != nil {
			return err
		}
		base.Link = VehicleLink{VehicleID: v.ID}
		return imp.Ledger.Append(base)

	default:
		return imp.Ledger.Append(base)
	}
}
