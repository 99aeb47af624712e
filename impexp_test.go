package finbook

import (
	"bytes"
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/castrobruno/finbook/date"
	"github.com/shopspring/decimal"
)

// fullLedger builds a ledger touching every entity collection.
func fullLedger(t *testing.T) *Ledger {
	t.Helper()
	l := testLedger(t)
	if _, err := l.AddCategory(Category{ID: "C1", Name: "Mercado"}); err != nil {
		t.Fatalf("AddCategory() error = %v", err)
	}
	loan, err := l.AddLoan(*testLoan())
	if err != nil {
		t.Fatalf("AddLoan() error = %v", err)
	}
	err = l.Append(
		Transaction{ID: "t1", Date: date.New(2024, time.March, 15), AccountID: "acc_1", Flow: Out,
			Operation: OpExpense, Amount: 8990, CategoryID: "C1", Description: "Mercado"},
		Transaction{ID: "t2", Date: date.New(2024, time.March, 20), AccountID: "acc_1", Flow: Out,
			Operation: OpLoanPayment, Amount: 112744, Link: LoanLink{LoanID: loan.ID, Installment: 2}},
	)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	out, in := l.NewTransfer(date.New(2024, time.March, 25), "acc_1", "card_1", 50000, "Fatura")
	if err := l.Append(out, in); err != nil {
		t.Fatalf("Append(transfer) error = %v", err)
	}
	if _, err := l.AddInsurance(InsurancePolicy{ID: "ins_1", Name: "Seguro Auto",
		Installments: []InsuranceInstallment{{Number: 1, DueDate: date.New(2024, time.April, 5), Amount: 30000}}}); err != nil {
		t.Fatalf("AddInsurance() error = %v", err)
	}
	if _, err := l.AddVehicle(Vehicle{ID: "v1", Description: "Carro", PurchaseDate: date.New(2023, time.June, 1), Status: Active}); err != nil {
		t.Fatalf("AddVehicle() error = %v", err)
	}
	if _, err := l.AddBill(Bill{ID: "b1", Description: "Parcela 3", DueDate: date.New(2024, time.May, 10),
		ExpectedAmount: 112744, Source: SourceLoanInstallment, SourceRef: loan.ID, Installment: 3}); err != nil {
		t.Fatalf("AddBill() error = %v", err)
	}
	if _, err := l.AddRule(StandardizationRule{ID: "r1", Pattern: "MERCADO", Operation: OpExpense, CategoryID: "C1"}); err != nil {
		t.Fatalf("AddRule() error = %v", err)
	}
	l.AddStatement(&ImportedStatement{ID: "s1", AccountID: "acc_1", Format: FormatDelimited,
		Candidates: []*CandidateTransaction{{ID: "cand1", Date: date.New(2024, time.March, 15), Amount: 8990,
			Flow: Out, Operation: OpExpense, RawDescription: "MERCADO XYZ", Contabilized: true}}})
	return l
}

func TestExportImport_RoundTrip(t *testing.T) {
	l := fullLedger(t)
	var buf bytes.Buffer
	if err := Export(&buf, l); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	back, err := Import(&buf)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if !reflect.DeepEqual(back.Accounts(), l.Accounts()) {
		t.Error("accounts differ after round trip")
	}
	if !reflect.DeepEqual(back.Categories(), l.Categories()) {
		t.Error("categories differ after round trip")
	}
	if !reflect.DeepEqual(back.Transactions(), l.Transactions()) {
		t.Errorf("transactions differ after round trip:\n%+v\n%+v", back.Transactions(), l.Transactions())
	}
	if !reflect.DeepEqual(back.Vehicles(), l.Vehicles()) {
		t.Error("vehicles differ after round trip")
	}
	if !reflect.DeepEqual(back.Bills(), l.Bills()) {
		t.Error("bills differ after round trip")
	}
	if !reflect.DeepEqual(back.Rules(), l.Rules()) {
		t.Error("rules differ after round trip")
	}
	if len(back.Loans()) != 1 || !back.Loans()[0].MonthlyRate.Equal(decimal.NewFromInt(2)) {
		t.Errorf("loans differ after round trip: %+v", back.Loans())
	}
	if !reflect.DeepEqual(back.Insurances(), l.Insurances()) {
		t.Error("insurances differ after round trip")
	}
	if !reflect.DeepEqual(back.Statements(), l.Statements()) {
		t.Error("statements differ after round trip")
	}

	// a second export is byte-identical
	var second bytes.Buffer
	if err := Export(&second, back); err != nil {
		t.Fatalf("second Export() error = %v", err)
	}
	var first bytes.Buffer
	if err := Export(&first, l); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("exports differ after round trip")
	}
}

// TestExport_DocumentShape pins the wire format consumed by the application
// around the engine.
func TestExport_DocumentShape(t *testing.T) {
	l := fullLedger(t)
	var buf bytes.Buffer
	if err := Export(&buf, l); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	var doc interface{}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}

	testCases := []struct {
		path string
		want interface{}
	}{
		{"$.schemaVersion", float64(SchemaVersion)},
		{"$.data.accounts[0].type", "checking"},
		{"$.data.transactions[0].amount", float64(8990)},
		{"$.data.transactions[0].flow", "out"},
		{"$.data.transactions[0].operationType", "expense"},
		{"$.data.transactions[1].loanId", "loan_7"},
		{"$.data.transactions[1].installmentNumber", float64(2)},
		{"$.data.loans[0].valorTotal", float64(1200000)},
		{"$.data.loans[0].parcela", float64(112744)},
		{"$.data.bills[0].sourceType", "loan-installment"},
		{"$.data.rules[0].pattern", "MERCADO"},
		{"$.data.statements[0].candidates[0].rawDescription", "MERCADO XYZ"},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			got, err := jsonpath.Get(tc.path, doc)
			if err != nil {
				t.Fatalf("jsonpath.Get(%q) error = %v", tc.path, err)
			}
			if got != tc.want {
				t.Errorf("jsonpath.Get(%q) = %v, want %v", tc.path, got, tc.want)
			}
		})
	}

	// the transfer legs share a group id on the wire
	g3, err := jsonpath.Get("$.data.transactions[2].transferGroupId", doc)
	if err != nil {
		t.Fatalf("jsonpath.Get(group) error = %v", err)
	}
	g4, err := jsonpath.Get("$.data.transactions[3].transferGroupId", doc)
	if err != nil {
		t.Fatalf("jsonpath.Get(group) error = %v", err)
	}
	if g3 != g4 {
		t.Errorf("transfer legs carry different groups: %v vs %v", g3, g4)
	}
}

func TestImport_RejectsUnsupportedVersion(t *testing.T) {
	if _, err := Import(bytes.NewReader([]byte(`{"schemaVersion":99,"data":{"accounts":[]}}`))); err == nil {
		t.Error("Import() should reject an unsupported schema version")
	}
}

func TestImport_RejectsBrokenReferences(t *testing.T) {
	raw := `{"schemaVersion":1,"data":{"accounts":[],"transactions":[
		{"id":"t1","date":"2024-01-01","accountId":"ghost","flow":"in","operationType":"receipt","amount":100}
	]}}`
	if _, err := Import(bytes.NewReader([]byte(raw))); err == nil {
		t.Error("Import() should reject a transaction referencing a missing account")
	}
}
