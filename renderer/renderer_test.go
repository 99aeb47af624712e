package renderer

import (
	"strings"
	"testing"

	"github.com/castrobruno/finbook"
	"github.com/castrobruno/finbook/date"
	"github.com/shopspring/decimal"
)

func TestScheduleMarkdown(t *testing.T) {
	loan := &finbook.Loan{
		ID:          "loan_7",
		Description: "Car loan",
		Principal:   finbook.Cents(1200000),
		Installment: finbook.Cents(112744),
		MonthlyRate: decimal.NewFromInt(2),
		TermMonths:  12,
		StartDate:   date.MustParse("2024-02-10"),
		Status:      finbook.Active,
	}
	md := ScheduleMarkdown(loan, finbook.Schedule(loan), 2)

	for _, want := range []string{
		"# Amortization of Car loan",
		"R$12.000,00",
		"| 1 | 2024-02-10 | R$240,00 | R$887,44 | R$11.112,56 | paid |",
		"| 12 | ",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("schedule output missing %q:\n%s", want, md)
		}
	}
	if strings.Count(md, "| paid |") != 2 {
		t.Errorf("expected exactly 2 paid marks:\n%s", md)
	}
}

func TestBillsMarkdown(t *testing.T) {
	month := date.MustParseMonth("2024-03")
	views := []finbook.BillView{
		{
			Bill: finbook.Bill{
				Description:    "Internet",
				DueDate:        date.MustParse("2024-03-05"),
				ExpectedAmount: finbook.Cents(9900),
				Paid:           true,
			},
			Status: finbook.StatusPaid,
		},
		{
			Bill: finbook.Bill{
				Description:    "Rent",
				DueDate:        date.MustParse("2024-03-10"),
				ExpectedAmount: finbook.Cents(150000),
			},
			Status: finbook.StatusPending,
		},
	}
	md := BillsMarkdown(month, views)

	for _, want := range []string{
		"# Bills for 2024-03",
		"| ✓ | 2024-03-05 | Internet | R$99,00 | paid |",
		"Rent",
		"Total R$1.599,00, still open R$1.500,00.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("bills output missing %q:\n%s", want, md)
		}
	}

	empty := BillsMarkdown(month, nil)
	if !strings.Contains(empty, "No bills tracked") {
		t.Errorf("empty month output unexpected:\n%s", empty)
	}
}

func TestStatementMarkdown(t *testing.T) {
	st := &finbook.ImportedStatement{
		ID:      "st_1",
		Format:  finbook.FormatDelimited,
		Skipped: 1,
		Candidates: []*finbook.CandidateTransaction{
			{
				Date:           date.MustParse("2024-03-15"),
				Amount:         finbook.Cents(8990),
				Flow:           finbook.Out,
				RawDescription: "MERCADO XYZ",
				Operation:      finbook.OpExpense,
			},
			{
				Date:           date.MustParse("2024-03-16"),
				Amount:         finbook.Cents(5000),
				Flow:           finbook.In,
				RawDescription: "PIX RECEBIDO",
				Operation:      finbook.OpReceipt,
				DuplicateOf:    "tx_9",
			},
		},
	}
	md := StatementMarkdown(st)

	for _, want := range []string{
		"MERCADO XYZ",
		"-R$89,90",
		"duplicate",
		"2 candidates, 1 ready to commit, 1 rows skipped.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("statement output missing %q:\n%s", want, md)
		}
	}
}
