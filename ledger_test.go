package finbook

import (
	"errors"
	"testing"
	"time"

	"github.com/castrobruno/finbook/date"
)

func TestAppend_Validation(t *testing.T) {
	l := testLedger(t)
	on := date.New(2024, time.March, 1)

	testCases := []struct {
		name string
		tx   Transaction
		want error
	}{
		{"unknown account", Transaction{Date: on, AccountID: "ghost", Flow: In, Operation: OpReceipt, Amount: 100}, ErrUnknownAccount},
		{"negative amount", Transaction{Date: on, AccountID: "acc_1", Flow: In, Operation: OpReceipt, Amount: -1}, ErrNegativeAmount},
		{"bad flow", Transaction{Date: on, AccountID: "acc_1", Flow: "sideways", Operation: OpReceipt, Amount: 1}, nil},
		{"bad operation", Transaction{Date: on, AccountID: "acc_1", Flow: In, Operation: "barter", Amount: 1}, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := l.Append(tc.tx)
			if err == nil {
				t.Fatal("Append() succeeded, want error")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Errorf("Append() error = %v, want %v", err, tc.want)
			}
			if len(l.Transactions()) != 0 {
				t.Error("failed Append() must not keep the transaction")
			}
		})
	}
}

func TestAppend_AllOrNothing(t *testing.T) {
	l := testLedger(t)
	on := date.New(2024, time.March, 1)
	good := Transaction{Date: on, AccountID: "acc_1", Flow: In, Operation: OpReceipt, Amount: 100}
	bad := Transaction{Date: on, AccountID: "ghost", Flow: In, Operation: OpReceipt, Amount: 100}
	if err := l.Append(good, bad); err == nil {
		t.Fatal("Append() succeeded, want error")
	}
	if got := len(l.Transactions()); got != 0 {
		t.Errorf("transactions = %d, a failed batch must append nothing", got)
	}
}

func TestAppend_GeneratesAndRejectsIDs(t *testing.T) {
	l := testLedger(t)
	on := date.New(2024, time.March, 1)
	tx := Transaction{ID: "fixed", Date: on, AccountID: "acc_1", Flow: In, Operation: OpReceipt, Amount: 100}
	if err := l.Append(tx); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := l.Append(tx); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Append(same id) error = %v, want ErrDuplicateID", err)
	}
	if err := l.Append(Transaction{Date: on, AccountID: "acc_1", Flow: In, Operation: OpReceipt, Amount: 1}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	for _, got := range l.Transactions() {
		if got.ID == "" {
			t.Error("Append() must generate a missing id")
		}
	}
}

func TestHideAccount(t *testing.T) {
	l := testLedger(t)
	if err := l.HideAccount("acc_1"); err != nil {
		t.Fatalf("HideAccount() error = %v", err)
	}
	a, ok := l.Account("acc_1")
	if !ok || !a.Hidden {
		t.Errorf("account = %+v, want hidden but still resolvable", a)
	}
	if err := l.HideAccount("ghost"); !errors.Is(err, ErrUnknownAccount) {
		t.Errorf("HideAccount(ghost) error = %v, want ErrUnknownAccount", err)
	}
}

func TestVersion_MovesOnEveryMutation(t *testing.T) {
	l := NewLedger()
	v := l.Version()
	if _, err := l.AddAccount(Account{ID: "a", Name: "A", Type: Checking}); err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}
	if l.Version() == v {
		t.Error("AddAccount() must move the version")
	}
	v = l.Version()
	if err := l.Append(Transaction{Date: date.New(2024, time.March, 1), AccountID: "a", Flow: In, Operation: OpReceipt, Amount: 1}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if l.Version() == v {
		t.Error("Append() must move the version")
	}
}

func TestNewTransfer(t *testing.T) {
	l := testLedger(t)
	out, in := l.NewTransfer(date.New(2024, time.March, 1), "acc_1", "card_1", 5000, "fatura")
	outRef, _ := out.TransferRef()
	inRef, _ := in.TransferRef()
	if outRef.GroupID == "" || outRef.GroupID != inRef.GroupID {
		t.Errorf("legs must share a non-empty group: %+v / %+v", outRef, inRef)
	}
	if out.Amount != in.Amount {
		t.Error("legs must carry equal amounts")
	}
	if out.Flow != TransferOut {
		t.Errorf("source flow = %q", out.Flow)
	}
	if in.Flow != In {
		t.Errorf("credit-card destination flow = %q, want plain in", in.Flow)
	}
	// a regular destination gets a transfer_in leg
	_, in2 := l.NewTransfer(date.New(2024, time.March, 1), "card_1", "acc_1", 5000, "")
	if in2.Flow != TransferIn {
		t.Errorf("checking destination flow = %q, want transfer_in", in2.Flow)
	}
}
