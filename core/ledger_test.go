package core

import (
	"errors"
	"testing"
	"time"

	"launchpad-token-factory/core/model"

	"github.com/ethereum/go-ethereum/common"
)

func TestLedgerCredit(t *testing.T) {
	l := NewEarningsLedger()
	token := common.HexToAddress("0x70ce")
	at := time.Unix(1_700_000_000, 0)

	l.Credit(alice, bob, token, wei(50), at)
	l.Credit(alice, carol, token, wei(70), at)

	rec := l.Read(alice)
	if rec.ReferralsCount != 2 {
		t.Fatalf("ReferralsCount = %d", rec.ReferralsCount)
	}
	if len(rec.ReferredUsers) != 2 || rec.ReferredUsers[0] != bob || rec.ReferredUsers[1] != carol {
		t.Fatalf("ReferredUsers = %v", rec.ReferredUsers)
	}
	assertAmount(t, "pending", rec.PendingEarnings, wei(120))
	assertAmount(t, "total", rec.TotalEarnings, wei(120))
	assertAmount(t, "withdrawn", rec.WithdrawnEarnings, wei(0))

	txs := l.Transactions(alice)
	if len(txs) != 2 || txs[1].ReferredUser != carol || txs[1].TokenCreated != token || !txs[1].Timestamp.Equal(at) {
		t.Fatalf("transactions = %+v", txs)
	}
	assertAmount(t, "tx amount", txs[0].Amount, wei(50))
}

func TestLedgerCreditUndo(t *testing.T) {
	l := NewEarningsLedger()
	l.Credit(alice, bob, common.Address{}, wei(50), time.Now())
	undo := l.Credit(alice, carol, common.Address{}, wei(70), time.Now())
	undo()

	rec := l.Read(alice)
	if rec.ReferralsCount != 1 || len(rec.ReferredUsers) != 1 {
		t.Fatalf("record after undo = %+v", rec)
	}
	assertAmount(t, "pending", rec.PendingEarnings, wei(50))
	assertAmount(t, "total", rec.TotalEarnings, wei(50))
	if len(l.Transactions(alice)) != 1 {
		t.Fatal("undo left the transaction behind")
	}
}

func TestLedgerWithdraw(t *testing.T) {
	l := NewEarningsLedger()

	if _, _, err := l.Withdraw(alice, wei(0)); !errors.Is(err, model.ErrAmountTooSmall) {
		t.Fatalf("withdraw without record err = %v", err)
	}

	l.Credit(alice, bob, common.Address{}, wei(100), time.Now())
	if _, _, err := l.Withdraw(alice, wei(101)); !errors.Is(err, model.ErrAmountTooSmall) {
		t.Fatalf("withdraw below min err = %v", err)
	}
	assertAmount(t, "pending kept", l.Read(alice).PendingEarnings, wei(100))

	amount, undo, err := l.Withdraw(alice, wei(100))
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	assertAmount(t, "amount", amount, wei(100))
	rec := l.Read(alice)
	assertAmount(t, "pending", rec.PendingEarnings, wei(0))
	assertAmount(t, "withdrawn", rec.WithdrawnEarnings, wei(100))
	assertAmount(t, "total", rec.TotalEarnings, wei(100))

	undo()
	rec = l.Read(alice)
	assertAmount(t, "pending restored", rec.PendingEarnings, wei(100))
	assertAmount(t, "withdrawn restored", rec.WithdrawnEarnings, wei(0))

	l.Withdraw(alice, wei(0))
	if _, _, err := l.Withdraw(alice, wei(0)); !errors.Is(err, model.ErrAmountTooSmall) {
		t.Fatalf("withdraw of empty balance err = %v", err)
	}
}

func TestLedgerReadUnknownUser(t *testing.T) {
	rec := NewEarningsLedger().Read(alice)
	if rec.ReferralsCount != 0 || len(rec.ReferredUsers) != 0 || rec.PendingEarnings.Sign() != 0 {
		t.Fatalf("unknown user record = %+v", rec)
	}
}
