package core

import (
	"math/big"
	"time"

	"launchpad-token-factory/core/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// EarningsLedger tracks referral balances per referrer.
// It is not safe for concurrent use; the factory serializes access.
type EarningsLedger struct {
	records      map[common.Address]*model.ReferralRecord
	transactions map[common.Address][]model.ReferralTransaction
}

func NewEarningsLedger() *EarningsLedger {
	return &EarningsLedger{
		records:      make(map[common.Address]*model.ReferralRecord),
		transactions: make(map[common.Address][]model.ReferralTransaction),
	}
}

func (l *EarningsLedger) record(user common.Address) *model.ReferralRecord {
	rec, ok := l.records[user]
	if !ok {
		rec = model.NewReferralRecord()
		l.records[user] = rec
	}
	return rec
}

// Credit attributes one creation by referredUser to referrer.
func (l *EarningsLedger) Credit(referrer, referredUser, token common.Address, amount *big.Int, at time.Time) func() {
	rec := l.record(referrer)
	credited := new(big.Int).Set(amount)

	rec.ReferralsCount++
	rec.ReferredUsers = append(rec.ReferredUsers, referredUser)
	rec.PendingEarnings.Add(rec.PendingEarnings, credited)
	rec.TotalEarnings.Add(rec.TotalEarnings, credited)
	l.transactions[referrer] = append(l.transactions[referrer], model.ReferralTransaction{
		Timestamp:    at,
		ReferredUser: referredUser,
		TokenCreated: token,
		Amount:       credited,
	})

	logrus.WithFields(logrus.Fields{
		"referrer": referrer.Hex(),
		"referred": referredUser.Hex(),
		"token":    token.Hex(),
		"amount":   credited.String(),
	}).Info("referral credited")

	return func() {
		rec.ReferralsCount--
		rec.ReferredUsers = rec.ReferredUsers[:len(rec.ReferredUsers)-1]
		rec.PendingEarnings.Sub(rec.PendingEarnings, credited)
		rec.TotalEarnings.Sub(rec.TotalEarnings, credited)
		txs := l.transactions[referrer]
		l.transactions[referrer] = txs[:len(txs)-1]
	}
}

// Withdraw zeroes user's pending balance when it meets min and returns the amount to pay
// out. The caller performs the transfer and runs undo if it fails.
func (l *EarningsLedger) Withdraw(user common.Address, min *big.Int) (*big.Int, func(), error) {
	rec, ok := l.records[user]
	if !ok || rec.PendingEarnings.Sign() == 0 || rec.PendingEarnings.Cmp(min) < 0 {
		return nil, nil, model.ErrAmountTooSmall
	}

	amount := new(big.Int).Set(rec.PendingEarnings)
	rec.PendingEarnings.SetUint64(0)
	rec.WithdrawnEarnings.Add(rec.WithdrawnEarnings, amount)

	undo := func() {
		rec.PendingEarnings.Set(amount)
		rec.WithdrawnEarnings.Sub(rec.WithdrawnEarnings, amount)
	}
	return new(big.Int).Set(amount), undo, nil
}

// Read returns a snapshot; users without activity get an empty record.
func (l *EarningsLedger) Read(user common.Address) model.ReferralRecord {
	rec, ok := l.records[user]
	if !ok {
		return model.NewReferralRecord().Copy()
	}
	return rec.Copy()
}

func (l *EarningsLedger) Transactions(user common.Address) []model.ReferralTransaction {
	txs := l.transactions[user]
	out := make([]model.ReferralTransaction, len(txs))
	for i, tx := range txs {
		tx.Amount = new(big.Int).Set(tx.Amount)
		out[i] = tx
	}
	return out
}
