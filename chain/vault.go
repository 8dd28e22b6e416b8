package chain

import (
	"context"
	"fmt"
	"math/big"

	"launchpad-token-factory/core"
	"launchpad-token-factory/core/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// Vault keeps inbound accounting in a MemoryVault and settles payouts on chain from the
// hot wallet. Collections and refunds never leave the process.
type Vault struct {
	ledger *core.MemoryVault
	sender ValueSender
}

func NewVault(ledger *core.MemoryVault, sender ValueSender) *Vault {
	return &Vault{ledger: ledger, sender: sender}
}

func (v *Vault) Collect(ctx context.Context, from common.Address, amount *big.Int) error {
	return v.ledger.Collect(ctx, from, amount)
}

func (v *Vault) Refund(ctx context.Context, to common.Address, amount *big.Int) error {
	return v.ledger.Refund(ctx, to, amount)
}

// Release debits custody first and puts the amount back if the broadcast fails.
func (v *Vault) Release(ctx context.Context, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return model.ErrInvalidAmount
	}
	if err := v.ledger.Withhold(amount); err != nil {
		return err
	}
	hash, err := v.sender.SendValue(ctx, to, amount)
	if err != nil {
		if restoreErr := v.ledger.Deposit(v.ledger.Custody(), amount); restoreErr != nil {
			logrus.Errorf("restore custody after failed payout: %v", restoreErr)
		}
		return fmt.Errorf("send %s wei to %s: %w", amount, to.Hex(), err)
	}
	logrus.WithFields(logrus.Fields{"to": to.Hex(), "amount": amount.String(), "tx": hash.Hex()}).Info("payout broadcast")
	return nil
}

func (v *Vault) BalanceOf(addr common.Address) *big.Int {
	return v.ledger.BalanceOf(addr)
}
