package core

import (
	"context"
	"math/big"
	"sync"

	"launchpad-token-factory/core/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// Vault holds the native value that flows through the factory.
type Vault interface {
	// Collect moves amount from a user's balance into the factory's custody.
	Collect(ctx context.Context, from common.Address, amount *big.Int) error
	// Refund reverses a Collect that belongs to a failed operation.
	Refund(ctx context.Context, to common.Address, amount *big.Int) error
	// Release pays amount out of the factory's custody.
	Release(ctx context.Context, to common.Address, amount *big.Int) error
	BalanceOf(addr common.Address) *big.Int
}

// MemoryVault keeps balances in process. The factory's own balance sits under its
// custody address.
type MemoryVault struct {
	mu       sync.Mutex
	custody  common.Address
	balances map[common.Address]*big.Int
}

func NewMemoryVault(custody common.Address) *MemoryVault {
	return &MemoryVault{
		custody:  custody,
		balances: make(map[common.Address]*big.Int),
	}
}

func (v *MemoryVault) Custody() common.Address {
	return v.custody
}

// Deposit credits addr with value that entered the system from outside.
func (v *MemoryVault) Deposit(addr common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return model.ErrInvalidAmount
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.add(addr, amount)
	logrus.Infof("deposit %s to %s", amount, addr.Hex())
	return nil
}

func (v *MemoryVault) Collect(_ context.Context, from common.Address, amount *big.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.move(from, v.custody, amount)
}

func (v *MemoryVault) Refund(_ context.Context, to common.Address, amount *big.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.move(v.custody, to, amount)
}

func (v *MemoryVault) Release(_ context.Context, to common.Address, amount *big.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.move(v.custody, to, amount)
}

// Withhold removes amount from the custody balance without crediting anyone, used
// when the value left through another channel.
func (v *MemoryVault) Withhold(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return model.ErrInvalidAmount
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sub(v.custody, amount)
}

func (v *MemoryVault) BalanceOf(addr common.Address) *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if bal, ok := v.balances[addr]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

func (v *MemoryVault) move(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return model.ErrInvalidAmount
	}
	if err := v.sub(from, amount); err != nil {
		return err
	}
	v.add(to, amount)
	return nil
}

func (v *MemoryVault) sub(addr common.Address, amount *big.Int) error {
	bal, ok := v.balances[addr]
	if !ok {
		bal = new(big.Int)
	}
	if bal.Cmp(amount) < 0 {
		return model.ErrInsufficientFunds
	}
	v.balances[addr] = new(big.Int).Sub(bal, amount)
	return nil
}

func (v *MemoryVault) add(addr common.Address, amount *big.Int) {
	bal, ok := v.balances[addr]
	if !ok {
		bal = new(big.Int)
	}
	v.balances[addr] = new(big.Int).Add(bal, amount)
}
