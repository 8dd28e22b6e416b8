package core

import (
	"context"
	"errors"
	"testing"

	"launchpad-token-factory/core/model"
)

func TestMemoryVaultMoves(t *testing.T) {
	ctx := context.Background()
	v := NewMemoryVault(factoryAddr)
	if err := v.Deposit(alice, wei(100)); err != nil {
		t.Fatalf("Deposit: %v", err)
	}

	if err := v.Collect(ctx, alice, wei(101)); !errors.Is(err, model.ErrInsufficientFunds) {
		t.Fatalf("over-collect err = %v", err)
	}
	assertAmount(t, "alice untouched", v.BalanceOf(alice), wei(100))

	if err := v.Collect(ctx, alice, wei(60)); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	assertAmount(t, "alice", v.BalanceOf(alice), wei(40))
	assertAmount(t, "custody", v.BalanceOf(factoryAddr), wei(60))

	if err := v.Release(ctx, treasuryAddr, wei(25)); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := v.Refund(ctx, alice, wei(35)); err != nil {
		t.Fatalf("Refund: %v", err)
	}
	assertAmount(t, "treasury", v.BalanceOf(treasuryAddr), wei(25))
	assertAmount(t, "alice", v.BalanceOf(alice), wei(75))
	assertAmount(t, "custody", v.BalanceOf(factoryAddr), wei(0))

	if err := v.Release(ctx, bob, wei(1)); !errors.Is(err, model.ErrInsufficientFunds) {
		t.Fatalf("release from empty custody err = %v", err)
	}
}

func TestMemoryVaultRejectsInvalidAmounts(t *testing.T) {
	v := NewMemoryVault(factoryAddr)
	if err := v.Deposit(alice, wei(-1)); !errors.Is(err, model.ErrInvalidAmount) {
		t.Fatalf("negative deposit err = %v", err)
	}
	if err := v.Collect(context.Background(), alice, nil); !errors.Is(err, model.ErrInvalidAmount) {
		t.Fatalf("nil collect err = %v", err)
	}
	if err := v.Withhold(wei(-5)); !errors.Is(err, model.ErrInvalidAmount) {
		t.Fatalf("negative withhold err = %v", err)
	}
}

func TestMemoryVaultBalanceIsACopy(t *testing.T) {
	v := NewMemoryVault(factoryAddr)
	v.Deposit(alice, wei(10))
	v.BalanceOf(alice).SetInt64(1_000)
	assertAmount(t, "alice", v.BalanceOf(alice), wei(10))
}
