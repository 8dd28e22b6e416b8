package core

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"launchpad-token-factory/core/model"

	"github.com/ethereum/go-ethereum/common"
)

var (
	factoryAddr  = common.HexToAddress("0x00000000000000000000000000000000000fac70")
	ownerAddr    = common.HexToAddress("0x0000000000000000000000000000000000000a11")
	treasuryAddr = common.HexToAddress("0x0000000000000000000000000000000000007ea5")
	alice        = common.HexToAddress("0x000000000000000000000000000000000000a11c")
	bob          = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	carol        = common.HexToAddress("0x000000000000000000000000000000000000ca01")

	oneEther   = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	testFee    = big.NewInt(100_000_000_000_000)
	testMinOut = big.NewInt(1_000_000_000_000_000)
)

var errTransferFailed = errors.New("transfer failed")

// flakyVault is a MemoryVault whose outbound payments can be made to fail per recipient.
type flakyVault struct {
	*MemoryVault
	failTo map[common.Address]bool
}

func (v *flakyVault) Release(ctx context.Context, to common.Address, amount *big.Int) error {
	if v.failTo[to] {
		return errTransferFailed
	}
	return v.MemoryVault.Release(ctx, to, amount)
}

type fixture struct {
	factory *Factory
	vault   *flakyVault
	clock   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	vault := &flakyVault{MemoryVault: NewMemoryVault(factoryAddr), failTo: make(map[common.Address]bool)}
	for _, user := range []common.Address{alice, bob, carol} {
		if err := vault.Deposit(user, oneEther); err != nil {
			t.Fatalf("Deposit: %v", err)
		}
	}
	fx := &fixture{vault: vault, clock: time.Unix(1_700_000_000, 0)}
	f, err := NewFactory(Config{
		Address:         factoryAddr,
		Owner:           ownerAddr,
		Treasury:        treasuryAddr,
		Fee:             testFee,
		ReferralPercent: 5,
		MinWithdrawal:   testMinOut,
	}, Options{
		Vault: vault,
		Now: func() time.Time {
			fx.clock = fx.clock.Add(time.Second)
			return fx.clock
		},
	})
	if err != nil {
		t.Fatalf("NewFactory: %v", err)
	}
	fx.factory = f
	return fx
}

func validParams() model.TokenCreationParams {
	return model.TokenCreationParams{
		Name:        "Launch Token",
		Symbol:      "LCH",
		TotalSupply: big.NewInt(1_000_000),
		MaxSupply:   big.NewInt(2_000_000),
		BuyTax:      5,
		SellTax:     5,
		WalletTax:   1,
		Whitelist:   []common.Address{alice},
	}
}

func (fx *fixture) create(t *testing.T, caller common.Address, code *model.ReferralCode) common.Address {
	t.Helper()
	token, err := fx.factory.CreateToken(context.Background(), caller, validParams(), code, fx.factory.Fee())
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	return token
}

func (fx *fixture) generate(t *testing.T, user common.Address) *model.ReferralCode {
	t.Helper()
	code, err := fx.factory.GenerateReferralCode(user)
	if err != nil {
		t.Fatalf("GenerateReferralCode: %v", err)
	}
	return &code
}

func wei(v int64) *big.Int {
	return big.NewInt(v)
}

func assertAmount(t *testing.T, what string, got, want *big.Int) {
	t.Helper()
	if got.Cmp(want) != 0 {
		t.Fatalf("%s = %s, want %s", what, got, want)
	}
}

func longString(n int) string {
	return strings.Repeat("x", n)
}
