package core

import (
	"math/big"

	"launchpad-token-factory/core/model"

	"github.com/ethereum/go-ethereum/common"
)

// ValidateParams runs the creation checks in priority order; the first failure wins.
// It never mutates its input.
func ValidateParams(params model.TokenCreationParams) error {
	if len(params.Name) > model.MaxNameLength {
		return model.ErrNameTooLong
	}
	if len(params.Symbol) > model.MaxSymbolLength {
		return model.ErrSymbolTooLong
	}
	for _, tax := range []uint8{params.BuyTax, params.SellTax, params.WalletTax} {
		if tax > model.MaxTax {
			return model.ErrTaxTooHigh
		}
	}
	for _, addr := range params.Whitelist {
		if addr == (common.Address{}) {
			return model.ErrInvalidWhitelistAddress
		}
	}
	if orZero(params.TotalSupply).Sign() < 0 || orZero(params.MaxSupply).Sign() < 0 {
		return model.ErrInvalidAmount
	}
	if orZero(params.TotalSupply).Cmp(orZero(params.MaxSupply)) > 0 {
		return model.ErrSupplyExceedsMax
	}
	return nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
