package core

import (
	"math/big"

	"launchpad-token-factory/core/model"

	"github.com/ethereum/go-ethereum/common"
)

// Distribution is how one creation fee is split.
type Distribution struct {
	Referrer       *common.Address
	ReferralAmount *big.Int
	TreasuryAmount *big.Int
}

// FeeDistributor splits fees between a referrer and the treasury. Unknown, inactive and
// self-referencing codes are not errors; they simply route everything to the treasury.
type FeeDistributor struct {
	registry *ReferralRegistry
}

func NewFeeDistributor(registry *ReferralRegistry) *FeeDistributor {
	return &FeeDistributor{registry: registry}
}

func (d *FeeDistributor) Split(fee *big.Int, percent uint8, code *model.ReferralCode, payer common.Address) Distribution {
	out := Distribution{
		ReferralAmount: new(big.Int),
		TreasuryAmount: new(big.Int).Set(fee),
	}
	if code == nil || code.IsZero() {
		return out
	}
	referrer, ok := d.registry.OwnerOf(*code)
	if !ok || referrer == payer {
		return out
	}

	out.Referrer = &referrer
	out.ReferralAmount = ReferralShare(fee, percent)
	out.TreasuryAmount.Sub(fee, out.ReferralAmount)
	return out
}

// ReferralShare is floor(fee * percent / 100).
func ReferralShare(fee *big.Int, percent uint8) *big.Int {
	share := new(big.Int).Mul(fee, big.NewInt(int64(percent)))
	return share.Quo(share, big.NewInt(100))
}
