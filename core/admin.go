package core

import (
	"math/big"

	"launchpad-token-factory/core/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
)

func (f *Factory) onlyOwner(caller common.Address) error {
	if caller != f.owner {
		return model.ErrOwnableUnauthorizedAccount
	}
	return nil
}

// SetFee changes the creation fee for subsequent creations. Zero is allowed.
func (f *Factory) SetFee(caller common.Address, fee *big.Int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.onlyOwner(caller); err != nil {
		return err
	}
	if fee == nil || fee.Sign() < 0 {
		return model.ErrInvalidAmount
	}

	updated := new(big.Int).Set(fee)
	var pending []*types.Log
	if err := f.stage(&pending, model.EventFeeUpdated, nil, updated); err != nil {
		return err
	}
	previous := f.params.Fee
	f.params.Fee = updated
	f.commit(pending)

	logrus.Infof("fee changed from %s to %s wei", previous, updated)
	return nil
}

func (f *Factory) SetReferralPercent(caller common.Address, percent uint8) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.onlyOwner(caller); err != nil {
		return err
	}
	if percent > model.MaxReferralPercent {
		return model.ErrReferralPercentTooHigh
	}

	var pending []*types.Log
	if err := f.stage(&pending, model.EventReferralPercentUpdated, nil, model.Uint256(uint64(percent))); err != nil {
		return err
	}
	previous := f.params.ReferralPercent
	f.params.ReferralPercent = percent
	f.commit(pending)

	logrus.Infof("referral percent changed from %d to %d", previous, percent)
	return nil
}
