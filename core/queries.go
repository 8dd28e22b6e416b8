package core

import (
	"math/big"

	"launchpad-token-factory/core/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

func (f *Factory) Address() common.Address {
	return f.address
}

func (f *Factory) Owner() common.Address {
	return f.owner
}

func (f *Factory) TreasuryAddress() common.Address {
	return f.treasury
}

func (f *Factory) Fee() *big.Int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return new(big.Int).Set(f.params.Fee)
}

func (f *Factory) ReferralPercent() uint8 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.params.ReferralPercent
}

func (f *Factory) MinWithdrawal() *big.Int {
	return new(big.Int).Set(f.minWithdrawal)
}

func (f *Factory) Balance(addr common.Address) *big.Int {
	return f.vault.BalanceOf(addr)
}

// GetUserReferralCode returns the zero code for users that never generated one.
func (f *Factory) GetUserReferralCode(user common.Address) model.ReferralCode {
	f.mu.Lock()
	defer f.mu.Unlock()
	code, _ := f.registry.CodeOf(user)
	return code
}

func (f *Factory) IsReferralCodeActive(code model.ReferralCode) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registry.IsActive(code)
}

// GetReferralCodeOwner returns the zero address for unknown or deactivated codes.
func (f *Factory) GetReferralCodeOwner(code model.ReferralCode) common.Address {
	f.mu.Lock()
	defer f.mu.Unlock()
	owner, _ := f.registry.OwnerOf(code)
	return owner
}

func (f *Factory) GetReferralInfo(user common.Address) model.ReferralInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ledger.Read(user).Info()
}

func (f *Factory) GetReferralDetails(user common.Address) model.ReferralDetails {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ledger.Read(user).Details()
}

func (f *Factory) GetReferralTransactions(user common.Address) []model.ReferralTransaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ledger.Transactions(user)
}

// GetCreatorTokens lists the creator's assets in creation order.
func (f *Factory) GetCreatorTokens(creator common.Address) []common.Address {
	f.mu.Lock()
	defer f.mu.Unlock()
	tokens := f.creatorTokens[creator]
	out := make([]common.Address, len(tokens))
	copy(out, tokens)
	return out
}

func (f *Factory) GetToken(token common.Address) (*model.Asset, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	asset, ok := f.assets[token]
	if !ok {
		return nil, false
	}
	out := *asset
	out.Params = asset.Params.Copy()
	out.FeePaid = new(big.Int).Set(asset.FeePaid)
	if asset.Referrer != nil {
		referrer := *asset.Referrer
		out.Referrer = &referrer
	}
	return &out, true
}

func (f *Factory) TokenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.assets)
}

// Logs returns every committed event from index from onwards.
func (f *Factory) Logs(from uint) []types.Log {
	f.mu.Lock()
	defer f.mu.Unlock()
	if from >= uint(len(f.logs)) {
		return nil
	}
	out := make([]types.Log, 0, uint(len(f.logs))-from)
	for _, l := range f.logs[from:] {
		out = append(out, *l)
	}
	return out
}

// LogCount is the index the next committed event will get.
func (f *Factory) LogCount() uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return uint(len(f.logs))
}

func (f *Factory) Events() *EventHub {
	return f.events
}
