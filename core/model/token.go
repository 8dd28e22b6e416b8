package model

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	MaxNameLength   = 32
	MaxSymbolLength = 32
	MaxTax          = 25

	MaxReferralPercent = 50
)

// TokenCreationParams describes the asset a creator asks the factory to mint.
// Taxes are whole percents.
type TokenCreationParams struct {
	Name        string
	Symbol      string
	TotalSupply *big.Int
	Whitelist   []common.Address
	BuyTax      uint8
	SellTax     uint8
	WalletTax   uint8
	LogoURL     string
	Website     string
	Telegram    string
	SalesLocked bool
	Mintable    bool
	MaxSupply   *big.Int
}

// Normalize fills the fields the narrow creation shape omits: a missing max supply
// caps at the total supply and nil supplies become zero.
func (p TokenCreationParams) Normalize() TokenCreationParams {
	if p.TotalSupply == nil {
		p.TotalSupply = new(big.Int)
	}
	if p.MaxSupply == nil {
		p.MaxSupply = new(big.Int).Set(p.TotalSupply)
	}
	return p
}

// Copy returns params that share no mutable state with p.
func (p TokenCreationParams) Copy() TokenCreationParams {
	out := p
	if p.TotalSupply != nil {
		out.TotalSupply = new(big.Int).Set(p.TotalSupply)
	}
	if p.MaxSupply != nil {
		out.MaxSupply = new(big.Int).Set(p.MaxSupply)
	}
	out.Whitelist = make([]common.Address, len(p.Whitelist))
	copy(out.Whitelist, p.Whitelist)
	return out
}

// Asset is the factory's record of a token it instantiated.
type Asset struct {
	Address   common.Address
	Creator   common.Address
	Params    TokenCreationParams
	Referrer  *common.Address
	FeePaid   *big.Int
	Nonce     uint64
	CreatedAt time.Time
}

type EconomicParameters struct {
	Fee             *big.Int
	ReferralPercent uint8
}
