package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type ChainBlock struct {
	Number    uint64
	Hash      common.Hash
	Txs       []*ChainTransaction
	Timestamp uint64
}

// ChainTransaction is the part of a native transaction the deposit watcher needs.
type ChainTransaction struct {
	Id        common.Hash
	From      common.Address
	To        *common.Address
	Value     *big.Int
	Block     uint64
	Idx       uint32
	Timestamp uint64
	Succeeded bool
}

// Deposit is native value a user sent to the factory's hot wallet.
type Deposit struct {
	TxHash common.Hash
	From   common.Address
	Amount *big.Int
	Block  uint64
}
