package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"launchpad-token-factory/core/model"
	"launchpad-token-factory/monitoring"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

var ErrBlockOutOfOrder = errors.New("block number not match")

// Depositor is credited with value users send to the hot wallet.
type Depositor interface {
	Deposit(addr common.Address, amount *big.Int) error
}

// Watcher scans blocks in order and turns successful transfers to the hot wallet into
// vault deposits.
type Watcher struct {
	client    BlockReader
	vault     Depositor
	hotWallet common.Address
	latest    uint64
	interval  time.Duration
}

// NewWatcher starts scanning after block startAfter.
func NewWatcher(client BlockReader, vault Depositor, hotWallet common.Address, startAfter uint64, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &Watcher{
		client:    client,
		vault:     vault,
		hotWallet: hotWallet,
		latest:    startAfter,
		interval:  interval,
	}
}

func (w *Watcher) LatestBlockNumber() uint64 {
	return w.latest
}

// Run polls until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	logrus.Infof("deposit watcher for %s starting after block %d", w.hotWallet.Hex(), w.latest)
	for {
		if err := w.Sync(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logrus.Errorf("deposit watcher: %v", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.interval):
		}
	}
}

// Sync processes every block up to the chain head and stops at the first failure.
func (w *Watcher) Sync(ctx context.Context) error {
	head, err := w.client.GetLatestBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("GetLatestBlockNumber: %w", err)
	}
	if head <= w.latest {
		return nil
	}
	logrus.Infof("lastNumber: %d, latestChainNumber: %d", w.latest, head)

	for number := w.latest + 1; number <= head; number++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		block, err := w.client.GetChainBlock(ctx, number)
		if err != nil {
			return fmt.Errorf("GetBlock %d: %w", number, err)
		}
		if _, err := w.HandleNewBlock(block); err != nil {
			return fmt.Errorf("HandleNewBlock %d: %w", number, err)
		}
	}
	return nil
}

func (w *Watcher) HandleNewBlock(block *model.ChainBlock) ([]model.Deposit, error) {
	if block.Number != w.latest+1 {
		logrus.Warnf("block number not match, latest: %d, current: %d", w.latest, block.Number)
		return nil, ErrBlockOutOfOrder
	}

	var deposits []model.Deposit
	for _, tx := range block.Txs {
		if !w.isDeposit(tx) {
			continue
		}
		if err := w.vault.Deposit(tx.From, tx.Value); err != nil {
			return deposits, fmt.Errorf("credit %s: %w", tx.Id.Hex(), err)
		}
		monitoring.DepositsTotal.Inc()
		deposits = append(deposits, model.Deposit{
			TxHash: tx.Id,
			From:   tx.From,
			Amount: new(big.Int).Set(tx.Value),
			Block:  block.Number,
		})
	}

	w.latest = block.Number
	return deposits, nil
}

func (w *Watcher) isDeposit(tx *model.ChainTransaction) bool {
	return tx.Succeeded &&
		tx.To != nil && *tx.To == w.hotWallet &&
		tx.From != w.hotWallet &&
		tx.Value != nil && tx.Value.Sign() > 0
}
