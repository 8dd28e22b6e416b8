package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"

	"launchpad-token-factory/core/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sirupsen/logrus"
)

const transferGas = 21000

var ErrNoSigner = errors.New("chain client has no signing key")

// BlockReader is what the deposit watcher needs from a node.
type BlockReader interface {
	GetLatestBlockNumber(ctx context.Context) (uint64, error)
	GetChainBlock(ctx context.Context, number uint64) (*model.ChainBlock, error)
}

// ValueSender broadcasts native transfers from the hot wallet.
type ValueSender interface {
	SendValue(ctx context.Context, to common.Address, amount *big.Int) (common.Hash, error)
}

type BlockchainClient struct {
	client *ethclient.Client
	key    *ecdsa.PrivateKey
}

// NewBlockchainClient dials ethURL. key may be nil for a read-only client.
func NewBlockchainClient(ethURL string, key *ecdsa.PrivateKey) (*BlockchainClient, error) {
	client, err := ethclient.Dial(ethURL)
	if err != nil {
		return nil, err
	}
	return &BlockchainClient{client: client, key: key}, nil
}

// Address is the hot wallet the key controls, zero for read-only clients.
func (bc *BlockchainClient) Address() common.Address {
	if bc.key == nil {
		return common.Address{}
	}
	return crypto.PubkeyToAddress(bc.key.PublicKey)
}

func (bc *BlockchainClient) GetBlock(ctx context.Context, blockNumber uint64) (*types.Block, error) {
	return bc.client.BlockByNumber(ctx, new(big.Int).SetUint64(blockNumber))
}

func (bc *BlockchainClient) GetBlockReceipts(ctx context.Context, blockNumber uint64) ([]*types.Receipt, error) {
	receipts, err := bc.client.BlockReceipts(ctx, rpc.BlockNumberOrHashWithNumber(rpc.BlockNumber(blockNumber)))
	if err != nil {
		logrus.Errorf("GetBlockReceipts %d err: %v", blockNumber, err)
		return nil, err
	}
	return receipts, nil
}

func (bc *BlockchainClient) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	header, err := bc.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, err
	}
	return header.Number.Uint64(), nil
}

func (bc *BlockchainClient) GetChainBlock(ctx context.Context, number uint64) (*model.ChainBlock, error) {
	block, err := bc.GetBlock(ctx, number)
	if err != nil {
		return nil, err
	}
	receipts, err := bc.GetBlockReceipts(ctx, number)
	if err != nil {
		return nil, err
	}
	return ConvertBlockToChainBlock(block, receipts), nil
}

func (bc *BlockchainClient) SendValue(ctx context.Context, to common.Address, amount *big.Int) (common.Hash, error) {
	if bc.key == nil {
		return common.Hash{}, ErrNoSigner
	}
	chainID, err := bc.client.ChainID(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	nonce, err := bc.client.PendingNonceAt(ctx, bc.Address())
	if err != nil {
		return common.Hash{}, err
	}
	gasPrice, err := bc.client.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    amount,
		Gas:      transferGas,
		GasPrice: gasPrice,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), bc.key)
	if err != nil {
		return common.Hash{}, err
	}
	if err := bc.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, err
	}
	logrus.Infof("sent %s wei to %s in %s", amount, to.Hex(), signed.Hash().Hex())
	return signed.Hash(), nil
}

func ConvertBlockToChainBlock(block *types.Block, receipts []*types.Receipt) *model.ChainBlock {
	status := make(map[common.Hash]bool, len(receipts))
	for _, receipt := range receipts {
		status[receipt.TxHash] = receipt.Status == types.ReceiptStatusSuccessful
	}

	chainBlock := &model.ChainBlock{
		Number:    block.NumberU64(),
		Hash:      block.Hash(),
		Timestamp: block.Time(),
	}
	for idx, tx := range block.Transactions() {
		from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
		if err != nil {
			logrus.Warnf("skip tx %s in block %d: sender: %v", tx.Hash().Hex(), block.NumberU64(), err)
			continue
		}
		chainBlock.Txs = append(chainBlock.Txs, &model.ChainTransaction{
			Id:        tx.Hash(),
			From:      from,
			To:        tx.To(),
			Value:     new(big.Int).Set(tx.Value()),
			Block:     block.NumberU64(),
			Idx:       uint32(idx),
			Timestamp: block.Time(),
			Succeeded: status[tx.Hash()],
		})
	}
	return chainBlock
}
