package core

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"launchpad-token-factory/core/model"
	"launchpad-token-factory/monitoring"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
)

var (
	// 0.0001 native units
	DefaultFee = big.NewInt(100_000_000_000_000)
	// 0.001 native units
	DefaultMinWithdrawal = big.NewInt(1_000_000_000_000_000)

	ErrAssetCollision = errors.New("asset address already recorded")
)

const DefaultReferralPercent uint8 = 5

type Config struct {
	// Address is the factory's own account: custody of collected fees and the
	// deployer of created assets.
	Address         common.Address
	Owner           common.Address
	Treasury        common.Address
	Fee             *big.Int
	ReferralPercent uint8
	MinWithdrawal   *big.Int
}

type Options struct {
	Vault    Vault
	Deployer AssetDeployer
	Events   *EventHub
	Now      func() time.Time
}

// Factory is the single coordinating service. Every operation, read or write, runs
// under one mutex so all mutations are applied in a total order.
type Factory struct {
	mu sync.Mutex

	address       common.Address
	owner         common.Address
	treasury      common.Address
	params        model.EconomicParameters
	minWithdrawal *big.Int

	registry    *ReferralRegistry
	ledger      *EarningsLedger
	distributor *FeeDistributor
	vault       Vault
	deployer    AssetDeployer
	events      *EventHub
	nowFn       func() time.Time

	nonce         uint64
	creatorTokens map[common.Address][]common.Address
	assets        map[common.Address]*model.Asset
	logs          []*types.Log
	operations    uint64
}

func NewFactory(cfg Config, opts Options) (*Factory, error) {
	if cfg.Owner == (common.Address{}) {
		return nil, fmt.Errorf("factory owner: %w", model.ErrInvalidAddress)
	}
	if cfg.Address == (common.Address{}) {
		return nil, fmt.Errorf("factory address: %w", model.ErrInvalidAddress)
	}
	if cfg.Treasury == (common.Address{}) {
		cfg.Treasury = cfg.Owner
	}
	if cfg.Fee == nil {
		cfg.Fee = DefaultFee
	}
	if cfg.Fee.Sign() < 0 {
		return nil, fmt.Errorf("factory fee: %w", model.ErrInvalidAmount)
	}
	if cfg.ReferralPercent > model.MaxReferralPercent {
		return nil, model.ErrReferralPercentTooHigh
	}
	if cfg.MinWithdrawal == nil {
		cfg.MinWithdrawal = DefaultMinWithdrawal
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Vault == nil {
		opts.Vault = NewMemoryVault(cfg.Address)
	}
	if opts.Deployer == nil {
		opts.Deployer = CreateAddressDeployer{}
	}
	if opts.Events == nil {
		opts.Events = NewEventHub()
	}

	registry := NewReferralRegistry(opts.Now)
	f := &Factory{
		address:  cfg.Address,
		owner:    cfg.Owner,
		treasury: cfg.Treasury,
		params: model.EconomicParameters{
			Fee:             new(big.Int).Set(cfg.Fee),
			ReferralPercent: cfg.ReferralPercent,
		},
		minWithdrawal: new(big.Int).Set(cfg.MinWithdrawal),
		registry:      registry,
		ledger:        NewEarningsLedger(),
		distributor:   NewFeeDistributor(registry),
		vault:         opts.Vault,
		deployer:      opts.Deployer,
		events:        opts.Events,
		nowFn:         opts.Now,
		creatorTokens: make(map[common.Address][]common.Address),
		assets:        make(map[common.Address]*model.Asset),
	}

	logrus.Infof("factory %s ready, owner %s, treasury %s, fee %s wei, referral %d%%",
		f.address.Hex(), f.owner.Hex(), f.treasury.Hex(), f.params.Fee, f.params.ReferralPercent)
	return f, nil
}

// CreateToken mints a new asset for caller. payment must cover the current fee; any
// surplus stays with the factory. A nil or unusable referral code only means nobody is
// credited.
func (f *Factory) CreateToken(ctx context.Context, caller common.Address, params model.TokenCreationParams, referralCode *model.ReferralCode, payment *big.Int) (common.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	token, err := f.createToken(ctx, caller, params, referralCode, payment)
	if err != nil {
		monitoring.CreateFailuresTotal.WithLabelValues(reason(err)).Inc()
		logrus.Warnf("create token by %s failed: %v", caller.Hex(), err)
		return common.Address{}, err
	}
	return token, nil
}

func (f *Factory) createToken(ctx context.Context, caller common.Address, params model.TokenCreationParams, referralCode *model.ReferralCode, payment *big.Int) (common.Address, error) {
	if caller == (common.Address{}) {
		return common.Address{}, model.ErrInvalidAddress
	}
	if payment == nil || payment.Cmp(f.params.Fee) < 0 {
		return common.Address{}, model.ErrInsufficientPayment
	}
	params = params.Normalize().Copy()
	if err := ValidateParams(params); err != nil {
		return common.Address{}, err
	}

	fee := new(big.Int).Set(f.params.Fee)
	paid := new(big.Int).Set(payment)
	split := f.distributor.Split(fee, f.params.ReferralPercent, referralCode, caller)

	token, err := f.deployer.Deploy(ctx, f.address, f.nonce, params)
	if err != nil {
		return common.Address{}, fmt.Errorf("deploy asset: %w", err)
	}
	if _, exists := f.assets[token]; exists {
		return common.Address{}, fmt.Errorf("%w: %s", ErrAssetCollision, token.Hex())
	}

	var j journal
	var pending []*types.Log

	if err := f.vault.Collect(ctx, caller, paid); err != nil {
		return common.Address{}, fmt.Errorf("collect payment: %w", err)
	}
	j.append(func() {
		if err := f.vault.Refund(ctx, caller, paid); err != nil {
			logrus.Errorf("refund %s to %s failed: %v", paid, caller.Hex(), err)
		}
	})

	now := f.nowFn()
	asset := &model.Asset{
		Address:   token,
		Creator:   caller,
		Params:    params,
		Referrer:  split.Referrer,
		FeePaid:   fee,
		Nonce:     f.nonce,
		CreatedAt: now,
	}
	f.assets[token] = asset
	f.creatorTokens[caller] = append(f.creatorTokens[caller], token)
	f.nonce++
	j.append(func() {
		delete(f.assets, token)
		tokens := f.creatorTokens[caller]
		f.creatorTokens[caller] = tokens[:len(tokens)-1]
		f.nonce--
	})

	if split.Referrer != nil {
		j.append(f.ledger.Credit(*split.Referrer, caller, token, split.ReferralAmount, now))
		if err := f.stage(&pending, model.EventReferralEarned,
			[]common.Hash{model.AddressTopic(*split.Referrer), model.AddressTopic(caller)},
			split.ReferralAmount); err != nil {
			j.revert()
			return common.Address{}, err
		}
	}
	if err := f.stage(&pending, model.EventTokenCreated,
		[]common.Hash{model.AddressTopic(token), model.AddressTopic(caller)},
		params.Name, params.Symbol); err != nil {
		j.revert()
		return common.Address{}, err
	}

	// the treasury transfer is the only outward interaction and goes last
	if split.TreasuryAmount.Sign() > 0 {
		if err := f.vault.Release(ctx, f.treasury, split.TreasuryAmount); err != nil {
			j.revert()
			return common.Address{}, fmt.Errorf("forward fee to treasury: %w", err)
		}
	}
	j.commit()
	f.commit(pending)

	monitoring.TokensCreatedTotal.Inc()
	monitoring.FeesWei.WithLabelValues("treasury").Add(weiFloat(split.TreasuryAmount))
	if split.Referrer != nil {
		monitoring.ReferralCreditsTotal.Inc()
		monitoring.FeesWei.WithLabelValues("referral").Add(weiFloat(split.ReferralAmount))
	}

	fields := logrus.Fields{
		"token":   token.Hex(),
		"creator": caller.Hex(),
		"name":    params.Name,
		"symbol":  params.Symbol,
		"fee":     fee.String(),
	}
	if split.Referrer != nil {
		fields["referrer"] = split.Referrer.Hex()
		fields["referral"] = split.ReferralAmount.String()
	}
	logrus.WithFields(fields).Info("token created")

	return token, nil
}

func (f *Factory) GenerateReferralCode(caller common.Address) (model.ReferralCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	code, undo, err := f.registry.Generate(caller)
	if err != nil {
		return model.ReferralCode{}, err
	}
	var pending []*types.Log
	if err := f.stage(&pending, model.EventReferralCodeGenerated,
		[]common.Hash{model.AddressTopic(caller)}, [32]byte(code)); err != nil {
		undo()
		return model.ReferralCode{}, err
	}
	f.commit(pending)
	return code, nil
}

// UpdateReferralCode rotates caller's code; the old one stops resolving immediately.
func (f *Factory) UpdateReferralCode(caller common.Address) (model.ReferralCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	oldCode, newCode, undo, err := f.registry.Rotate(caller)
	if err != nil {
		return model.ReferralCode{}, err
	}
	var pending []*types.Log
	if err := f.stage(&pending, model.EventReferralCodeUpdated,
		[]common.Hash{model.AddressTopic(caller)}, [32]byte(oldCode), [32]byte(newCode)); err != nil {
		undo()
		return model.ReferralCode{}, err
	}
	f.commit(pending)
	return newCode, nil
}

// WithdrawReferralEarnings pays out caller's whole pending balance. The balance is
// zeroed before the transfer and restored if the transfer fails.
func (f *Factory) WithdrawReferralEarnings(ctx context.Context, caller common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	amount, undo, err := f.ledger.Withdraw(caller, f.minWithdrawal)
	if err != nil {
		monitoring.WithdrawalsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	var pending []*types.Log
	if err := f.stage(&pending, model.EventReferralEarningsWithdrawn,
		[]common.Hash{model.AddressTopic(caller)}, amount); err != nil {
		undo()
		return nil, err
	}

	if err := f.vault.Release(ctx, caller, amount); err != nil {
		undo()
		monitoring.WithdrawalsTotal.WithLabelValues("failed").Inc()
		logrus.Errorf("referral payout of %s to %s failed: %v", amount, caller.Hex(), err)
		return nil, fmt.Errorf("pay referral earnings: %w", err)
	}
	f.commit(pending)

	monitoring.WithdrawalsTotal.WithLabelValues("paid").Inc()
	logrus.WithFields(logrus.Fields{"user": caller.Hex(), "amount": amount.String()}).Info("referral earnings withdrawn")
	return amount, nil
}

// stage encodes an event into pending; nothing is visible until commit.
func (f *Factory) stage(pending *[]*types.Log, name string, indexed []common.Hash, data ...interface{}) error {
	l, err := model.EncodeEvent(f.address, name, indexed, data...)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", name, err)
	}
	*pending = append(*pending, l)
	return nil
}

// commit numbers staged logs like receipts of one operation and publishes them.
func (f *Factory) commit(pending []*types.Log) {
	f.operations++
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], f.operations)
	opHash := crypto.Keccak256Hash(f.address.Bytes(), seq[:])
	for _, l := range pending {
		l.BlockNumber = f.operations
		l.TxHash = opHash
		l.Index = uint(len(f.logs))
		f.logs = append(f.logs, l)
	}
	if len(pending) > 0 {
		f.events.Publish(pending...)
	}
}

func reason(err error) string {
	var code model.ErrorCode
	if errors.As(err, &code) {
		return code.Name()
	}
	return "internal"
}

func weiFloat(v *big.Int) float64 {
	out, _ := new(big.Float).SetInt(v).Float64()
	return out
}
