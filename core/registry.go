package core

import (
	"encoding/binary"
	"time"

	"launchpad-token-factory/core/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
)

// ReferralRegistry binds users to referral codes. A user holds at most one active code;
// every code ever issued stays in issued so it can never be handed out again.
// It is not safe for concurrent use; the factory serializes access.
type ReferralRegistry struct {
	owners   map[model.ReferralCode]common.Address
	codes    map[common.Address]model.ReferralCode
	issued   map[model.ReferralCode]struct{}
	sequence uint64
	nowFn    func() time.Time
}

func NewReferralRegistry(nowFn func() time.Time) *ReferralRegistry {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &ReferralRegistry{
		owners: make(map[model.ReferralCode]common.Address),
		codes:  make(map[common.Address]model.ReferralCode),
		issued: make(map[model.ReferralCode]struct{}),
		nowFn:  nowFn,
	}
}

// Generate issues the first code for user. The returned undo releases the binding but
// keeps the code marked as issued.
func (r *ReferralRegistry) Generate(user common.Address) (model.ReferralCode, func(), error) {
	if user == (common.Address{}) {
		return model.ReferralCode{}, nil, model.ErrInvalidAddress
	}
	if _, exists := r.codes[user]; exists {
		return model.ReferralCode{}, nil, model.ErrCodeAlreadyExists
	}

	code := r.nextCode(user)
	r.owners[code] = user
	r.codes[user] = code

	logrus.WithFields(logrus.Fields{"user": user.Hex(), "code": code.Hex()}).Info("referral code generated")

	undo := func() {
		delete(r.owners, code)
		delete(r.codes, user)
	}
	return code, undo, nil
}

// Rotate deactivates user's current code and binds a fresh one.
func (r *ReferralRegistry) Rotate(user common.Address) (oldCode, newCode model.ReferralCode, undo func(), err error) {
	oldCode, exists := r.codes[user]
	if !exists {
		return model.ReferralCode{}, model.ReferralCode{}, nil, model.ErrNoExistingCode
	}

	newCode = r.nextCode(user)
	delete(r.owners, oldCode)
	r.owners[newCode] = user
	r.codes[user] = newCode

	logrus.WithFields(logrus.Fields{"user": user.Hex(), "old": oldCode.Hex(), "new": newCode.Hex()}).Info("referral code rotated")

	undo = func() {
		delete(r.owners, newCode)
		r.owners[oldCode] = user
		r.codes[user] = oldCode
	}
	return oldCode, newCode, undo, nil
}

func (r *ReferralRegistry) IsActive(code model.ReferralCode) bool {
	_, ok := r.owners[code]
	return ok
}

// OwnerOf resolves active codes only.
func (r *ReferralRegistry) OwnerOf(code model.ReferralCode) (common.Address, bool) {
	owner, ok := r.owners[code]
	return owner, ok
}

func (r *ReferralRegistry) CodeOf(user common.Address) (model.ReferralCode, bool) {
	code, ok := r.codes[user]
	return code, ok
}

func (r *ReferralRegistry) nextCode(user common.Address) model.ReferralCode {
	var seq, nanos [8]byte
	binary.BigEndian.PutUint64(nanos[:], uint64(r.nowFn().UnixNano()))
	for {
		r.sequence++
		binary.BigEndian.PutUint64(seq[:], r.sequence)
		code := model.ReferralCode(crypto.Keccak256Hash(user.Bytes(), seq[:], nanos[:]))
		if code.IsZero() {
			continue
		}
		if _, taken := r.issued[code]; taken {
			continue
		}
		r.issued[code] = struct{}{}
		return code
	}
}
