package model

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const ReferralCodeLength = 32

// ReferralCode is an opaque 32-byte identifier. The zero value means "no code" and is
// never issued to a user.
type ReferralCode [ReferralCodeLength]byte

func (c ReferralCode) IsZero() bool {
	return c == ReferralCode{}
}

func (c ReferralCode) Hex() string {
	return "0x" + hex.EncodeToString(c[:])
}

func (c ReferralCode) String() string {
	return c.Hex()
}

func (c ReferralCode) Hash() common.Hash {
	return common.Hash(c)
}

// ParseReferralCode decodes a 0x-prefixed 32-byte hex string. It returns nil when s is
// empty or encodes the zero code, so callers get an explicit "no code".
func ParseReferralCode(s string) (*ReferralCode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
	if err != nil {
		return nil, fmt.Errorf("decode referral code: %w", err)
	}
	if len(raw) != ReferralCodeLength {
		return nil, fmt.Errorf("referral code must be %d bytes, got %d", ReferralCodeLength, len(raw))
	}
	var code ReferralCode
	copy(code[:], raw)
	if code.IsZero() {
		return nil, nil
	}
	return &code, nil
}

// ReferralRecord is a read-only snapshot of a user's referral ledger entry.
type ReferralRecord struct {
	ReferralsCount    uint64
	ReferredUsers     []common.Address
	PendingEarnings   *big.Int
	WithdrawnEarnings *big.Int
	TotalEarnings     *big.Int
}

// ReferralInfo is the public getReferralInfo view.
type ReferralInfo struct {
	ReferralsCount  uint64
	ReferredUsers   []common.Address
	PendingEarnings *big.Int
}

type ReferralDetails struct {
	TotalEarnings     *big.Int
	PendingEarnings   *big.Int
	WithdrawnEarnings *big.Int
	ReferralsCount    uint64
}

// ReferralTransaction records a single attributed creation.
type ReferralTransaction struct {
	Timestamp    time.Time
	ReferredUser common.Address
	TokenCreated common.Address
	Amount       *big.Int
}

func NewReferralRecord() *ReferralRecord {
	return &ReferralRecord{
		PendingEarnings:   new(big.Int),
		WithdrawnEarnings: new(big.Int),
		TotalEarnings:     new(big.Int),
	}
}

// Copy returns a deep copy safe to hand out of the ledger.
func (r *ReferralRecord) Copy() ReferralRecord {
	out := ReferralRecord{
		ReferralsCount:    r.ReferralsCount,
		ReferredUsers:     make([]common.Address, len(r.ReferredUsers)),
		PendingEarnings:   new(big.Int).Set(r.PendingEarnings),
		WithdrawnEarnings: new(big.Int).Set(r.WithdrawnEarnings),
		TotalEarnings:     new(big.Int).Set(r.TotalEarnings),
	}
	copy(out.ReferredUsers, r.ReferredUsers)
	return out
}

func (r ReferralRecord) Info() ReferralInfo {
	return ReferralInfo{
		ReferralsCount:  r.ReferralsCount,
		ReferredUsers:   r.ReferredUsers,
		PendingEarnings: r.PendingEarnings,
	}
}

func (r ReferralRecord) Details() ReferralDetails {
	return ReferralDetails{
		TotalEarnings:     r.TotalEarnings,
		PendingEarnings:   r.PendingEarnings,
		WithdrawnEarnings: r.WithdrawnEarnings,
		ReferralsCount:    r.ReferralsCount,
	}
}
