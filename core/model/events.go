package model

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	EventTokenCreated              = "TokenCreated"
	EventReferralCodeGenerated     = "ReferralCodeGenerated"
	EventReferralCodeUpdated       = "ReferralCodeUpdated"
	EventReferralEarned            = "ReferralEarned"
	EventReferralEarningsWithdrawn = "ReferralEarningsWithdrawn"
	EventFeeUpdated                = "FeeUpdated"
	EventReferralPercentUpdated    = "ReferralPercentUpdated"
)

const FactoryEventABIJson = `[
{"anonymous":false,"inputs":[{"indexed":true,"internalType":"address","name":"token","type":"address"},{"indexed":true,"internalType":"address","name":"creator","type":"address"},{"indexed":false,"internalType":"string","name":"name","type":"string"},{"indexed":false,"internalType":"string","name":"symbol","type":"string"}],"name":"TokenCreated","type":"event"},
{"anonymous":false,"inputs":[{"indexed":true,"internalType":"address","name":"user","type":"address"},{"indexed":false,"internalType":"bytes32","name":"code","type":"bytes32"}],"name":"ReferralCodeGenerated","type":"event"},
{"anonymous":false,"inputs":[{"indexed":true,"internalType":"address","name":"user","type":"address"},{"indexed":false,"internalType":"bytes32","name":"oldCode","type":"bytes32"},{"indexed":false,"internalType":"bytes32","name":"newCode","type":"bytes32"}],"name":"ReferralCodeUpdated","type":"event"},
{"anonymous":false,"inputs":[{"indexed":true,"internalType":"address","name":"referrer","type":"address"},{"indexed":true,"internalType":"address","name":"referredUser","type":"address"},{"indexed":false,"internalType":"uint256","name":"amount","type":"uint256"}],"name":"ReferralEarned","type":"event"},
{"anonymous":false,"inputs":[{"indexed":true,"internalType":"address","name":"user","type":"address"},{"indexed":false,"internalType":"uint256","name":"amount","type":"uint256"}],"name":"ReferralEarningsWithdrawn","type":"event"},
{"anonymous":false,"inputs":[{"indexed":false,"internalType":"uint256","name":"newFee","type":"uint256"}],"name":"FeeUpdated","type":"event"},
{"anonymous":false,"inputs":[{"indexed":false,"internalType":"uint256","name":"newPercent","type":"uint256"}],"name":"ReferralPercentUpdated","type":"event"}
]`

var (
	FactoryEventABI = mustParseABI(FactoryEventABIJson)

	TopicTokenCreated = EventTopic("TokenCreated(address,address,string,string)")

	ErrUnknownEvent = errors.New("unknown event")
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("parse factory event abi: %v", err))
	}
	return parsed
}

type TokenCreatedEvent struct {
	Token   common.Address
	Creator common.Address
	Name    string
	Symbol  string
}

// EncodeEvent builds a log for eventName emitted by emitter. indexed holds the indexed
// arguments in declaration order, data the remaining ones.
func EncodeEvent(emitter common.Address, eventName string, indexed []common.Hash, data ...interface{}) (*types.Log, error) {
	event, exists := FactoryEventABI.Events[eventName]
	if !exists {
		return nil, fmt.Errorf("event '%s' not found", eventName)
	}
	packed, err := event.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", eventName, err)
	}
	topics := make([]common.Hash, 0, len(indexed)+1)
	topics = append(topics, event.ID)
	topics = append(topics, indexed...)
	return &types.Log{
		Address: emitter,
		Topics:  topics,
		Data:    packed,
	}, nil
}

// AddressTopic left-pads an address the way the EVM stores indexed address arguments.
func AddressTopic(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

func ParseEventLog(parsedAbi abi.ABI, eventName string, logData *types.Log) (map[string]interface{}, error) {
	event, exists := parsedAbi.Events[eventName]
	if !exists {
		return nil, fmt.Errorf("event '%s' not found", eventName)
	}

	eventData := make(map[string]interface{})
	if err := parsedAbi.UnpackIntoMap(eventData, eventName, logData.Data); err != nil {
		return nil, fmt.Errorf("failed to unpack event data: %w", err)
	}

	i := 0
	for _, input := range event.Inputs {
		if !input.Indexed {
			continue
		}
		if i+1 >= len(logData.Topics) {
			return nil, fmt.Errorf("event '%s' is missing indexed topic %s", eventName, input.Name)
		}
		eventData[input.Name] = logData.Topics[i+1]
		i++
	}

	return eventData, nil
}

// DecodeEvent resolves the event of a log by its first topic and unpacks its arguments.
func DecodeEvent(logData *types.Log) (string, map[string]interface{}, error) {
	if len(logData.Topics) == 0 {
		return "", nil, ErrUnknownEvent
	}
	event, err := FactoryEventABI.EventByID(logData.Topics[0])
	if err != nil {
		return "", nil, ErrUnknownEvent
	}
	fields, err := ParseEventLog(FactoryEventABI, event.Name, logData)
	if err != nil {
		return "", nil, err
	}
	return event.Name, fields, nil
}

func ParseTokenCreated(logData *types.Log) (*TokenCreatedEvent, error) {
	if len(logData.Topics) == 0 || logData.Topics[0].Hex() != TopicTokenCreated {
		return nil, ErrUnknownEvent
	}
	eventData, err := ParseEventLog(FactoryEventABI, EventTokenCreated, logData)
	if err != nil {
		return nil, err
	}

	var event TokenCreatedEvent
	if token, ok := eventData["token"].(common.Hash); ok {
		event.Token = common.BytesToAddress(token[:])
	}
	if creator, ok := eventData["creator"].(common.Hash); ok {
		event.Creator = common.BytesToAddress(creator[:])
	}
	if name, ok := eventData["name"].(string); ok {
		event.Name = name
	}
	if symbol, ok := eventData["symbol"].(string); ok {
		event.Symbol = symbol
	}
	return &event, nil
}

// Uint256 converts a small integer into the *big.Int the ABI packer expects.
func Uint256(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}
