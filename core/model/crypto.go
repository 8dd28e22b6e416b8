package model

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Keccak256 hashes data with the legacy keccak used by the EVM and returns lowercase hex.
func Keccak256(data string) string {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(data))
	return hex.EncodeToString(hasher.Sum(nil))
}

// EventTopic is the 0x-prefixed topic of an event signature such as "FeeUpdated(uint256)".
func EventTopic(signature string) string {
	return "0x" + Keccak256(signature)
}
