package core

import (
	"context"

	"launchpad-token-factory/core/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// AssetDeployer instantiates the token contract for a creation. The factory treats the
// result as an opaque address.
type AssetDeployer interface {
	Deploy(ctx context.Context, factory common.Address, nonce uint64, params model.TokenCreationParams) (common.Address, error)
}

// CreateAddressDeployer derives the address a CREATE from the factory at nonce would
// produce, so every asset gets a distinct, reproducible address.
type CreateAddressDeployer struct{}

func (CreateAddressDeployer) Deploy(_ context.Context, factory common.Address, nonce uint64, _ model.TokenCreationParams) (common.Address, error) {
	return crypto.CreateAddress(factory, nonce), nil
}
