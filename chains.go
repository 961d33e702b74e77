// Package intents implements a cross-chain intent commitment and
// selective-disclosure execution protocol. A user signs a single digest
// authorizing an ordered set of call batches spread across multiple chains;
// an independent solver then executes each chain's batch separately,
// revealing only that chain's calldata, using EIP-7702 delegated
// authorizations and block-height watermarks to sequence execution.
//
// The root package holds the pure protocol core: batch hashing, digest
// aggregation, and the disclosure selector. Signing lives in the evm
// subpackage, orchestration in solver, and relay submission in relay.
package intents

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ChainConfig describes one chain an intent may touch.
type ChainConfig struct {
	// ChainID is the EIP-155 chain id.
	ChainID *big.Int

	// Name is a short human-readable identifier (e.g., "base-sepolia").
	Name string

	// RPCURL is the JSON-RPC endpoint used by the chain client.
	RPCURL string

	// DelegateAddress is the delegate contract whose code is activated at
	// participating accounts via EIP-7702 authorizations. Deployment-specific.
	DelegateAddress common.Address
}

// knownChains maps names to chain ids for the networks this SDK is commonly
// deployed against. The registry carries no delegate addresses; those are
// deployment configuration.
var knownChains = map[string]int64{
	"ethereum":     1,
	"sepolia":      11155111,
	"base":         8453,
	"base-sepolia": 84532,
	"optimism":     10,
	"arbitrum":     42161,
}

// ChainIDByName returns the chain id for a known network name, or nil if the
// name is not registered.
func ChainIDByName(name string) *big.Int {
	id, ok := knownChains[name]
	if !ok {
		return nil
	}
	return big.NewInt(id)
}

// ChainNameByID returns the registered name for a chain id, or "" when the
// id is not a known network.
func ChainNameByID(chainID *big.Int) string {
	if chainID == nil {
		return ""
	}
	for name, id := range knownChains {
		if chainID.IsInt64() && chainID.Int64() == id {
			return name
		}
	}
	return ""
}
