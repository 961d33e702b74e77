// Package validation provides input validation helpers for intent batch
// construction and signer configuration.
package validation

import (
	"fmt"
	"math/big"
	"regexp"

	intents "github.com/mark3labs/intents-go"
)

// evmAddressRegex matches Ethereum-style addresses (0x followed by 40 hex chars)
var evmAddressRegex = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// ValidateAddress validates the textual form of an EVM address.
func ValidateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("address cannot be empty")
	}
	if !evmAddressRegex.MatchString(address) {
		return fmt.Errorf("invalid EVM address format: %s (expected 0x followed by 40 hex characters)", address)
	}
	return nil
}

// ValidateChainID validates that a chain id is present and non-negative.
func ValidateChainID(chainID *big.Int) error {
	if chainID == nil {
		return fmt.Errorf("chain id cannot be nil")
	}
	if chainID.Sign() < 0 {
		return fmt.Errorf("chain id must be non-negative, got: %s", chainID)
	}
	return nil
}

// ValidateBatchInput checks a pre-commitment batch request: chain id and
// watermark present and non-negative, every call value non-negative. The same
// rules are enforced again inside hashing; this helper lets callers reject
// bad input before assembling a full intent.
func ValidateBatchInput(input intents.ChainBatchInput) error {
	if err := ValidateChainID(input.ChainID); err != nil {
		return err
	}
	if input.RecentBlock == nil {
		return fmt.Errorf("recentBlock cannot be nil")
	}
	if input.RecentBlock.Sign() < 0 {
		return fmt.Errorf("recentBlock must be non-negative, got: %s", input.RecentBlock)
	}
	for i, call := range input.Calls {
		if call.Value == nil {
			return fmt.Errorf("call %d: value cannot be nil", i)
		}
		if call.Value.Sign() < 0 {
			return fmt.Errorf("call %d: value must be non-negative, got: %s", i, call.Value)
		}
	}
	return nil
}
