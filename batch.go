package intents

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

// ABI shapes for the batch commitment. These must match the on-chain delegate
// contract exactly: a batch hash is keccak256 of the ABI-encoded tuple
// (uint256 chainId, (address to, uint256 value, bytes data)[] calls,
// uint256 recentBlock), and the intent digest is keccak256 of the encoded
// bytes32[] of batch hashes.
var (
	uint256Type = mustABIType("uint256", nil)
	callsType   = mustABIType("tuple[]", []abi.ArgumentMarshaling{
		{Name: "to", Type: "address"},
		{Name: "value", Type: "uint256"},
		{Name: "data", Type: "bytes"},
	})
	bytes32SliceType = mustABIType("bytes32[]", nil)

	batchArgs = abi.Arguments{
		{Name: "chainId", Type: uint256Type},
		{Name: "calls", Type: callsType},
		{Name: "recentBlock", Type: uint256Type},
	}
	batchHashesArgs = abi.Arguments{
		{Name: "hashes", Type: bytes32SliceType},
	}
)

func mustABIType(t string, components []abi.ArgumentMarshaling) abi.Type {
	typ, err := abi.NewType(t, "", components)
	if err != nil {
		panic(err)
	}
	return typ
}

// HashChainBatches turns raw per-chain call lists into hash-committed batches.
// ChainID and RecentBlock must be non-negative; nil or negative values are a
// validation failure, never coerced to a default. Hashing is pure and
// deterministic: the encoding depends only on declared field order.
func HashChainBatches(inputs []ChainBatchInput) ([]ChainBatch, error) {
	batches := make([]ChainBatch, 0, len(inputs))
	for i, input := range inputs {
		batch, err := hashChainBatch(input)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", i, err)
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

func hashChainBatch(input ChainBatchInput) (ChainBatch, error) {
	chainID, err := coerceUint256(input.ChainID, "chainId")
	if err != nil {
		return ChainBatch{}, err
	}
	recentBlock, err := coerceUint256(input.RecentBlock, "recentBlock")
	if err != nil {
		return ChainBatch{}, err
	}

	calls := make([]Call, len(input.Calls))
	for i, call := range input.Calls {
		value, err := coerceUint256(call.Value, "call value")
		if err != nil {
			return ChainBatch{}, err
		}
		// The batch keeps its own copies so later mutation of the input
		// cannot diverge from the committed hash.
		calls[i] = Call{
			To:    call.To,
			Value: value,
			Data:  append([]byte(nil), call.Data...),
		}
	}

	packed, err := batchArgs.Pack(chainID, calls, recentBlock)
	if err != nil {
		return ChainBatch{}, fmt.Errorf("%w: encoding failed: %v", ErrInvalidBatchInput, err)
	}

	return ChainBatch{
		Hash:        crypto.Keccak256Hash(packed),
		ChainID:     chainID,
		Calls:       calls,
		RecentBlock: recentBlock,
	}, nil
}

// coerceUint256 validates a field destined for a uint256 ABI slot and
// returns a private copy. Nil and negative values are rejected.
func coerceUint256(v *big.Int, field string) (*big.Int, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: %s is nil", ErrInvalidBatchInput, field)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s is negative (%s)", ErrInvalidBatchInput, field, v)
	}
	return new(big.Int).Set(v), nil
}
