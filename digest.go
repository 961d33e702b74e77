package intents

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// IntentHash aggregates per-batch hashes into the single digest the user
// signs: keccak256 of the ABI-encoded bytes32[] of batch hashes in input
// order. Order is part of the commitment; reordering batches changes the
// digest. An empty batch list is an explicit error rather than a zero hash —
// a vacuous intent must never be signable by accident.
func IntentHash(batches []ChainBatch) (common.Hash, error) {
	if len(batches) == 0 {
		return common.Hash{}, ErrEmptyBatches
	}

	hashes := make([][32]byte, len(batches))
	for i, batch := range batches {
		hashes[i] = batch.Hash
	}

	packed, err := batchHashesArgs.Pack(hashes)
	if err != nil {
		return common.Hash{}, fmt.Errorf("intents: encoding batch hashes: %w", err)
	}
	return crypto.Keccak256Hash(packed), nil
}
