package intents

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func addrCall(addr string, value int64, data []byte) Call {
	return Call{
		To:    common.HexToAddress(addr),
		Value: big.NewInt(value),
		Data:  data,
	}
}

// scenarioInputs builds the canonical two-chain fixture: chain A sends 100 wei
// to 0xAA.. with empty calldata behind watermark 10, chain B calls 0xBB..
// with calldata 0x1234 behind watermark 20.
func scenarioInputs() []ChainBatchInput {
	return []ChainBatchInput{
		{
			ChainID:     big.NewInt(1),
			Calls:       []Call{addrCall("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", 100, nil)},
			RecentBlock: big.NewInt(10),
		},
		{
			ChainID:     big.NewInt(8453),
			Calls:       []Call{addrCall("0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB", 0, []byte{0x12, 0x34})},
			RecentBlock: big.NewInt(20),
		},
	}
}

func TestHashChainBatches_Deterministic(t *testing.T) {
	first, err := HashChainBatches(scenarioInputs())
	if err != nil {
		t.Fatalf("HashChainBatches failed: %v", err)
	}
	second, err := HashChainBatches(scenarioInputs())
	if err != nil {
		t.Fatalf("HashChainBatches failed: %v", err)
	}

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 batches, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Hash != second[i].Hash {
			t.Errorf("batch %d: hashes differ across identical inputs: %s vs %s", i, first[i].Hash.Hex(), second[i].Hash.Hex())
		}
	}
}

func TestHashChainBatches_DistinctHashes(t *testing.T) {
	batches, err := HashChainBatches(scenarioInputs())
	if err != nil {
		t.Fatalf("HashChainBatches failed: %v", err)
	}
	if batches[0].Hash == batches[1].Hash {
		t.Errorf("distinct batches produced identical hash %s", batches[0].Hash.Hex())
	}
}

func TestHashChainBatches_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ChainBatchInput)
	}{
		{
			name:   "nil chainId",
			mutate: func(in *ChainBatchInput) { in.ChainID = nil },
		},
		{
			name:   "negative chainId",
			mutate: func(in *ChainBatchInput) { in.ChainID = big.NewInt(-1) },
		},
		{
			name:   "nil recentBlock",
			mutate: func(in *ChainBatchInput) { in.RecentBlock = nil },
		},
		{
			name:   "negative recentBlock",
			mutate: func(in *ChainBatchInput) { in.RecentBlock = big.NewInt(-10) },
		},
		{
			name:   "nil call value",
			mutate: func(in *ChainBatchInput) { in.Calls[0].Value = nil },
		},
		{
			name:   "negative call value",
			mutate: func(in *ChainBatchInput) { in.Calls[0].Value = big.NewInt(-100) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := scenarioInputs()[0]
			tt.mutate(&input)

			if _, err := HashChainBatches([]ChainBatchInput{input}); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestHashChainBatches_CommitmentImmutableAgainstInputMutation(t *testing.T) {
	inputs := scenarioInputs()
	batches, err := HashChainBatches(inputs)
	if err != nil {
		t.Fatalf("HashChainBatches failed: %v", err)
	}

	// Mutating the caller's input after hashing must not change what the
	// batch committed to.
	inputs[1].Calls[0].Data[0] = 0xFF
	inputs[1].ChainID.SetInt64(999)

	rehashed, err := HashChainBatches([]ChainBatchInput{{
		ChainID:     batches[1].ChainID,
		Calls:       batches[1].Calls,
		RecentBlock: batches[1].RecentBlock,
	}})
	if err != nil {
		t.Fatalf("rehash failed: %v", err)
	}
	if rehashed[0].Hash != batches[1].Hash {
		t.Errorf("batch hash diverged from its committed triple: %s vs %s", rehashed[0].Hash.Hex(), batches[1].Hash.Hex())
	}
	if !bytes.Equal(batches[1].Calls[0].Data, []byte{0x12, 0x34}) {
		t.Errorf("batch calldata mutated through input aliasing: %x", batches[1].Calls[0].Data)
	}
}

func TestHashChainBatches_EmptyCallList(t *testing.T) {
	batches, err := HashChainBatches([]ChainBatchInput{{
		ChainID:     big.NewInt(1),
		Calls:       nil,
		RecentBlock: big.NewInt(0),
	}})
	if err != nil {
		t.Fatalf("HashChainBatches failed on empty call list: %v", err)
	}
	if batches[0].Hash == (common.Hash{}) {
		t.Error("empty call list hashed to the zero hash")
	}
}
