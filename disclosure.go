package intents

import "math/big"

// DiscloseForChain produces the chain-scoped view of a batch set: the entry
// for chainID keeps its calls, every other entry has its calls redacted to an
// empty slice. Hash, ChainID, and RecentBlock are never modified, so the
// intent digest over the disclosed set equals the digest over the original
// for any chain choice. The executing chain observes only its own calldata
// plus 32-byte commitments for every other chain, yet the one signature
// verifies everywhere.
//
// The disclosed view is ephemeral: it is recomputed fresh per chain at
// execution time and never persisted.
func DiscloseForChain(batches []ChainBatch, chainID *big.Int) []ChainBatch {
	disclosed := make([]ChainBatch, len(batches))
	for i, batch := range batches {
		disclosed[i] = ChainBatch{
			Hash:        batch.Hash,
			ChainID:     batch.ChainID,
			RecentBlock: batch.RecentBlock,
			Calls:       []Call{},
		}
		if chainID != nil && batch.ChainID != nil && batch.ChainID.Cmp(chainID) == 0 {
			disclosed[i].Calls = batch.Calls
		}
	}
	return disclosed
}
