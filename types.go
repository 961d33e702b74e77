package intents

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

// Call is a single contract invocation inside a chain batch.
type Call struct {
	// To is the target contract address.
	To common.Address

	// Value is the native token amount in wei.
	Value *big.Int

	// Data is the ABI-encoded calldata.
	Data []byte
}

// ChainBatchInput is the pre-commitment request for one chain's calls.
type ChainBatchInput struct {
	// ChainID identifies the chain the calls execute on.
	ChainID *big.Int

	// Calls are the invocations to commit, in execution order.
	Calls []Call

	// RecentBlock is the liveness watermark: execution is eligible only once
	// the chain head exceeds it.
	RecentBlock *big.Int
}

// ChainBatch is the hash-committed, chain-scoped unit of an intent.
// Hash commits to (ChainID, Calls, RecentBlock); the batch is logically
// immutable once hashed.
type ChainBatch struct {
	// Hash is keccak256 of the ABI-encoded (chainId, calls, recentBlock) tuple.
	Hash common.Hash

	// ChainID identifies the chain the batch executes on.
	ChainID *big.Int

	// Calls are the committed invocations. A disclosed view for another chain
	// carries an empty slice here while Hash stays unchanged.
	Calls []Call

	// RecentBlock is the per-chain liveness watermark.
	RecentBlock *big.Int
}

// IntentAuthorization is the payload handed to the delegate contract's
// execute: the user's intent signature plus the (possibly disclosed) batch set.
type IntentAuthorization struct {
	// Signature is the personal-message signature over the intent digest.
	Signature []byte

	// ChainBatches is the batch set, disclosed for the executing chain.
	ChainBatches []ChainBatch
}

// RequiredAuthorizations names the delegated authorizations one execution leg
// needs. Both are mandatory: the solver's transaction runs the delegate logic
// at its own account, and the user-scoped portion needs delegated bytecode
// active at the user's account (the self-execute pattern).
type RequiredAuthorizations struct {
	// User is the user's chain-scoped EIP-7702 authorization.
	User *types.SetCodeAuthorization

	// Solver is the executing solver's own authorization on the same chain.
	Solver *types.SetCodeAuthorization
}

// Validate checks that both authorizations are present and scoped to chainID.
func (r RequiredAuthorizations) Validate(chainID *big.Int) error {
	if r.User == nil || r.Solver == nil {
		return ErrMissingAuthorization
	}
	if chainID == nil {
		return ErrUnknownChain
	}
	want, overflow := uint256.FromBig(chainID)
	if overflow {
		return ErrUnknownChain
	}
	if !r.User.ChainID.Eq(want) || !r.Solver.ChainID.Eq(want) {
		return ErrAuthorizationChainMismatch
	}
	return nil
}

// List returns the authorizations in submission order (user first).
func (r RequiredAuthorizations) List() []types.SetCodeAuthorization {
	out := make([]types.SetCodeAuthorization, 0, 2)
	if r.User != nil {
		out = append(out, *r.User)
	}
	if r.Solver != nil {
		out = append(out, *r.Solver)
	}
	return out
}

// LegState is the orchestration state of one chain's execution leg.
type LegState string

const (
	// LegStateWaitingWatermark means the leg is polling the chain head until
	// it passes the batch's recentBlock.
	LegStateWaitingWatermark LegState = "waiting_watermark"

	// LegStateSubmitting means the disclosed batch set is being packaged and
	// submitted as a self-execute transaction.
	LegStateSubmitting LegState = "submitting"

	// LegStateConfirmed means the execute transaction succeeded.
	LegStateConfirmed LegState = "confirmed"

	// LegStateFailed means the leg terminated without a successful receipt.
	LegStateFailed LegState = "failed"
)

func (s LegState) String() string {
	return string(s)
}
