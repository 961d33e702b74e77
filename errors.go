package intents

import (
	"errors"
	"fmt"
	"math/big"
)

// Standard intents error definitions.

var (
	// ErrInvalidBatchInput indicates a malformed chain batch input (missing,
	// negative, or otherwise uncoercible chainId/recentBlock).
	ErrInvalidBatchInput = errors.New("intents: invalid chain batch input")

	// ErrEmptyBatches indicates an attempt to build an intent digest over an
	// empty batch list. A vacuous intent is never silently signable.
	ErrEmptyBatches = errors.New("intents: empty chain batch list")

	// ErrInvalidKey indicates an invalid private key.
	ErrInvalidKey = errors.New("intents: invalid private key")

	// ErrInvalidKeystore indicates an invalid keystore file.
	ErrInvalidKeystore = errors.New("intents: invalid keystore file")

	// ErrInvalidMnemonic indicates an invalid mnemonic phrase.
	ErrInvalidMnemonic = errors.New("intents: invalid mnemonic phrase")

	// ErrSigningFailed indicates intent or authorization signing failed.
	ErrSigningFailed = errors.New("intents: signing failed")

	// ErrInvalidSignature indicates a signature that does not recover to the
	// expected account.
	ErrInvalidSignature = errors.New("intents: invalid signature")

	// ErrMissingAuthorization indicates an execution attempt without the full
	// set of delegated authorizations it requires. Both the user and the
	// executing solver must carry a chain-scoped authorization; omitting
	// either one produces an execution with no delegated code and is rejected
	// up front rather than left to revert on chain.
	ErrMissingAuthorization = errors.New("intents: missing delegated authorization")

	// ErrAuthorizationChainMismatch indicates an authorization scoped to a
	// different chain than the one being executed.
	ErrAuthorizationChainMismatch = errors.New("intents: authorization chain mismatch")

	// ErrStaleAuthorization indicates an authorization whose nonce has been
	// superseded on chain; detected at submission time, never retried.
	ErrStaleAuthorization = errors.New("intents: stale authorization nonce")

	// ErrWatermarkTimeout indicates the chain head did not pass the batch's
	// recentBlock watermark within the configured deadline.
	ErrWatermarkTimeout = errors.New("intents: watermark wait timed out")

	// ErrExecutionReverted indicates a non-success receipt from the delegate
	// execute transaction. There is no automatic rollback; sibling chains may
	// have completed independently.
	ErrExecutionReverted = errors.New("intents: execution reverted")

	// ErrRelayUnavailable indicates the relay service could not be reached.
	ErrRelayUnavailable = errors.New("intents: relay service unavailable")

	// ErrRelayRejected indicates a non-2xx relay response.
	ErrRelayRejected = errors.New("intents: relay rejected submission")

	// ErrUnknownChain indicates a chain id with no configured client or
	// registry entry.
	ErrUnknownChain = errors.New("intents: unknown chain")

	// ErrNoClient indicates an orchestrator leg for a chain with no chain
	// client and no relay configured.
	ErrNoClient = errors.New("intents: no client configured for chain")
)

// LegError wraps a failure from one chain's execution leg with the chain and
// state it occurred in. Other legs of the same intent run independently and
// may have succeeded; callers inspect each leg's result.
type LegError struct {
	ChainID *big.Int
	State   LegState
	Err     error
}

func (e *LegError) Error() string {
	return fmt.Sprintf("intents: leg for chain %s failed in state %s: %v", e.ChainID, e.State, e.Err)
}

func (e *LegError) Unwrap() error {
	return e.Err
}
