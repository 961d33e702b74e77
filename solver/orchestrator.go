// Package solver drives per-chain execution of a signed intent. Each chain's
// leg runs an independent state machine — wait for the block watermark,
// disclose, submit, confirm — with no coordination between chains. The
// protocol promises nothing beyond the shared signature: a solver can land
// one leg and fail (or abandon) another, and partial completion is a valid,
// caller-visible terminal outcome, not a condition this package hides or
// compensates for.
package solver

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	intents "github.com/mark3labs/intents-go"
	"github.com/mark3labs/intents-go/relay"
	"go.uber.org/zap"
)

// ChainClient is the per-chain capability surface the orchestrator consumes:
// head queries for the watermark wait, self-execute submission, and receipt
// polling. evm.Client implements it.
type ChainClient interface {
	ChainID() *big.Int
	BlockNumber(ctx context.Context) (uint64, error)
	SubmitExecute(ctx context.Context, auth intents.IntentAuthorization, auths intents.RequiredAuthorizations) (common.Hash, error)
	WaitReceipt(ctx context.Context, txHash common.Hash) (bool, error)
}

// Leg is one chain's share of a signed intent: the full batch set, the
// intent signature, and the delegated authorizations this leg requires.
// Disclosure happens inside the orchestrator, fresh at execution time.
type Leg struct {
	ChainID   *big.Int
	Batches   []intents.ChainBatch
	Signature []byte
	Auths     intents.RequiredAuthorizations
}

// LegResult is the terminal outcome of one leg.
type LegResult struct {
	ChainID *big.Int
	State   intents.LegState
	TxHash  common.Hash

	// IntentID is set when submission went through a relay.
	IntentID string

	// Err is non-nil iff State is LegStateFailed.
	Err error
}

// Orchestrator executes intent legs against registered chain clients.
type Orchestrator struct {
	clients  map[string]ChainClient
	relay    *relay.Client
	timeouts intents.TimeoutConfig
	log      *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// New creates an orchestrator. At least one chain client is required.
func New(opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		clients:  make(map[string]ChainClient),
		timeouts: intents.DefaultTimeouts,
		log:      zap.NewNop(),
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	if len(o.clients) == 0 {
		return nil, intents.ErrNoClient
	}
	return o, nil
}

// WithClient registers a chain client under its own chain id.
func WithClient(client ChainClient) Option {
	return func(o *Orchestrator) error {
		chainID := client.ChainID()
		if chainID == nil || chainID.Sign() < 0 {
			return intents.ErrUnknownChain
		}
		o.clients[chainID.String()] = client
		return nil
	}
}

// WithRelay routes submissions through a relay service instead of sending
// transactions directly. Watermark waits and receipt confirmation still use
// the chain clients.
func WithRelay(client *relay.Client) Option {
	return func(o *Orchestrator) error {
		o.relay = client
		return nil
	}
}

// WithTimeouts overrides the default phase timeouts.
func WithTimeouts(cfg intents.TimeoutConfig) Option {
	return func(o *Orchestrator) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		o.timeouts = cfg
		return nil
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *Orchestrator) error {
		if log == nil {
			log = zap.NewNop()
		}
		o.log = log
		return nil
	}
}

// ExecuteAll runs every leg concurrently and returns one result per leg, in
// input order. Legs never coordinate: completion order across chains is
// unconstrained, and a mix of confirmed and failed legs is a legitimate
// outcome the caller must inspect.
func (o *Orchestrator) ExecuteAll(ctx context.Context, legs []Leg) []LegResult {
	results := make([]LegResult, len(legs))

	var wg sync.WaitGroup
	for i, leg := range legs {
		wg.Add(1)
		go func(i int, leg Leg) {
			defer wg.Done()
			results[i] = o.ExecuteLeg(ctx, leg)
		}(i, leg)
	}
	wg.Wait()

	return results
}

// ExecuteLeg runs one chain's state machine to a terminal state. Failures
// are returned in the result, wrapped with the chain and phase they occurred
// in; there is no automatic retry.
func (o *Orchestrator) ExecuteLeg(ctx context.Context, leg Leg) LegResult {
	log := o.log.With(zap.Stringer("chain", leg.ChainID))

	fail := func(state intents.LegState, err error) LegResult {
		log.Warn("leg failed", zap.String("state", state.String()), zap.Error(err))
		return LegResult{
			ChainID: leg.ChainID,
			State:   intents.LegStateFailed,
			Err:     &intents.LegError{ChainID: leg.ChainID, State: state, Err: err},
		}
	}

	client, ok := o.clientFor(leg.ChainID)
	if !ok {
		return fail(intents.LegStateWaitingWatermark, intents.ErrNoClient)
	}
	if err := leg.Auths.Validate(leg.ChainID); err != nil {
		return fail(intents.LegStateWaitingWatermark, err)
	}

	batch, err := legBatch(leg)
	if err != nil {
		return fail(intents.LegStateWaitingWatermark, err)
	}

	log.Info("waiting for watermark", zap.String("recentBlock", batch.RecentBlock.String()))
	if err := o.waitForWatermark(ctx, client, batch.RecentBlock); err != nil {
		return fail(intents.LegStateWaitingWatermark, err)
	}

	// Disclosure is recomputed fresh per chain and never persisted: this
	// chain sees its own calls plus bare 32-byte commitments for the rest.
	payload := intents.IntentAuthorization{
		Signature:    leg.Signature,
		ChainBatches: intents.DiscloseForChain(leg.Batches, leg.ChainID),
	}

	txHash, intentID, err := o.submit(ctx, client, payload, leg.Auths)
	if err != nil {
		return fail(intents.LegStateSubmitting, err)
	}
	log.Info("submitted", zap.Stringer("tx", txHash))

	receiptCtx, cancel := context.WithTimeout(ctx, o.timeouts.ReceiptTimeout)
	defer cancel()

	if _, err := client.WaitReceipt(receiptCtx, txHash); err != nil {
		return fail(intents.LegStateSubmitting, err)
	}

	log.Info("confirmed", zap.Stringer("tx", txHash))
	return LegResult{
		ChainID:  leg.ChainID,
		State:    intents.LegStateConfirmed,
		TxHash:   txHash,
		IntentID: intentID,
	}
}

func (o *Orchestrator) clientFor(chainID *big.Int) (ChainClient, bool) {
	if chainID == nil {
		return nil, false
	}
	client, ok := o.clients[chainID.String()]
	return client, ok
}

// legBatch finds the executing chain's own batch; its recentBlock is the
// watermark the leg waits on.
func legBatch(leg Leg) (intents.ChainBatch, error) {
	for _, batch := range leg.Batches {
		if batch.ChainID != nil && batch.ChainID.Cmp(leg.ChainID) == 0 {
			return batch, nil
		}
	}
	return intents.ChainBatch{}, fmt.Errorf("%w: chain %s has no batch in the intent", intents.ErrUnknownChain, leg.ChainID)
}

// waitForWatermark polls the chain head until it passes recentBlock. The
// watermark gates this leg behind a precondition that typically settles on a
// different chain (a source-side deposit), so the wait is bounded by an
// explicit timeout rather than left open-ended.
func (o *Orchestrator) waitForWatermark(ctx context.Context, client ChainClient, recentBlock *big.Int) error {
	if recentBlock == nil || !recentBlock.IsUint64() {
		return fmt.Errorf("%w: unusable recentBlock %v", intents.ErrInvalidBatchInput, recentBlock)
	}
	watermark := recentBlock.Uint64()

	if o.timeouts.WatermarkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeouts.WatermarkTimeout)
		defer cancel()
	}

	ticker := time.NewTicker(o.timeouts.PollInterval)
	defer ticker.Stop()

	for {
		head, err := client.BlockNumber(ctx)
		if err == nil && head > watermark {
			return nil
		}
		if err != nil {
			o.log.Debug("head query failed, will retry", zap.Error(err))
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: head still at or below %d", intents.ErrWatermarkTimeout, watermark)
			}
			return ctx.Err()
		}
	}
}

func (o *Orchestrator) submit(ctx context.Context, client ChainClient, payload intents.IntentAuthorization, auths intents.RequiredAuthorizations) (common.Hash, string, error) {
	submitCtx, cancel := context.WithTimeout(ctx, o.timeouts.SubmitTimeout)
	defer cancel()

	if o.relay != nil {
		resp, err := o.relay.SubmitTransaction(submitCtx, relay.SubmitRequest{
			Authorizations:      auths.List(),
			IntentAuthorization: payload,
		})
		if err != nil {
			return common.Hash{}, "", err
		}
		// A malformed hash would otherwise decode to zero and send the leg
		// polling receipts for a transaction that cannot exist.
		raw, err := hexutil.Decode(resp.Hash)
		if err != nil || len(raw) != common.HashLength {
			return common.Hash{}, "", fmt.Errorf("%w: malformed transaction hash %q", intents.ErrRelayRejected, resp.Hash)
		}
		return common.BytesToHash(raw), resp.IntentID, nil
	}

	txHash, err := client.SubmitExecute(submitCtx, payload, auths)
	return txHash, "", err
}
