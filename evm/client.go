package evm

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/holiman/uint256"
	intents "github.com/mark3labs/intents-go"
	"github.com/mark3labs/intents-go/retry"
)

// defaultGasLimit covers a delegate execute with a small call batch. The
// limit is deployment-tunable via Config.GasLimit.
const defaultGasLimit = 1_000_000

// Config describes how to construct a chain client.
type Config struct {
	// RPCURL is the chain's JSON-RPC endpoint.
	RPCURL string

	// Delegate is the delegate contract activated at participating accounts.
	Delegate common.Address

	// Submitter is the solver-controlled account transactions are sent from.
	Submitter *Signer

	// GasLimit overrides the default execute gas limit when non-zero.
	GasLimit uint64
}

// Client talks to one chain: block height, nonces, self-execute submission,
// and receipt polling. All methods take a context; the client holds no
// per-intent state.
type Client struct {
	eth       *ethclient.Client
	chainID   *big.Int
	delegate  common.Address
	submitter *Signer
	gasLimit  uint64
}

// NewClient dials the configured RPC endpoint and resolves the chain id.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("%w: no RPC URL", intents.ErrUnknownChain)
	}
	if cfg.Submitter == nil {
		return nil, intents.ErrInvalidKey
	}

	eth, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("intents: dialing %s: %w", cfg.RPCURL, err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("intents: resolving chain id: %w", err)
	}

	gasLimit := cfg.GasLimit
	if gasLimit == 0 {
		gasLimit = defaultGasLimit
	}

	return &Client{
		eth:       eth,
		chainID:   chainID,
		delegate:  cfg.Delegate,
		submitter: cfg.Submitter,
		gasLimit:  gasLimit,
	}, nil
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	if c.eth != nil {
		c.eth.Close()
	}
}

// ChainID returns the connected chain's id.
func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// Delegate returns the delegate contract address this client submits against.
func (c *Client) Delegate() common.Address {
	return c.delegate
}

// BlockNumber returns the current chain head height.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.eth.BlockNumber(ctx)
}

// PendingNonce returns the account's next nonce including pending txs.
func (c *Client) PendingNonce(ctx context.Context, addr common.Address) (uint64, error) {
	return c.eth.PendingNonceAt(ctx, addr)
}

// FreshAuthorization fetches the signer's current nonce on this chain and
// signs a delegate authorization against it. When the same account also
// submits the carrying transaction (the solver self-executing), the
// transaction itself consumes the current nonce, so the authorization is
// signed over nonce+1.
func (c *Client) FreshAuthorization(ctx context.Context, signer *Signer, selfSubmit bool) (*types.SetCodeAuthorization, error) {
	nonce, err := c.eth.PendingNonceAt(ctx, signer.Address())
	if err != nil {
		return nil, fmt.Errorf("intents: fetching nonce for %s: %w", signer.Address(), err)
	}
	if selfSubmit {
		nonce++
	}
	return signer.SignAuthorization(c.chainID, c.delegate, nonce)
}

// SubmitExecute packages the disclosed batch set and intent signature as
// delegate execute calldata, attaches the user's and solver's authorizations,
// and submits one EIP-7702 transaction from the solver account to itself.
// Authorization nonces are re-checked against the chain first; a superseded
// nonce fails with ErrStaleAuthorization and is never retried here.
func (c *Client) SubmitExecute(ctx context.Context, auth intents.IntentAuthorization, auths intents.RequiredAuthorizations) (common.Hash, error) {
	if err := auths.Validate(c.chainID); err != nil {
		return common.Hash{}, err
	}
	if err := c.checkAuthorizationNonces(ctx, auths); err != nil {
		return common.Hash{}, err
	}

	calldata, err := PackExecute(auth)
	if err != nil {
		return common.Hash{}, err
	}

	nonce, err := c.eth.PendingNonceAt(ctx, c.submitter.Address())
	if err != nil {
		return common.Hash{}, fmt.Errorf("intents: fetching submitter nonce: %w", err)
	}

	tipCap, feeCap, err := c.suggestFees(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	chainID, overflow := uint256.FromBig(c.chainID)
	if overflow {
		return common.Hash{}, intents.ErrUnknownChain
	}

	// Self-execute: the transaction targets the solver's own account, whose
	// code the authorization list delegates to the execute contract.
	txdata := &types.SetCodeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       c.gasLimit,
		To:        c.submitter.Address(),
		Value:     uint256.NewInt(0),
		Data:      calldata,
		AuthList:  auths.List(),
	}

	tx, err := types.SignNewTx(c.submitter.privateKey, types.LatestSignerForChainID(c.chainID), txdata)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: %v", intents.ErrSigningFailed, err)
	}

	if err := c.eth.SendTransaction(ctx, tx); err != nil {
		return common.Hash{}, fmt.Errorf("intents: sending execute transaction: %w", err)
	}
	return tx.Hash(), nil
}

// checkAuthorizationNonces verifies that each authorization's nonce still
// matches the chain. The solver's own authorization must sit one past its
// current nonce because the carrying transaction consumes one first.
func (c *Client) checkAuthorizationNonces(ctx context.Context, auths intents.RequiredAuthorizations) error {
	for _, auth := range auths.List() {
		authority, err := auth.Authority()
		if err != nil {
			return fmt.Errorf("%w: unrecoverable authority: %v", intents.ErrInvalidSignature, err)
		}

		pending, err := c.eth.PendingNonceAt(ctx, authority)
		if err != nil {
			return fmt.Errorf("intents: fetching nonce for %s: %w", authority, err)
		}

		expected := pending
		if authority == c.submitter.Address() {
			expected = pending + 1
		}
		if auth.Nonce != expected {
			return fmt.Errorf("%w: authority %s signed nonce %d, chain expects %d",
				intents.ErrStaleAuthorization, authority, auth.Nonce, expected)
		}
	}
	return nil
}

func (c *Client) suggestFees(ctx context.Context) (tipCap, feeCap *uint256.Int, err error) {
	tip, err := c.eth.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("intents: suggesting gas tip: %w", err)
	}
	header, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("intents: fetching head: %w", err)
	}

	// feeCap = 2*baseFee + tip, the usual headroom against base fee drift.
	fee := new(big.Int).Mul(header.BaseFee, big.NewInt(2))
	fee.Add(fee, tip)

	tipCap, overflow := uint256.FromBig(tip)
	if overflow {
		return nil, nil, fmt.Errorf("intents: gas tip overflows uint256")
	}
	feeCap, overflow = uint256.FromBig(fee)
	if overflow {
		return nil, nil, fmt.Errorf("intents: gas fee overflows uint256")
	}
	return tipCap, feeCap, nil
}

// WaitReceipt polls for the execute transaction's receipt and reports the
// success flag. Failure receipts map to ErrExecutionReverted; a receipt that
// never appears within the caller's deadline surfaces the polling error.
func (c *Client) WaitReceipt(ctx context.Context, txHash common.Hash) (bool, error) {
	receipt, err := retry.WithRetry(ctx, retry.ReceiptPollConfig,
		func(err error) bool { return errors.Is(err, ethereum.NotFound) },
		func() (*types.Receipt, error) {
			return c.eth.TransactionReceipt(ctx, txHash)
		},
	)
	if err != nil {
		return false, fmt.Errorf("intents: waiting for receipt %s: %w", txHash, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return false, fmt.Errorf("%w: tx %s", intents.ErrExecutionReverted, txHash)
	}
	return true, nil
}
