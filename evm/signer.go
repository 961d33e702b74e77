// Package evm implements the two signature domains of the intent protocol for
// Ethereum-compatible chains — the personal-message intent signature and the
// per-chain EIP-7702 delegated-execution authorizations — plus the RPC-backed
// chain client solvers submit through.
package evm

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	intents "github.com/mark3labs/intents-go"
)

// Signer holds one account's key material and produces both intent signatures
// and delegated authorizations. Signers are explicit values passed into every
// operation; there is no process-wide account state.
type Signer struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// SignerOption configures a Signer.
type SignerOption func(*Signer) error

// NewSigner creates a signer from the given options. Exactly one key source
// option is required.
func NewSigner(opts ...SignerOption) (*Signer, error) {
	s := &Signer{}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.privateKey == nil {
		return nil, intents.ErrInvalidKey
	}

	s.address = crypto.PubkeyToAddress(s.privateKey.PublicKey)
	return s, nil
}

// WithPrivateKey sets the private key from a hex string.
func WithPrivateKey(hexKey string) SignerOption {
	return func(s *Signer) error {
		hexKey = strings.TrimPrefix(hexKey, "0x")

		privateKey, err := crypto.HexToECDSA(hexKey)
		if err != nil {
			return intents.ErrInvalidKey
		}

		s.privateKey = privateKey
		return nil
	}
}

// WithECDSAKey sets an already-parsed private key.
func WithECDSAKey(key *ecdsa.PrivateKey) SignerOption {
	return func(s *Signer) error {
		if key == nil {
			return intents.ErrInvalidKey
		}
		s.privateKey = key
		return nil
	}
}

// Address returns the signer's account address.
func (s *Signer) Address() common.Address {
	return s.address
}

// SignIntent signs the 32-byte intent digest as a raw personal message
// (EIP-191, not typed data). This is the single signature the user produces
// for the whole cross-chain batch set; on-chain verification recovers it
// against the user's address on every chain independently.
func (s *Signer) SignIntent(digest common.Hash) ([]byte, error) {
	signature, err := crypto.Sign(accounts.TextHash(digest[:]), s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", intents.ErrSigningFailed, err)
	}

	// Adjust v value for Ethereum (27 or 28).
	signature[64] += 27
	return signature, nil
}

// SignAuthorization signs an EIP-7702 authorization granting temporary
// delegated code execution at this signer's account on one chain, scoped to
// (delegate, chainID, nonce). The nonce must be freshly fetched per signer
// per chain; a superseded nonce is rejected at submission time.
func (s *Signer) SignAuthorization(chainID *big.Int, delegate common.Address, nonce uint64) (*types.SetCodeAuthorization, error) {
	if chainID == nil || chainID.Sign() < 0 {
		return nil, intents.ErrUnknownChain
	}
	id, overflow := uint256.FromBig(chainID)
	if overflow {
		return nil, intents.ErrUnknownChain
	}

	auth, err := types.SignSetCode(s.privateKey, types.SetCodeAuthorization{
		ChainID: *id,
		Address: delegate,
		Nonce:   nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", intents.ErrSigningFailed, err)
	}
	return &auth, nil
}

// RecoverIntentSigner recovers the address that produced an intent signature
// over the given digest.
func RecoverIntentSigner(digest common.Hash, signature []byte) (common.Address, error) {
	if len(signature) != 65 {
		return common.Address{}, intents.ErrInvalidSignature
	}

	sig := append([]byte(nil), signature...)
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash(digest[:]), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", intents.ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
