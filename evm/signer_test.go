package evm

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	intents "github.com/mark3labs/intents-go"
)

// Well-known anvil/hardhat test key.
const testKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

const testKeyAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

func testSigner(t *testing.T) *Signer {
	t.Helper()
	s, err := NewSigner(WithPrivateKey(testKeyHex))
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}
	return s
}

func TestNewSigner(t *testing.T) {
	t.Run("requires a key", func(t *testing.T) {
		if _, err := NewSigner(); !errors.Is(err, intents.ErrInvalidKey) {
			t.Errorf("expected ErrInvalidKey, got %v", err)
		}
	})

	t.Run("derives the address", func(t *testing.T) {
		s := testSigner(t)
		if s.Address() != common.HexToAddress(testKeyAddress) {
			t.Errorf("address = %s, want %s", s.Address().Hex(), testKeyAddress)
		}
	})

	t.Run("rejects malformed hex key", func(t *testing.T) {
		if _, err := NewSigner(WithPrivateKey("not-a-key")); !errors.Is(err, intents.ErrInvalidKey) {
			t.Errorf("expected ErrInvalidKey, got %v", err)
		}
	})

	t.Run("accepts 0x prefix", func(t *testing.T) {
		s, err := NewSigner(WithPrivateKey("0x" + testKeyHex))
		if err != nil {
			t.Fatalf("NewSigner failed: %v", err)
		}
		if s.Address() != common.HexToAddress(testKeyAddress) {
			t.Errorf("address = %s", s.Address().Hex())
		}
	})

	t.Run("accepts parsed key", func(t *testing.T) {
		key, err := crypto.HexToECDSA(testKeyHex)
		if err != nil {
			t.Fatal(err)
		}
		s, err := NewSigner(WithECDSAKey(key))
		if err != nil {
			t.Fatalf("NewSigner failed: %v", err)
		}
		if s.Address() != common.HexToAddress(testKeyAddress) {
			t.Errorf("address = %s", s.Address().Hex())
		}
	})
}

func TestSignIntent_Recovers(t *testing.T) {
	s := testSigner(t)
	digest := crypto.Keccak256Hash([]byte("intent digest"))

	sig, err := s.SignIntent(digest)
	if err != nil {
		t.Fatalf("SignIntent failed: %v", err)
	}
	if len(sig) != 65 {
		t.Fatalf("signature length = %d, want 65", len(sig))
	}
	if v := sig[64]; v != 27 && v != 28 {
		t.Errorf("v = %d, want 27 or 28", v)
	}

	recovered, err := RecoverIntentSigner(digest, sig)
	if err != nil {
		t.Fatalf("RecoverIntentSigner failed: %v", err)
	}
	if recovered != s.Address() {
		t.Errorf("recovered %s, want %s", recovered.Hex(), s.Address().Hex())
	}
}

func TestSignIntent_DigestBinding(t *testing.T) {
	s := testSigner(t)

	sig, err := s.SignIntent(crypto.Keccak256Hash([]byte("digest A")))
	if err != nil {
		t.Fatalf("SignIntent failed: %v", err)
	}

	// A signature over one digest must not verify against another.
	recovered, err := RecoverIntentSigner(crypto.Keccak256Hash([]byte("digest B")), sig)
	if err == nil && recovered == s.Address() {
		t.Error("signature verified against a different digest")
	}
}

func TestRecoverIntentSigner_MalformedSignature(t *testing.T) {
	digest := crypto.Keccak256Hash([]byte("digest"))
	if _, err := RecoverIntentSigner(digest, []byte{0x01, 0x02}); !errors.Is(err, intents.ErrInvalidSignature) {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestSignAuthorization(t *testing.T) {
	s := testSigner(t)
	delegate := common.HexToAddress("0xDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDD")

	auth, err := s.SignAuthorization(big.NewInt(8453), delegate, 7)
	if err != nil {
		t.Fatalf("SignAuthorization failed: %v", err)
	}

	if !auth.ChainID.Eq(uint256.NewInt(8453)) {
		t.Errorf("chain id = %s", auth.ChainID.String())
	}
	if auth.Address != delegate {
		t.Errorf("delegate = %s", auth.Address.Hex())
	}
	if auth.Nonce != 7 {
		t.Errorf("nonce = %d", auth.Nonce)
	}

	authority, err := auth.Authority()
	if err != nil {
		t.Fatalf("Authority failed: %v", err)
	}
	if authority != s.Address() {
		t.Errorf("authority %s, want %s", authority.Hex(), s.Address().Hex())
	}
}

func TestSignAuthorization_InvalidChain(t *testing.T) {
	s := testSigner(t)
	delegate := common.HexToAddress("0xDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDD")

	if _, err := s.SignAuthorization(nil, delegate, 0); !errors.Is(err, intents.ErrUnknownChain) {
		t.Errorf("nil chain id: expected ErrUnknownChain, got %v", err)
	}
	if _, err := s.SignAuthorization(big.NewInt(-1), delegate, 0); !errors.Is(err, intents.ErrUnknownChain) {
		t.Errorf("negative chain id: expected ErrUnknownChain, got %v", err)
	}
}
