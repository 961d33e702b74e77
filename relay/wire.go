package relay

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	intents "github.com/mark3labs/intents-go"
	"github.com/mark3labs/intents-go/encoding"
)

// The relay API serializes every unbounded integer as a decimal string and
// every byte string as 0x-prefixed hex. These wire structs are the only
// place that format lives.

type wireCall struct {
	To    string `json:"to"`
	Value string `json:"value"`
	Data  string `json:"data"`
}

type wireBatch struct {
	Hash        string     `json:"hash"`
	ChainID     string     `json:"chainId"`
	Calls       []wireCall `json:"calls"`
	RecentBlock string     `json:"recentBlock"`
}

type wireAuthorization struct {
	Address   string `json:"address"`
	ChainID   string `json:"chainId"`
	Nonce     string `json:"nonce"`
	Signature string `json:"signature"`
}

type wireIntentAuthorization struct {
	Signature    string      `json:"signature"`
	ChainBatches []wireBatch `json:"chainBatches"`
}

type wireSubmitRequest struct {
	Authorization       []wireAuthorization     `json:"authorization"`
	IntentAuthorization wireIntentAuthorization `json:"intentAuthorization"`
}

// SubmitRequest is a fully-assembled execution package for one chain:
// the delegated authorizations plus the signed, disclosed batch set.
type SubmitRequest struct {
	// Authorizations carries the EIP-7702 authorizations, user first.
	Authorizations []types.SetCodeAuthorization

	// IntentAuthorization is the intent signature and the batch set disclosed
	// for the executing chain.
	IntentAuthorization intents.IntentAuthorization
}

// SubmitResponse is the relay's acknowledgement of an accepted submission.
type SubmitResponse struct {
	// Hash is the transaction hash the relay broadcast.
	Hash string `json:"hash"`

	// IntentID is the relay's identifier for the intent.
	IntentID string `json:"intentId"`
}

// MarshalJSON renders the request in the relay wire format.
func (r SubmitRequest) MarshalJSON() ([]byte, error) {
	out := wireSubmitRequest{
		Authorization: make([]wireAuthorization, len(r.Authorizations)),
		IntentAuthorization: wireIntentAuthorization{
			Signature:    encoding.BytesToHex(r.IntentAuthorization.Signature),
			ChainBatches: make([]wireBatch, len(r.IntentAuthorization.ChainBatches)),
		},
	}

	for i, auth := range r.Authorizations {
		out.Authorization[i] = wireAuthorization{
			Address:   auth.Address.Hex(),
			ChainID:   auth.ChainID.Dec(),
			Nonce:     encoding.Uint64ToDec(auth.Nonce),
			Signature: encoding.BytesToHex(authorizationSignature(auth)),
		}
	}

	for i, batch := range r.IntentAuthorization.ChainBatches {
		calls := make([]wireCall, len(batch.Calls))
		for j, call := range batch.Calls {
			calls[j] = wireCall{
				To:    call.To.Hex(),
				Value: encoding.BigToDec(call.Value),
				Data:  encoding.BytesToHex(call.Data),
			}
		}
		out.IntentAuthorization.ChainBatches[i] = wireBatch{
			Hash:        batch.Hash.Hex(),
			ChainID:     encoding.BigToDec(batch.ChainID),
			Calls:       calls,
			RecentBlock: encoding.BigToDec(batch.RecentBlock),
		}
	}

	return json.Marshal(out)
}

// UnmarshalJSON parses the relay wire format back into the request.
func (r *SubmitRequest) UnmarshalJSON(data []byte) error {
	var in wireSubmitRequest
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	r.Authorizations = make([]types.SetCodeAuthorization, len(in.Authorization))
	for i, auth := range in.Authorization {
		parsed, err := parseWireAuthorization(auth)
		if err != nil {
			return fmt.Errorf("authorization %d: %w", i, err)
		}
		r.Authorizations[i] = parsed
	}

	sig, err := encoding.HexToBytes(in.IntentAuthorization.Signature)
	if err != nil {
		return fmt.Errorf("intent signature: %w", err)
	}
	r.IntentAuthorization = intents.IntentAuthorization{
		Signature:    sig,
		ChainBatches: make([]intents.ChainBatch, len(in.IntentAuthorization.ChainBatches)),
	}

	for i, batch := range in.IntentAuthorization.ChainBatches {
		parsed, err := parseWireBatch(batch)
		if err != nil {
			return fmt.Errorf("chain batch %d: %w", i, err)
		}
		r.IntentAuthorization.ChainBatches[i] = parsed
	}
	return nil
}

// authorizationSignature flattens an authorization's signature values into
// the 65-byte r || s || yParity form the relay expects.
func authorizationSignature(auth types.SetCodeAuthorization) []byte {
	sig := make([]byte, 65)
	r := auth.R.Bytes32()
	s := auth.S.Bytes32()
	copy(sig[:32], r[:])
	copy(sig[32:64], s[:])
	sig[64] = auth.V
	return sig
}

func parseWireAuthorization(in wireAuthorization) (types.SetCodeAuthorization, error) {
	chainID, err := encoding.DecToBig(in.ChainID)
	if err != nil {
		return types.SetCodeAuthorization{}, fmt.Errorf("chainId: %w", err)
	}
	id, overflow := uint256.FromBig(chainID)
	if overflow {
		return types.SetCodeAuthorization{}, fmt.Errorf("chainId overflows uint256: %s", in.ChainID)
	}

	nonce, err := encoding.DecToUint64(in.Nonce)
	if err != nil {
		return types.SetCodeAuthorization{}, fmt.Errorf("nonce: %w", err)
	}

	sig, err := encoding.HexToBytes(in.Signature)
	if err != nil {
		return types.SetCodeAuthorization{}, fmt.Errorf("signature: %w", err)
	}
	if len(sig) != 65 {
		return types.SetCodeAuthorization{}, fmt.Errorf("signature length %d, want 65", len(sig))
	}

	auth := types.SetCodeAuthorization{
		ChainID: *id,
		Address: common.HexToAddress(in.Address),
		Nonce:   nonce,
		V:       sig[64],
	}
	auth.R.SetBytes(sig[:32])
	auth.S.SetBytes(sig[32:64])
	return auth, nil
}

func parseWireBatch(in wireBatch) (intents.ChainBatch, error) {
	chainID, err := encoding.DecToBig(in.ChainID)
	if err != nil {
		return intents.ChainBatch{}, fmt.Errorf("chainId: %w", err)
	}
	recentBlock, err := encoding.DecToBig(in.RecentBlock)
	if err != nil {
		return intents.ChainBatch{}, fmt.Errorf("recentBlock: %w", err)
	}

	batch := intents.ChainBatch{
		Hash:        common.HexToHash(in.Hash),
		ChainID:     chainID,
		RecentBlock: recentBlock,
		Calls:       make([]intents.Call, len(in.Calls)),
	}
	for i, call := range in.Calls {
		value, err := encoding.DecToBig(call.Value)
		if err != nil {
			return intents.ChainBatch{}, fmt.Errorf("call %d value: %w", i, err)
		}
		data, err := encoding.HexToBytes(call.Data)
		if err != nil {
			return intents.ChainBatch{}, fmt.Errorf("call %d data: %w", i, err)
		}
		batch.Calls[i] = intents.Call{
			To:    common.HexToAddress(call.To),
			Value: value,
			Data:  data,
		}
	}
	return batch, nil
}
