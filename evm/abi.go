package evm

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	intents "github.com/mark3labs/intents-go"
)

// delegateABIJSON is the delegate contract surface this SDK submits to. The
// shapes must match the on-chain contract exactly: execute takes the user's
// intent signature plus the chain-scoped disclosed batch set.
const delegateABIJSON = `[
	{
		"type": "function",
		"name": "execute",
		"stateMutability": "payable",
		"inputs": [
			{
				"name": "intentAuthorization",
				"type": "tuple",
				"components": [
					{"name": "signature", "type": "bytes"},
					{
						"name": "chainBatches",
						"type": "tuple[]",
						"components": [
							{"name": "hash", "type": "bytes32"},
							{"name": "chainId", "type": "uint256"},
							{
								"name": "calls",
								"type": "tuple[]",
								"components": [
									{"name": "to", "type": "address"},
									{"name": "value", "type": "uint256"},
									{"name": "data", "type": "bytes"}
								]
							},
							{"name": "recentBlock", "type": "uint256"}
						]
					}
				]
			}
		],
		"outputs": []
	}
]`

var delegateABI = mustParseABI(delegateABIJSON)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

// Wire structs mirroring the ABI tuple component names.
type executeCall struct {
	To    common.Address
	Value *big.Int
	Data  []byte
}

type executeBatch struct {
	Hash        [32]byte
	ChainId     *big.Int
	Calls       []executeCall
	RecentBlock *big.Int
}

type executePayload struct {
	Signature    []byte
	ChainBatches []executeBatch
}

// PackExecute ABI-encodes the delegate execute(...) calldata for an intent
// authorization (the user's signature plus a disclosed batch set).
func PackExecute(auth intents.IntentAuthorization) ([]byte, error) {
	if len(auth.Signature) == 0 {
		return nil, fmt.Errorf("%w: missing intent signature", intents.ErrInvalidSignature)
	}

	payload := executePayload{
		Signature:    auth.Signature,
		ChainBatches: make([]executeBatch, len(auth.ChainBatches)),
	}
	for i, batch := range auth.ChainBatches {
		if batch.ChainID == nil || batch.RecentBlock == nil {
			return nil, fmt.Errorf("%w: batch %d has nil fields", intents.ErrInvalidBatchInput, i)
		}
		calls := make([]executeCall, len(batch.Calls))
		for j, call := range batch.Calls {
			value := call.Value
			if value == nil {
				return nil, fmt.Errorf("%w: batch %d call %d has nil value", intents.ErrInvalidBatchInput, i, j)
			}
			calls[j] = executeCall{To: call.To, Value: value, Data: call.Data}
		}
		payload.ChainBatches[i] = executeBatch{
			Hash:        batch.Hash,
			ChainId:     batch.ChainID,
			Calls:       calls,
			RecentBlock: batch.RecentBlock,
		}
	}

	return delegateABI.Pack("execute", payload)
}
