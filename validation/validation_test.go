package validation

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	intents "github.com/mark3labs/intents-go"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{"valid checksummed", "0x209693Bc6afc0C5328bA36FaF03C514EF312287C", false},
		{"valid lowercase", "0x209693bc6afc0c5328ba36faf03c514ef312287c", false},
		{"empty", "", true},
		{"missing prefix", "209693Bc6afc0C5328bA36FaF03C514EF312287C", true},
		{"too short", "0x1234", true},
		{"non-hex", "0xZZ9693Bc6afc0C5328bA36FaF03C514EF312287C", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.address)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAddress(%q) error = %v, wantErr %v", tt.address, err, tt.wantErr)
			}
		})
	}
}

func TestValidateChainID(t *testing.T) {
	if err := ValidateChainID(big.NewInt(8453)); err != nil {
		t.Errorf("valid chain id rejected: %v", err)
	}
	if err := ValidateChainID(big.NewInt(0)); err != nil {
		t.Errorf("zero chain id rejected: %v", err)
	}
	if err := ValidateChainID(nil); err == nil {
		t.Error("nil chain id accepted")
	}
	if err := ValidateChainID(big.NewInt(-1)); err == nil {
		t.Error("negative chain id accepted")
	}
}

func TestValidateBatchInput(t *testing.T) {
	valid := func() intents.ChainBatchInput {
		return intents.ChainBatchInput{
			ChainID:     big.NewInt(1),
			RecentBlock: big.NewInt(100),
			Calls: []intents.Call{{
				To:    common.HexToAddress("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"),
				Value: big.NewInt(1),
			}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*intents.ChainBatchInput)
		wantErr bool
	}{
		{"valid", func(*intents.ChainBatchInput) {}, false},
		{"no calls is valid", func(in *intents.ChainBatchInput) { in.Calls = nil }, false},
		{"nil chain id", func(in *intents.ChainBatchInput) { in.ChainID = nil }, true},
		{"nil recentBlock", func(in *intents.ChainBatchInput) { in.RecentBlock = nil }, true},
		{"negative recentBlock", func(in *intents.ChainBatchInput) { in.RecentBlock = big.NewInt(-1) }, true},
		{"nil call value", func(in *intents.ChainBatchInput) { in.Calls[0].Value = nil }, true},
		{"negative call value", func(in *intents.ChainBatchInput) { in.Calls[0].Value = big.NewInt(-1) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid()
			tt.mutate(&input)
			err := ValidateBatchInput(input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBatchInput() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
