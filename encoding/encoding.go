// Package encoding provides wire-format helpers for the relay API: 0x-prefixed
// hex for byte strings and decimal strings for unbounded integers.
package encoding

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// BytesToHex encodes bytes as a 0x-prefixed hex string. Empty and nil input
// both encode as "0x".
func BytesToHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// HexToBytes decodes a hex string with or without a 0x prefix.
//
// Returns an error if the string contains non-hex characters or has an odd
// number of digits.
func HexToBytes(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string: %w", err)
	}
	return b, nil
}

// BigToDec renders a big integer as a decimal string, the relay's wire form
// for uint256 fields. A nil value renders as "0".
func BigToDec(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// DecToBig parses a base-10 integer string.
//
// Returns an error for empty input, non-decimal characters, or a negative
// value; relay integer fields are all unsigned.
func DecToBig(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("empty decimal string")
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid decimal string: %q", s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("negative value not allowed: %q", s)
	}
	return v, nil
}

// Uint64ToDec renders a uint64 as a decimal string.
func Uint64ToDec(v uint64) string {
	return new(big.Int).SetUint64(v).String()
}

// DecToUint64 parses a base-10 string into a uint64.
//
// Returns an error if the value overflows 64 bits or fails DecToBig checks.
func DecToUint64(s string) (uint64, error) {
	v, err := DecToBig(s)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("value overflows uint64: %q", s)
	}
	return v.Uint64(), nil
}
