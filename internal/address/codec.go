// Package address validates and normalizes chain-specific wallet addresses.
package address

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
)

// Validate reports whether address is well-formed for the chain. Unknown
// chains are invalid regardless of address shape.
func Validate(address, chain string) bool {
	switch chain {
	case "base":
		return validEVM(address)
	case "solana":
		return validSolana(address)
	default:
		return false
	}
}

func validEVM(address string) bool {
	if !strings.HasPrefix(address, "0x") || len(address) != 42 {
		return false
	}
	return common.IsHexAddress(address)
}

func validSolana(address string) bool {
	if len(address) < 32 || len(address) > 44 {
		return false
	}
	// A real decode doubles as the base58-alphabet check.
	_, err := base58.Decode(address)
	return err == nil
}

// Normalize lower-cases EVM addresses; Solana addresses are case-sensitive
// and pass through unchanged.
func Normalize(address, chain string) string {
	if chain == "solana" {
		return address
	}
	return strings.ToLower(address)
}

// PadTopic left-pads an EVM address into a 32-byte topic value for log filters.
func PadTopic(address string) string {
	body := strings.ToLower(strings.TrimPrefix(address, "0x"))
	if len(body) >= 64 {
		return "0x" + body
	}
	return "0x" + strings.Repeat("0", 64-len(body)) + body
}
