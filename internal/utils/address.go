package utils

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NormalizeAddress lowercases an EVM address and ensures the 0x prefix so
// addresses compare equal regardless of checksum casing.
func NormalizeAddress(address string) string {
	if address == "" {
		return ""
	}
	addr := strings.ToLower(address)
	if !strings.HasPrefix(addr, "0x") {
		addr = "0x" + addr
	}
	return addr
}

// SameAddress reports whether two hex addresses refer to the same account,
// ignoring checksum casing.
func SameAddress(a, b string) bool {
	return NormalizeAddress(a) == NormalizeAddress(b)
}

// ValidateAddress rejects anything that is not a 20-byte hex address.
func ValidateAddress(address string) error {
	if !common.IsHexAddress(address) {
		return fmt.Errorf("invalid address: %s", address)
	}
	return nil
}
