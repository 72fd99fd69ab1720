package accounts

import (
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/hedeqiang/pulse/internal/hex"
)

// IsHexAddress reports whether s is a "0x"-prefixed 20-byte hex address.
func IsHexAddress(s string) bool {
	if len(s) != 42 || (s[:2] != "0x" && s[:2] != "0X") {
		return false
	}
	b, err := hex.Decode(s)
	return err == nil && len(b) == 20
}

// Checksum returns the EIP-55 mixed-case encoding of a hex address: each
// alphabetic digit is uppercased when the corresponding nibble of
// keccak256(lowercase address body) is 8 or higher.
func Checksum(address string) (string, error) {
	if !IsHexAddress(address) {
		return "", fmt.Errorf("accounts: %q is not a hex address", address)
	}
	b, err := hex.Decode(address)
	if err != nil {
		return "", fmt.Errorf("accounts: decode address: %w", err)
	}
	body := []byte(hex.Encode(b)[2:])

	h := sha3.NewLegacyKeccak256()
	h.Write(body)
	digest := h.Sum(nil)

	for i, c := range body {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}
		if nibble >= 8 {
			body[i] = c - 'a' + 'A'
		}
	}
	return "0x" + string(body), nil
}
