// Package hex provides utilities for the "0x"-prefixed hexadecimal strings
// used throughout the Ethereum JSON-RPC surface.
package hex

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Encode returns the hexadecimal encoding of src with "0x" prefix.
func Encode(src []byte) string {
	return "0x" + hex.EncodeToString(src)
}

// Decode decodes a hex string (with or without "0x" prefix) into bytes.
func Decode(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	if len(s)%2 != 0 {
		s = "0" + s
	}
	return hex.DecodeString(s)
}

// NormalizeChainID validates a "0x"-prefixed hexadecimal chain id and returns
// its canonical form: lowercase digits with leading zeros trimmed ("0x0" stays
// "0x0").
func NormalizeChainID(s string) (string, error) {
	digits, ok := strings.CutPrefix(s, "0x")
	if !ok {
		digits, ok = strings.CutPrefix(s, "0X")
	}
	if !ok || digits == "" {
		return "", fmt.Errorf("hex: chain id %q is not a 0x-prefixed quantity", s)
	}

	digits = strings.ToLower(digits)
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("hex: chain id %q has invalid digit %q", s, string(digits[i]))
		}
	}

	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		digits = "0"
	}
	return "0x" + digits, nil
}
