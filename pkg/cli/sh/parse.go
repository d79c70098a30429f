package sh

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// ParseByte parses a byte value in decimal or 0x-prefixed hex.
func ParseByte(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid byte %q", s)
	}
	return byte(v), nil
}

// ParseHex parses data bytes from hex words, e.g. "DE AD" or "0xDEAD".
func ParseHex(words ...string) ([]byte, error) {
	var data []byte
	for _, word := range words {
		word = strings.TrimPrefix(strings.TrimPrefix(word, "0x"), "0X")
		if len(word)%2 != 0 {
			word = "0" + word
		}
		b, err := hex.DecodeString(word)
		if err != nil {
			return nil, fmt.Errorf("invalid hex %q", word)
		}
		data = append(data, b...)
	}
	return data, nil
}

// FormatHex prints bytes as space separated hex.
func FormatHex(data []byte) string {
	if len(data) == 0 {
		return "(empty)"
	}
	words := make([]string, len(data))
	for n, b := range data {
		words[n] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(words, " ")
}
