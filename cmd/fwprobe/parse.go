package main

import (
	"fmt"
	"strconv"

	"github.com/buslab/fwprobe/csr"
)

// parseAddress resolves an address argument: a hexadecimal number or a
// register name. A named register also supplies its default transfer
// length; a numeric address leaves it zero.
func parseAddress(s string) (address uint64, registerLength uint32, err error) {
	if a, convErr := strconv.ParseUint(s, 16, 64); convErr == nil {
		return a, 0, nil
	}
	if r, ok := csr.Lookup(s); ok {
		return r.Address, r.Length, nil
	}
	return 0, 0, fmt.Errorf("invalid address: %q", s)
}

// parseLength parses a hexadecimal byte count.
func parseLength(s string) (uint32, error) {
	l, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid length: %q", s)
	}
	return uint32(l), nil
}

// parseData decodes a hex byte string: an optional 0x prefix, whitespace
// and underscores ignored, two nibbles per byte. When registerLength names
// a small register, the data must fill it exactly.
func parseData(s string, registerLength uint32) ([]byte, error) {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	if i+1 < len(s) && s[i] == '0' && (s[i+1] == 'x' || s[i+1] == 'X') {
		i += 2
	}

	var out []byte
	highNibble := true
	for ; i < len(s); i++ {
		c := s[i]
		if isSpace(c) || c == '_' {
			continue
		}
		val, ok := nibble(c)
		if !ok {
			return nil, fmt.Errorf("invalid character in data: %q", c)
		}
		if highNibble {
			out = append(out, val<<4)
		} else {
			out[len(out)-1] |= val
		}
		highNibble = !highNibble
	}
	if !highNibble {
		return nil, fmt.Errorf("data ends in a half byte")
	}

	if registerLength != 0 && registerLength <= 8 &&
		registerLength != uint32(len(out)) {
		return nil, fmt.Errorf("data for this register must have %d bits",
			registerLength*8)
	}

	return out, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func nibble(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
