/*
Package netmode contains network magic values. The magic is a part of every
signed message, so a transaction signed for one network is invalid in any
other.
*/
package netmode

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// Any is the zero magic, it matches every network.
	Any Magic = 0
	// MainNet is the magic of the Neo N3 main network.
	MainNet Magic = 0x334f454e // NEO3
	// TestNet is the magic of the Neo N3 test network.
	TestNet Magic = 0x3554334e // N3T5
	// PrivNet is the magic commonly used by private networks.
	PrivNet Magic = 56753
)

// Magic is a network identifier.
type Magic uint32

// Parse parses the network name (mainnet, testnet, privnet) or a number
// (decimal or 0x-prefixed hex).
func Parse(s string) (Magic, error) {
	switch strings.ToLower(s) {
	case "", "any":
		return Any, nil
	case "mainnet":
		return MainNet, nil
	case "testnet":
		return TestNet, nil
	case "privnet":
		return PrivNet, nil
	}
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid network %q: %w", s, err)
	}
	return Magic(n), nil
}

// Matches checks whether the actual network magic is acceptable when m is
// expected.
func (m Magic) Matches(actual Magic) bool {
	return m == Any || m == actual
}

// String implements the fmt.Stringer interface.
func (m Magic) String() string {
	switch m {
	case Any:
		return "any"
	case MainNet:
		return "mainnet"
	case TestNet:
		return "testnet"
	case PrivNet:
		return "privnet"
	default:
		return "net 0x" + strconv.FormatUint(uint64(m), 16)
	}
}

// UnmarshalYAML implements the yaml.Unmarshaler interface, both names and
// numbers are accepted.
func (m *Magic) UnmarshalYAML(node *yaml.Node) error {
	v, err := Parse(node.Value)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface.
func (m Magic) MarshalYAML() (any, error) {
	switch m {
	case Any, MainNet, TestNet, PrivNet:
		return m.String(), nil
	default:
		return uint32(m), nil
	}
}
