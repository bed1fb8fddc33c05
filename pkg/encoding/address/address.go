/*
Package address implements conversion of script hash to/from N3 address.
*/
package address

import (
	"errors"

	"github.com/nspcc-dev/neotx/pkg/encoding/base58"
	"github.com/nspcc-dev/neotx/pkg/util"
)

const (
	// NEO3Prefix is the first byte of an address for N3.
	NEO3Prefix byte = 0x35
)

// Prefix is the byte used to prepend to addresses when encoding them, it can
// be changed and defaults to 53 (0x35), the standard N3 prefix.
var Prefix = NEO3Prefix

// ErrInvalidPrefix is returned for addresses with a wrong version byte.
var ErrInvalidPrefix = errors.New("invalid address prefix")

// Uint160ToString returns the "NEO address" from the given Uint160.
func Uint160ToString(u util.Uint160) string {
	b := append([]byte{Prefix}, u.BytesBE()...)
	return base58.CheckEncode(b)
}

// StringToUint160 attempts to decode the given NEO address string
// into a Uint160.
func StringToUint160(s string) (u util.Uint160, err error) {
	b, err := base58.CheckDecode(s)
	if err != nil {
		return u, err
	}
	if len(b) != util.Uint160Size+1 {
		return u, errors.New("invalid address length")
	}
	if b[0] != Prefix {
		return u, ErrInvalidPrefix
	}
	return util.Uint160DecodeBytesBE(b[1:])
}
