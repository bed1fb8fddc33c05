/*
Package bigint implements conversions of arbitrary precision integers to and
from the NeoVM integer format (little-endian two's complement), hex and
decimal strings. All conversions are exact, floating point is never used.
*/
package bigint

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// MaxBytesLen is the maximum length of a serialized integer suitable for Neo VM.
const MaxBytesLen = 32 // 256-bit signed integer

// Conversion errors.
var (
	ErrInvalidFormat = errors.New("invalid number format")
	ErrOutOfRange    = errors.New("number is out of range")
)

var bigOne = big.NewInt(1)

// FromBytesUnsigned converts data in little-endian format to an unsigned integer.
func FromBytesUnsigned(data []byte) *big.Int {
	return new(big.Int).SetBytes(reversed(data))
}

// FromBytes converts data in little-endian two's complement format to an
// integer. An empty slice is zero.
func FromBytes(data []byte) *big.Int {
	n := new(big.Int).SetBytes(reversed(data))
	if len(data) != 0 && data[len(data)-1]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(bigOne, uint(8*len(data))))
	}
	return n
}

// ToBytes converts an integer to the minimal little-endian two's complement
// slice. Zero is an empty slice, like in NeoVM.
func ToBytes(n *big.Int) []byte {
	if n.Sign() == 0 {
		return []byte{}
	}
	return ToPreallocatedBytes(n, make([]byte, minSize(n)))
}

// ToPreallocatedBytes converts n to the little-endian two's complement form
// sign-extended to len(data) bytes. If data is too short to hold n, the
// minimal representation is returned in a newly allocated slice instead.
func ToPreallocatedBytes(n *big.Int, data []byte) []byte {
	size := minSize(n)
	if len(data) < size {
		data = make([]byte, size)
	}
	v := n
	if n.Sign() < 0 {
		v = new(big.Int).Add(n, new(big.Int).Lsh(bigOne, uint(8*len(data))))
	}
	v.FillBytes(data)
	reverse(data)
	return data
}

// minSize returns the minimal number of bytes holding n in two's complement.
func minSize(n *big.Int) int {
	m := n
	if n.Sign() < 0 {
		m = new(big.Int).Neg(n)
		m.Sub(m, bigOne)
	}
	return m.BitLen()/8 + 1
}

// FromHex parses big-endian hex string s (optionally "0x"-prefixed). If twos
// is true, s is treated as a two's complement value of its own width.
func FromHex(s string, twos bool) (*big.Int, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	reverse(b)
	if twos {
		return FromBytes(b), nil
	}
	return FromBytesUnsigned(b), nil
}

// ToLEHex returns little-endian two's complement hex representation of n
// sign-extended to width bytes. Zero width means minimal representation.
func ToLEHex(n *big.Int, width int) (string, error) {
	if width != 0 && minSize(n) > width {
		return "", fmt.Errorf("%w: %s doesn't fit into %d bytes", ErrOutOfRange, n, width)
	}
	var b []byte
	if width == 0 {
		b = ToBytes(n)
	} else {
		b = ToPreallocatedBytes(n, make([]byte, width))
	}
	return hex.EncodeToString(b), nil
}

// FromLEHex is the inverse of ToLEHex.
func FromLEHex(s string) (*big.Int, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return FromBytes(b), nil
}

// FitsVM checks whether n can be represented as a NeoVM integer.
func FitsVM(n *big.Int) bool {
	return minSize(n) <= MaxBytesLen
}

// ToUint256 converts a non-negative NeoVM integer to uint256.Int, values
// outside of [0, 2^255) are rejected.
func ToUint256(n *big.Int) (*uint256.Int, error) {
	if n.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative value %s", ErrOutOfRange, n)
	}
	u, overflow := uint256.FromBig(n)
	if overflow || u.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s exceeds 256-bit signed integer", ErrOutOfRange, n)
	}
	return u, nil
}

func reversed(b []byte) []byte {
	r := make([]byte, len(b))
	for i := range b {
		r[len(b)-1-i] = b[i]
	}
	return r
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
