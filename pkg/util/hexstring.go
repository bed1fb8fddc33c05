package util

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrLengthMismatch is returned from HexString.Xor for operands of different
// length.
var ErrLengthMismatch = errors.New("length mismatch")

// HexString is an immutable byte sequence with explicit endianness views.
// The value is stored in big-endian order and never exposed without a copy,
// so callers always choose the byte order they get.
type HexString struct {
	be []byte
}

// HexStringFromHex decodes s (optionally "0x"-prefixed). If le is true, s is
// treated as a little-endian representation.
func HexStringFromHex(s string, le bool) (HexString, error) {
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return HexString{}, fmt.Errorf("invalid hex string: %w", err)
	}
	if le {
		reverse(b)
	}
	return HexString{be: b}, nil
}

// HexStringFromBytes makes HexString from the given bytes. If le is true, b
// is treated as little-endian.
func HexStringFromBytes(b []byte, le bool) HexString {
	c := bytes.Clone(b)
	if le {
		reverse(c)
	}
	return HexString{be: c}
}

// HexStringFromASCII makes HexString from the bytes of the given string.
func HexStringFromASCII(s string) HexString {
	return HexString{be: []byte(s)}
}

// HexStringFromNumber makes a minimal big-endian HexString of the given
// number, zero is represented by a single zero byte.
func HexStringFromNumber(n uint64) HexString {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	i := 0
	for i < len(buf)-1 && buf[i] == 0 {
		i++
	}
	return HexString{be: bytes.Clone(buf[i:])}
}

// HexStringFromBase64 decodes standard base64. If le is true, the decoded
// bytes are treated as little-endian.
func HexStringFromBase64(s string, le bool) (HexString, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return HexString{}, fmt.Errorf("invalid base64 string: %w", err)
	}
	if le {
		reverse(b)
	}
	return HexString{be: b}, nil
}

// Len returns the number of bytes.
func (h HexString) Len() int {
	return len(h.be)
}

// BigEndian returns big-endian hex representation.
func (h HexString) BigEndian() string {
	return hex.EncodeToString(h.be)
}

// LittleEndian returns little-endian hex representation.
func (h HexString) LittleEndian() string {
	return hex.EncodeToString(h.BytesLE())
}

// BytesBE returns a copy of big-endian bytes.
func (h HexString) BytesBE() []byte {
	return bytes.Clone(h.be)
}

// BytesLE returns a copy of little-endian bytes.
func (h HexString) BytesLE() []byte {
	b := bytes.Clone(h.be)
	reverse(b)
	return b
}

// Base64 returns the standard base64 encoding of the value in the given byte
// order.
func (h HexString) Base64(le bool) string {
	if le {
		return base64.StdEncoding.EncodeToString(h.BytesLE())
	}
	return base64.StdEncoding.EncodeToString(h.be)
}

// Xor returns a byte-wise XOR of h and other.
func (h HexString) Xor(other HexString) (HexString, error) {
	if len(h.be) != len(other.be) {
		return HexString{}, fmt.Errorf("%w: %d and %d", ErrLengthMismatch, len(h.be), len(other.be))
	}
	res := make([]byte, len(h.be))
	for i := range res {
		res[i] = h.be[i] ^ other.be[i]
	}
	return HexString{be: res}, nil
}

// Equals checks whether h and other hold the same bytes.
func (h HexString) Equals(other HexString) bool {
	return bytes.Equal(h.be, other.be)
}

// String implements the Stringer interface, it returns BigEndian.
func (h HexString) String() string {
	return h.BigEndian()
}

// MarshalJSON implements the json.Marshaler interface, the value is encoded
// as a big-endian hex string.
func (h HexString) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.BigEndian())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (h *HexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := HexStringFromHex(s, false)
	if err != nil {
		return err
	}
	*h = v
	return nil
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
