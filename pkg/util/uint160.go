package util

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Uint160Size is the size of Uint160 in bytes.
const Uint160Size = 20

// Uint160 is a 20 byte long unsigned integer stored in the order it's
// serialized (and hashed) in, which is the reverse of its "0x" string form.
// Script hashes and account identifiers are Uint160.
type Uint160 [Uint160Size]uint8

// Uint160DecodeStringLE decodes the given "0x"-less LE string (the usual
// human-readable representation) into Uint160.
func Uint160DecodeStringLE(s string) (Uint160, error) {
	var u Uint160
	if len(s) != Uint160Size*2 {
		return u, fmt.Errorf("expected string size of %d got %d", Uint160Size*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return u, err
	}
	return Uint160DecodeBytesLE(b)
}

// Uint160DecodeStringBE decodes the given BE string into Uint160.
func Uint160DecodeStringBE(s string) (Uint160, error) {
	var u Uint160
	if len(s) != Uint160Size*2 {
		return u, fmt.Errorf("expected string size of %d got %d", Uint160Size*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return u, err
	}
	return Uint160DecodeBytesBE(b)
}

// Uint160DecodeBytesBE decodes the given raw bytes into Uint160.
func Uint160DecodeBytesBE(b []byte) (u Uint160, err error) {
	if len(b) != Uint160Size {
		return u, fmt.Errorf("expected byte size of %d got %d", Uint160Size, len(b))
	}
	copy(u[:], b)
	return
}

// Uint160DecodeBytesLE decodes the given reversed bytes into Uint160.
func Uint160DecodeBytesLE(b []byte) (u Uint160, err error) {
	if len(b) != Uint160Size {
		return u, fmt.Errorf("expected byte size of %d got %d", Uint160Size, len(b))
	}
	for i := range b {
		u[Uint160Size-i-1] = b[i]
	}
	return
}

// BytesBE returns the raw representation of u.
func (u Uint160) BytesBE() []byte {
	return u[:]
}

// BytesLE returns the reversed representation of u.
func (u Uint160) BytesLE() []byte {
	r := u.Reverse()
	return r[:]
}

// Reverse returns the reversed representation of u.
func (u Uint160) Reverse() (r Uint160) {
	for i := 0; i < Uint160Size; i++ {
		r[i] = u[Uint160Size-i-1]
	}
	return
}

// String implements the Stringer interface. It's the same as StringBE.
func (u Uint160) String() string {
	return u.StringBE()
}

// StringBE returns the hex representation of the raw bytes.
func (u Uint160) StringBE() string {
	return hex.EncodeToString(u.BytesBE())
}

// StringLE returns the reversed hex representation, this is the one you
// usually see prefixed with "0x".
func (u Uint160) StringLE() string {
	return hex.EncodeToString(u.BytesLE())
}

// Equals returns true if both Uint160 values are the same.
func (u Uint160) Equals(other Uint160) bool {
	return u == other
}

// Compare compares u and other as numbers in their LE string form. It
// returns -1, 0 or 1.
func (u Uint160) Compare(other Uint160) int {
	for i := Uint160Size - 1; i >= 0; i-- {
		switch {
		case u[i] < other[i]:
			return -1
		case u[i] > other[i]:
			return 1
		}
	}
	return 0
}

// Less returns true if u is numerically less than other.
func (u Uint160) Less(other Uint160) bool {
	return u.Compare(other) < 0
}

// MarshalJSON implements the json.Marshaler interface.
func (u Uint160) MarshalJSON() ([]byte, error) {
	return []byte(`"0x` + u.StringLE() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface. Both "0x"-prefixed
// and bare LE strings are accepted.
func (u *Uint160) UnmarshalJSON(data []byte) (err error) {
	var js string
	if err = json.Unmarshal(data, &js); err != nil {
		return err
	}
	js = strings.TrimPrefix(js, "0x")
	*u, err = Uint160DecodeStringLE(js)
	return err
}

// MarshalYAML implements the yaml.Marshaler interface.
func (u Uint160) MarshalYAML() (any, error) {
	return "0x" + u.StringLE(), nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (u *Uint160) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	var err error
	*u, err = Uint160DecodeStringLE(strings.TrimPrefix(s, "0x"))
	return err
}
