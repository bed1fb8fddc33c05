/*
Package base58 wraps generic base58 encoder with the NEO-specific checksum.
*/
package base58

import (
	"bytes"
	"errors"

	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neotx/pkg/crypto/hash"
)

// ErrInvalidChecksum is returned when the decoded checksum doesn't match.
var ErrInvalidChecksum = errors.New("invalid base-58 check string: invalid checksum")

// CheckDecode implements base58-encoded string decoding with a hash-based
// checksum check.
func CheckDecode(s string) (b []byte, err error) {
	b, err = base58.Decode(s)
	if err != nil {
		return nil, err
	}

	if len(b) < 5 {
		return nil, errors.New("invalid base-58 check string: missing checksum")
	}

	if !bytes.Equal(hash.Checksum(b[:len(b)-4]), b[len(b)-4:]) {
		return nil, ErrInvalidChecksum
	}

	b = b[:len(b)-4]

	return b, nil
}

// CheckEncode encodes the given byte slice into a base58 string with a
// hash-based checksum appended.
func CheckEncode(b []byte) string {
	b = append(bytes.Clone(b), hash.Checksum(b)...)

	return base58.Encode(b)
}
