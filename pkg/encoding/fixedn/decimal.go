/*
Package fixedn implements fixed-point numbers used for GAS and token amounts.
*/
package fixedn

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/nspcc-dev/neotx/pkg/encoding/bigint"
)

var (
	errInvalidString = errors.New("fixed-point number must have a <digits>.<digits> format")
	errTooManyDigits = errors.New("fixed-point number has too many fractional digits")
	errOutOfRange    = errors.New("fixed-point number is out of range")
)

// ToString converts a big integer with the specified precision to a string,
// trailing fractional zeroes are omitted.
func ToString(bi *big.Int, precision int) string {
	s := bigint.ToDecimal(bi, precision)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}

// FromString converts a string to a big integer with the specified precision.
// Unlike bigint.FromDecimal it doesn't round, excess fractional digits are an
// error.
func FromString(s string, precision int) (*big.Int, error) {
	ip, fp, found := strings.Cut(s, ".")
	if found && len(fp) > precision {
		return nil, fmt.Errorf("%w: %q", errTooManyDigits, s)
	}
	if found && (fp == "" || ip == "" || ip == "-") {
		return nil, fmt.Errorf("%w: %q", errInvalidString, s)
	}
	n, err := bigint.FromDecimal(s, precision)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", errInvalidString, s)
	}
	return n, nil
}
