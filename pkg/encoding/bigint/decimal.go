package bigint

import (
	"fmt"
	"math/big"
	"strings"
)

var bigTen = big.NewInt(10)

func pow10(n int) *big.Int {
	return new(big.Int).Exp(bigTen, big.NewInt(int64(n)), nil)
}

// FromDecimal parses decimal string s ("-12.345") and returns it scaled by
// 10^decimals. Fractional digits beyond the given precision are rounded to
// the nearest integer, halves are rounded away from zero.
func FromDecimal(s string, decimals int) (*big.Int, error) {
	if decimals < 0 {
		return nil, fmt.Errorf("%w: negative precision %d", ErrInvalidFormat, decimals)
	}
	orig := s
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	ip, fp, _ := strings.Cut(s, ".")
	if (ip == "" && fp == "") || !isDigits(ip) || !isDigits(fp) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, orig)
	}
	roundUp := false
	if len(fp) > decimals {
		roundUp = fp[decimals] >= '5'
		fp = fp[:decimals]
	} else {
		fp += strings.Repeat("0", decimals-len(fp))
	}
	res, ok := new(big.Int).SetString("0"+ip+fp, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, orig)
	}
	if roundUp {
		res.Add(res, bigOne)
	}
	if neg {
		res.Neg(res)
	}
	return res, nil
}

// ToDecimal formats n scaled down by 10^decimals with exactly decimals
// fractional digits, e.g. 300000000 with 8 decimals is "3.00000000".
func ToDecimal(n *big.Int, decimals int) string {
	if decimals <= 0 {
		return n.String()
	}
	q, r := new(big.Int).QuoRem(new(big.Int).Abs(n), pow10(decimals), new(big.Int))
	frac := r.String()
	var sb strings.Builder
	if n.Sign() < 0 {
		sb.WriteByte('-')
	}
	sb.WriteString(q.String())
	sb.WriteByte('.')
	sb.WriteString(strings.Repeat("0", decimals-len(frac)))
	sb.WriteString(frac)
	return sb.String()
}

func isDigits(s string) bool {
	for i := range s {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
