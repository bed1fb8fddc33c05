package fixedn

import (
	"strconv"
	"strings"
)

const (
	precision = 8
	decimals  = 100000000
)

// Fixed8 represents a fixed-point number with precision 10^-8, it's used
// for GAS amounts (fees in particular).
type Fixed8 int64

// String implements the Stringer interface, trailing zeroes are omitted.
func (f Fixed8) String() string {
	buf := new(strings.Builder)
	val := int64(f)
	if val < 0 {
		buf.WriteRune('-')
		val = -val
	}
	buf.WriteString(strconv.FormatInt(val/decimals, 10))
	val %= decimals
	if val > 0 {
		buf.WriteRune('.')
		str := strconv.FormatInt(val, 10)
		for i := len(str); i < precision; i++ {
			buf.WriteRune('0')
		}
		buf.WriteString(strings.TrimRight(str, "0"))
	}
	return buf.String()
}

// IntegralValue returns an integer part of f.
func (f Fixed8) IntegralValue() int64 {
	return int64(f) / decimals
}

// Fixed8FromString parses s which must be a fixed point number
// with precision up to 10^-8.
func Fixed8FromString(s string) (Fixed8, error) {
	num, err := FromString(s, precision)
	if err != nil {
		return 0, err
	}
	if !num.IsInt64() {
		return 0, errOutOfRange
	}
	return Fixed8(num.Int64()), nil
}

// UnmarshalJSON implements the json unmarshaller interface.
func (f *Fixed8) UnmarshalJSON(data []byte) error {
	if len(data) > 2 {
		if data[0] == '"' && data[len(data)-1] == '"' {
			data = data[1 : len(data)-1]
		}
	}
	return f.setFromString(string(data))
}

// UnmarshalYAML implements the yaml unmarshaler interface.
func (f *Fixed8) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	err := unmarshal(&s)
	if err != nil {
		return err
	}
	return f.setFromString(s)
}

func (f *Fixed8) setFromString(s string) error {
	p, err := Fixed8FromString(s)
	if err != nil {
		return err
	}
	*f = p
	return nil
}

// MarshalJSON implements the json marshaller interface.
func (f Fixed8) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.String() + `"`), nil
}

// MarshalYAML implements the yaml marshaller interface.
func (f Fixed8) MarshalYAML() (any, error) {
	return f.String(), nil
}
