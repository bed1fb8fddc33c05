package smartcontract

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Parameter represents a smart contract parameter.
type Parameter struct {
	// Type of the parameter.
	Type ParamType `json:"type"`
	// The actual value of the parameter, it's always a value emit.Array
	// accepts.
	Value any `json:"value"`
}

// NewParameterFromString returns a new Parameter initialized from the given
// string in "type:value" format. The type is optional, if omitted it's
// inferred from the value. Colons can be escaped with a backslash.
func NewParameterFromString(in string) (*Parameter, error) {
	var (
		char    rune
		val     string
		err     error
		r       *strings.Reader
		buf     strings.Builder
		escaped bool
		hadType bool
		res     = &Parameter{}
	)
	r = strings.NewReader(in)
	for char, _, err = r.ReadRune(); err == nil && char != utf8.RuneError; char, _, err = r.ReadRune() {
		if char == '\\' && !escaped {
			escaped = true
			continue
		}
		if char == ':' && !escaped && !hadType {
			res.Type, err = ParseParamType(buf.String())
			if err != nil {
				return nil, err
			}
			// We currently do not support following types:
			if res.Type == ArrayType || res.Type == MapType || res.Type == InteropInterfaceType || res.Type == VoidType {
				return nil, fmt.Errorf("unsupported parameter type %s", res.Type)
			}
			buf.Reset()
			hadType = true
			continue
		}
		escaped = false
		// We don't care about length and it never fails.
		_, _ = buf.WriteRune(char)
	}
	if char == utf8.RuneError {
		return nil, errors.New("bad UTF-8 string")
	}
	// The only other error `ReadRune` returns is io.EOF, which is fine and
	// expected, so we don't check err here.

	val = buf.String()
	if !hadType {
		res.Type = inferParamType(val)
	}
	if res.Type == AnyType {
		if val != "" && val != "null" {
			return nil, errors.New("any parameter can only be null")
		}
		return res, nil
	}
	res.Value, err = adjustValToType(res.Type, val)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ParseParameters parses every string with NewParameterFromString and
// returns a list of values ready to be passed to emit.Array (or
// Builder.InvokeMethod).
func ParseParameters(in []string) ([]any, error) {
	res := make([]any, 0, len(in))
	for i := range in {
		p, err := NewParameterFromString(in[i])
		if err != nil {
			return nil, fmt.Errorf("parameter #%d: %w", i, err)
		}
		res = append(res, p.Value)
	}
	return res, nil
}
