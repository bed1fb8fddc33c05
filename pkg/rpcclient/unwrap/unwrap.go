/*
Package unwrap provides a set of proxy methods to process invocation results.

Functions implemented there are intended to be used as wrappers for other
functions that return (*result.Invoke, error) pair. These functions will
check for error, check for VM state, check the number of results, cast them
to appropriate type (if everything is OK) and then return a result or error.
*/
package unwrap

import (
	"errors"
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/nspcc-dev/neotx/pkg/neorpc/result"
	"github.com/nspcc-dev/neotx/pkg/vm/stackitem"
	"github.com/nspcc-dev/neotx/pkg/vm/vmstate"
)

// ErrFault is returned for invocations that didn't end in HALT state.
var ErrFault = errors.New("invocation failed")

// BigInt expects correct execution (HALT state) with a single stack item
// returned. A big.Int is extracted from this item and returned.
func BigInt(r *result.Invoke, err error) (*big.Int, error) {
	itm, err := item(r, err)
	if err != nil {
		return nil, err
	}
	return itm.TryInteger()
}

// Bool expects correct execution (HALT state) with a single stack item
// returned. A bool is extracted from this item and returned.
func Bool(r *result.Invoke, err error) (bool, error) {
	itm, err := item(r, err)
	if err != nil {
		return false, err
	}
	return itm.TryBool()
}

// Int64 expects correct execution (HALT state) with a single stack item
// returned. An int64 is extracted from this item and returned.
func Int64(r *result.Invoke, err error) (int64, error) {
	itm, err := item(r, err)
	if err != nil {
		return 0, err
	}
	return itemToInt64(itm)
}

func itemToInt64(itm stackitem.Item) (int64, error) {
	i, err := itm.TryInteger()
	if err != nil {
		return 0, err
	}
	if !i.IsInt64() {
		return 0, errors.New("int64 overflow")
	}
	return i.Int64(), nil
}

// LimitedInt64 is similar to Int64 except it allows to set minimum and maximum
// limits to be checked, so if it doesn't return an error the value is more than
// min and less than max.
func LimitedInt64(r *result.Invoke, err error, min int64, max int64) (int64, error) {
	i, err := Int64(r, err)
	if err != nil {
		return 0, err
	}
	if i < min {
		return 0, errors.New("too small value")
	}
	if i > max {
		return 0, errors.New("too big value")
	}
	return i, nil
}

// Bytes expects correct execution (HALT state) with a single stack item
// returned. A slice of bytes is extracted from this item and returned.
func Bytes(r *result.Invoke, err error) ([]byte, error) {
	itm, err := item(r, err)
	if err != nil {
		return nil, err
	}
	return itm.TryBytes()
}

// utf8String extracts a single string item and checks it for UTF-8
// correctness.
func utf8String(r *result.Invoke, err error) (string, error) {
	b, err := Bytes(r, err)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.New("not a UTF-8 string")
	}
	return string(b), nil
}

// PrintableASCIIString expects correct execution (HALT state) with a single
// stack item returned. A string is extracted from this item and checked to
// only contain ASCII characters in printable range, valid strings are then
// returned.
func PrintableASCIIString(r *result.Invoke, err error) (string, error) {
	s, err := utf8String(r, err)
	if err != nil {
		return "", err
	}
	if !isPrintableASCII(s) {
		return "", errors.New("not a printable ASCII string")
	}
	return s, nil
}

func isPrintableASCII(s string) bool {
	for _, c := range s {
		if c < 32 || c >= 127 {
			return false
		}
	}
	return true
}

// Array expects correct execution (HALT state) with a single array stack item
// returned. This item is returned to the caller. Notice that this function can
// be used for structures as well since they're also represented as slices of
// stack items (the number of them and their types are structure-specific).
func Array(r *result.Invoke, err error) ([]stackitem.Item, error) {
	itm, err := item(r, err)
	if err != nil {
		return nil, err
	}
	arr, ok := itm.Value().([]stackitem.Item)
	if !ok {
		return nil, errors.New("not an array")
	}
	return arr, nil
}

// Items checks the result for correct state (HALT) and exactly n elements on
// the stack, they're returned in the order they were pushed. It's useful for
// batched scripts that call several methods at once.
func Items(r *result.Invoke, err error, n int) ([]stackitem.Item, error) {
	err = checkResOK(r, err)
	if err != nil {
		return nil, err
	}
	if len(r.Stack) != n {
		return nil, fmt.Errorf("expected %d result items, got %d", n, len(r.Stack))
	}
	return r.Stack, nil
}

// ItemToInt64 extracts int64 from the given stack item, it's a companion
// of Items.
func ItemToInt64(itm stackitem.Item) (int64, error) {
	return itemToInt64(itm)
}

// ItemToPrintableASCII extracts a printable ASCII string from the given stack
// item, it's a companion of Items.
func ItemToPrintableASCII(itm stackitem.Item) (string, error) {
	b, err := itm.TryBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) || !isPrintableASCII(string(b)) {
		return "", errors.New("not a printable ASCII string")
	}
	return string(b), nil
}

func checkResOK(r *result.Invoke, err error) error {
	if err != nil {
		return err
	}
	if r.State != vmstate.Halt.String() {
		return fmt.Errorf("%w: %s", ErrFault, r.FaultException)
	}
	return nil
}

// item returns a stack item from the result if execution was successful (HALT
// state) and if it's the only element on the result stack.
func item(r *result.Invoke, err error) (stackitem.Item, error) {
	err = checkResOK(r, err)
	if err != nil {
		return nil, err
	}
	if len(r.Stack) == 0 {
		return nil, errors.New("result stack is empty")
	}
	if len(r.Stack) > 1 {
		return nil, fmt.Errorf("too many (%d) result items", len(r.Stack))
	}
	return r.Stack[0], nil
}
