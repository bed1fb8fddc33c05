/*
Package stackitem contains the NeoVM stack items as they're returned by the
RPC server in invocation results, with conversions to Go values.
*/
package stackitem

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"math/big"
	"unicode/utf8"

	"github.com/nspcc-dev/neotx/pkg/encoding/bigint"
	"github.com/nspcc-dev/neotx/pkg/util"
)

const (
	// MaxBigIntegerSizeBits is the maximum size of a BigInt item in bits.
	MaxBigIntegerSizeBits = 32 * 8
	// MaxSize is the maximum item size allowed in the VM.
	MaxSize = math.MaxUint16 * 2
)

// Item represents the "real" value that is pushed on the stack.
type Item interface {
	fmt.Stringer
	Value() any
	// TryBool converts Item to a boolean value.
	TryBool() (bool, error)
	// TryBytes converts Item to a byte slice. If the underlying type is a
	// byte slice, it's returned as is without copying.
	TryBytes() ([]byte, error)
	// TryInteger converts Item to an integer.
	TryInteger() (*big.Int, error)
	// Equals checks if 2 StackItems are equal.
	Equals(s Item) bool
	// Type returns stack item type.
	Type() Type
}

var (
	// ErrInvalidConversion is returned upon an attempt to make an incorrect
	// conversion between item types.
	ErrInvalidConversion = errors.New("invalid conversion")
	// ErrInvalidValue is returned when item value doesn't fit some
	// constraints during decoding.
	ErrInvalidValue = errors.New("invalid value")
	// ErrTooBig is returned when an item exceeds some size constraints.
	ErrTooBig = errors.New("too big")

	errTooBigInteger = fmt.Errorf("%w: integer", ErrTooBig)
)

func mkInvConversion(from Item, to Type) error {
	return fmt.Errorf("%w: %s/%s", ErrInvalidConversion, from, to)
}

// Make tries to make an appropriate stack item from the provided value.
// It will panic if it's not possible.
func Make(v any) Item {
	switch val := v.(type) {
	case int:
		return NewBigInteger(big.NewInt(int64(val)))
	case int64:
		return NewBigInteger(big.NewInt(val))
	case uint8:
		return NewBigInteger(big.NewInt(int64(val)))
	case uint16:
		return NewBigInteger(big.NewInt(int64(val)))
	case uint32:
		return NewBigInteger(big.NewInt(int64(val)))
	case uint64:
		return NewBigInteger(new(big.Int).SetUint64(val))
	case *big.Int:
		return NewBigInteger(val)
	case []byte:
		return NewByteArray(val)
	case string:
		return NewByteArray([]byte(val))
	case bool:
		return NewBool(val)
	case []Item:
		return NewArray(val)
	case []any:
		res := make([]Item, len(val))
		for i := range val {
			res[i] = Make(val[i])
		}
		return NewArray(res)
	case util.Uint160:
		return Make(val.BytesBE())
	case util.Uint256:
		return Make(val.BytesBE())
	case Item:
		return val
	case nil:
		return Null{}
	default:
		panic(fmt.Sprintf("invalid stack item type: %v (%T)", val, val))
	}
}

// ToString converts an Item to a string if it is a valid UTF-8.
func ToString(item Item) (string, error) {
	bs, err := item.TryBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(bs) {
		return "", fmt.Errorf("%w: not UTF-8", ErrInvalidValue)
	}
	return string(bs), nil
}

// Null represents null on the stack.
type Null struct{}

// String implements the Stringer interface.
func (i Null) String() string { return "Null" }

// Value implements the Item interface.
func (i Null) Value() any { return nil }

// TryBool implements the Item interface.
func (i Null) TryBool() (bool, error) { return false, nil }

// TryBytes implements the Item interface.
func (i Null) TryBytes() ([]byte, error) { return nil, mkInvConversion(i, ByteArrayT) }

// TryInteger implements the Item interface.
func (i Null) TryInteger() (*big.Int, error) { return nil, mkInvConversion(i, IntegerT) }

// Equals implements the Item interface.
func (i Null) Equals(s Item) bool {
	_, ok := s.(Null)
	return ok
}

// Type implements the Item interface.
func (i Null) Type() Type { return AnyT }

// BigInteger represents a big integer on the stack.
type BigInteger big.Int

// NewBigInteger returns a new BigInteger object.
func NewBigInteger(value *big.Int) *BigInteger {
	if err := CheckIntegerSize(value); err != nil {
		panic(err)
	}
	return (*BigInteger)(value)
}

// CheckIntegerSize checks that the value size doesn't exceed the VM limit.
func CheckIntegerSize(value *big.Int) error {
	if !bigint.FitsVM(value) {
		return errTooBigInteger
	}
	return nil
}

// Big casts i to the big.Int type.
func (i *BigInteger) Big() *big.Int {
	return (*big.Int)(i)
}

// String implements the Stringer interface.
func (i *BigInteger) String() string { return "BigInteger" }

// Value implements the Item interface.
func (i *BigInteger) Value() any { return i.Big() }

// TryBool implements the Item interface.
func (i *BigInteger) TryBool() (bool, error) { return i.Big().Sign() != 0, nil }

// TryBytes implements the Item interface.
func (i *BigInteger) TryBytes() ([]byte, error) { return bigint.ToBytes(i.Big()), nil }

// TryInteger implements the Item interface.
func (i *BigInteger) TryInteger() (*big.Int, error) { return i.Big(), nil }

// Equals implements the Item interface.
func (i *BigInteger) Equals(s Item) bool {
	if i == s {
		return true
	}
	val, ok := s.(*BigInteger)
	return ok && i.Big().Cmp(val.Big()) == 0
}

// Type implements the Item interface.
func (i *BigInteger) Type() Type { return IntegerT }

// Bool represents a boolean Item.
type Bool bool

// NewBool returns a new Bool object.
func NewBool(val bool) Bool { return Bool(val) }

// String implements the Stringer interface.
func (i Bool) String() string { return "Boolean" }

// Value implements the Item interface.
func (i Bool) Value() any { return bool(i) }

// TryBool implements the Item interface.
func (i Bool) TryBool() (bool, error) { return bool(i), nil }

// TryBytes implements the Item interface.
func (i Bool) TryBytes() ([]byte, error) {
	if i {
		return []byte{1}, nil
	}
	return []byte{0}, nil
}

// TryInteger implements the Item interface.
func (i Bool) TryInteger() (*big.Int, error) {
	if i {
		return big.NewInt(1), nil
	}
	return big.NewInt(0), nil
}

// Equals implements the Item interface.
func (i Bool) Equals(s Item) bool {
	val, ok := s.(Bool)
	return ok && i == val
}

// Type implements the Item interface.
func (i Bool) Type() Type { return BooleanT }

// ByteArray represents a byte string on the stack.
type ByteArray []byte

// NewByteArray returns a new ByteArray object.
func NewByteArray(b []byte) *ByteArray {
	return (*ByteArray)(&b)
}

// String implements the Stringer interface.
func (i *ByteArray) String() string { return "ByteString" }

// Value implements the Item interface.
func (i *ByteArray) Value() any { return []byte(*i) }

// TryBool implements the Item interface.
func (i *ByteArray) TryBool() (bool, error) {
	if len(*i) > bigint.MaxBytesLen {
		return false, errTooBigInteger
	}
	for _, b := range *i {
		if b != 0 {
			return true, nil
		}
	}
	return false, nil
}

// TryBytes implements the Item interface.
func (i *ByteArray) TryBytes() ([]byte, error) { return *i, nil }

// TryInteger implements the Item interface.
func (i *ByteArray) TryInteger() (*big.Int, error) {
	if len(*i) > bigint.MaxBytesLen {
		return nil, errTooBigInteger
	}
	return bigint.FromBytes(*i), nil
}

// Equals implements the Item interface.
func (i *ByteArray) Equals(s Item) bool {
	val, ok := s.(*ByteArray)
	return ok && bytes.Equal(*i, *val)
}

// Type implements the Item interface.
func (i *ByteArray) Type() Type { return ByteArrayT }

// Buffer represents a mutable byte buffer on the stack.
type Buffer []byte

// NewBuffer returns a new Buffer object.
func NewBuffer(b []byte) *Buffer {
	return (*Buffer)(&b)
}

// String implements the Stringer interface.
func (i *Buffer) String() string { return "Buffer" }

// Value implements the Item interface.
func (i *Buffer) Value() any { return []byte(*i) }

// TryBool implements the Item interface.
func (i *Buffer) TryBool() (bool, error) { return true, nil }

// TryBytes implements the Item interface.
func (i *Buffer) TryBytes() ([]byte, error) { return *i, nil }

// TryInteger implements the Item interface.
func (i *Buffer) TryInteger() (*big.Int, error) { return nil, mkInvConversion(i, IntegerT) }

// Equals implements the Item interface.
func (i *Buffer) Equals(s Item) bool { return i == s }

// Type implements the Item interface.
func (i *Buffer) Type() Type { return BufferT }

// Array represents a new Array object.
type Array struct {
	value []Item
}

// NewArray returns a new Array object.
func NewArray(items []Item) *Array {
	return &Array{value: items}
}

// String implements the Stringer interface.
func (i *Array) String() string { return "Array" }

// Value implements the Item interface.
func (i *Array) Value() any { return i.value }

// Len returns the number of elements.
func (i *Array) Len() int { return len(i.value) }

// TryBool implements the Item interface.
func (i *Array) TryBool() (bool, error) { return true, nil }

// TryBytes implements the Item interface.
func (i *Array) TryBytes() ([]byte, error) { return nil, mkInvConversion(i, ByteArrayT) }

// TryInteger implements the Item interface.
func (i *Array) TryInteger() (*big.Int, error) { return nil, mkInvConversion(i, IntegerT) }

// Equals implements the Item interface.
func (i *Array) Equals(s Item) bool { return i == s }

// Type implements the Item interface.
func (i *Array) Type() Type { return ArrayT }

// Struct represents a struct on the stack.
type Struct struct {
	value []Item
}

// NewStruct returns a new Struct object.
func NewStruct(items []Item) *Struct {
	return &Struct{value: items}
}

// String implements the Stringer interface.
func (i *Struct) String() string { return "Struct" }

// Value implements the Item interface.
func (i *Struct) Value() any { return i.value }

// Len returns the number of fields.
func (i *Struct) Len() int { return len(i.value) }

// TryBool implements the Item interface.
func (i *Struct) TryBool() (bool, error) { return true, nil }

// TryBytes implements the Item interface.
func (i *Struct) TryBytes() ([]byte, error) { return nil, mkInvConversion(i, ByteArrayT) }

// TryInteger implements the Item interface.
func (i *Struct) TryInteger() (*big.Int, error) { return nil, mkInvConversion(i, IntegerT) }

// Equals implements the Item interface, structs are compared by value.
func (i *Struct) Equals(s Item) bool {
	val, ok := s.(*Struct)
	if !ok || len(i.value) != len(val.value) {
		return false
	}
	for j := range i.value {
		if !i.value[j].Equals(val.value[j]) {
			return false
		}
	}
	return true
}

// Type implements the Item interface.
func (i *Struct) Type() Type { return StructT }

// MapElement is a key-value pair of stack items.
type MapElement struct {
	Key   Item
	Value Item
}

// Map represents a Map object. Elements keep insertion order.
type Map struct {
	value []MapElement
}

// NewMap returns a new Map object.
func NewMap() *Map {
	return &Map{value: make([]MapElement, 0)}
}

// String implements the Stringer interface.
func (i *Map) String() string { return "Map" }

// Value implements the Item interface.
func (i *Map) Value() any { return i.value }

// Len returns the number of elements.
func (i *Map) Len() int { return len(i.value) }

// Index returns the index of the key in the map or -1.
func (i *Map) Index(key Item) int {
	for j := range i.value {
		if i.value[j].Key.Equals(key) {
			return j
		}
	}
	return -1
}

// Add adds a key/value pair replacing an existing value for the same key.
func (i *Map) Add(key, value Item) {
	if j := i.Index(key); j >= 0 {
		i.value[j].Value = value
		return
	}
	i.value = append(i.value, MapElement{Key: key, Value: value})
}

// TryBool implements the Item interface.
func (i *Map) TryBool() (bool, error) { return true, nil }

// TryBytes implements the Item interface.
func (i *Map) TryBytes() ([]byte, error) { return nil, mkInvConversion(i, ByteArrayT) }

// TryInteger implements the Item interface.
func (i *Map) TryInteger() (*big.Int, error) { return nil, mkInvConversion(i, IntegerT) }

// Equals implements the Item interface.
func (i *Map) Equals(s Item) bool { return i == s }

// Type implements the Item interface.
func (i *Map) Type() Type { return MapT }

// IsValidMapKey checks whether the item can be used as a map key.
func IsValidMapKey(key Item) error {
	switch key.(type) {
	case Bool, *BigInteger, *ByteArray:
		return nil
	default:
		return fmt.Errorf("%w: %s map key", ErrInvalidValue, key.Type())
	}
}

// Interop represents an interop object (like an iterator) on the stack. Over
// RPC only its type is known, the value is opaque.
type Interop struct {
	value any
}

// NewInterop returns a new Interop object.
func NewInterop(value any) *Interop {
	return &Interop{value: value}
}

// String implements the Stringer interface.
func (i *Interop) String() string { return "InteropInterface" }

// Value implements the Item interface.
func (i *Interop) Value() any { return i.value }

// TryBool implements the Item interface.
func (i *Interop) TryBool() (bool, error) { return true, nil }

// TryBytes implements the Item interface.
func (i *Interop) TryBytes() ([]byte, error) { return nil, mkInvConversion(i, ByteArrayT) }

// TryInteger implements the Item interface.
func (i *Interop) TryInteger() (*big.Int, error) { return nil, mkInvConversion(i, IntegerT) }

// Equals implements the Item interface.
func (i *Interop) Equals(s Item) bool { return i == s }

// Type implements the Item interface.
func (i *Interop) Type() Type { return InteropT }

// Pointer represents a VM-level instruction pointer.
type Pointer struct {
	pos int
}

// NewPointer returns a new pointer on the specified position.
func NewPointer(pos int) *Pointer {
	return &Pointer{pos: pos}
}

// String implements the Stringer interface.
func (p *Pointer) String() string { return "Pointer" }

// Value implements the Item interface.
func (p *Pointer) Value() any { return p.pos }

// Position returns the pointer item position.
func (p *Pointer) Position() int { return p.pos }

// TryBool implements the Item interface.
func (p *Pointer) TryBool() (bool, error) { return true, nil }

// TryBytes implements the Item interface.
func (p *Pointer) TryBytes() ([]byte, error) { return nil, mkInvConversion(p, ByteArrayT) }

// TryInteger implements the Item interface.
func (p *Pointer) TryInteger() (*big.Int, error) { return nil, mkInvConversion(p, IntegerT) }

// Equals implements the Item interface.
func (p *Pointer) Equals(s Item) bool {
	val, ok := s.(*Pointer)
	return ok && p.pos == val.pos
}

// Type implements the Item interface.
func (p *Pointer) Type() Type { return PointerT }

// Dump returns a short human-readable representation of the item, used in
// CLI output.
func Dump(item Item) string {
	switch it := item.(type) {
	case *ByteArray:
		return hex.EncodeToString(*it)
	case *Buffer:
		return hex.EncodeToString(*it)
	case *BigInteger:
		return it.Big().String()
	case Bool:
		return fmt.Sprint(bool(it))
	default:
		return item.String()
	}
}
