/*
Package emit implements NeoVM bytecode emission. All functions write into the
given io.BinWriter and store the first error in it, so a sequence of calls
can be checked once at the end.
*/
package emit

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neotx/pkg/core/interop/interopnames"
	"github.com/nspcc-dev/neotx/pkg/crypto/keys"
	"github.com/nspcc-dev/neotx/pkg/encoding/bigint"
	"github.com/nspcc-dev/neotx/pkg/io"
	"github.com/nspcc-dev/neotx/pkg/smartcontract/callflag"
	"github.com/nspcc-dev/neotx/pkg/util"
	"github.com/nspcc-dev/neotx/pkg/vm/opcode"
)

// ErrUnsupportedType is returned from Array for values it can't push.
var ErrUnsupportedType = errors.New("unsupported type")

// Instruction emits a VM Instruction with data to the given buffer.
func Instruction(w *io.BinWriter, op opcode.Opcode, b []byte) {
	w.WriteB(byte(op))
	w.WriteBytes(b)
}

// Opcodes emits a single VM Instruction without arguments to the given buffer.
func Opcodes(w *io.BinWriter, ops ...opcode.Opcode) {
	for _, op := range ops {
		w.WriteB(byte(op))
	}
}

// Bool emits a bool type to the given buffer.
func Bool(w *io.BinWriter, ok bool) {
	if ok {
		Opcodes(w, opcode.PUSHT)
		return
	}
	Opcodes(w, opcode.PUSHF)
}

// Int emits an int type to the given buffer.
func Int(w *io.BinWriter, i int64) {
	if smallInt(w, i) {
		return
	}
	bigInt(w, big.NewInt(i))
}

// BigInt emits a big-integer to the given buffer. Integers not fitting into
// 256 bits are an error.
func BigInt(w *io.BinWriter, n *big.Int) {
	if n.IsInt64() && smallInt(w, n.Int64()) {
		return
	}
	bigInt(w, n)
}

// smallInt emits one-byte PUSH for -1..16 and returns false for anything else.
func smallInt(w *io.BinWriter, i int64) bool {
	switch {
	case i == -1:
		Opcodes(w, opcode.PUSHM1)
	case i >= 0 && i <= 16:
		Opcodes(w, opcode.PUSH0+opcode.Opcode(i))
	default:
		return false
	}
	return true
}

// bigInt emits the shortest PUSHINT* instruction able to hold n, the value
// is sign-extended to the operand width.
func bigInt(w *io.BinWriter, n *big.Int) {
	if w.Err != nil {
		return
	}
	size := len(bigint.ToBytes(n))
	if size > bigint.MaxBytesLen {
		w.Err = fmt.Errorf("%w: %d bytes integer", bigint.ErrOutOfRange, size)
		return
	}
	var (
		width = 1
		op    = opcode.PUSHINT8
	)
	for width < size {
		width <<= 1
		op++
	}
	Instruction(w, op, bigint.ToPreallocatedBytes(n, make([]byte, width)))
}

// Array emits an array of elements to the given buffer. Elements are pushed
// in reverse order and packed, so the first one ends up with index 0.
func Array(w *io.BinWriter, es ...any) {
	if len(es) == 0 {
		Opcodes(w, opcode.NEWARRAY0)
		return
	}
	for i := len(es) - 1; i >= 0; i-- {
		Any(w, es[i])
		if w.Err != nil {
			return
		}
	}
	Int(w, int64(len(es)))
	Opcodes(w, opcode.PACK)
}

// Any pushes a single value of any supported type, nested []any slices are
// emitted as arrays and nil is pushed as PUSHNULL.
func Any(w *io.BinWriter, e any) {
	switch e := e.(type) {
	case nil:
		Opcodes(w, opcode.PUSHNULL)
	case []any:
		Array(w, e...)
	case int64:
		Int(w, e)
	case uint64:
		BigInt(w, new(big.Int).SetUint64(e))
	case int32:
		Int(w, int64(e))
	case uint32:
		Int(w, int64(e))
	case int16:
		Int(w, int64(e))
	case uint16:
		Int(w, int64(e))
	case int8:
		Int(w, int64(e))
	case uint8:
		Int(w, int64(e))
	case int:
		Int(w, int64(e))
	case *big.Int:
		BigInt(w, e)
	case string:
		String(w, e)
	case util.Uint160:
		Bytes(w, e.BytesBE())
	case util.Uint256:
		Bytes(w, e.BytesBE())
	case *util.Uint160:
		if e == nil {
			Opcodes(w, opcode.PUSHNULL)
		} else {
			Bytes(w, e.BytesBE())
		}
	case *keys.PublicKey:
		Bytes(w, e.Bytes())
	case []byte:
		Bytes(w, e)
	case bool:
		Bool(w, e)
	default:
		w.Err = fmt.Errorf("%w: %T", ErrUnsupportedType, e)
	}
}

// String emits a string to the given buffer.
func String(w *io.BinWriter, s string) {
	Bytes(w, []byte(s))
}

// Bytes emits a byte array to the given buffer.
func Bytes(w *io.BinWriter, b []byte) {
	var n = len(b)

	switch {
	case n < 0x100:
		Instruction(w, opcode.PUSHDATA1, []byte{byte(n)})
	case n < 0x10000:
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, uint16(n))
		Instruction(w, opcode.PUSHDATA2, buf)
	default:
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(n))
		Instruction(w, opcode.PUSHDATA4, buf)
	}
	w.WriteBytes(b)
}

// Syscall emits the syscall API to the given buffer.
// Syscall API string cannot be 0.
func Syscall(w *io.BinWriter, api string) {
	if w.Err != nil {
		return
	} else if len(api) == 0 {
		w.Err = errors.New("syscall api cannot be of length 0")
		return
	}
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, interopnames.ToID([]byte(api)))
	Instruction(w, opcode.SYSCALL, buf)
}

// AppCall emits System.Contract.Call of the given method with the given
// arguments packed into an array.
func AppCall(w *io.BinWriter, scriptHash util.Uint160, operation string, f callflag.CallFlag, args ...any) {
	Array(w, args...)
	appCall(w, scriptHash, operation, f)
}

// AppCallNoArgs emits System.Contract.Call of a method without parameters.
func AppCallNoArgs(w *io.BinWriter, scriptHash util.Uint160, operation string, f callflag.CallFlag) {
	Opcodes(w, opcode.NEWARRAY0)
	appCall(w, scriptHash, operation, f)
}

func appCall(w *io.BinWriter, scriptHash util.Uint160, operation string, f callflag.CallFlag) {
	Int(w, int64(f))
	String(w, operation)
	Bytes(w, scriptHash.BytesBE())
	Syscall(w, interopnames.SystemContractCall)
}

// CallT emits a CALLT instruction referencing the method token with the
// given index.
func CallT(w *io.BinWriter, id uint16) {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, id)
	Instruction(w, opcode.CALLT, buf)
}

// CheckSig emits a single-key verification script for the given key.
func CheckSig(w *io.BinWriter, key *keys.PublicKey) {
	Bytes(w, key.Bytes())
	Syscall(w, interopnames.SystemCryptoCheckSig)
}
