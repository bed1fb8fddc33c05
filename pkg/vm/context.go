/*
Package vm implements reading of NeoVM bytecode: instruction decoding,
disassembly and recognition of the standard witness verification scripts.
It doesn't execute anything, script execution is always done remotely.
*/
package vm

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/neotx/pkg/core/interop/interopnames"
	"github.com/nspcc-dev/neotx/pkg/vm/opcode"
	"github.com/nspcc-dev/neotx/pkg/vm/stackitem"
)

var (
	errNoInstParam = errors.New("failed to read instruction parameter")
	// ErrInvalidOpcode is returned for bytes not matching any known opcode.
	ErrInvalidOpcode = errors.New("invalid opcode")
)

// Context is a sequential reader of the program instructions.
type Context struct {
	// Instruction pointer.
	ip int

	// The next instruction pointer.
	nextip int

	// The raw program script.
	prog []byte
}

// NewContext returns a new Context reading the given script.
func NewContext(b []byte) *Context {
	return &Context{prog: b}
}

// Next returns the next instruction with its parameter if any. The
// parameter is not copied and shouldn't be written to. After its invocation
// the instruction pointer points to the instruction being returned. RET is
// returned after the end of the script.
func (c *Context) Next() (opcode.Opcode, []byte, error) {
	var err error

	c.ip = c.nextip
	if c.ip >= len(c.prog) {
		return opcode.RET, nil, nil
	}

	var instrbyte = c.prog[c.ip]
	instr := opcode.Opcode(instrbyte)
	if !opcode.IsValid(instr) {
		return instr, nil, fmt.Errorf("%w: %s at %d", ErrInvalidOpcode, instr, c.ip)
	}
	c.nextip++

	var numtoread int
	switch instr {
	case opcode.PUSHDATA1:
		if c.nextip >= len(c.prog) {
			err = errNoInstParam
		} else {
			numtoread = int(c.prog[c.nextip])
			c.nextip++
		}
	case opcode.PUSHDATA2:
		if c.nextip+1 >= len(c.prog) {
			err = errNoInstParam
		} else {
			numtoread = int(binary.LittleEndian.Uint16(c.prog[c.nextip : c.nextip+2]))
			c.nextip += 2
		}
	case opcode.PUSHDATA4:
		if c.nextip+3 >= len(c.prog) {
			err = errNoInstParam
		} else {
			var n = binary.LittleEndian.Uint32(c.prog[c.nextip : c.nextip+4])
			if n > stackitem.MaxSize {
				return instr, nil, errors.New("parameter is too big")
			}
			numtoread = int(n)
			c.nextip += 4
		}
	case opcode.JMP, opcode.JMPIF, opcode.JMPIFNOT, opcode.JMPEQ, opcode.JMPNE,
		opcode.JMPGT, opcode.JMPGE, opcode.JMPLT, opcode.JMPLE,
		opcode.CALL, opcode.ISTYPE, opcode.CONVERT, opcode.NEWARRAYT,
		opcode.ENDTRY,
		opcode.INITSSLOT, opcode.LDSFLD, opcode.STSFLD, opcode.LDARG, opcode.STARG, opcode.LDLOC, opcode.STLOC:
		numtoread = 1
	case opcode.INITSLOT, opcode.TRY, opcode.CALLT:
		numtoread = 2
	case opcode.JMPL, opcode.JMPIFL, opcode.JMPIFNOTL, opcode.JMPEQL, opcode.JMPNEL,
		opcode.JMPGTL, opcode.JMPGEL, opcode.JMPLTL, opcode.JMPLEL,
		opcode.ENDTRYL,
		opcode.CALLL, opcode.SYSCALL, opcode.PUSHA:
		numtoread = 4
	case opcode.TRYL:
		numtoread = 8
	default:
		if instr <= opcode.PUSHINT256 {
			numtoread = 1 << instr
		} else {
			// No parameters, can just return.
			return instr, nil, nil
		}
	}
	if err == nil && c.nextip+numtoread > len(c.prog) {
		err = errNoInstParam
	}
	if err != nil {
		return instr, nil, err
	}
	parameter := c.prog[c.nextip : c.nextip+numtoread]
	c.nextip += numtoread
	return instr, parameter, nil
}

// IP returns the current instruction offset in the script.
func (c *Context) IP() int {
	return c.ip
}

// NextIP returns the next instruction offset.
func (c *Context) NextIP() int {
	return c.nextip
}

// LenInstr returns the script length.
func (c *Context) LenInstr() int {
	return len(c.prog)
}

// Instruction is a single decoded instruction.
type Instruction struct {
	Offset int
	Op     opcode.Opcode
	Param  []byte
}

// String returns a human-readable instruction representation, syscalls are
// printed with interop names where known.
func (i Instruction) String() string {
	var sb strings.Builder
	sb.WriteString(i.Op.String())
	if len(i.Param) != 0 {
		sb.WriteByte(' ')
		if i.Op == opcode.SYSCALL {
			name, err := interopnames.FromID(binary.LittleEndian.Uint32(i.Param))
			if err == nil {
				sb.WriteString(name)
				return sb.String()
			}
		}
		sb.WriteString(hex.EncodeToString(i.Param))
	}
	return sb.String()
}

// Disassemble decodes the whole script into a list of instructions.
func Disassemble(script []byte) ([]Instruction, error) {
	var (
		ctx = NewContext(script)
		res []Instruction
	)
	for ctx.NextIP() < len(script) {
		op, param, err := ctx.Next()
		if err != nil {
			return nil, fmt.Errorf("offset %d: %w", ctx.IP(), err)
		}
		res = append(res, Instruction{Offset: ctx.IP(), Op: op, Param: param})
	}
	return res, nil
}
