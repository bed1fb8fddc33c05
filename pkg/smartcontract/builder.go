package smartcontract

import (
	"fmt"

	"github.com/nspcc-dev/neotx/pkg/io"
	"github.com/nspcc-dev/neotx/pkg/smartcontract/callflag"
	"github.com/nspcc-dev/neotx/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neotx/pkg/util"
	"github.com/nspcc-dev/neotx/pkg/vm/emit"
	"github.com/nspcc-dev/neotx/pkg/vm/opcode"
)

// Builder is used to create arbitrary scripts from the set of methods it provides.
// Each method emits some set of opcodes performing an action and (in most cases)
// returning a result. These chunks of code can be composed together to perform
// several actions in the same script (and therefore in the same transaction), but
// the end result (in terms of state changes and/or resulting items) of the script
// totally depends on what it contains and that's the responsibility of the Builder
// user. Builder is mostly used to create transaction scripts (also known as
// "entry scripts"), so the set of methods it exposes is tailored to this model
// of use and any calls emitted don't limit flags in any way (always use
// callflag.All).
type Builder struct {
	bw *io.BufBinWriter
}

// NewBuilder creates a new Builder instance.
func NewBuilder() *Builder {
	return &Builder{bw: io.NewBufBinWriter()}
}

// InvokeMethod is the most generic contract method invoker, the code it produces
// packs all of the arguments given into an array and calls some method of the
// contract. The correctness of this invocation (number and type of parameters) is
// out of scope of this method, as well as return value, if contract's method returns
// something this value just remains on the execution stack.
func (b *Builder) InvokeMethod(contract util.Uint160, method string, params ...any) {
	emit.AppCall(b.bw.BinWriter, contract, method, callflag.All, params...)
}

// InvokeToken emits a CALLT invocation of the method token with the given
// index in the calling contract's token table. Unlike InvokeMethod, parameters
// are not packed, they're pushed in reverse order and their number must match
// the token's ParamCount.
//
// CALLT only works in contract code compiled into a NEF file, the token table
// belongs to the NEF. A transaction entry script has no token table, so a
// script with CALLT faults when it's used as Transaction.Script. Use
// InvokeMethod for transaction scripts.
func (b *Builder) InvokeToken(index uint16, tok nef.MethodToken, params ...any) {
	if b.bw.Err != nil {
		return
	}
	if err := tok.IsValid(); err != nil {
		b.bw.Err = err
		return
	}
	if len(params) != int(tok.ParamCount) {
		b.bw.Err = fmt.Errorf("%s expects %d parameters, got %d", tok.Method, tok.ParamCount, len(params))
		return
	}
	for i := len(params) - 1; i >= 0; i-- {
		emit.Any(b.bw.BinWriter, params[i])
	}
	emit.CallT(b.bw.BinWriter, index)
}

// Assert emits an ASSERT opcode that expects a Boolean value to be on the stack,
// checks if it's true and aborts the transaction if it's not.
func (b *Builder) Assert() {
	emit.Opcodes(b.bw.BinWriter, opcode.ASSERT)
}

// InvokeWithAssert emits an invocation of the method (see InvokeMethod) with
// an ASSERT after the invocation. The presumption is that the method called
// returns a Boolean value signalling the success or failure of the operation.
// NEP-17 'transfer' does exactly that, the ASSERT makes the whole transaction
// fail if any transfer in it fails.
func (b *Builder) InvokeWithAssert(contract util.Uint160, method string, params ...any) {
	b.InvokeMethod(contract, method, params...)
	b.Assert()
}

// Len returns the current script length.
func (b *Builder) Len() int {
	return b.bw.Len()
}

// Script return current script, you can't use Builder after invoking this method
// unless you Reset it.
func (b *Builder) Script() ([]byte, error) {
	err := b.bw.Err
	return b.bw.Bytes(), err
}

// Reset resets the Builder, allowing to reuse the same script buffer (but
// previous script will be overwritten there).
func (b *Builder) Reset() {
	b.bw.Reset()
}
