/*
Package invoker provides a convenient wrapper to perform test calls via RPC client.

This layer builds on top of the basic RPC client and simplifies creating scripts
and executing them in the test mode. It doesn't produce any transactions and
doesn't change the state of the chain.
*/
package invoker

import (
	"fmt"

	"github.com/nspcc-dev/neotx/pkg/core/transaction"
	"github.com/nspcc-dev/neotx/pkg/neorpc/result"
	"github.com/nspcc-dev/neotx/pkg/smartcontract"
	"github.com/nspcc-dev/neotx/pkg/util"
)

// RPCInvoke is a set of RPC methods needed to execute things at the current
// blockchain height.
type RPCInvoke interface {
	InvokeScript(script []byte, signers []transaction.Signer) (*result.Invoke, error)
}

// Invoker allows to test-execute things using RPC client. Its API simplifies
// reusing the same signers list for a series of invocations and at the
// same time uses regular Go types for call parameters. It doesn't do anything with
// the result of invocation, that's left for upper (contract) layer to deal with.
type Invoker struct {
	client  RPCInvoke
	signers []transaction.Signer
}

// New creates an Invoker to test-execute things at the current blockchain height.
func New(client RPCInvoke, signers []transaction.Signer) *Invoker {
	return &Invoker{client, signers}
}

// Signers returns the set of signers used in the invoker (a copy of it).
func (v *Invoker) Signers() []transaction.Signer {
	if v.signers == nil {
		return nil
	}
	res := make([]transaction.Signer, len(v.signers))
	for i := range v.signers {
		res[i] = *v.signers[i].Copy()
	}
	return res
}

// Call invokes a method of the contract with the given parameters (and
// Invoker-specific list of signers) and returns the result as is. Parameters
// are emitted the same way emit.Array does it.
func (v *Invoker) Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error) {
	b := smartcontract.NewBuilder()
	b.InvokeMethod(contract, operation, params...)
	script, err := b.Script()
	if err != nil {
		return nil, fmt.Errorf("failed to create '%s' call script: %w", operation, err)
	}
	return v.client.InvokeScript(script, v.signers)
}

// Run executes given bytecode with Invoker-specific list of signers.
func (v *Invoker) Run(script []byte) (*result.Invoke, error) {
	return v.client.InvokeScript(script, v.signers)
}
