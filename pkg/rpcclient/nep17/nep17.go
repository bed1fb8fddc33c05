/*
Package nep17 contains RPC wrappers to work with NEP-17 contracts.

Safe methods are encapsulated into TokenReader structure while transfers are
represented as scripts that can be added to any transaction, several transfers
can be combined in the same script.
*/
package nep17

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neotx/pkg/encoding/bigint"
	"github.com/nspcc-dev/neotx/pkg/rpcclient/neptoken"
	"github.com/nspcc-dev/neotx/pkg/smartcontract"
	"github.com/nspcc-dev/neotx/pkg/util"
)

// ErrInvalidAmount is returned for transfer amounts outside of the range
// accepted by NEP-17 contracts.
var ErrInvalidAmount = errors.New("invalid transfer amount")

// Invoker is used by TokenReader to call various safe methods.
type Invoker interface {
	neptoken.Invoker
}

// TokenReader represents safe (read-only) methods of NEP-17 token. It can be
// used to query various data.
type TokenReader struct {
	neptoken.Base
}

// TransferParameters is a set of parameters for `transfer` method.
type TransferParameters struct {
	From   util.Uint160
	To     util.Uint160
	Amount *big.Int
	Data   any
}

// NewReader creates an instance of TokenReader for contract with the given
// hash using the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *TokenReader {
	return &TokenReader{*neptoken.New(invoker, hash)}
}

// CheckAmount checks that the amount can be transferred: it must be
// non-negative and fit into the 256-bit NeoVM integer.
func CheckAmount(amount *big.Int) error {
	if amount == nil {
		return fmt.Errorf("%w: nil", ErrInvalidAmount)
	}
	if _, err := bigint.ToUint256(amount); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	return nil
}

// AddTransfer appends `transfer` invocation with an ASSERT to the given
// Builder, the whole script fails if the transfer fails.
func AddTransfer(b *smartcontract.Builder, token util.Uint160, p TransferParameters) error {
	if err := CheckAmount(p.Amount); err != nil {
		return err
	}
	b.InvokeWithAssert(token, "transfer", p.From, p.To, p.Amount, p.Data)
	return nil
}

// TransferScript returns a script transferring tokens of the given contract
// for every parameter set given.
func TransferScript(token util.Uint160, params ...TransferParameters) ([]byte, error) {
	if len(params) == 0 {
		return nil, errors.New("empty transfer parameters")
	}
	b := smartcontract.NewBuilder()
	for i := range params {
		if err := AddTransfer(b, token, params[i]); err != nil {
			return nil, fmt.Errorf("transfer %d: %w", i, err)
		}
	}
	return b.Script()
}
