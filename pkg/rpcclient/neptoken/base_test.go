package neptoken

import (
	"errors"
	"math/big"
	"testing"

	"github.com/nspcc-dev/neotx/pkg/neorpc/result"
	"github.com/nspcc-dev/neotx/pkg/util"
	"github.com/nspcc-dev/neotx/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

type rpcInv struct {
	resInv *result.Invoke
	err    error
	script []byte
}

func (r *rpcInv) Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error) {
	return r.resInv, r.err
}

func (r *rpcInv) Run(script []byte) (*result.Invoke, error) {
	r.script = script
	return r.resInv, r.err
}

func TestBaseErrors(t *testing.T) {
	ri := new(rpcInv)
	base := New(ri, util.Uint160{1, 2, 3})
	require.Equal(t, util.Uint160{1, 2, 3}, base.Hash())

	ri.err = errors.New("")
	_, err := base.Decimals()
	require.Error(t, err)
	_, err = base.Symbol()
	require.Error(t, err)
	_, err = base.TotalSupply()
	require.Error(t, err)
	_, err = base.BalanceOf(util.Uint160{3, 2, 1})
	require.Error(t, err)

	ri.err = nil
	ri.resInv = &result.Invoke{
		State:          "FAULT",
		FaultException: "bad thing happened",
	}
	_, err = base.Decimals()
	require.Error(t, err)

	ri.resInv = &result.Invoke{
		State: "HALT",
		Stack: []stackitem.Item{stackitem.Make(100500)},
	}
	_, err = base.Decimals()
	require.Error(t, err)
	_, err = base.Symbol()
	require.Error(t, err)

	ri.resInv = &result.Invoke{
		State: "HALT",
		Stack: []stackitem.Item{stackitem.Make(-1)},
	}
	_, err = base.Decimals()
	require.Error(t, err)
}

func TestBaseDecimals(t *testing.T) {
	ri := &rpcInv{resInv: &result.Invoke{
		State: "HALT",
		Stack: []stackitem.Item{stackitem.Make(8)},
	}}
	base := New(ri, util.Uint160{1, 2, 3})

	dec, err := base.Decimals()
	require.NoError(t, err)
	require.Equal(t, 8, dec)

	ri.resInv.Stack[0] = stackitem.Make(MaxValidDecimals + 1)
	_, err = base.Decimals()
	require.Error(t, err)
}

func TestBaseSymbolAndSupply(t *testing.T) {
	ri := &rpcInv{resInv: &result.Invoke{
		State: "HALT",
		Stack: []stackitem.Item{stackitem.Make("SYM")},
	}}
	base := New(ri, util.Uint160{1, 2, 3})

	sym, err := base.Symbol()
	require.NoError(t, err)
	require.Equal(t, "SYM", sym)

	ri.resInv.Stack[0] = stackitem.Make(100500)
	ts, err := base.TotalSupply()
	require.NoError(t, err)
	require.Equal(t, big.NewInt(100500), ts)

	bal, err := base.BalanceOf(util.Uint160{3, 2, 1})
	require.NoError(t, err)
	require.Equal(t, big.NewInt(100500), bal)
}
