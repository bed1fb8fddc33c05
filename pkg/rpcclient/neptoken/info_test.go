package neptoken

import (
	"errors"
	"math/big"
	"testing"

	"github.com/nspcc-dev/neotx/pkg/neorpc/result"
	"github.com/nspcc-dev/neotx/pkg/smartcontract"
	"github.com/nspcc-dev/neotx/pkg/util"
	"github.com/nspcc-dev/neotx/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

func TestInfo(t *testing.T) {
	gas := util.Uint160{1, 2, 3}
	ri := &rpcInv{resInv: &result.Invoke{
		State: "HALT",
		Stack: []stackitem.Item{
			stackitem.Make("GAS"),
			stackitem.Make(8),
			stackitem.Make(5200000000000000),
		},
	}}

	_, err := Info(ri)
	require.Error(t, err)

	toks, err := Info(ri, gas)
	require.NoError(t, err)
	require.Equal(t, []Token{{
		Hash:        gas,
		Symbol:      "GAS",
		Decimals:    8,
		TotalSupply: big.NewInt(5200000000000000),
	}}, toks)

	b := smartcontract.NewBuilder()
	b.InvokeMethod(gas, "symbol")
	b.InvokeMethod(gas, "decimals")
	b.InvokeMethod(gas, "totalSupply")
	expected, err := b.Script()
	require.NoError(t, err)
	require.Equal(t, expected, ri.script)

	_, err = Info(ri, gas, util.Uint160{3, 2, 1})
	require.Error(t, err)

	ri.resInv.Stack[1] = stackitem.Make(100)
	_, err = Info(ri, gas)
	require.Error(t, err)

	ri.resInv.Stack[1] = stackitem.Make(8)
	ri.resInv.Stack[0] = stackitem.Make("\x01")
	_, err = Info(ri, gas)
	require.Error(t, err)

	ri.resInv.Stack[0] = stackitem.Make("GAS")
	ri.resInv.Stack[2] = stackitem.Make([]stackitem.Item{})
	_, err = Info(ri, gas)
	require.Error(t, err)

	ri.err = errors.New("")
	_, err = Info(ri, gas)
	require.Error(t, err)
}

func TestBalances(t *testing.T) {
	acc := util.Uint160{9, 9, 9}
	gas := util.Uint160{1, 2, 3}
	ri := &rpcInv{resInv: &result.Invoke{
		State: "HALT",
		Stack: []stackitem.Item{
			stackitem.Make(8),
			stackitem.Make(300000000),
		},
	}}

	_, err := Balances(ri, acc)
	require.Error(t, err)

	bals, err := Balances(ri, acc, gas)
	require.NoError(t, err)
	require.Len(t, bals, 1)
	require.Equal(t, gas, bals[0].Hash)
	require.Equal(t, 8, bals[0].Decimals)
	require.Equal(t, "3.00000000", bals[0].String())

	ri.resInv.Stack[0] = stackitem.Make(-2)
	_, err = Balances(ri, acc, gas)
	require.Error(t, err)

	ri.resInv.Stack[0] = stackitem.Make(8)
	ri.resInv.Stack[1] = stackitem.Make([]stackitem.Item{})
	_, err = Balances(ri, acc, gas)
	require.Error(t, err)

	ri.resInv.State = "FAULT"
	_, err = Balances(ri, acc, gas)
	require.Error(t, err)
}
