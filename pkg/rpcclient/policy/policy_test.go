package policy

import (
	"errors"
	"testing"

	"github.com/nspcc-dev/neotx/pkg/neorpc/result"
	"github.com/nspcc-dev/neotx/pkg/util"
	"github.com/nspcc-dev/neotx/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

type testInv struct {
	err    error
	res    *result.Invoke
	script []byte
}

func (t *testInv) Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error) {
	return t.res, t.err
}

func (t *testInv) Run(script []byte) (*result.Invoke, error) {
	t.script = script
	return t.res, t.err
}

func TestReader(t *testing.T) {
	ti := new(testInv)
	pc := NewReader(ti)

	meth := []func() (int64, error){
		pc.GetExecFeeFactor,
		pc.GetFeePerByte,
		pc.GetStoragePrice,
	}

	ti.err = errors.New("")
	for _, m := range meth {
		_, err := m()
		require.Error(t, err)
	}
	_, err := pc.IsBlocked(util.Uint160{1, 2, 3})
	require.Error(t, err)

	ti.err = nil
	ti.res = &result.Invoke{
		State: "HALT",
		Stack: []stackitem.Item{
			stackitem.Make(42),
		},
	}
	for _, m := range meth {
		val, err := m()
		require.NoError(t, err)
		require.Equal(t, int64(42), val)
	}
	ti.res = &result.Invoke{
		State: "HALT",
		Stack: []stackitem.Item{
			stackitem.Make(true),
		},
	}
	val, err := pc.IsBlocked(util.Uint160{1, 2, 3})
	require.NoError(t, err)
	require.True(t, val)

	ti.res = &result.Invoke{
		State: "HALT",
		Stack: []stackitem.Item{
			stackitem.Make([]stackitem.Item{}),
		},
	}
	for _, m := range meth {
		_, err := m()
		require.Error(t, err)
	}
}

func TestGetFeeInformation(t *testing.T) {
	ti := &testInv{res: &result.Invoke{
		State: "HALT",
		Stack: []stackitem.Item{stackitem.Make(1000), stackitem.Make(30)},
	}}
	pc := NewReader(ti)

	fi, err := pc.GetFeeInformation()
	require.NoError(t, err)
	require.Equal(t, &FeeInformation{FeePerByte: 1000, ExecFeeFactor: 30}, fi)

	script, err := FeeInformationScript()
	require.NoError(t, err)
	require.Equal(t, script, ti.script)

	ti.res.Stack = []stackitem.Item{stackitem.Make(1000)}
	_, err = pc.GetFeeInformation()
	require.Error(t, err)

	ti.res.Stack = []stackitem.Item{stackitem.Make(1000), stackitem.Make([]stackitem.Item{})}
	_, err = pc.GetFeeInformation()
	require.Error(t, err)

	ti.res.State = "FAULT"
	_, err = pc.GetFeeInformation()
	require.Error(t, err)

	ti.err = errors.New("network")
	_, err = pc.GetFeeInformation()
	require.Error(t, err)
}
