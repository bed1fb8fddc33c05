package result

import (
	"encoding/base64"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neotx/pkg/core/transaction"
	"github.com/nspcc-dev/neotx/pkg/util"
	"github.com/nspcc-dev/neotx/pkg/vm/stackitem"
	"github.com/nspcc-dev/neotx/pkg/vm/vmstate"
	"github.com/stretchr/testify/require"
)

func TestInvoke_MarshalJSON(t *testing.T) {
	tx := transaction.New([]byte{1, 2, 3, 4}, 0)
	tx.Signers = []transaction.Signer{{Account: util.Uint160{1, 2, 3}}}
	tx.Scripts = []transaction.Witness{{InvocationScript: []byte{}, VerificationScript: []byte{}}}

	result := &Invoke{
		State:          "HALT",
		GasConsumed:    237626000,
		Script:         []byte{10},
		Stack:          []stackitem.Item{stackitem.NewBigInteger(big.NewInt(1))},
		FaultException: "",
		Transaction:    tx,
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)
	expected := `{
		"state":"HALT",
		"gasconsumed":"237626000",
		"script":"` + base64.StdEncoding.EncodeToString(result.Script) + `",
		"stack":[
			{"type":"Integer","value":"1"}
		],
		"exception": null,
		"tx":"` + base64.StdEncoding.EncodeToString(tx.Bytes()) + `"
}`
	require.JSONEq(t, expected, string(data))

	actual := new(Invoke)
	require.NoError(t, json.Unmarshal(data, actual))
	require.Equal(t, result.State, actual.State)
	require.Equal(t, result.GasConsumed, actual.GasConsumed)
	require.Equal(t, result.Script, actual.Script)
	require.Equal(t, result.Stack, actual.Stack)
	require.Equal(t, tx.Hash(), actual.Transaction.Hash())
	require.False(t, actual.HasFaulted())
}

func TestInvoke_UnmarshalNodeResponse(t *testing.T) {
	resp := `{
		"script":"EMAfDAhkZWNpbWFscwwUz3bii9AGLEpHjuNVYQETGfPPpNJBYn1bUg==",
		"state":"FAULT",
		"gasconsumed":"1007390",
		"exception":"at instruction 4 (SYSCALL): some error",
		"notifications":[],
		"stack":[
			{"type":"Integer","value":"8"},
			{"type":"ByteString","value":"R0FT"},
			{"type":"InteropInterface","interface":"IIterator","id":"fcf7b800-192a-488e-ab0e-52d6e1f38a1d"}
		],
		"session":"a7b0d9f8-0b44-4c4c-8b7e-7a5c31d1e6ae"
	}`
	var inv Invoke
	require.NoError(t, json.Unmarshal([]byte(resp), &inv))
	require.Equal(t, "FAULT", inv.State)
	require.Equal(t, vmstate.Fault, inv.VMState())
	require.True(t, inv.HasFaulted())
	require.Equal(t, int64(1007390), inv.GasConsumed)
	require.Equal(t, "at instruction 4 (SYSCALL): some error", inv.FaultException)
	require.Equal(t, uuid.MustParse("a7b0d9f8-0b44-4c4c-8b7e-7a5c31d1e6ae"), inv.Session)
	require.Len(t, inv.Stack, 3)

	n, err := inv.Stack[0].TryInteger()
	require.NoError(t, err)
	require.Equal(t, int64(8), n.Int64())

	b, err := inv.Stack[1].TryBytes()
	require.NoError(t, err)
	require.Equal(t, "GAS", string(b))

	iter, ok := inv.Stack[2].Value().(Iterator)
	require.True(t, ok)
	require.NotNil(t, iter.ID)
	require.Equal(t, "fcf7b800-192a-488e-ab0e-52d6e1f38a1d", iter.ID.String())
}

func TestInvoke_UnmarshalErrors(t *testing.T) {
	var inv Invoke
	require.Error(t, json.Unmarshal([]byte(`{"session":"not-a-uuid"}`), &inv))
	require.Error(t, json.Unmarshal([]byte(`{"stack":[{"type":"Unknown"}]}`), &inv))
	require.Error(t, json.Unmarshal([]byte(`{"stack":[{"type":"InteropInterface","interface":"IEnumerator"}]}`), &inv))
	require.Error(t, json.Unmarshal([]byte(`{"tx":"AQID"}`), &inv))
}

func TestInvokeUnknownState(t *testing.T) {
	inv := Invoke{State: "WAT"}
	require.Equal(t, vmstate.None, inv.VMState())
	require.True(t, inv.HasFaulted())
}
