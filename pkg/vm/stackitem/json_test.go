package stackitem

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToFromJSONWithTypes(t *testing.T) {
	m := NewMap()
	m.Add(Make("key"), Make(1))
	var testCases = map[string]struct {
		item Item
		js   string
	}{
		"Null":      {Null{}, `{"type":"Any"}`},
		"Integer":   {NewBigInteger(big.NewInt(300000000)), `{"type":"Integer","value":"300000000"}`},
		"ByteArray": {NewByteArray([]byte{1, 2, 3}), `{"type":"ByteString","value":"AQID"}`},
		"Buffer":    {NewBuffer([]byte{1, 2, 3}), `{"type":"Buffer","value":"AQID"}`},
		"Bool":      {NewBool(true), `{"type":"Boolean","value":true}`},
		"Pointer":   {NewPointer(3), `{"type":"Pointer","value":3}`},
		"Array": {NewArray([]Item{Make(1), Make(false)}),
			`{"type":"Array","value":[{"type":"Integer","value":"1"},{"type":"Boolean","value":false}]}`},
		"Struct": {NewStruct([]Item{Make(2)}),
			`{"type":"Struct","value":[{"type":"Integer","value":"2"}]}`},
		"Map": {m,
			`{"type":"Map","value":[{"key":{"type":"ByteString","value":"a2V5"},"value":{"type":"Integer","value":"1"}}]}`},
		"Interop": {NewInterop(nil), `{"type":"InteropInterface"}`},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			js, err := ToJSONWithTypes(tc.item)
			require.NoError(t, err)
			require.JSONEq(t, tc.js, string(js))

			actual, err := FromJSONWithTypes([]byte(tc.js))
			require.NoError(t, err)
			require.Equal(t, tc.item, actual)
		})
	}
}

func TestFromJSONWithTypesErrors(t *testing.T) {
	for _, js := range []string{
		`{"type":"Unknown"}`,
		`{"type":"Integer","value":1}`,
		`{"type":"Integer","value":"1.5"}`,
		`{"type":"ByteString","value":"!"}`,
		`{"type":"Boolean","value":"yes"}`,
		`{"type":"Map","value":[{"key":{"type":"Array","value":[]},"value":{"type":"Any"}}]}`,
		`[]`,
	} {
		_, err := FromJSONWithTypes([]byte(js))
		require.Error(t, err, js)
	}
}

func TestToJSONWithTypesRecursive(t *testing.T) {
	arr := NewArray(nil)
	arr.value = append(arr.value, arr)
	_, err := ToJSONWithTypes(arr)
	require.Error(t, err)
}
