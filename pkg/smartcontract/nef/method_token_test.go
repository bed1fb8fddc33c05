package nef

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/nspcc-dev/neotx/internal/random"
	"github.com/nspcc-dev/neotx/internal/testserdes"
	"github.com/nspcc-dev/neotx/pkg/io"
	"github.com/nspcc-dev/neotx/pkg/smartcontract/callflag"
	"github.com/stretchr/testify/require"
)

func newToken() *MethodToken {
	return &MethodToken{
		Hash:       random.Uint160(),
		Method:     "someMethod",
		ParamCount: 3,
		HasReturn:  true,
		CallFlag:   callflag.WriteStates | callflag.AllowNotify,
	}
}

func TestMethodToken_Serializable(t *testing.T) {
	tok := newToken()
	testserdes.EncodeDecodeBinary(t, tok, new(MethodToken))
	testserdes.MarshalUnmarshalJSON(t, tok, new(MethodToken))

	t.Run("invalid method name", func(t *testing.T) {
		bad := *tok
		bad.Method = "_reserved"
		data, err := testserdes.EncodeBinary(&bad)
		require.NoError(t, err)
		require.ErrorIs(t, testserdes.DecodeBinary(data, new(MethodToken)), errInvalidMethodName)
	})
	t.Run("method too long", func(t *testing.T) {
		bad := *tok
		bad.Method = strings.Repeat("s", maxMethodLength+1)
		require.ErrorIs(t, bad.IsValid(), errMethodTooLong)
		data, err := testserdes.EncodeBinary(&bad)
		require.NoError(t, err)
		require.Error(t, testserdes.DecodeBinary(data, new(MethodToken)))
	})
	t.Run("invalid call flag", func(t *testing.T) {
		bad := *tok
		bad.CallFlag = callflag.All + 1
		data, err := testserdes.EncodeBinary(&bad)
		require.NoError(t, err)
		require.ErrorIs(t, testserdes.DecodeBinary(data, new(MethodToken)), errInvalidCallFlag)
	})
}

func TestMethodToken_EncodeBinary(t *testing.T) {
	tok := newToken()
	w := io.NewBufBinWriter()
	tok.EncodeBinary(w.BinWriter)
	require.NoError(t, w.Err)
	// hash + varlen method + param count + return + flags
	require.Equal(t, 20+1+len(tok.Method)+2+1+1, w.Len())
}

func TestMethodToken_UnmarshalJSON(t *testing.T) {
	tok := newToken()
	data, err := json.Marshal(tok)
	require.NoError(t, err)
	require.Contains(t, string(data), `"hasreturnvalue":true`)

	bad := *tok
	bad.Method = "_deploy"
	data, err = json.Marshal(&bad)
	require.NoError(t, err)
	require.ErrorIs(t, json.Unmarshal(data, new(MethodToken)), errInvalidMethodName)
}
