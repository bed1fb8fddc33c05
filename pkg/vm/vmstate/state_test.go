package vmstate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateFromString(t *testing.T) {
	var (
		s   State
		err error
	)

	s, err = FromString("HALT")
	require.NoError(t, err)
	require.Equal(t, Halt, s)

	s, err = FromString("BREAK")
	require.NoError(t, err)
	require.Equal(t, Break, s)

	s, err = FromString("FAULT")
	require.NoError(t, err)
	require.Equal(t, Fault, s)

	s, err = FromString("NONE")
	require.NoError(t, err)
	require.Equal(t, None, s)

	s, err = FromString("HALT, BREAK")
	require.NoError(t, err)
	require.Equal(t, Halt|Break, s)

	_, err = FromString("HALT, KEK")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestState_HasFlag(t *testing.T) {
	require.True(t, Halt.HasFlag(Halt))
	require.True(t, Break.HasFlag(Break))
	require.True(t, Fault.HasFlag(Fault))
	require.True(t, (Halt | Break).HasFlag(Halt))
	require.False(t, Halt.HasFlag(Break))
	require.False(t, None.HasFlag(Halt))
}

func TestStateMarshalJSON(t *testing.T) {
	var (
		data []byte
		err  error
	)

	data, err = json.Marshal(Halt | Break)
	require.NoError(t, err)
	require.Equal(t, `"HALT, BREAK"`, string(data))

	data, err = json.Marshal(Fault)
	require.NoError(t, err)
	require.Equal(t, `"FAULT"`, string(data))
}

func TestStateUnmarshalJSON(t *testing.T) {
	var s State
	require.NoError(t, json.Unmarshal([]byte(`"HALT, BREAK"`), &s))
	require.Equal(t, Halt|Break, s)

	require.Error(t, json.Unmarshal([]byte(`1`), &s))
}
