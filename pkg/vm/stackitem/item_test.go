package stackitem

import (
	"math/big"
	"testing"

	"github.com/nspcc-dev/neotx/pkg/util"
	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	require.Equal(t, NewBigInteger(big.NewInt(3)), Make(3))
	require.Equal(t, NewBigInteger(big.NewInt(3)), Make(uint32(3)))
	require.Equal(t, NewByteArray([]byte("abc")), Make("abc"))
	require.Equal(t, NewBool(true), Make(true))
	require.Equal(t, Null{}, Make(nil))
	require.Equal(t, NewByteArray(make([]byte, 20)), Make(util.Uint160{}))
	require.Equal(t, NewArray([]Item{Make(1), Make("a")}), Make([]any{1, "a"}))
	require.Panics(t, func() { Make(struct{}{}) })
}

func TestConversions(t *testing.T) {
	n, err := NewByteArray([]byte{0xff}).TryInteger()
	require.NoError(t, err)
	require.Equal(t, int64(-1), n.Int64())

	b, err := NewBigInteger(big.NewInt(256)).TryBytes()
	require.NoError(t, err)
	require.Equal(t, []byte{0, 1}, b)

	ok, err := NewByteArray([]byte{0, 0}).TryBool()
	require.NoError(t, err)
	require.False(t, ok)

	_, err = NewArray(nil).TryInteger()
	require.ErrorIs(t, err, ErrInvalidConversion)

	_, err = Null{}.TryBytes()
	require.ErrorIs(t, err, ErrInvalidConversion)

	s, err := ToString(NewByteArray([]byte("NEO")))
	require.NoError(t, err)
	require.Equal(t, "NEO", s)
	_, err = ToString(NewByteArray([]byte{0xff}))
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestNewBigIntegerTooBig(t *testing.T) {
	require.Panics(t, func() { NewBigInteger(new(big.Int).Lsh(big.NewInt(1), 256)) })
}

func TestMap(t *testing.T) {
	m := NewMap()
	m.Add(Make("a"), Make(1))
	m.Add(Make("b"), Make(2))
	m.Add(Make("a"), Make(3))
	require.Equal(t, 2, m.Len())
	require.Equal(t, 0, m.Index(Make("a")))
	require.Equal(t, -1, m.Index(Make("c")))
	require.True(t, m.value[0].Value.Equals(Make(3)))
}

func TestTypeString(t *testing.T) {
	for typ, name := range typeNames {
		require.True(t, typ.IsValid())
		actual, err := FromString(name)
		require.NoError(t, err)
		require.Equal(t, typ, actual)
	}
	require.False(t, InvalidT.IsValid())
	require.Equal(t, "INVALID", InvalidT.String())
	_, err := FromString("Unknown")
	require.ErrorIs(t, err, ErrInvalidType)
}
