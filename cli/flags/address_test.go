package flags

import (
	"flag"
	"io"
	"testing"

	"github.com/nspcc-dev/neotx/pkg/encoding/address"
	"github.com/nspcc-dev/neotx/pkg/util"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

func TestAddress_Set(t *testing.T) {
	value := util.Uint160{1, 2, 3}
	addr := Address{}

	t.Run("bad address", func(t *testing.T) {
		require.Error(t, addr.Set("not an address"))
		require.False(t, addr.IsSet)
	})

	t.Run("address", func(t *testing.T) {
		require.NoError(t, addr.Set(address.Uint160ToString(value)))
		require.True(t, addr.IsSet)
		require.Equal(t, value, addr.Uint160())
		require.Equal(t, address.Uint160ToString(value), addr.String())
	})

	t.Run("LE hash", func(t *testing.T) {
		a := Address{}
		require.NoError(t, a.Set("0x"+value.StringLE()))
		require.Equal(t, value, a.Value)
		require.NoError(t, a.Set(value.StringLE()))
		require.Equal(t, value, a.Value)
	})
}

func TestAddress_Uint160NotSet(t *testing.T) {
	require.Panics(t, func() { (&Address{}).Uint160() })
}

func TestAddressFlag_String(t *testing.T) {
	flag := AddressFlag{
		Name:  "to, t",
		Usage: "Address to pass",
	}

	require.Equal(t, "--to value, -t value\tAddress to pass", flag.String())
	require.Equal(t, "to, t", flag.GetName())
	require.False(t, flag.IsSet())
}

func TestAddress_getNameHelp(t *testing.T) {
	require.Equal(t, "-f value", getNameHelp("f"))
	require.Equal(t, "--flag value", getNameHelp("flag"))
}

func TestAddressFlag(t *testing.T) {
	const addr = "NRHkiY2hLy5ypD32CKZtL6pNwhbFMqDEhR"

	f := flag.NewFlagSet("", flag.ContinueOnError)
	f.SetOutput(io.Discard)
	AddressFlag{Name: "addr, a"}.Apply(f)
	require.NoError(t, f.Parse([]string{"--addr", addr}))
	require.Equal(t, addr, f.Lookup("a").Value.String())

	ctx := cli.NewContext(cli.NewApp(), f, nil)
	u, ok := AddressFromContext(ctx, "addr")
	require.True(t, ok)
	require.Equal(t, addr, address.Uint160ToString(u))

	_, ok = AddressFromContext(ctx, "unknown")
	require.False(t, ok)

	require.Error(t, f.Parse([]string{"--addr", "kek"}))
}
