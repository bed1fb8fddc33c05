package nativehashes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNativeHashes(t *testing.T) {
	require.Equal(t, "ef4073a0f2b305a38ec4050e4d3d28bc40ea63f5", Neo.StringLE())
	require.Equal(t, "d2a4cff31913016155e38e474a2c06d08be276cf", Gas.StringLE())
	require.Equal(t, "cc5e4edd9f5f8dba8bb65734541df7a1c081c67b", Policy.StringLE())
}
