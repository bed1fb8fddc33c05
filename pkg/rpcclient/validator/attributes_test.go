package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAttributes(t *testing.T) {
	require.Equal(t, All, ValidUntilBlock.Union(SystemFee).Union(NetworkFee).Union(Script))
	require.Equal(t, SystemFee, All.Intersect(SystemFee))
	require.Equal(t, None, ValidUntilBlock.Intersect(SystemFee))
	require.True(t, All.Has(NetworkFee|Script))
	require.False(t, SystemFee.Has(SystemFee|Script))
	require.True(t, SystemFee.Has(None))
}

func TestAttributesString(t *testing.T) {
	for a, s := range map[Attributes]string{
		None:                     "None",
		All:                      "All",
		SystemFee:                "SystemFee",
		ValidUntilBlock | Script: "ValidUntilBlock|Script",
		NetworkFee | 0x80:        "NetworkFee|Unknown",
		SystemFee | NetworkFee:   "SystemFee|NetworkFee",
	} {
		require.Equal(t, s, a.String())
	}
}
