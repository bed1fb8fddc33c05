package netmode

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParse(t *testing.T) {
	for in, expected := range map[string]Magic{
		"":           Any,
		"MainNet":    MainNet,
		"testnet":    TestNet,
		"privnet":    PrivNet,
		"42":         42,
		"0x3554334e": TestNet,
	} {
		m, err := Parse(in)
		require.NoError(t, err, in)
		require.Equal(t, expected, m, in)
	}
	for _, in := range []string{"neo2", "-1", "0x100000000"} {
		_, err := Parse(in)
		require.Error(t, err, in)
	}
}

func TestMatches(t *testing.T) {
	require.True(t, Any.Matches(TestNet))
	require.True(t, TestNet.Matches(TestNet))
	require.False(t, MainNet.Matches(TestNet))
}

func TestString(t *testing.T) {
	require.Equal(t, "mainnet", MainNet.String())
	require.Equal(t, "net 0x2a", Magic(42).String())
}

func TestYAML(t *testing.T) {
	var cfg struct {
		A Magic `yaml:"A"`
		B Magic `yaml:"B"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("A: testnet\nB: 42\n"), &cfg))
	require.Equal(t, TestNet, cfg.A)
	require.Equal(t, Magic(42), cfg.B)

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	require.Equal(t, "A: testnet\nB: 42\n", string(data))

	require.Error(t, yaml.Unmarshal([]byte("A: nope\n"), &cfg))
}
