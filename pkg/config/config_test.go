package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nspcc-dev/neotx/pkg/config/netmode"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	cfg, err = Load([]byte("RPC:\n  Endpoint: https://rpc10.n3.nspcc.ru:10331\n"))
	require.NoError(t, err)
	require.Equal(t, "https://rpc10.n3.nspcc.ru:10331", cfg.RPC.Endpoint)
	require.Equal(t, DefaultRequestTimeout, cfg.RPC.RequestTimeout)
	require.Equal(t, int64(DefaultOverpayTolerance), cfg.Validator.OverpayTolerance)
}

func TestLoadFile(t *testing.T) {
	const data = `RPC:
  Endpoint: http://127.0.0.1:20332
  Network: 0x2a
  DialTimeout: 1s
  RequestTimeout: 10s
  MaxConnsPerHost: 5
Validator:
  OverpayTolerance: 0
  MaxLifespan: 240
  WitnessShapeSource: rpc
Logger:
  Level: debug
  Encoding: json
Metrics:
  Enabled: true
  Addresses:
    - ":2112"
`
	path := filepath.Join(t.TempDir(), "neotx.yml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, Config{
		RPC: RPC{
			Endpoint:        "http://127.0.0.1:20332",
			Network:         netmode.Magic(42),
			DialTimeout:     time.Second,
			RequestTimeout:  10 * time.Second,
			MaxConnsPerHost: 5,
		},
		Validator: Validator{
			OverpayTolerance:   0,
			MaxLifespan:        240,
			WitnessShapeSource: ShapeSourceRPC,
		},
		Logger: Logger{
			Level:    "debug",
			Encoding: "json",
		},
		Metrics: BasicService{
			Enabled:   true,
			Addresses: []string{":2112"},
		},
	}, cfg)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	for name, data := range map[string]string{
		"unknown field":     "Unknown: 1\n",
		"bad yaml":          "RPC: [\n",
		"bad scheme":        "RPC:\n  Endpoint: ws://localhost:10332\n",
		"bad network":       "RPC:\n  Network: neo2\n",
		"negative timeout":  "RPC:\n  RequestTimeout: -1s\n",
		"negative overpay":  "Validator:\n  OverpayTolerance: -1\n",
		"zero lifespan":     "Validator:\n  MaxLifespan: 0\n",
		"bad shape source":  "Validator:\n  WitnessShapeSource: magic\n",
		"bad log encoding":  "Logger:\n  Encoding: xml\n",
		"metrics addresses": "Metrics:\n  Enabled: true\n",
		"pprof addresses":   "Pprof:\n  Enabled: true\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load([]byte(data))
			require.Error(t, err)
		})
	}
}

func TestSampleConfigs(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "config", "*.yml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			_, err := LoadFile(f)
			require.NoError(t, err)
		})
	}
}
