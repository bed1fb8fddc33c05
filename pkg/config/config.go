package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/nspcc-dev/neotx/pkg/config/netmode"
	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	DefaultRPCEndpoint      = "http://localhost:10332"
	DefaultDialTimeout      = 4 * time.Second
	DefaultRequestTimeout   = 4 * time.Second
	DefaultOverpayTolerance = 100
	DefaultMaxLifespan      = 5760
	DefaultLogLevel         = "info"
	DefaultLogEncoding      = "console"
)

// Witness shape sources for the network fee calculation.
const (
	ShapeSourceWitnesses = "witnesses"
	ShapeSourceRPC       = "rpc"
)

// Version is the version of the tool, set at build time via ldflags
// (see Makefile). Plain builds report "dev".
var Version = "dev"

type (
	// Config is the top level configuration struct.
	Config struct {
		RPC       RPC          `yaml:"RPC"`
		Validator Validator    `yaml:"Validator"`
		Logger    Logger       `yaml:"Logger"`
		Metrics   BasicService `yaml:"Metrics"`
		Pprof     BasicService `yaml:"Pprof"`
	}

	// RPC is the node connection configuration.
	RPC struct {
		Endpoint string `yaml:"Endpoint"`
		// Network is the expected network (name or magic), the node is
		// checked against it. Any network is accepted if it's not set.
		Network         netmode.Magic `yaml:"Network"`
		DialTimeout     time.Duration `yaml:"DialTimeout"`
		RequestTimeout  time.Duration `yaml:"RequestTimeout"`
		MaxConnsPerHost int           `yaml:"MaxConnsPerHost"`
	}

	// Validator contains transaction validation parameters.
	Validator struct {
		// OverpayTolerance is the fee overpay (in basis points) that's
		// not reported.
		OverpayTolerance int64 `yaml:"OverpayTolerance"`
		// MaxLifespan is the maximum ValidUntilBlock increment.
		MaxLifespan uint32 `yaml:"MaxLifespan"`
		// WitnessShapeSource is either "witnesses" or "rpc".
		WitnessShapeSource string `yaml:"WitnessShapeSource"`
	}

	// Logger contains logging parameters.
	Logger struct {
		Level    string `yaml:"Level"`
		Encoding string `yaml:"Encoding"`
		Path     string `yaml:"Path"`
	}
)

// Default returns the configuration with default values.
func Default() Config {
	return Config{
		RPC: RPC{
			Endpoint:       DefaultRPCEndpoint,
			DialTimeout:    DefaultDialTimeout,
			RequestTimeout: DefaultRequestTimeout,
		},
		Validator: Validator{
			OverpayTolerance:   DefaultOverpayTolerance,
			MaxLifespan:        DefaultMaxLifespan,
			WitnessShapeSource: ShapeSourceWitnesses,
		},
		Logger: Logger{
			Level:    DefaultLogLevel,
			Encoding: DefaultLogEncoding,
		},
	}
}

// LoadFile loads the config from the provided path, missing values are
// taken from Default. Unknown fields are not allowed.
func LoadFile(configPath string) (Config, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}
	return Load(configData)
}

// Load decodes the config from YAML data, see LoadFile.
func Load(data []byte) (Config, error) {
	config := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	err := decoder.Decode(&config)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks the config for consistency.
func (c Config) Validate() error {
	u, err := url.Parse(c.RPC.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid RPC endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid RPC endpoint %q: http or https scheme expected", c.RPC.Endpoint)
	}
	if c.RPC.DialTimeout < 0 || c.RPC.RequestTimeout < 0 {
		return errors.New("negative RPC timeout")
	}
	if c.Validator.OverpayTolerance < 0 {
		return fmt.Errorf("negative OverpayTolerance: %d", c.Validator.OverpayTolerance)
	}
	if c.Validator.MaxLifespan == 0 {
		return errors.New("zero MaxLifespan")
	}
	switch c.Validator.WitnessShapeSource {
	case ShapeSourceWitnesses, ShapeSourceRPC:
	default:
		return fmt.Errorf("unknown WitnessShapeSource %q", c.Validator.WitnessShapeSource)
	}
	switch c.Logger.Encoding {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log encoding %q", c.Logger.Encoding)
	}
	if c.Metrics.Enabled && len(c.Metrics.Addresses) == 0 {
		return errors.New("metrics service is enabled, but no addresses specified")
	}
	if c.Pprof.Enabled && len(c.Pprof.Addresses) == 0 {
		return errors.New("pprof service is enabled, but no addresses specified")
	}
	return nil
}
