/*
Package options contains a set of common CLI options and helper functions to use them.
*/
package options

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nspcc-dev/neotx/pkg/config"
	"github.com/nspcc-dev/neotx/pkg/rpcclient"
	"github.com/nspcc-dev/neotx/pkg/rpcclient/facade"
	"github.com/nspcc-dev/neotx/pkg/rpcclient/validator"
	"github.com/nspcc-dev/neotx/pkg/services/metrics"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultTimeout is the default timeout used for the whole command.
const DefaultTimeout = 10 * time.Second

// RPCEndpointFlag is a long flag name for an RPC endpoint. It can be used to
// check for flag presence in the context.
const RPCEndpointFlag = "rpc-endpoint"

// RPC is a set of flags used for RPC connections (endpoint and timeout).
var RPC = []cli.Flag{
	cli.StringFlag{
		Name:  RPCEndpointFlag + ", r",
		Usage: "RPC node address (overrides configuration)",
	},
	cli.DurationFlag{
		Name:  "timeout, s",
		Value: DefaultTimeout,
		Usage: "Timeout for the operation",
	},
}

// ConfigFile is a flag for commands that use configuration file.
var ConfigFile = cli.StringFlag{
	Name:  "config-file, c",
	Usage: "path to the configuration file, defaults are used if not specified",
}

// Debug is a flag enabling debug logging.
var Debug = cli.BoolFlag{
	Name:  "debug, d",
	Usage: "enable debug logging (overrides configuration)",
}

// Common is the set of flags used by all network commands.
var Common = append([]cli.Flag{ConfigFile, Debug}, RPC...)

// GetTimeoutContext returns a context.Context with the default or a user-set timeout.
func GetTimeoutContext(ctx *cli.Context) (context.Context, func()) {
	dur := ctx.Duration("timeout")
	if dur == 0 {
		dur = DefaultTimeout
	}
	return context.WithTimeout(context.Background(), dur)
}

// GetConfigFromContext loads the configuration file given (or returns the
// default configuration) and applies command line overrides to it.
func GetConfigFromContext(ctx *cli.Context) (config.Config, error) {
	var (
		cfg = config.Default()
		err error
	)
	if path := ctx.String("config-file"); path != "" {
		cfg, err = config.LoadFile(path)
		if err != nil {
			return cfg, err
		}
	}
	if endpoint := ctx.String(RPCEndpointFlag); endpoint != "" {
		cfg.RPC.Endpoint = endpoint
	}
	return cfg, cfg.Validate()
}

// HandleLoggingParams creates a logger from the configuration. Debug level
// is used if debug is set. If the log path is configured the directory for
// it is created.
func HandleLoggingParams(debug bool, cfg config.Logger) (*zap.Logger, *zap.AtomicLevel, error) {
	var (
		level = zapcore.InfoLevel
		err   error
	)
	if len(cfg.Level) > 0 {
		level, err = zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("log setting: %w", err)
		}
	}
	if debug {
		level = zapcore.DebugLevel
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cc.Encoding = config.DefaultLogEncoding
	if cfg.Encoding != "" {
		cc.Encoding = cfg.Encoding
	}
	cc.Level = zap.NewAtomicLevelAt(level)
	cc.Sampling = nil
	cc.OutputPaths = []string{"stderr"}

	if logPath := cfg.Path; logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), os.ModePerm); err != nil {
			return nil, nil, fmt.Errorf("could not create dir for logger: %w", err)
		}
		cc.OutputPaths = []string{logPath}
	}

	log, err := cc.Build()
	return log, &cc.Level, err
}

// ValidatorOptions converts validator configuration into validator options.
func ValidatorOptions(cfg config.Validator) []validator.Option {
	var opts []validator.Option
	if cfg.OverpayTolerance > 0 {
		opts = append(opts, validator.WithOverpayTolerance(cfg.OverpayTolerance))
	}
	if cfg.MaxLifespan > 0 {
		opts = append(opts, validator.WithMaxLifespan(cfg.MaxLifespan))
	}
	if cfg.WitnessShapeSource == config.ShapeSourceRPC {
		opts = append(opts, validator.WithWitnessShapeSource(validator.FromRPC))
	}
	return opts
}

// GetRPCClient returns an initialized RPC client for the given configuration.
func GetRPCClient(gctx context.Context, cfg config.RPC, log *zap.Logger) (*rpcclient.Client, cli.ExitCoder) {
	c, err := rpcclient.New(gctx, cfg.Endpoint, rpcclient.Options{
		DialTimeout:     cfg.DialTimeout,
		RequestTimeout:  cfg.RequestTimeout,
		MaxConnsPerHost: cfg.MaxConnsPerHost,
		Logger:          log,
	})
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	err = c.Init()
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	return c, nil
}

// Env is everything a network command needs.
type Env struct {
	Config config.Config
	Log    *zap.Logger
	Client *rpcclient.Client
	Facade *facade.Facade

	services []*metrics.Service
}

// GetEnv reads configuration, creates logger, RPC client and facade and
// starts monitoring services enabled in the configuration. Env must be
// closed after use.
func GetEnv(gctx context.Context, ctx *cli.Context) (*Env, cli.ExitCoder) {
	cfg, err := GetConfigFromContext(ctx)
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	log, _, err := HandleLoggingParams(ctx.Bool("debug"), cfg.Logger)
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	env := &Env{Config: cfg, Log: log}
	if cfg.Metrics.Enabled {
		env.services = append(env.services, metrics.NewPrometheusService(cfg.Metrics, log))
	}
	if cfg.Pprof.Enabled {
		env.services = append(env.services, metrics.NewPprofService(cfg.Pprof, log))
	}
	for _, s := range env.services {
		s.Start()
	}

	c, exitErr := GetRPCClient(gctx, cfg.RPC, log)
	if exitErr != nil {
		env.Close()
		return nil, exitErr
	}
	env.Client = c
	env.Facade, err = facade.New(c, facade.Options{
		Logger:    log,
		Validator: ValidatorOptions(cfg.Validator),
		Network:   cfg.RPC.Network,
	})
	if err != nil {
		env.Close()
		return nil, cli.NewExitError(err, 1)
	}
	return env, nil
}

// Close stops services, closes the client and flushes the log.
func (e *Env) Close() {
	if e.Client != nil {
		e.Client.Close()
	}
	for _, s := range e.services {
		s.ShutDown()
	}
	_ = e.Log.Sync()
}
