package rpcclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/nspcc-dev/neotx/pkg/config/netmode"
	"github.com/nspcc-dev/neotx/pkg/neorpc"
	"github.com/ybbus/jsonrpc/v3"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const (
	defaultDialTimeout    = 4 * time.Second
	defaultRequestTimeout = 4 * time.Second
)

var (
	// ErrRPC wraps errors returned by the node in the JSON-RPC error object,
	// use errors.As with *jsonrpc.RPCError to get the code and message.
	ErrRPC = errors.New("RPC error")

	errNetworkNotInitialized = errors.New("RPC client network is not initialized")
)

// Client represents the middleman for executing JSON RPC calls
// to remote NEO RPC nodes. Client is thread-safe and can be used from
// multiple goroutines.
type Client struct {
	cli      jsonrpc.RPCClient
	httpCli  *http.Client
	endpoint *url.URL
	ctx      context.Context
	opts     Options
	log      *zap.Logger

	cacheLock sync.RWMutex
	// cache stores RPC node related information the client is bound to,
	// it's filled in during Init().
	cache cache

	latestReqID *atomic.Uint64
	// getNextRequestID returns an ID to be used for the subsequent request creation.
	// It is defined on Client, so that our testing code can override this method
	// for the sake of more predictable request IDs generation behavior.
	getNextRequestID func() uint64
}

// Options defines options for the RPC client.
// All values are optional. If any duration is not specified,
// a default of 4 seconds will be used.
type Options struct {
	DialTimeout    time.Duration
	RequestTimeout time.Duration
	// Limit total number of connections per host. No limit by default.
	MaxConnsPerHost int
	// Logger is used to log failed requests, nop logger is used if not set.
	Logger *zap.Logger
}

type cache struct {
	initDone bool
	network  netmode.Magic
}

// New returns a new Client ready to use. Init should be called before using
// network-dependent methods (GetNetwork).
func New(ctx context.Context, endpoint string, opts Options) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported endpoint scheme %q", u.Scheme)
	}

	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	httpClient := &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: opts.DialTimeout,
			}).DialContext,
			MaxConnsPerHost: opts.MaxConnsPerHost,
		},
		Timeout: opts.RequestTimeout,
	}

	cl := &Client{
		cli: jsonrpc.NewClientWithOpts(u.String(), &jsonrpc.RPCClientOpts{
			HTTPClient:         httpClient,
			AllowUnknownFields: true,
		}),
		httpCli:     httpClient,
		endpoint:    u,
		ctx:         ctx,
		opts:        opts,
		log:         opts.Logger,
		latestReqID: atomic.NewUint64(0),
	}
	cl.getNextRequestID = cl.getRequestID
	return cl, nil
}

func (c *Client) getRequestID() uint64 {
	return c.latestReqID.Inc()
}

// Init sets magic of the network client connected to. This method should be
// called before GetNetwork.
func (c *Client) Init() error {
	version, err := c.GetVersion()
	if err != nil {
		return fmt.Errorf("failed to get network magic: %w", err)
	}

	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()

	c.cache.network = version.Protocol.Network
	c.cache.initDone = true
	return nil
}

// GetNetwork returns the network magic of the RPC node the client connected
// to. It requires Init to be done first, otherwise an error is returned.
func (c *Client) GetNetwork() (netmode.Magic, error) {
	c.cacheLock.RLock()
	defer c.cacheLock.RUnlock()

	if !c.cache.initDone {
		return 0, errNetworkNotInitialized
	}
	return c.cache.network, nil
}

// Endpoint returns the URL the client is bound to.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// Close closes unused underlying networks connections.
func (c *Client) Close() {
	c.httpCli.CloseIdleConnections()
}

func (c *Client) performRequest(method string, p []any, v any) error {
	if p == nil {
		p = []any{} // Some nodes don't accept requests without params.
	}
	var r = &jsonrpc.RPCRequest{
		JSONRPC: neorpc.JSONRPCVersion,
		Method:  method,
		Params:  p,
		ID:      int(c.getNextRequestID()),
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.opts.RequestTimeout)
	defer cancel()

	start := time.Now()
	raw, err := c.cli.CallRaw(ctx, r)
	addReqTimeMetric(method, time.Since(start))

	if raw != nil && raw.Error != nil {
		c.log.Debug("RPC request failed",
			zap.String("method", method),
			zap.Int("code", raw.Error.Code),
			zap.String("message", raw.Error.Message))
		return fmt.Errorf("%w: %w", ErrRPC, raw.Error)
	} else if err != nil {
		c.log.Debug("RPC request failed", zap.String("method", method), zap.Error(err))
		return err
	} else if raw == nil || raw.Result == nil {
		return errors.New("no result returned")
	}
	return raw.GetObject(v)
}

// Ping attempts to create a connection to the endpoint
// and returns an error if there is any.
func (c *Client) Ping() error {
	conn, err := net.DialTimeout("tcp", c.endpoint.Host, c.opts.DialTimeout)
	if err != nil {
		return err
	}
	_ = conn.Close()
	return nil
}
