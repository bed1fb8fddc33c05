package rpcclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/nspcc-dev/neotx/pkg/config/netmode"
	"github.com/nspcc-dev/neotx/pkg/core/transaction"
	"github.com/nspcc-dev/neotx/pkg/util"
	"github.com/nspcc-dev/neotx/pkg/vm/stackitem"
	"github.com/nspcc-dev/neotx/pkg/vm/vmstate"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/ybbus/jsonrpc/v3"
)

type rpcRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
}

// testServer answers with the given raw results (or errors) keyed by method
// and remembers the requests it got.
type testServer struct {
	lock     sync.Mutex
	requests []rpcRequest
	results  map[string]string
	errors   map[string]string
}

func (s *testServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	s.lock.Lock()
	s.requests = append(s.requests, req)
	s.lock.Unlock()

	w.Header().Set("Content-Type", "application/json")
	id, _ := json.Marshal(req.ID)
	if e, ok := s.errors[req.Method]; ok {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(id) + `,"error":` + e + `}`))
		return
	}
	res, ok := s.results[req.Method]
	if !ok {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(id) + `,"error":{"code":-32601,"message":"Method not found"}}`))
		return
	}
	_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(id) + `,"result":` + res + `}`))
}

func (s *testServer) last(t *testing.T) rpcRequest {
	s.lock.Lock()
	defer s.lock.Unlock()
	require.NotEmpty(t, s.requests)
	return s.requests[len(s.requests)-1]
}

func newTestClient(t *testing.T, s *testServer) *Client {
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), srv.URL, Options{})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

const versionResult = `{
	"tcpport": 10333,
	"nonce": 1677922561,
	"useragent": "/Neo:3.6.0/",
	"protocol": {
		"addressversion": 53,
		"network": 860833102,
		"validatorscount": 7,
		"msperblock": 15000,
		"maxtraceableblocks": 2102400,
		"maxvaliduntilblockincrement": 5760,
		"maxtransactionsperblock": 512,
		"memorypoolmaxtransactions": 50000,
		"initialgasdistribution": 5200000000000000
	}
}`

func TestNew(t *testing.T) {
	_, err := New(context.Background(), "ftp://localhost", Options{})
	require.Error(t, err)
	_, err = New(context.Background(), ":bad url", Options{})
	require.Error(t, err)

	c, err := New(context.Background(), "http://localhost:20331", Options{})
	require.NoError(t, err)
	require.Equal(t, "http://localhost:20331", c.Endpoint())
	require.Equal(t, defaultRequestTimeout, c.opts.RequestTimeout)
	require.Equal(t, defaultDialTimeout, c.opts.DialTimeout)
}

func TestGetBlockCount(t *testing.T) {
	s := &testServer{results: map[string]string{"getblockcount": "42"}}
	c := newTestClient(t, s)

	h, err := c.GetBlockCount()
	require.NoError(t, err)
	require.Equal(t, uint32(42), h)

	req := s.last(t)
	require.Equal(t, "2.0", req.JSONRPC)
	require.Equal(t, "getblockcount", req.Method)
	require.NotNil(t, req.Params)
	require.Empty(t, req.Params)

	_, err = c.GetBlockCount()
	require.NoError(t, err)
	require.Equal(t, req.ID+1, s.last(t).ID)

	require.NotZero(t, testutil.CollectAndCount(rpcTimes))
}

func TestInitAndNetwork(t *testing.T) {
	s := &testServer{results: map[string]string{"getversion": versionResult}}
	c := newTestClient(t, s)

	_, err := c.GetNetwork()
	require.Error(t, err)

	require.NoError(t, c.Init())
	m, err := c.GetNetwork()
	require.NoError(t, err)
	require.Equal(t, netmode.MainNet, m)

	v, err := c.GetVersion()
	require.NoError(t, err)
	require.Equal(t, uint32(5760), v.Protocol.MaxValidUntilBlockIncrement)
	require.Equal(t, "/Neo:3.6.0/", v.UserAgent)
}

func TestInitError(t *testing.T) {
	s := &testServer{}
	c := newTestClient(t, s)
	require.Error(t, c.Init())
	_, err := c.GetNetwork()
	require.Error(t, err)
}

func TestRPCError(t *testing.T) {
	s := &testServer{errors: map[string]string{
		"getblockcount": `{"code":-500,"message":"Internal error","data":"oops"}`,
	}}
	c := newTestClient(t, s)

	_, err := c.GetBlockCount()
	require.ErrorIs(t, err, ErrRPC)
	var rpcErr *jsonrpc.RPCError
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, -500, rpcErr.Code)
	require.Equal(t, "Internal error", rpcErr.Message)
}

func TestHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(context.Background(), srv.URL, Options{})
	require.NoError(t, err)
	_, err = c.GetBlockCount()
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrRPC)
}

func TestNullResult(t *testing.T) {
	s := &testServer{results: map[string]string{"getblockcount": "null"}}
	c := newTestClient(t, s)
	_, err := c.GetBlockCount()
	require.Error(t, err)
}

func TestInvokeScript(t *testing.T) {
	s := &testServer{results: map[string]string{"invokescript": `{
		"script": "EMAfDAhkZWNpbWFscw==",
		"state": "HALT",
		"gasconsumed": "2007570",
		"exception": null,
		"stack": [{"type": "Integer", "value": "8"}]
	}`}}
	c := newTestClient(t, s)

	script := []byte{1, 2, 3}
	signers := []transaction.Signer{{
		Account: util.Uint160{1, 2, 3},
		Scopes:  transaction.CalledByEntry,
	}}
	res, err := c.InvokeScript(script, signers)
	require.NoError(t, err)
	require.Equal(t, vmstate.Halt, res.VMState())
	require.Equal(t, int64(2007570), res.GasConsumed)
	require.Equal(t, []stackitem.Item{stackitem.Make(8)}, res.Stack)

	req := s.last(t)
	require.Len(t, req.Params, 2)
	var b64 string
	require.NoError(t, json.Unmarshal(req.Params[0], &b64))
	require.Equal(t, base64.StdEncoding.EncodeToString(script), b64)
	var gotSigners []transaction.Signer
	require.NoError(t, json.Unmarshal(req.Params[1], &gotSigners))
	require.Equal(t, signers, gotSigners)

	_, err = c.InvokeScript(script, nil)
	require.NoError(t, err)
	require.Len(t, s.last(t).Params, 1)
}

func TestCalculateNetworkFee(t *testing.T) {
	s := &testServer{results: map[string]string{"calculatenetworkfee": `{"networkfee": "1230610"}`}}
	c := newTestClient(t, s)

	tx := transaction.New([]byte{byte(0x11)}, 0)
	tx.Signers = []transaction.Signer{{Account: util.Uint160{1}}}
	fee, err := c.CalculateNetworkFee(tx)
	require.NoError(t, err)
	require.Equal(t, int64(1230610), fee)

	var b64 string
	require.NoError(t, json.Unmarshal(s.last(t).Params[0], &b64))
	require.Equal(t, base64.StdEncoding.EncodeToString(tx.Bytes()), b64)
}

func TestSendRawTransaction(t *testing.T) {
	h := util.Uint256{1, 2, 3}
	s := &testServer{results: map[string]string{"sendrawtransaction": `{"hash": "` + h.StringLE() + `"}`}}
	c := newTestClient(t, s)

	tx := transaction.New([]byte{byte(0x11)}, 0)
	tx.Signers = []transaction.Signer{{Account: util.Uint160{1}}}
	res, err := c.SendRawTransaction(tx)
	require.NoError(t, err)
	require.Equal(t, h, res)

	s.errors = map[string]string{"sendrawtransaction": `{"code":-501,"message":"Already exists"}`}
	res, err = c.SendRawTransaction(tx)
	require.ErrorIs(t, err, ErrRPC)
	require.Equal(t, tx.Hash(), res)
}
