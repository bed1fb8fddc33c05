package main

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/nspcc-dev/neotx/cli/app"
	"github.com/nspcc-dev/neotx/cli/input"
	"github.com/nspcc-dev/neotx/pkg/config/netmode"
	"github.com/nspcc-dev/neotx/pkg/core/transaction"
	"github.com/nspcc-dev/neotx/pkg/crypto/keys"
	"github.com/nspcc-dev/neotx/pkg/encoding/address"
	"github.com/nspcc-dev/neotx/pkg/neorpc/result"
	"github.com/nspcc-dev/neotx/pkg/rpcclient/policy"
	"github.com/nspcc-dev/neotx/pkg/smartcontract"
	"github.com/nspcc-dev/neotx/pkg/util"
	"github.com/nspcc-dev/neotx/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
	"golang.org/x/term"
)

const (
	validatorWIF = "KxyjQ8eUa4FHt3Gvioyt1Wz29cTUrE4eTqX3yFSk1YFCsPL8uNsY"

	testHeight = 1000
	testGas    = 1000000

	testNetwork netmode.Magic = 42
)

var (
	validatorPriv, _ = keys.NewPrivateKeyFromWIF(validatorWIF)
	validatorHash    = validatorPriv.GetScriptHash()
	validatorAddr    = address.Uint160ToString(validatorHash)
)

type rpcRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
}

// testNode is a fake JSON-RPC node. Scripts are answered from the scripts
// map (keyed by hex) with the fallback to the successful invocation costing
// testGas.
type testNode struct {
	lock    sync.Mutex
	scripts map[string]*result.Invoke
	sent    []*transaction.Transaction
}

func newTestNode(t *testing.T) (*testNode, string) {
	n := &testNode{scripts: make(map[string]*result.Invoke)}
	feeScript, err := policy.FeeInformationScript()
	require.NoError(t, err)
	n.addScript(feeScript, stackitem.Make(1000), stackitem.Make(30))

	srv := httptest.NewServer(n)
	t.Cleanup(srv.Close)
	return n, srv.URL
}

func (n *testNode) addScript(script []byte, stack ...stackitem.Item) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.scripts[hex.EncodeToString(script)] = &result.Invoke{State: "HALT", Script: script, Stack: stack}
}

func (n *testNode) addCalls(t *testing.T, f func(b *smartcontract.Builder), stack ...stackitem.Item) {
	b := smartcontract.NewBuilder()
	f(b)
	script, err := b.Script()
	require.NoError(t, err)
	n.addScript(script, stack...)
}

func (n *testNode) lastSent(t *testing.T) *transaction.Transaction {
	n.lock.Lock()
	defer n.lock.Unlock()
	require.NotEmpty(t, n.sent)
	return n.sent[len(n.sent)-1]
}

func (n *testNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	res, err := n.handle(req)
	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if err != nil {
		resp["error"] = map[string]any{"code": -500, "message": err.Error()}
	} else {
		resp["result"] = res
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (n *testNode) handle(req rpcRequest) (any, error) {
	n.lock.Lock()
	defer n.lock.Unlock()

	switch req.Method {
	case "getversion":
		return &result.Version{
			UserAgent: "/Neo:3.6.0/",
			Protocol: result.Protocol{
				AddressVersion:              address.NEO3Prefix,
				Network:                     testNetwork,
				MaxValidUntilBlockIncrement: 5760,
			},
		}, nil
	case "getblockcount":
		return testHeight, nil
	case "invokescript":
		raw, err := paramBytes(req)
		if err != nil {
			return nil, err
		}
		if inv, ok := n.scripts[hex.EncodeToString(raw)]; ok {
			return inv, nil
		}
		return &result.Invoke{State: "HALT", GasConsumed: testGas, Script: raw}, nil
	case "sendrawtransaction":
		raw, err := paramBytes(req)
		if err != nil {
			return nil, err
		}
		tx, err := transaction.NewTransactionFromBytes(raw)
		if err != nil {
			return nil, err
		}
		n.sent = append(n.sent, tx)
		return map[string]string{"hash": "0x" + tx.Hash().StringLE()}, nil
	}
	return nil, errors.New("method not found")
}

func paramBytes(req rpcRequest) ([]byte, error) {
	if len(req.Params) == 0 {
		return nil, errors.New("no parameters")
	}
	var b64 string
	if err := json.Unmarshal(req.Params[0], &b64); err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(b64)
}

// executor represents context for a test instance.
// It can be safely used in multiple tests, but not in parallel.
type executor struct {
	// CLI is a cli application to test.
	CLI *cli.App
	// Node is a fake RPC node (can be nil).
	Node *testNode
	// Endpoint is the node URL.
	Endpoint string
	// Out contains command output.
	Out *bytes.Buffer
	// Err contains command errors.
	Err *bytes.Buffer
	// In contains command input.
	In *bytes.Buffer
}

func newExecutor(t *testing.T, needNode bool) *executor {
	e := &executor{
		CLI: app.New(),
		Out: bytes.NewBuffer(nil),
		Err: bytes.NewBuffer(nil),
		In:  bytes.NewBuffer(nil),
	}
	e.CLI.Writer = e.Out
	e.CLI.ErrWriter = e.Err
	if needNode {
		e.Node, e.Endpoint = newTestNode(t)
	}
	t.Cleanup(func() {
		e.Close(t)
	})
	return e
}

func (e *executor) Close(t *testing.T) {
	input.Terminal = nil
}

func (e *executor) getNextLine(t *testing.T) string {
	line, err := e.Out.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimSuffix(line, "\n")
}

func (e *executor) checkNextLine(t *testing.T, expected string) {
	line := e.getNextLine(t)
	e.checkLine(t, line, expected)
}

func (e *executor) checkLine(t *testing.T, line, expected string) {
	require.Regexp(t, expected, line)
}

func (e *executor) checkEOF(t *testing.T) {
	_, err := e.Out.ReadString('\n')
	require.True(t, errors.Is(err, io.EOF))
}

// checkTxSent reads the hash of the transaction sent from the output and
// returns the transaction the node got.
func (e *executor) checkTxSent(t *testing.T) *transaction.Transaction {
	h, err := util.Uint256DecodeStringLE(strings.TrimSpace(e.getNextLine(t)))
	require.NoError(t, err)
	tx := e.Node.lastSent(t)
	require.Equal(t, tx.Hash(), h)
	return tx
}

func setExitFunc() <-chan int {
	ch := make(chan int, 1)
	cli.OsExiter = func(code int) {
		ch <- code
	}
	return ch
}

func checkExit(t *testing.T, ch <-chan int, code int) {
	select {
	case c := <-ch:
		require.Equal(t, code, c)
	default:
		if code != 0 {
			require.Fail(t, "no exit was called")
		}
	}
}

// RunWithError runs command and checks that is exits with error.
func (e *executor) RunWithError(t *testing.T, args ...string) {
	ch := setExitFunc()
	require.Error(t, e.run(args...))
	checkExit(t, ch, 1)
}

// Run runs command and checks that there were no errors.
func (e *executor) Run(t *testing.T, args ...string) {
	ch := setExitFunc()
	require.NoError(t, e.run(args...))
	checkExit(t, ch, 0)
}

func (e *executor) run(args ...string) error {
	e.Out.Reset()
	e.Err.Reset()
	input.Terminal = term.NewTerminal(input.ReadWriter{
		Reader: e.In,
		Writer: io.Discard,
	}, "")
	err := e.CLI.Run(args)
	input.Terminal = nil
	e.In.Reset()
	return err
}

func requireSigned(t *testing.T, tx *transaction.Transaction, pub *keys.PublicKey) {
	w := tx.WitnessFor(pub.GetScriptHash())
	require.NotNil(t, w)
	require.Len(t, w.InvocationScript, 2+keys.SignatureLen)
	require.True(t, pub.Verify(w.InvocationScript[2:], tx.GetSignedHash(uint32(testNetwork)).BytesBE()))
}

func generateKeys(t *testing.T, n int) ([]*keys.PrivateKey, keys.PublicKeys) {
	privs := make([]*keys.PrivateKey, n)
	pubs := make(keys.PublicKeys, n)
	for i := range privs {
		var err error
		privs[i], err = keys.NewPrivateKey()
		require.NoError(t, err)
		pubs[i] = privs[i].PublicKey()
	}
	return privs, pubs
}
