package validator

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/nspcc-dev/neotx/pkg/core/fee"
	"github.com/nspcc-dev/neotx/pkg/core/transaction"
	"github.com/nspcc-dev/neotx/pkg/crypto/hash"
	"github.com/nspcc-dev/neotx/pkg/crypto/keys"
	"github.com/nspcc-dev/neotx/pkg/neorpc/result"
	"github.com/nspcc-dev/neotx/pkg/rpcclient/policy"
	"github.com/nspcc-dev/neotx/pkg/smartcontract"
	"github.com/nspcc-dev/neotx/pkg/vm/opcode"
	"github.com/nspcc-dev/neotx/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

const (
	testHeight        = 1000
	testGas           = 1000000
	testFeePerByte    = 1000
	testExecFeeFactor = 30
)

type testRPC struct {
	height  uint32
	err     error
	inv     *result.Invoke
	signers []transaction.Signer
}

func (r *testRPC) GetBlockCount() (uint32, error) {
	return r.height, r.err
}

func (r *testRPC) InvokeScript(script []byte, signers []transaction.Signer) (*result.Invoke, error) {
	if r.err != nil {
		return nil, r.err
	}
	feeScript, err := policy.FeeInformationScript()
	if err != nil {
		return nil, err
	}
	if bytes.Equal(script, feeScript) {
		return &result.Invoke{
			State: "HALT",
			Stack: []stackitem.Item{stackitem.Make(testFeePerByte), stackitem.Make(testExecFeeFactor)},
		}, nil
	}
	r.signers = signers
	return r.inv, nil
}

type testCalcRPC struct {
	*testRPC
	netFee int64
	calls  int
}

func (r *testCalcRPC) CalculateNetworkFee(tx *transaction.Transaction) (int64, error) {
	r.calls++
	return r.netFee, nil
}

func newTestRPC() *testRPC {
	return &testRPC{
		height: testHeight,
		inv:    &result.Invoke{State: "HALT", GasConsumed: testGas},
	}
}

func newSigTx(t *testing.T) *transaction.Transaction {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	tx := transaction.New([]byte{byte(opcode.PUSH1)}, 0)
	tx.ValidUntilBlock = testHeight + 100
	tx.Signers = []transaction.Signer{{
		Account: priv.GetScriptHash(),
		Scopes:  transaction.CalledByEntry,
	}}
	tx.Scripts = []transaction.Witness{{
		VerificationScript: priv.PublicKey().GetVerificationScript(),
	}}
	return tx
}

func sigTxNetFee(tx *transaction.Transaction) int64 {
	vs := tx.Scripts[0].VerificationScript
	size := tx.UnsignedSize() + 1 + fee.SizeForSignatureWitness(vs)
	return fee.NetworkFeeForSignature(testExecFeeFactor) + int64(size)*testFeePerByte
}

func TestValidUntilBlock(t *testing.T) {
	rpc := newTestRPC()
	tx := newSigTx(t)
	v := New(rpc, tx)

	tx.ValidUntilBlock = testHeight + MaxLifespan
	s, err := v.ValidateValidUntilBlock(false)
	require.NoError(t, err)
	require.Equal(t, Suggestion{Valid: true}, s)

	for _, vub := range []uint32{testHeight - 1, testHeight, testHeight + MaxLifespan + 1} {
		tx.ValidUntilBlock = vub
		s, err = v.ValidateValidUntilBlock(false)
		require.NoError(t, err)
		require.False(t, s.Valid, vub)
		require.False(t, s.Fixed)
		require.Equal(t, MsgLifespanOutOfRange, s.Message)
		require.Equal(t, big.NewInt(int64(vub)), s.Prev)
		require.Equal(t, big.NewInt(testHeight+MaxLifespan-1), s.Suggestion)
		require.Equal(t, vub, tx.ValidUntilBlock)
	}

	tx.ValidUntilBlock = testHeight - 1
	s, err = v.ValidateValidUntilBlock(true)
	require.NoError(t, err)
	require.True(t, s.Valid)
	require.True(t, s.Fixed)
	require.Equal(t, big.NewInt(testHeight-1), s.Prev)
	require.Equal(t, uint32(testHeight+5759), tx.ValidUntilBlock)

	tx.ValidUntilBlock = testHeight + ExpiryWarningBlocks
	s, err = v.ValidateValidUntilBlock(true)
	require.NoError(t, err)
	require.True(t, s.Valid)
	require.False(t, s.Fixed)
	require.Equal(t, MsgLifespanLimited, s.Message)
	require.Equal(t, uint32(testHeight+ExpiryWarningBlocks), tx.ValidUntilBlock)

	rpc.err = errors.New("connection refused")
	_, err = v.ValidateValidUntilBlock(true)
	require.Error(t, err)
}

func TestValidUntilBlockCustomLifespan(t *testing.T) {
	tx := newSigTx(t)
	tx.ValidUntilBlock = testHeight + 200
	v := New(newTestRPC(), tx, WithMaxLifespan(100))

	s, err := v.ValidateValidUntilBlock(true)
	require.NoError(t, err)
	require.True(t, s.Fixed)
	require.Equal(t, uint32(testHeight+99), tx.ValidUntilBlock)
}

func TestSystemFee(t *testing.T) {
	rpc := newTestRPC()
	tx := newSigTx(t)
	v := New(rpc, tx)

	tx.SystemFee = testGas
	s, err := v.ValidateSystemFee(false)
	require.NoError(t, err)
	require.Equal(t, Suggestion{Valid: true}, s)
	require.Equal(t, tx.Signers, rpc.signers)

	tx.SystemFee = testGas - 1
	s, err = v.ValidateSystemFee(false)
	require.NoError(t, err)
	require.Equal(t, Suggestion{
		Prev:       big.NewInt(testGas - 1),
		Suggestion: big.NewInt(testGas),
		Message:    MsgSystemFeeShort,
	}, s)
	require.Equal(t, int64(testGas-1), tx.SystemFee)

	s, err = v.ValidateSystemFee(true)
	require.NoError(t, err)
	require.True(t, s.Valid)
	require.True(t, s.Fixed)
	require.Equal(t, int64(testGas), tx.SystemFee)

	// Nothing to fix the second time.
	s, err = v.ValidateSystemFee(true)
	require.NoError(t, err)
	require.Equal(t, Suggestion{Valid: true}, s)
}

func TestSystemFeeOverpay(t *testing.T) {
	tx := newSigTx(t)
	v := New(newTestRPC(), tx)

	tx.SystemFee = testGas + testGas/100
	s, err := v.ValidateSystemFee(true)
	require.NoError(t, err)
	require.Equal(t, Suggestion{Valid: true}, s)

	tx.SystemFee = testGas + testGas/100 + 1
	s, err = v.ValidateSystemFee(true)
	require.NoError(t, err)
	require.True(t, s.Valid)
	require.False(t, s.Fixed)
	require.Equal(t, MsgSystemFeeOverpay, s.Message)
	require.Equal(t, big.NewInt(testGas), s.Suggestion)
	require.Equal(t, int64(testGas+testGas/100+1), tx.SystemFee)

	v = New(newTestRPC(), tx, WithOverpayTolerance(0))
	tx.SystemFee = testGas + 1
	s, err = v.ValidateSystemFee(false)
	require.NoError(t, err)
	require.Equal(t, MsgSystemFeeOverpay, s.Message)
}

func TestSystemFeeFault(t *testing.T) {
	rpc := newTestRPC()
	rpc.inv = &result.Invoke{State: "FAULT", GasConsumed: testGas, FaultException: "at instruction 0 (ABORT)"}
	tx := newSigTx(t)
	v := New(rpc, tx)

	for _, fix := range []bool{false, true} {
		s, err := v.ValidateSystemFee(fix)
		require.NoError(t, err)
		require.False(t, s.Valid)
		require.False(t, s.Fixed)
		require.Equal(t, "Cannot get precise systemFee as script execution on node reports FAULT.", s.Message)
		require.Equal(t, int64(0), tx.SystemFee)
	}

	rpc.err = errors.New("timeout")
	_, err := v.ValidateSystemFee(true)
	require.Error(t, err)
}

func TestNetworkFeeSignature(t *testing.T) {
	tx := newSigTx(t)
	v := New(newTestRPC(), tx)
	expected := sigTxNetFee(tx)

	s, err := v.ValidateNetworkFee(false)
	require.NoError(t, err)
	require.False(t, s.Valid)
	require.Equal(t, MsgNetworkFeeShort, s.Message)
	require.Equal(t, big.NewInt(expected), s.Suggestion)

	s, err = v.ValidateNetworkFee(true)
	require.NoError(t, err)
	require.True(t, s.Fixed)
	require.Equal(t, expected, tx.NetworkFee)

	s, err = v.ValidateNetworkFee(true)
	require.NoError(t, err)
	require.Equal(t, Suggestion{Valid: true}, s)

	tx.NetworkFee = 2 * expected
	s, err = v.ValidateNetworkFee(true)
	require.NoError(t, err)
	require.True(t, s.Valid)
	require.False(t, s.Fixed)
	require.Equal(t, MsgNetworkFeeOverpay, s.Message)
	require.Equal(t, 2*expected, tx.NetworkFee)
}

func TestNetworkFeeMultisig(t *testing.T) {
	pubs := make(keys.PublicKeys, 3)
	for i := range pubs {
		priv, err := keys.NewPrivateKey()
		require.NoError(t, err)
		pubs[i] = priv.PublicKey()
	}
	script, err := smartcontract.CreateMultiSigRedeemScript(2, pubs)
	require.NoError(t, err)

	tx := transaction.New([]byte{byte(opcode.PUSH1)}, 0)
	tx.Signers = []transaction.Signer{{Account: hash.Hash160(script)}}
	tx.Scripts = []transaction.Witness{{VerificationScript: script}}

	info := &policy.FeeInformation{FeePerByte: testFeePerByte, ExecFeeFactor: testExecFeeFactor}
	netFee, err := CalculateNetworkFee(tx, info)
	require.NoError(t, err)
	size := tx.UnsignedSize() + 1 + fee.SizeForMultiSigWitness(script, 2)
	require.Equal(t, fee.NetworkFeeForMultiSig(testExecFeeFactor, 2, 3)+int64(size)*testFeePerByte, netFee)

	s, err := New(newTestRPC(), tx).ValidateNetworkFee(true)
	require.NoError(t, err)
	require.True(t, s.Fixed)
	require.Equal(t, netFee, tx.NetworkFee)
}

func TestNetworkFeeUnknownWitness(t *testing.T) {
	tx := newSigTx(t)
	tx.Scripts = nil

	_, err := New(newTestRPC(), tx).ValidateNetworkFee(true)
	require.ErrorIs(t, err, ErrUnknownWitness)

	tx.Scripts = []transaction.Witness{{VerificationScript: []byte{byte(opcode.PUSH1)}}}
	tx.Signers[0].Account = hash.Hash160(tx.Scripts[0].VerificationScript)
	_, err = New(newTestRPC(), tx).ValidateNetworkFee(true)
	require.ErrorIs(t, err, ErrUnknownWitness)

	rpc := &testCalcRPC{testRPC: newTestRPC(), netFee: 12345}
	s, err := New(rpc, tx).ValidateNetworkFee(true)
	require.NoError(t, err)
	require.True(t, s.Fixed)
	require.Equal(t, int64(12345), tx.NetworkFee)
	require.Equal(t, 1, rpc.calls)
}

func TestNetworkFeeFromRPC(t *testing.T) {
	tx := newSigTx(t)

	_, err := New(newTestRPC(), tx, WithWitnessShapeSource(FromRPC)).ValidateNetworkFee(true)
	require.ErrorIs(t, err, ErrUnknownWitness)

	rpc := &testCalcRPC{testRPC: newTestRPC(), netFee: 54321}
	s, err := New(rpc, tx, WithWitnessShapeSource(FromRPC)).ValidateNetworkFee(true)
	require.NoError(t, err)
	require.True(t, s.Fixed)
	require.Equal(t, int64(54321), tx.NetworkFee)

	// Standard witnesses are calculated locally by default.
	rpc.calls = 0
	tx.NetworkFee = 0
	_, err = New(rpc, tx).ValidateNetworkFee(true)
	require.NoError(t, err)
	require.Equal(t, 0, rpc.calls)
	require.Equal(t, sigTxNetFee(tx), tx.NetworkFee)
}

func TestValidateScript(t *testing.T) {
	rpc := newTestRPC()
	v := New(rpc, newSigTx(t))

	s, err := v.ValidateScript()
	require.NoError(t, err)
	require.Equal(t, Suggestion{Valid: true}, s)

	rpc.inv = &result.Invoke{State: "FAULT", FaultException: "boom"}
	s, err = v.ValidateScript()
	require.NoError(t, err)
	require.False(t, s.Valid)
	require.Equal(t, "Encountered FAULT when validating script. boom", s.Message)

	rpc.err = errors.New("")
	_, err = v.ValidateScript()
	require.Error(t, err)
}

func newBrokenTx(t *testing.T) *transaction.Transaction {
	tx := newSigTx(t)
	tx.ValidUntilBlock = testHeight - 1
	tx.SystemFee = 0
	tx.NetworkFee = 0
	return tx
}

func TestValidateAll(t *testing.T) {
	tx := newBrokenTx(t)
	res, err := New(newTestRPC(), tx).Validate(All, All)
	require.NoError(t, err)
	require.True(t, res.Valid)
	require.Len(t, res.Fields, 4)
	for _, a := range []Attributes{ValidUntilBlock, SystemFee, NetworkFee} {
		require.True(t, res.Fields[a].Valid, a)
		require.True(t, res.Fields[a].Fixed, a)
	}
	require.Equal(t, Suggestion{Valid: true}, res.Fields[Script])
	require.Empty(t, res.Messages())

	require.Equal(t, uint32(testHeight+5759), tx.ValidUntilBlock)
	require.Equal(t, int64(testGas), tx.SystemFee)
	require.Equal(t, sigTxNetFee(tx), tx.NetworkFee)
}

func TestValidatePartialFix(t *testing.T) {
	tx := newBrokenTx(t)
	res, err := New(newTestRPC(), tx).Validate(All, SystemFee)
	require.NoError(t, err)
	require.False(t, res.Valid)
	require.True(t, res.Fields[SystemFee].Fixed)
	require.False(t, res.Fields[ValidUntilBlock].Valid)
	require.False(t, res.Fields[NetworkFee].Valid)
	require.True(t, res.Fields[Script].Valid)
	require.Equal(t, []string{
		"ValidUntilBlock: " + MsgLifespanOutOfRange,
		"NetworkFee: " + MsgNetworkFeeShort,
	}, res.Messages())
}

func TestValidateSubset(t *testing.T) {
	tx := newBrokenTx(t)
	res, err := New(newTestRPC(), tx).Validate(None, All)
	require.NoError(t, err)
	require.True(t, res.Valid)
	require.Empty(t, res.Fields)
	require.Equal(t, uint32(testHeight-1), tx.ValidUntilBlock)

	res, err = New(newTestRPC(), tx).Validate(SystemFee|Script, All)
	require.NoError(t, err)
	require.True(t, res.Valid)
	require.Len(t, res.Fields, 2)
	require.Equal(t, uint32(testHeight-1), tx.ValidUntilBlock)

	rpc := newTestRPC()
	rpc.err = errors.New("")
	_, err = New(rpc, tx).Validate(All, All)
	require.Error(t, err)
}

func TestResultNotes(t *testing.T) {
	res := &Result{Fields: map[Attributes]Suggestion{
		ValidUntilBlock: {Valid: true, Message: MsgLifespanLimited},
		SystemFee:       {Valid: false, Message: MsgSystemFeeShort},
		NetworkFee:      {Valid: true},
	}}
	require.Equal(t, []string{"ValidUntilBlock: " + MsgLifespanLimited}, res.Notes())
	require.Equal(t, []string{"SystemFee: " + MsgSystemFeeShort}, res.Messages())
}
