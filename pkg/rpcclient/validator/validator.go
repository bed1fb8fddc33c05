/*
Package validator checks transaction fields against the current network state
and optionally fixes them.

Validation results are data: an invalid field is reported via Suggestion, while
errors are only returned when the node can't be queried (network and RPC
failures), so a failed request never looks like an invalid transaction.
*/
package validator

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neotx/pkg/core/fee"
	"github.com/nspcc-dev/neotx/pkg/core/transaction"
	"github.com/nspcc-dev/neotx/pkg/encoding/address"
	"github.com/nspcc-dev/neotx/pkg/io"
	"github.com/nspcc-dev/neotx/pkg/neorpc/result"
	"github.com/nspcc-dev/neotx/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neotx/pkg/rpcclient/policy"
	"github.com/nspcc-dev/neotx/pkg/vm"
	"go.uber.org/zap"
)

const (
	// MaxLifespan is the maximum number of blocks a transaction can stay
	// valid for.
	MaxLifespan = 5760
	// ExpiryWarningBlocks is the number of blocks before expiration that
	// triggers a lifespan warning for otherwise valid transactions.
	ExpiryWarningBlocks = 20
	// DefaultOverpayTolerance is the fee overpay (in basis points of the
	// required fee) that is not reported.
	DefaultOverpayTolerance = 100
)

// Messages used in suggestions.
const (
	MsgLifespanOutOfRange = "Your transaction lifespan was out of range."
	MsgLifespanLimited    = "Your transaction has a very limited lifespan. Consider increasing it."
	MsgSystemFeeFault     = "Cannot get precise systemFee as script execution on node reports FAULT."
	MsgSystemFeeShort     = "Insufficient fees attached to run the script."
	MsgSystemFeeOverpay   = "Overpaying for running the script."
	MsgNetworkFeeShort    = "Insufficient network fees."
	MsgNetworkFeeOverpay  = "Overpaying network fee."
	MsgScriptFault        = "Encountered FAULT when validating script."
)

// ErrUnknownWitness is returned when the network fee can't be calculated
// locally for some signer and the RPC can't calculate it either.
var ErrUnknownWitness = errors.New("can't calculate witness cost")

type (
	// RPC is a set of node methods used by the Validator.
	RPC interface {
		invoker.RPCInvoke
		GetBlockCount() (uint32, error)
	}

	// NetworkFeeCalculator is an optional RPC extension used for signers
	// whose witnesses can't be processed locally.
	NetworkFeeCalculator interface {
		CalculateNetworkFee(tx *transaction.Transaction) (int64, error)
	}

	// WitnessShapeSource defines where the Validator gets witness costs
	// from when checking the network fee.
	WitnessShapeSource byte

	// Validator checks a single transaction. It changes the transaction
	// when fixing fields, so it must not be used concurrently with other
	// users of the same transaction.
	Validator struct {
		rpc    RPC
		tx     *transaction.Transaction
		policy *policy.ContractReader
		log    *zap.Logger

		maxLifespan      uint32
		overpayTolerance int64
		shapeSource      WitnessShapeSource
	}

	// Option is a Validator option.
	Option func(*Validator)

	// Suggestion is the result of a single field validation. Prev and
	// Suggestion are nil when not applicable.
	Suggestion struct {
		Valid      bool
		Fixed      bool
		Prev       *big.Int
		Suggestion *big.Int
		Message    string
	}

	// Result is an aggregated validation result, Valid is true iff all
	// validated fields are valid (after fixes).
	Result struct {
		Valid  bool
		Fields map[Attributes]Suggestion
	}
)

const (
	// FromWitnesses classifies verification scripts of the witnesses
	// attached to the transaction (they may have empty invocation scripts)
	// and falls back to NetworkFeeCalculator if any signer has no witness
	// or its shape is not known.
	FromWitnesses WitnessShapeSource = iota
	// FromRPC always uses NetworkFeeCalculator.
	FromRPC
)

// WithLogger sets the logger used to report fixes.
func WithLogger(log *zap.Logger) Option {
	return func(v *Validator) {
		v.log = log
	}
}

// WithMaxLifespan overrides MaxLifespan.
func WithMaxLifespan(blocks uint32) Option {
	return func(v *Validator) {
		v.maxLifespan = blocks
	}
}

// WithOverpayTolerance sets the tolerated fee overpay in basis points.
func WithOverpayTolerance(bp int64) Option {
	return func(v *Validator) {
		v.overpayTolerance = bp
	}
}

// WithWitnessShapeSource sets the network fee calculation source.
func WithWitnessShapeSource(src WitnessShapeSource) Option {
	return func(v *Validator) {
		v.shapeSource = src
	}
}

// New creates a Validator for the given transaction.
func New(rpc RPC, tx *transaction.Transaction, opts ...Option) *Validator {
	v := &Validator{
		rpc:              rpc,
		tx:               tx,
		policy:           policy.NewReader(invoker.New(rpc, nil)),
		log:              zap.NewNop(),
		maxLifespan:      MaxLifespan,
		overpayTolerance: DefaultOverpayTolerance,
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Transaction returns the transaction being validated.
func (v *Validator) Transaction() *transaction.Transaction {
	return v.tx
}

// ValidateValidUntilBlock checks that ValidUntilBlock is above the current
// height and not farther than the maximum lifespan from it.
func (v *Validator) ValidateValidUntilBlock(autoFix bool) (Suggestion, error) {
	height, err := v.rpc.GetBlockCount()
	if err != nil {
		return Suggestion{}, fmt.Errorf("failed to get block count: %w", err)
	}
	var (
		prev       = v.tx.ValidUntilBlock
		suggestion = height + v.maxLifespan - 1
	)
	if prev <= height || prev > height+v.maxLifespan {
		if autoFix {
			v.tx.ValidUntilBlock = suggestion
			v.log.Debug("fixed ValidUntilBlock",
				zap.Uint32("prev", prev),
				zap.Uint32("new", suggestion))
			return fixed(uintToBig(prev), uintToBig(suggestion)), nil
		}
		return invalid(uintToBig(prev), uintToBig(suggestion), MsgLifespanOutOfRange), nil
	}
	if prev-height <= ExpiryWarningBlocks {
		return suggest(uintToBig(prev), uintToBig(suggestion), MsgLifespanLimited), nil
	}
	return valid(), nil
}

// ValidateSystemFee checks that SystemFee covers the gas consumed by the
// script test invocation. Faulted scripts can't be fixed.
func (v *Validator) ValidateSystemFee(autoFix bool) (Suggestion, error) {
	res, err := v.invoke()
	if err != nil {
		return Suggestion{}, err
	}
	if res.HasFaulted() {
		return Suggestion{Message: MsgSystemFeeFault}, nil
	}
	var (
		prev     = big.NewInt(v.tx.SystemFee)
		required = big.NewInt(res.GasConsumed)
	)
	switch {
	case prev.Cmp(required) < 0:
		if autoFix {
			v.tx.SystemFee = res.GasConsumed
			v.log.Debug("fixed SystemFee",
				zap.Stringer("prev", prev),
				zap.Int64("new", res.GasConsumed))
			return fixed(prev, required), nil
		}
		return invalid(prev, required, MsgSystemFeeShort), nil
	case v.overpays(prev, required):
		return suggest(prev, required, MsgSystemFeeOverpay), nil
	}
	return valid(), nil
}

// ValidateNetworkFee checks that NetworkFee covers transaction size and
// witness verification costs.
func (v *Validator) ValidateNetworkFee(autoFix bool) (Suggestion, error) {
	netFee, err := v.requiredNetworkFee()
	if err != nil {
		return Suggestion{}, err
	}
	var (
		prev     = big.NewInt(v.tx.NetworkFee)
		required = big.NewInt(netFee)
	)
	switch {
	case prev.Cmp(required) < 0:
		if autoFix {
			v.tx.NetworkFee = netFee
			v.log.Debug("fixed NetworkFee",
				zap.Stringer("prev", prev),
				zap.Int64("new", netFee))
			return fixed(prev, required), nil
		}
		return invalid(prev, required, MsgNetworkFeeShort), nil
	case v.overpays(prev, required):
		return suggest(prev, required, MsgNetworkFeeOverpay), nil
	}
	return valid(), nil
}

// ValidateScript checks that the script test invocation ends in HALT state.
func (v *Validator) ValidateScript() (Suggestion, error) {
	res, err := v.invoke()
	if err != nil {
		return Suggestion{}, err
	}
	if res.HasFaulted() {
		msg := MsgScriptFault
		if res.FaultException != "" {
			msg += " " + res.FaultException
		}
		return Suggestion{Message: msg}, nil
	}
	return valid(), nil
}

// Validate checks the given fields applying fixes to the fields in fix set
// (fields not in check set are never fixed). Fields are checked in the
// following order: ValidUntilBlock, SystemFee, NetworkFee, Script.
func (v *Validator) Validate(check Attributes, fix Attributes) (*Result, error) {
	res := &Result{
		Valid:  true,
		Fields: make(map[Attributes]Suggestion),
	}
	for _, f := range []struct {
		attr Attributes
		run  func(bool) (Suggestion, error)
	}{
		{ValidUntilBlock, v.ValidateValidUntilBlock},
		{SystemFee, v.ValidateSystemFee},
		{NetworkFee, v.ValidateNetworkFee},
		{Script, func(bool) (Suggestion, error) { return v.ValidateScript() }},
	} {
		if !check.Has(f.attr) {
			continue
		}
		s, err := f.run(fix.Has(f.attr))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.attr, err)
		}
		res.Fields[f.attr] = s
		res.Valid = res.Valid && s.Valid
	}
	return res, nil
}

// Messages returns messages of invalid fields.
func (r *Result) Messages() []string {
	var msgs []string
	for _, n := range attrNames {
		s, ok := r.Fields[n.a]
		if ok && !s.Valid {
			msgs = append(msgs, fmt.Sprintf("%s: %s", n.name, s.Message))
		}
	}
	return msgs
}

// Notes returns messages of valid fields (applied fixes and warnings) in the
// same format as Messages.
func (r *Result) Notes() []string {
	var msgs []string
	for _, n := range attrNames {
		s, ok := r.Fields[n.a]
		if ok && s.Valid && s.Message != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s", n.name, s.Message))
		}
	}
	return msgs
}

func (v *Validator) invoke() (*result.Invoke, error) {
	res, err := v.rpc.InvokeScript(v.tx.Script, v.tx.Signers)
	if err != nil {
		return nil, fmt.Errorf("failed to test-invoke script: %w", err)
	}
	return res, nil
}

func (v *Validator) requiredNetworkFee() (int64, error) {
	calc, canCalc := v.rpc.(NetworkFeeCalculator)
	if v.shapeSource == FromWitnesses {
		info, err := v.policy.GetFeeInformation()
		if err != nil {
			return 0, fmt.Errorf("failed to get fee information: %w", err)
		}
		netFee, err := CalculateNetworkFee(v.tx, info)
		if err == nil {
			return netFee, nil
		}
		if !canCalc {
			return 0, err
		}
		v.log.Debug("falling back to calculatenetworkfee", zap.Error(err))
	} else if !canCalc {
		return 0, fmt.Errorf("%w: RPC can't calculate network fee", ErrUnknownWitness)
	}
	netFee, err := calc.CalculateNetworkFee(v.tx)
	if err != nil {
		return 0, fmt.Errorf("failed to calculate network fee: %w", err)
	}
	return netFee, nil
}

// CalculateNetworkFee returns the network fee of the transaction signed with
// standard witnesses. Every signer must have a witness with signature or
// multisignature verification script attached (invocation scripts are
// ignored), ErrUnknownWitness is returned otherwise.
func CalculateNetworkFee(tx *transaction.Transaction, info *policy.FeeInformation) (int64, error) {
	var (
		netFee int64
		size   = tx.UnsignedSize() + io.GetVarSize(len(tx.Signers))
	)
	for i := range tx.Signers {
		w := tx.WitnessFor(tx.Signers[i].Account)
		if w == nil {
			return 0, fmt.Errorf("%w: no witness for %s", ErrUnknownWitness,
				address.Uint160ToString(tx.Signers[i].Account))
		}
		shape := vm.ClassifyWitness(w.VerificationScript)
		f, s, ok := fee.CalculateShape(info.ExecFeeFactor, shape, w.VerificationScript)
		if !ok {
			return 0, fmt.Errorf("%w: non-standard verification script for %s", ErrUnknownWitness,
				address.Uint160ToString(tx.Signers[i].Account))
		}
		netFee += f
		size += s
	}
	return netFee + int64(size)*info.FeePerByte, nil
}

// overpays checks whether fee exceeds required by more than the tolerance.
func (v *Validator) overpays(paid, required *big.Int) bool {
	// paid*10000 > required*(10000+tolerance)
	lhs := new(big.Int).Mul(paid, big.NewInt(10000))
	rhs := new(big.Int).Mul(required, big.NewInt(10000+v.overpayTolerance))
	return lhs.Cmp(rhs) > 0
}

func uintToBig(n uint32) *big.Int {
	return new(big.Int).SetUint64(uint64(n))
}

func valid() Suggestion {
	return Suggestion{Valid: true}
}

func fixed(prev, suggestion *big.Int) Suggestion {
	return Suggestion{Valid: true, Fixed: true, Prev: prev, Suggestion: suggestion}
}

func suggest(prev, suggestion *big.Int, msg string) Suggestion {
	return Suggestion{Valid: true, Prev: prev, Suggestion: suggestion, Message: msg}
}

func invalid(prev, suggestion *big.Int, msg string) Suggestion {
	return Suggestion{Prev: prev, Suggestion: suggestion, Message: msg}
}
