/*
Package facade implements the whole transaction lifecycle on top of the RPC
client: it creates transactions from high-level intents, validates (and fixes)
them against the network state, signs them with the given Signer and sends
them to the network.

Facade methods are safe for concurrent use as long as different calls don't
share transactions, every call creates and owns its own transaction.
*/
package facade

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/nspcc-dev/neotx/pkg/config/netmode"
	"github.com/nspcc-dev/neotx/pkg/core/transaction"
	"github.com/nspcc-dev/neotx/pkg/crypto/keys"
	"github.com/nspcc-dev/neotx/pkg/encoding/bigint"
	"github.com/nspcc-dev/neotx/pkg/neorpc/result"
	"github.com/nspcc-dev/neotx/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neotx/pkg/rpcclient/neo"
	"github.com/nspcc-dev/neotx/pkg/rpcclient/neptoken"
	"github.com/nspcc-dev/neotx/pkg/rpcclient/policy"
	"github.com/nspcc-dev/neotx/pkg/rpcclient/txbuilder"
	"github.com/nspcc-dev/neotx/pkg/rpcclient/validator"
	"github.com/nspcc-dev/neotx/pkg/smartcontract"
	"github.com/nspcc-dev/neotx/pkg/util"
	"github.com/nspcc-dev/neotx/pkg/vm"
	"github.com/nspcc-dev/neotx/pkg/wallet"
	"go.uber.org/zap"
)

// DefaultDecimalsCacheSize is the default number of tokens which decimals
// are cached.
const DefaultDecimalsCacheSize = 128

var (
	// ErrValidation is returned when the transaction is still invalid after
	// all the fixes applied by the validator.
	ErrValidation = errors.New("unable to validate transaction")
	// ErrNoAmount is returned for transfer intents without amount.
	ErrNoAmount = errors.New("no amount specified")
	// ErrWrongNetwork is returned from New when the node works with
	// an unexpected network.
	ErrWrongNetwork = errors.New("wrong network")
)

// RPC is a set of node methods used by the Facade, rpcclient.Client
// implements it.
type RPC interface {
	validator.RPC

	GetVersion() (*result.Version, error)
	SendRawTransaction(tx *transaction.Transaction) (util.Uint256, error)
}

// Options are Facade parameters, zero values are replaced with defaults.
type Options struct {
	// Logger, no logging is done if it's nil.
	Logger *zap.Logger
	// DecimalsCacheSize is the size of the token decimals cache.
	DecimalsCacheSize int
	// Validator options used for every transaction.
	Validator []validator.Option
	// Network is the expected network, New fails if the node works with
	// some other one. Zero value accepts any network.
	Network netmode.Magic
}

// Facade creates, validates, signs and sends transactions.
type Facade struct {
	rpc      RPC
	inv      *invoker.Invoker
	magic    netmode.Magic
	log      *zap.Logger
	decimals *lru.Cache
	vopts    []validator.Option
}

// Intent is a single NEP-17 transfer. Either Amount (in token fractions) or
// DecimalAmount (a decimal string like "1.5", converted using the token
// decimals fetched from the network) must be set, Amount takes precedence.
type Intent struct {
	From          *wallet.Account
	To            util.Uint160
	Contract      util.Uint160
	Amount        *big.Int
	DecimalAmount string
	Data          any
}

// New creates a Facade, it requests the network magic from the node.
func New(rpc RPC, opts Options) (*Facade, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.DecimalsCacheSize <= 0 {
		opts.DecimalsCacheSize = DefaultDecimalsCacheSize
	}
	cache, err := lru.New(opts.DecimalsCacheSize)
	if err != nil {
		return nil, err
	}
	ver, err := rpc.GetVersion()
	if err != nil {
		return nil, fmt.Errorf("failed to get network magic: %w", err)
	}
	if !opts.Network.Matches(ver.Protocol.Network) {
		return nil, fmt.Errorf("%w: node is on %s, %s expected", ErrWrongNetwork, ver.Protocol.Network, opts.Network)
	}
	return &Facade{
		rpc:      rpc,
		inv:      invoker.New(rpc, nil),
		magic:    ver.Protocol.Network,
		log:      opts.Logger,
		decimals: cache,
		vopts:    append([]validator.Option{validator.WithLogger(opts.Logger)}, opts.Validator...),
	}, nil
}

// Network returns the magic of the network the Facade works with.
func (f *Facade) Network() netmode.Magic {
	return f.magic
}

// TransferToken makes a transaction with all the transfers given. Senders
// are ordered by script hash, so the sender with the lowest hash pays fees.
// It returns the hash of the transaction sent.
func (f *Facade) TransferToken(intents []Intent, signer wallet.Signer) (util.Uint256, error) {
	return f.submit(f.MakeTransfer(intents))(signer)
}

// MakeTransfer creates an unsigned transaction with all the transfers given,
// it's not validated.
func (f *Facade) MakeTransfer(intents []Intent) (*transaction.Transaction, error) {
	if len(intents) == 0 {
		return nil, errors.New("no transfers")
	}
	b := txbuilder.New()
	for i, in := range intents {
		if in.From == nil {
			return nil, fmt.Errorf("transfer %d: no sender", i)
		}
		amount, err := f.intentAmount(in)
		if err != nil {
			return nil, fmt.Errorf("transfer %d: %w", i, err)
		}
		b.AddNep17Transfer(in.From, in.To, in.Contract, amount, in.Data)
	}
	return b.Build()
}

// ClaimGas makes the account claim its unclaimed GAS.
func (f *Facade) ClaimGas(acc *wallet.Account, signer wallet.Signer) (util.Uint256, error) {
	return f.submit(f.MakeClaimGas(acc))(signer)
}

// MakeClaimGas creates an unsigned GAS claim transaction.
func (f *Facade) MakeClaimGas(acc *wallet.Account) (*transaction.Transaction, error) {
	return f.makeScript(acc, func(b *smartcontract.Builder) error {
		return neo.AddClaimGas(b, acc.ScriptHash())
	})
}

// Vote makes the account vote for the given candidate, nil key removes the
// vote.
func (f *Facade) Vote(acc *wallet.Account, candidate *keys.PublicKey, signer wallet.Signer) (util.Uint256, error) {
	return f.submit(f.MakeVote(acc, candidate))(signer)
}

// MakeVote creates an unsigned vote transaction.
func (f *Facade) MakeVote(acc *wallet.Account, candidate *keys.PublicKey) (*transaction.Transaction, error) {
	return f.makeScript(acc, func(b *smartcontract.Builder) error {
		neo.AddVote(b, acc.ScriptHash(), candidate)
		return nil
	})
}

// InvokeContract sends a transaction with a single contract call signed by
// the account with CalledByEntry scope.
func (f *Facade) InvokeContract(acc *wallet.Account, call txbuilder.ContractCall, signer wallet.Signer) (util.Uint256, error) {
	return f.submit(f.MakeCall(acc, call))(signer)
}

// MakeCall creates an unsigned transaction with a single contract call.
func (f *Facade) MakeCall(acc *wallet.Account, call txbuilder.ContractCall) (*transaction.Transaction, error) {
	return txbuilder.New().
		AddContractCall(call).
		AddSigners(transaction.Signer{Account: acc.ScriptHash(), Scopes: transaction.CalledByEntry}).
		AddEmptyWitness(acc).
		Build()
}

// Invoke test-invokes the contract call without signers, nothing is sent to
// the network.
func (f *Facade) Invoke(call txbuilder.ContractCall) (*result.Invoke, error) {
	return f.inv.Call(call.Contract, call.Method, call.Params...)
}

// GetBalances returns token balances of the account with a single
// invocation.
func (f *Facade) GetBalances(account util.Uint160, contracts ...util.Uint160) ([]neptoken.Balance, error) {
	bals, err := neptoken.Balances(f.inv, account, contracts...)
	if err != nil {
		return nil, err
	}
	for _, b := range bals {
		f.decimals.Add(b.Hash, b.Decimals)
	}
	return bals, nil
}

// GetCandidates returns the list of NEO candidates.
func (f *Facade) GetCandidates() ([]neo.Candidate, error) {
	return neo.NewReader(f.inv).GetCandidates()
}

// Policy is a set of network settings affecting transaction costs.
type Policy struct {
	policy.FeeInformation
	// StoragePrice is the per-byte storage price in GAS fractions.
	StoragePrice int64
}

// GetPolicy returns the current network fee settings.
func (f *Facade) GetPolicy() (*Policy, error) {
	r := policy.NewReader(f.inv)
	info, err := r.GetFeeInformation()
	if err != nil {
		return nil, err
	}
	price, err := r.GetStoragePrice()
	if err != nil {
		return nil, fmt.Errorf("storage price: %w", err)
	}
	return &Policy{FeeInformation: *info, StoragePrice: price}, nil
}

// IsBlocked checks whether the account is blocked by the network policy,
// transactions signed by blocked accounts are rejected.
func (f *Facade) IsBlocked(account util.Uint160) (bool, error) {
	return policy.NewReader(f.inv).IsBlocked(account)
}

// UnclaimedGas returns the amount of GAS the account can claim at the
// current height.
func (f *Facade) UnclaimedGas(account util.Uint160) (*big.Int, error) {
	h, err := f.rpc.GetBlockCount()
	if err != nil {
		return nil, fmt.Errorf("failed to get block count: %w", err)
	}
	return neo.NewReader(f.inv).UnclaimedGas(account, h)
}

// Validate checks the transaction fixing everything that can be fixed.
func (f *Facade) Validate(tx *transaction.Transaction) (*validator.Result, error) {
	res, err := validator.New(f.rpc, tx, f.vopts...).Validate(validator.All, validator.All)
	if err != nil {
		return nil, err
	}
	for attr, s := range res.Fields {
		if !s.Valid {
			validationFailures.WithLabelValues(attr.String()).Inc()
		}
	}
	return res, nil
}

// Sign adds invocation scripts to all witnesses of the transaction, in the
// order of witnesses. Signing stops at the first error, witnesses signed
// before it keep their signatures. Multisignature witnesses are signed with
// all the signatures needed if the signer is a wallet.MultiSigner and with
// a single signature otherwise. Transactions with witnesses not matching
// signers by index are rejected before anything is signed, see
// transaction.CheckWitnessOrder.
func (f *Facade) Sign(tx *transaction.Transaction, signer wallet.Signer) error {
	if err := tx.CheckWitnessOrder(); err != nil {
		return err
	}
	msg := tx.GetSignedPart(uint32(f.magic))
	for i := range tx.Scripts {
		w := &tx.Scripts[i]
		inv, err := f.invocationScript(msg, w.VerificationScript, signer)
		if err != nil {
			return fmt.Errorf("failed to sign witness %d (%s): %w", i, w.ScriptHash().StringLE(), err)
		}
		w.InvocationScript = inv
	}
	f.log.Debug("transaction signed",
		zap.Stringer("hash", tx.Hash()),
		zap.Int("witnesses", len(tx.Scripts)))
	return nil
}

// Send submits the transaction to the network.
func (f *Facade) Send(tx *transaction.Transaction) (util.Uint256, error) {
	h, err := f.rpc.SendRawTransaction(tx)
	if err != nil {
		f.log.Warn("failed to send transaction", zap.Stringer("hash", tx.Hash()), zap.Error(err))
		return h, err
	}
	transactionsSent.Inc()
	f.log.Info("transaction sent",
		zap.Stringer("hash", h),
		zap.Uint32("vub", tx.ValidUntilBlock),
		zap.Int64("sysfee", tx.SystemFee),
		zap.Int64("netfee", tx.NetworkFee))
	return h, nil
}

func (f *Facade) invocationScript(msg []byte, script []byte, signer wallet.Signer) ([]byte, error) {
	if _, ok := vm.ClassifyWitness(script).(vm.MultiSigShape); ok {
		if ms, ok := signer.(wallet.MultiSigner); ok {
			sigs, err := ms.SignMultiTx(msg, script)
			if err != nil {
				return nil, err
			}
			return smartcontract.CreateMultiSigInvocationScript(sigs)
		}
	}
	sig, err := signer.SignTx(msg, script)
	if err != nil {
		return nil, err
	}
	return smartcontract.CreateSignatureInvocationScript(sig)
}

func (f *Facade) makeScript(acc *wallet.Account, script func(*smartcontract.Builder) error) (*transaction.Transaction, error) {
	return txbuilder.New().
		AddScript(script).
		AddSigners(transaction.Signer{Account: acc.ScriptHash(), Scopes: transaction.CalledByEntry}).
		AddEmptyWitness(acc).
		Build()
}

func (f *Facade) submit(tx *transaction.Transaction, err error) func(wallet.Signer) (util.Uint256, error) {
	return func(signer wallet.Signer) (util.Uint256, error) {
		if err != nil {
			return util.Uint256{}, err
		}
		return f.ValidateSignSend(tx, signer)
	}
}

// ValidateSignSend validates the transaction, signs it if it's valid and
// sends it to the network.
func (f *Facade) ValidateSignSend(tx *transaction.Transaction, signer wallet.Signer) (util.Uint256, error) {
	res, err := f.Validate(tx)
	if err != nil {
		return util.Uint256{}, err
	}
	if !res.Valid {
		return util.Uint256{}, fmt.Errorf("%w: %s", ErrValidation, strings.Join(res.Messages(), "; "))
	}
	if err := f.Sign(tx, signer); err != nil {
		return util.Uint256{}, err
	}
	return f.Send(tx)
}

func (f *Facade) intentAmount(in Intent) (*big.Int, error) {
	if in.Amount != nil {
		return in.Amount, nil
	}
	if in.DecimalAmount == "" {
		return nil, ErrNoAmount
	}
	dec, err := f.tokenDecimals(in.Contract)
	if err != nil {
		return nil, err
	}
	return bigint.FromDecimal(in.DecimalAmount, dec)
}

func (f *Facade) tokenDecimals(h util.Uint160) (int, error) {
	if d, ok := f.decimals.Get(h); ok {
		return d.(int), nil
	}
	info, err := neptoken.Info(f.inv, h)
	if err != nil {
		return 0, fmt.Errorf("failed to get %s token info: %w", h.StringLE(), err)
	}
	f.decimals.Add(h, info[0].Decimals)
	return info[0].Decimals, nil
}
